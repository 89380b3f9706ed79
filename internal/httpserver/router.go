// Package httpserver exposes the storefront and admin stores over JSON/HTTP.
package httpserver

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/storefront/internal/app"
	"github.com/Skotchmaster/storefront/internal/models"
)

type Deps struct {
	Catalog  *CatalogHTTP
	Cart     *CartHTTP
	Wishlist *WishlistHTTP
	Checkout *CheckoutHTTP
	Admin    *AdminHTTP

	CustomerAuth *AuthHTTP[models.Customer]
	AdminAuth    *AuthHTTP[models.AdminUser]
}

// DepsFromApp builds every handler around the stores of a.
func DepsFromApp(a *app.App) *Deps {
	return &Deps{
		Catalog:  &CatalogHTTP{Catalog: a.Catalog, Search: a.Search},
		Cart:     &CartHTTP{Cart: a.Cart, Catalog: a.Catalog},
		Wishlist: &WishlistHTTP{Wishlist: a.Wishlist, Catalog: a.Catalog},
		Checkout: &CheckoutHTTP{Checkout: a.Checkout, Customers: a.Customers},
		Admin:    &AdminHTTP{Catalog: a.Catalog},

		CustomerAuth: &AuthHTTP[models.Customer]{Sessions: a.Customers, Tokens: a.Tokens},
		AdminAuth:    &AuthHTTP[models.AdminUser]{Sessions: a.Admins, Tokens: a.Tokens, RequiredRole: models.RoleAdmin},
	}
}

// NewEcho returns an echo instance with the standard middleware chain.
func NewEcho(l *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(RequestLogger(l))
	e.Use(echomw.CORS())
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	e.GET("/products", d.Catalog.GetProducts)
	e.GET("/products/:id", d.Catalog.GetProduct)
	e.GET("/categories", d.Catalog.GetCategories)
	e.GET("/categories/:id", d.Catalog.GetCategory)
	e.GET("/search", d.Catalog.SearchProducts)

	customer := e.Group("/auth/customer")
	customer.POST("/login", d.CustomerAuth.Login)
	customer.POST("/signup", d.CustomerAuth.Signup)
	customer.POST("/logout", d.CustomerAuth.Logout)
	customer.GET("/me", d.CustomerAuth.Me)

	adminAuth := e.Group("/auth/admin")
	adminAuth.POST("/login", d.AdminAuth.Login)
	adminAuth.POST("/logout", d.AdminAuth.Logout)
	adminAuth.GET("/me", d.AdminAuth.Me)

	e.GET("/cart", d.Cart.GetCart)
	e.POST("/cart", d.Cart.AddItem)
	e.DELETE("/cart", d.Cart.Clear)
	e.PATCH("/cart/items/:id", d.Cart.UpdateItem)
	e.DELETE("/cart/items/:id", d.Cart.RemoveItem)

	e.GET("/wishlist", d.Wishlist.GetWishlist)
	e.POST("/wishlist", d.Wishlist.AddItem)
	e.DELETE("/wishlist", d.Wishlist.Clear)
	e.DELETE("/wishlist/:id", d.Wishlist.RemoveItem)
	e.POST("/wishlist/:id/toggle", d.Wishlist.Toggle)

	e.GET("/checkout/quote", d.Checkout.Quote)
	e.POST("/checkout", d.Checkout.PlaceOrder)

	admin := e.Group("/admin", d.AdminAuth.Require)
	admin.GET("/dashboard", d.Admin.Dashboard)

	admin.POST("/products", d.Admin.CreateProduct)
	admin.PATCH("/products/:id", d.Admin.PatchProduct)
	admin.DELETE("/products/:id", d.Admin.DeleteProduct)

	admin.POST("/categories", d.Admin.CreateCategory)
	admin.PATCH("/categories/:id", d.Admin.PatchCategory)
	admin.DELETE("/categories/:id", d.Admin.DeleteCategory)

	admin.GET("/orders", d.Admin.GetOrders)
	admin.GET("/orders/:id", d.Admin.GetOrder)
	admin.PATCH("/orders/:id/status", d.Admin.PatchOrderStatus)
	admin.DELETE("/orders/:id", d.Admin.DeleteOrder)
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
