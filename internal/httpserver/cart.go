package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/cart"
	"github.com/Skotchmaster/storefront/internal/catalog"
	"github.com/Skotchmaster/storefront/internal/logging"
)

type CartHTTP struct {
	Cart    *cart.Store
	Catalog *catalog.Store
}

type addToCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHTTP) render(c echo.Context, status int) error {
	return c.JSON(status, map[string]any{
		"items":      h.Cart.Items(),
		"totalItems": h.Cart.TotalItems(),
		"totalPrice": h.Cart.TotalPrice(),
	})
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	return h.render(c, http.StatusOK)
}

// AddItem snapshots the catalog product into the cart. Stock is checked
// here, not by the cart.
func (h *CartHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add_item")

	var req addToCartRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_to_cart_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	p, ok := h.Catalog.GetProduct(req.ProductID)
	if !ok {
		l.Warn("add_to_cart_failed", "status", 404, "reason", "product not found", "product_id", req.ProductID)
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}
	if p.Stock <= 0 {
		l.Warn("add_to_cart_failed", "status", 409, "reason", "out of stock", "product_id", p.ID)
		return echo.NewHTTPError(http.StatusConflict, "product is out of stock")
	}
	if inCart := h.Cart.Quantity(p.ID); inCart+req.Quantity > p.Stock {
		l.Warn("add_to_cart_failed", "status", 400, "reason", "quantity exceeds stock", "product_id", p.ID, "stock", p.Stock, "in_cart", inCart)
		return echo.NewHTTPError(http.StatusBadRequest, "quantity exceeds stock")
	}

	outcome := h.Cart.Add(ctx, p, req.Quantity)

	l.Info("add_to_cart_success", "product_id", p.ID, "outcome", outcome.String())
	if outcome == cart.Added {
		return h.render(c, http.StatusCreated)
	}
	return h.render(c, http.StatusOK)
}

func (h *CartHTTP) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update_item")

	id := c.Param("id")
	var req updateQuantityRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_cart_item_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var stock int
	found := false
	for _, it := range h.Cart.Items() {
		if it.Product.ID == id {
			stock, found = it.Product.Stock, true
			break
		}
	}
	if !found {
		l.Warn("update_cart_item_failed", "status", 404, "reason", "item not in cart", "product_id", id)
		return echo.NewHTTPError(http.StatusNotFound, "item not in cart")
	}
	if req.Quantity > stock {
		l.Warn("update_cart_item_failed", "status", 400, "reason", "quantity exceeds stock", "product_id", id, "stock", stock)
		return echo.NewHTTPError(http.StatusBadRequest, "quantity exceeds stock")
	}

	h.Cart.UpdateQuantity(ctx, id, req.Quantity)

	l.Info("update_cart_item_success", "product_id", id, "quantity", req.Quantity)
	return h.render(c, http.StatusOK)
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove_item")

	h.Cart.Remove(ctx, c.Param("id"))

	l.Info("remove_cart_item_success", "product_id", c.Param("id"))
	return h.render(c, http.StatusOK)
}

func (h *CartHTTP) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	h.Cart.Clear(ctx)

	l.Info("clear_cart_success")
	return c.NoContent(http.StatusNoContent)
}
