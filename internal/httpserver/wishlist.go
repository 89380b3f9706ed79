package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/catalog"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/wishlist"
)

type WishlistHTTP struct {
	Wishlist *wishlist.Store
	Catalog  *catalog.Store
}

type wishlistRequest struct {
	ProductID string `json:"productId"`
}

func (h *WishlistHTTP) GetWishlist(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Wishlist.Items())
}

func (h *WishlistHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "wishlist.add_item")

	var req wishlistRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_to_wishlist_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	p, ok := h.Catalog.GetProduct(req.ProductID)
	if !ok {
		l.Warn("add_to_wishlist_failed", "status", 404, "reason", "product not found", "product_id", req.ProductID)
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	if !h.Wishlist.Add(ctx, p) {
		l.Info("add_to_wishlist_skipped", "product_id", p.ID, "reason", "already in wishlist")
		return c.JSON(http.StatusOK, h.Wishlist.Items())
	}

	l.Info("add_to_wishlist_success", "product_id", p.ID)
	return c.JSON(http.StatusCreated, h.Wishlist.Items())
}

func (h *WishlistHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "wishlist.remove_item")

	h.Wishlist.Remove(ctx, c.Param("id"))

	l.Info("remove_from_wishlist_success", "product_id", c.Param("id"))
	return c.JSON(http.StatusOK, h.Wishlist.Items())
}

// Toggle adds the product when absent and removes it otherwise. Removing
// works for products no longer in the catalog.
func (h *WishlistHTTP) Toggle(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "wishlist.toggle")

	id := c.Param("id")
	if h.Wishlist.Contains(id) {
		h.Wishlist.Remove(ctx, id)
		l.Info("toggle_wishlist_success", "product_id", id, "in_wishlist", false)
		return c.JSON(http.StatusOK, map[string]any{"productId": id, "inWishlist": false})
	}

	p, ok := h.Catalog.GetProduct(id)
	if !ok {
		l.Warn("toggle_wishlist_failed", "status", 404, "reason", "product not found", "product_id", id)
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}
	in := h.Wishlist.Toggle(ctx, p)

	l.Info("toggle_wishlist_success", "product_id", id, "in_wishlist", in)
	return c.JSON(http.StatusOK, map[string]any{"productId": id, "inWishlist": in})
}

func (h *WishlistHTTP) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "wishlist.clear")

	h.Wishlist.Clear(ctx)

	l.Info("clear_wishlist_success")
	return c.NoContent(http.StatusNoContent)
}
