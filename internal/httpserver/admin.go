package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/catalog"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
)

type AdminHTTP struct {
	Catalog *catalog.Store
}

type orderStatusRequest struct {
	Status string `json:"status"`
}

func (h *AdminHTTP) Dashboard(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"stats": h.Catalog.Stats(),
		"sales": h.Catalog.SalesSeries(),
	})
}

func (h *AdminHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.create_product")

	var req catalog.ProductInput
	if err := c.Bind(&req); err != nil {
		l.Warn("product_create_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		l.Warn("product_create_error", "status", 400, "reason", "name is required")
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if req.Price < 0 || req.Stock < 0 {
		l.Warn("product_create_error", "status", 400, "reason", "price and stock must not be negative")
		return echo.NewHTTPError(http.StatusBadRequest, "price and stock must not be negative")
	}

	p := h.Catalog.AddProduct(ctx, req)

	l.Info("product_create_success", "product_id", p.ID)
	return c.JSON(http.StatusCreated, p)
}

func (h *AdminHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.patch_product")

	var req catalog.ProductPatch
	if err := c.Bind(&req); err != nil {
		l.Warn("product_patch_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		l.Warn("product_patch_error", "status", 400, "reason", "name must not be empty")
		return echo.NewHTTPError(http.StatusBadRequest, "name must not be empty")
	}
	if (req.Price != nil && *req.Price < 0) || (req.Stock != nil && *req.Stock < 0) {
		l.Warn("product_patch_error", "status", 400, "reason", "price and stock must not be negative")
		return echo.NewHTTPError(http.StatusBadRequest, "price and stock must not be negative")
	}

	p, ok := h.Catalog.UpdateProduct(ctx, c.Param("id"), req)
	if !ok {
		l.Warn("product_patch_error", "status", 404, "reason", "product not found", "product_id", c.Param("id"))
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	l.Info("product_patch_success", "product_id", p.ID)
	return c.JSON(http.StatusOK, p)
}

func (h *AdminHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.delete_product")

	if !h.Catalog.DeleteProduct(ctx, c.Param("id")) {
		l.Warn("product_delete_error", "status", 404, "reason", "product not found", "product_id", c.Param("id"))
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	l.Info("product_delete_success", "product_id", c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHTTP) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.create_category")

	var req catalog.CategoryInput
	if err := c.Bind(&req); err != nil {
		l.Warn("category_create_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		l.Warn("category_create_error", "status", 400, "reason", "name is required")
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	cat := h.Catalog.AddCategory(ctx, req)

	l.Info("category_create_success", "category_id", cat.ID)
	return c.JSON(http.StatusCreated, cat)
}

func (h *AdminHTTP) PatchCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.patch_category")

	var req catalog.CategoryPatch
	if err := c.Bind(&req); err != nil {
		l.Warn("category_patch_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	cat, ok := h.Catalog.UpdateCategory(ctx, c.Param("id"), req)
	if !ok {
		l.Warn("category_patch_error", "status", 404, "reason", "category not found", "category_id", c.Param("id"))
		return echo.NewHTTPError(http.StatusNotFound, "category not found")
	}

	l.Info("category_patch_success", "category_id", cat.ID)
	return c.JSON(http.StatusOK, cat)
}

func (h *AdminHTTP) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.delete_category")

	id := c.Param("id")
	if _, ok := h.Catalog.GetCategory(id); !ok {
		l.Warn("category_delete_error", "status", 404, "reason", "category not found", "category_id", id)
		return echo.NewHTTPError(http.StatusNotFound, "category not found")
	}

	if err := h.Catalog.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, catalog.ErrConflict) {
			l.Warn("category_delete_error", "status", 409, "reason", "category contains products", "category_id", id)
			return echo.NewHTTPError(http.StatusConflict, "cannot delete category with existing products")
		}
		l.Error("category_delete_error", "status", 500, "reason", "cannot delete category", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete category")
	}

	l.Info("category_delete_success", "category_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHTTP) GetOrders(c echo.Context) error {
	orders := h.Catalog.SearchOrders(c.QueryParam("q"))
	return c.JSON(http.StatusOK, map[string]any{
		"data": orders,
		"meta": map[string]any{"total": len(orders)},
	})
}

func (h *AdminHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.get_order")

	o, ok := h.Catalog.GetOrder(c.Param("id"))
	if !ok {
		l.Warn("get_order_failed", "status", 404, "reason", "order not found", "order_id", c.Param("id"))
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	}
	return c.JSON(http.StatusOK, o)
}

func (h *AdminHTTP) PatchOrderStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.patch_order_status")

	var req orderStatusRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("order_status_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	st, err := models.ParseOrderStatus(req.Status)
	if err != nil {
		l.Warn("order_status_error", "status", 400, "reason", "unknown status", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	o, ok := h.Catalog.UpdateOrderStatus(ctx, c.Param("id"), st)
	if !ok {
		l.Warn("order_status_error", "status", 404, "reason", "order not found", "order_id", c.Param("id"))
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	}

	l.Info("order_status_success", "order_id", o.ID, "order_status", string(o.Status))
	return c.JSON(http.StatusOK, o)
}

func (h *AdminHTTP) DeleteOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.delete_order")

	if !h.Catalog.DeleteOrder(ctx, c.Param("id")) {
		l.Warn("order_delete_error", "status", 404, "reason", "order not found", "order_id", c.Param("id"))
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	}

	l.Info("order_delete_success", "order_id", c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}
