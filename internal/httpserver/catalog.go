package httpserver

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/catalog"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/search"
)

type CatalogHTTP struct {
	Catalog *catalog.Store
	Search  search.Index
}

type productView struct {
	models.Product
	StockStatus models.StockStatus `json:"stockStatus"`
}

func viewProduct(p models.Product) productView {
	return productView{Product: p, StockStatus: models.StockStatusOf(p.Stock)}
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_products")

	items := h.Catalog.Browse(catalog.Filter{
		Search:   c.QueryParam("search"),
		Category: c.QueryParam("category"),
		Sort:     c.QueryParam("sort"),
	})

	l.Info("get_products_success", "count", len(items))
	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": map[string]any{"total": len(items)},
	})
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_product")

	p, ok := h.Catalog.GetProduct(c.Param("id"))
	if !ok {
		l.Warn("get_product_failed", "status", 404, "reason", "product not found", "product_id", c.Param("id"))
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}
	return c.JSON(http.StatusOK, viewProduct(p))
}

func (h *CatalogHTTP) GetCategories(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Catalog.Categories())
}

func (h *CatalogHTTP) GetCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_category")

	cat, ok := h.Catalog.GetCategory(c.Param("id"))
	if !ok {
		l.Warn("get_category_failed", "status", 404, "reason", "category not found", "category_id", c.Param("id"))
		return echo.NewHTTPError(http.StatusNotFound, "category not found")
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.search_products")

	q := strings.TrimSpace(c.QueryParam("q"))
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), search.DefaultPageSize)
	if page < 1 {
		page = 1
	}
	from, limit := search.Calculate(page, size)

	res, err := h.Search.Search(ctx, q, from, limit)
	if err != nil {
		l.Error("search_products_failed", "status", 500, "reason", "search failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}

	l.Info("search_products_success", "query", q, "total", res.Total)
	return c.JSON(http.StatusOK, map[string]any{
		"data": res.Items,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       res.Total,
			"total_pages": (res.Total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(from+limit) < res.Total,
		},
	})
}
