package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/checkout"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/session"
)

type CheckoutHTTP struct {
	Checkout  *checkout.Service
	Customers *session.Store[models.Customer]
}

// Quote returns the order summary and, when a customer is signed in, a
// shipping form prefilled from their account.
func (h *CheckoutHTTP) Quote(c echo.Context) error {
	resp := map[string]any{"summary": h.Checkout.Quote()}
	if cur, ok := h.Customers.Current(); ok {
		resp["prefill"] = checkout.Prefill(cur)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *CheckoutHTTP) PlaceOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.place_order")

	var req checkout.ShippingDetails
	if err := c.Bind(&req); err != nil {
		l.Warn("place_order_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	receipt, err := h.Checkout.PlaceOrder(ctx, req)
	if err != nil {
		var verr *checkout.ValidationError
		switch {
		case errors.As(err, &verr):
			return c.JSON(http.StatusBadRequest, map[string]any{
				"message": "please fill in all required fields",
				"missing": verr.Missing,
			})
		case errors.Is(err, checkout.ErrEmptyCart):
			return echo.NewHTTPError(http.StatusBadRequest, "cart is empty")
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return echo.NewHTTPError(http.StatusServiceUnavailable, "request cancelled")
		}
		l.Error("place_order_failed", "status", 500, "reason", "unexpected error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot place order")
	}

	l.Info("place_order_success", "confirmation_id", receipt.ConfirmationID)
	return c.JSON(http.StatusCreated, receipt)
}
