// Package checkout turns the cart into a confirmed order: it validates the
// shipping form, quotes tax, simulates payment processing and empties the
// cart. Nothing is charged and no order record is created.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/cart"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrEmptyCart  = errors.New("cart is empty")
)

const (
	DefaultDelay         = 2 * time.Second
	DefaultPaymentMethod = "credit-card"
)

var taxRate = decimal.RequireFromString("0.08")

type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Missing, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

type ShippingDetails struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	City          string `json:"city"`
	State         string `json:"state"`
	ZipCode       string `json:"zipCode"`
	PaymentMethod string `json:"paymentMethod"`
}

// Validate reports every empty required field, in form order.
func (d ShippingDetails) Validate() error {
	fields := []struct{ name, value string }{
		{"firstName", d.FirstName},
		{"lastName", d.LastName},
		{"email", d.Email},
		{"address", d.Address},
		{"city", d.City},
		{"state", d.State},
		{"zipCode", d.ZipCode},
	}
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// Prefill starts a shipping form from the signed-in customer: the first two
// words of the name and the email.
func Prefill(c models.Customer) ShippingDetails {
	d := ShippingDetails{Email: c.Email, PaymentMethod: DefaultPaymentMethod}
	parts := strings.Fields(c.Name)
	if len(parts) > 0 {
		d.FirstName = parts[0]
	}
	if len(parts) > 1 {
		d.LastName = parts[1]
	}
	return d
}

type Summary struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
	Items    int     `json:"items"`
}

func quote(items []models.CartItem) Summary {
	subtotal := cart.Total(items)
	tax := subtotal.Mul(taxRate).Round(2)
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return Summary{
		Subtotal: subtotal.InexactFloat64(),
		Tax:      tax.InexactFloat64(),
		Total:    subtotal.Add(tax).InexactFloat64(),
		Items:    n,
	}
}

type Receipt struct {
	ConfirmationID string            `json:"confirmationId"`
	Items          []models.CartItem `json:"items"`
	Summary        Summary           `json:"summary"`
	Shipping       ShippingDetails   `json:"shipping"`
	PlacedAt       time.Time         `json:"placedAt"`
}

type Cart interface {
	Items() []models.CartItem
	Clear(ctx context.Context)
}

type Service struct {
	Cart       Cart
	Delay      time.Duration
	Dispatcher events.Dispatcher
	Log        *slog.Logger
	Now        func() time.Time
}

func NewService(c Cart, delay time.Duration, d events.Dispatcher, l *slog.Logger) *Service {
	if d == nil {
		d = events.Nop
	}
	if l == nil {
		l = logging.Discard()
	}
	return &Service{Cart: c, Delay: delay, Dispatcher: d, Log: l, Now: time.Now}
}

// Quote prices the cart as it is now. Shipping is always free.
func (s *Service) Quote() Summary {
	return quote(s.Cart.Items())
}

func (s *Service) PlaceOrder(ctx context.Context, details ShippingDetails) (Receipt, error) {
	l := logging.FromContextOr(ctx, s.Log).With("service", "checkout")

	items := s.Cart.Items()
	if len(items) == 0 {
		l.Warn("place_order_failed", "status", 400, "reason", "cart is empty")
		return Receipt{}, ErrEmptyCart
	}
	if err := details.Validate(); err != nil {
		l.Warn("place_order_failed", "status", 400, "reason", "missing information", "error", err)
		return Receipt{}, err
	}
	if details.PaymentMethod == "" {
		details.PaymentMethod = DefaultPaymentMethod
	}

	if err := s.wait(ctx); err != nil {
		l.Warn("place_order_cancelled", "error", err)
		return Receipt{}, err
	}

	r := Receipt{
		ConfirmationID: strings.ToUpper(uuid.NewString()[:8]),
		Items:          items,
		Summary:        quote(items),
		Shipping:       details,
		PlacedAt:       s.Now().UTC(),
	}
	s.Cart.Clear(ctx)

	l.Info("order_placed", "confirmation_id", r.ConfirmationID, "total", r.Summary.Total, "items", r.Summary.Items)
	if err := s.Dispatcher.Dispatch(ctx, events.OrderPlaced{
		ConfirmationID: r.ConfirmationID,
		Email:          details.Email,
		Items:          r.Summary.Items,
		Subtotal:       r.Summary.Subtotal,
		Tax:            r.Summary.Tax,
		Total:          r.Summary.Total,
		PaymentMethod:  details.PaymentMethod,
	}); err != nil {
		l.Error("event_dispatch_failed", "type", "order_placed", "error", err)
	}
	return r, nil
}

func (s *Service) wait(ctx context.Context) error {
	if s.Delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.Delay)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
