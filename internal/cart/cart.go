// Package cart keeps the shopper's cart and mirrors every change into the
// key-value store under "cart-items".
package cart

import (
	"context"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/kv"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
)

const StorageKey = "cart-items"

type AddOutcome int

const (
	Added AddOutcome = iota + 1
	Updated
)

func (o AddOutcome) String() string {
	switch o {
	case Added:
		return "added"
	case Updated:
		return "updated"
	}
	return "unknown"
}

type Store struct {
	mu    sync.Mutex
	items []models.CartItem

	kv         kv.Store
	dispatcher events.Dispatcher
	log        *slog.Logger
}

type Option func(*Store)

func WithDispatcher(d events.Dispatcher) Option {
	return func(s *Store) { s.dispatcher = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// Open restores the cart from store. A missing or unreadable value starts
// an empty cart.
func Open(ctx context.Context, store kv.Store, opts ...Option) *Store {
	s := &Store{
		kv:         store,
		dispatcher: events.Nop,
		log:        logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}

	items, ok := kv.LoadJSON[[]models.CartItem](ctx, store, StorageKey, s.log)
	if !ok || items == nil {
		items = []models.CartItem{}
	}
	s.items = items
	return s
}

// Add puts quantity units of p into the cart, merging with an existing line
// for the same product id. A quantity below 1 counts as 1.
func (s *Store) Add(ctx context.Context, p models.Product, quantity int) AddOutcome {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	outcome := Added
	total := quantity
	if i := s.indexLocked(p.ID); i >= 0 {
		s.items[i].Quantity += quantity
		total = s.items[i].Quantity
		outcome = Updated
	} else {
		s.items = append(s.items, models.CartItem{Product: p.Clone(), Quantity: quantity})
	}
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.logger(ctx).Info("cart_item_"+outcome.String(), "product_id", p.ID, "name", p.Name, "quantity", total)
	if outcome == Added {
		s.emit(ctx, events.CartItemAdded{ProductID: p.ID, Name: p.Name, Quantity: total})
	} else {
		s.emit(ctx, events.CartItemUpdated{ProductID: p.ID, Quantity: total})
	}
	return outcome
}

func (s *Store) Remove(ctx context.Context, productID string) {
	s.mu.Lock()
	i := s.indexLocked(productID)
	if i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
	s.persistLocked(ctx)
	s.mu.Unlock()

	if i < 0 {
		return
	}
	s.logger(ctx).Info("cart_item_removed", "product_id", productID)
	s.emit(ctx, events.CartItemRemoved{ProductID: productID})
}

// UpdateQuantity sets the line's quantity. Zero or less removes the line.
// Stock is not checked here.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) {
	if quantity <= 0 {
		s.Remove(ctx, productID)
		return
	}

	s.mu.Lock()
	i := s.indexLocked(productID)
	if i >= 0 {
		s.items[i].Quantity = quantity
	}
	s.persistLocked(ctx)
	s.mu.Unlock()

	if i < 0 {
		return
	}
	s.logger(ctx).Info("cart_item_updated", "product_id", productID, "quantity", quantity)
	s.emit(ctx, events.CartItemUpdated{ProductID: productID, Quantity: quantity})
}

func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	n := len(s.items)
	s.items = []models.CartItem{}
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.logger(ctx).Info("cart_cleared", "items", n)
	s.emit(ctx, events.CartCleared{Items: n})
}

func (s *Store) Items() []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.CartItem, len(s.items))
	for i, it := range s.items {
		out[i] = models.CartItem{Product: it.Product.Clone(), Quantity: it.Quantity}
	}
	return out
}

// Quantity returns 0 for products not in the cart.
func (s *Store) Quantity(productID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexLocked(productID); i >= 0 {
		return s.items[i].Quantity
	}
	return 0
}

// TotalPrice sums price times quantity over the snapshot prices, rounded
// to cents.
func (s *Store) TotalPrice() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Total(s.items).InexactFloat64()
}

func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items) == 0
}

// Total is the exact cent-rounded sum of price times quantity.
func Total(items []models.CartItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		line := decimal.NewFromFloat(it.Product.Price).Mul(decimal.NewFromInt(int64(it.Quantity)))
		sum = sum.Add(line)
	}
	return sum.Round(2)
}

func (s *Store) persistLocked(ctx context.Context) {
	if err := kv.SaveJSON(ctx, s.kv, StorageKey, s.items); err != nil {
		s.logger(ctx).Error("cart_persist_failed", "key", StorageKey, "error", err)
	}
}

func (s *Store) indexLocked(productID string) int {
	for i := range s.items {
		if s.items[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) logger(ctx context.Context) *slog.Logger {
	return logging.FromContextOr(ctx, s.log).With("store", "cart")
}

func (s *Store) emit(ctx context.Context, e events.Event) {
	if err := s.dispatcher.Dispatch(ctx, e); err != nil {
		s.logger(ctx).Error("event_dispatch_failed", "type", e.Type(), "error", err)
	}
}
