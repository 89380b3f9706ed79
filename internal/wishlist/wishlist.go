// Package wishlist keeps saved product snapshots, unique by product id,
// mirrored into the key-value store under "wishlist-items".
package wishlist

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/kv"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
)

const StorageKey = "wishlist-items"

type Store struct {
	mu    sync.Mutex
	items []models.Product

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

func Open(ctx context.Context, store kv.Store, opts ...Option) *Store {
	s := &Store{
		kv:         store,
		dispatcher: events.Nop,
		log:        logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}

	items, ok := kv.LoadJSON[[]models.Product](ctx, store, StorageKey, s.log)
	if !ok || items == nil {
		items = []models.Product{}
	}
	s.items = items
	return s
}

// Add reports false, without writing anything, when p is already saved.
func (s *Store) Add(ctx context.Context, p models.Product) bool {
	s.mu.Lock()
	if s.indexLocked(p.ID) >= 0 {
		s.mu.Unlock()
		s.logger(ctx).Info("wishlist_add_skipped", "product_id", p.ID, "reason", "already in wishlist")
		return false
	}
	s.items = append(s.items, p.Clone())
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.logger(ctx).Info("wishlist_item_added", "product_id", p.ID, "name", p.Name)
	s.emit(ctx, events.WishlistItemAdded{ProductID: p.ID, Name: p.Name})
	return true
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
	s.logger(ctx).Info("wishlist_item_removed", "product_id", productID)
	s.emit(ctx, events.WishlistItemRemoved{ProductID: productID})
}

// Toggle removes p when saved and adds it otherwise. It returns whether p
// is saved afterwards.
func (s *Store) Toggle(ctx context.Context, p models.Product) bool {
	if s.Contains(p.ID) {
		s.Remove(ctx, p.ID)
		return false
	}
	s.Add(ctx, p)
	return true
}

func (s *Store) Contains(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexLocked(productID) >= 0
}

func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	n := len(s.items)
	s.items = []models.Product{}
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.logger(ctx).Info("wishlist_cleared", "items", n)
	s.emit(ctx, events.WishlistCleared{Items: n})
}

func (s *Store) Items() []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Product, len(s.items))
	for i, p := range s.items {
		out[i] = p.Clone()
	}
	return out
}

func (s *Store) persistLocked(ctx context.Context) {
	if err := kv.SaveJSON(ctx, s.kv, StorageKey, s.items); err != nil {
		s.logger(ctx).Error("wishlist_persist_failed", "key", StorageKey, "error", err)
	}
}

func (s *Store) indexLocked(productID string) int {
	for i := range s.items {
		if s.items[i].ID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) logger(ctx context.Context) *slog.Logger {
	return logging.FromContextOr(ctx, s.log).With("store", "wishlist")
}

func (s *Store) emit(ctx context.Context, e events.Event) {
	if err := s.dispatcher.Dispatch(ctx, e); err != nil {
		s.logger(ctx).Error("event_dispatch_failed", "type", e.Type(), "error", err)
	}
}
