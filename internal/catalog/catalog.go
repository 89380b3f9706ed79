// Package catalog holds the shop's products, categories and orders and
// keeps the cross-entity rules between them: category product counts and
// the category rename cascade.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/seed"
)

var (
	ErrConflict      = errors.New("conflict")
	ErrCategoryInUse = fmt.Errorf("category contains products: %w", ErrConflict)
)

const dateLayout = "2006-01-02"

type Store struct {
	// writeMu is held from a mutation through its event dispatch, so
	// subscribers observe events in mutation order.
	writeMu sync.Mutex

	mu         sync.Mutex
	products   []models.Product
	categories []models.Category
	orders     []models.Order
	sales      []models.SalesPoint

	now        func() time.Time
	newID      func() string
	dispatcher events.Dispatcher
	log        *slog.Logger
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

func WithDispatcher(d events.Dispatcher) Option {
	return func(s *Store) { s.dispatcher = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// New builds a store from seed collections. Seeded category counts are not
// trusted; they are recomputed from the seeded products.
func New(data seed.Data, opts ...Option) *Store {
	s := &Store{
		products:   data.Products,
		categories: data.Categories,
		orders:     data.Orders,
		sales:      data.Sales,
		now:        time.Now,
		newID:      uuid.NewString,
		dispatcher: events.Nop,
		log:        logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.products == nil {
		s.products = []models.Product{}
	}
	if s.categories == nil {
		s.categories = []models.Category{}
	}
	if s.orders == nil {
		s.orders = []models.Order{}
	}
	s.recountLocked()
	return s
}

// recountLocked sets every category's count to the number of products whose
// category equals its name.
func (s *Store) recountLocked() {
	counts := make(map[string]int, len(s.categories))
	for _, p := range s.products {
		counts[p.Category]++
	}
	for i := range s.categories {
		s.categories[i].ProductCount = counts[s.categories[i].Name]
	}
}

func (s *Store) emit(ctx context.Context, e events.Event) {
	if err := s.dispatcher.Dispatch(ctx, e); err != nil {
		logging.FromContextOr(ctx, s.log).Error("event_dispatch_failed", "type", e.Type(), "error", err)
	}
}

func (s *Store) logger(ctx context.Context, op string) *slog.Logger {
	return logging.FromContextOr(ctx, s.log).With("store", "catalog", "op", op)
}

type ProductInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Stock       int     `json:"stock"`
	Image       string  `json:"image"`
	Rating      float64 `json:"rating"`
}

// ProductPatch merges the non-nil fields into a product.
type ProductPatch struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category"`
	Stock       *int     `json:"stock"`
	Image       *string  `json:"image"`
	Rating      *float64 `json:"rating"`
}

func (p ProductPatch) apply(dst *models.Product) {
	if p.Name != nil {
		dst.Name = *p.Name
	}
	if p.Description != nil {
		dst.Description = *p.Description
	}
	if p.Price != nil {
		dst.Price = *p.Price
	}
	if p.Category != nil {
		dst.Category = *p.Category
	}
	if p.Stock != nil {
		dst.Stock = *p.Stock
	}
	if p.Image != nil {
		dst.Image = *p.Image
	}
	if p.Rating != nil {
		dst.Rating = *p.Rating
	}
}

func (s *Store) AddProduct(ctx context.Context, in ProductInput) models.Product {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	p := models.Product{
		ID:          s.newID(),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		Stock:       in.Stock,
		Image:       in.Image,
		Rating:      in.Rating,
		Reviews:     []models.Review{},
		CreatedAt:   s.now().Format(dateLayout),
	}
	s.products = append(s.products, p)
	s.recountLocked()
	out := p.Clone()
	s.mu.Unlock()

	s.logger(ctx, "add_product").Info("product_added", "product_id", out.ID, "name", out.Name)
	s.emit(ctx, events.ProductCreated{Product: out.Clone()})
	return out
}

// UpdateProduct reports false and changes nothing when id is unknown.
func (s *Store) UpdateProduct(ctx context.Context, id string, patch ProductPatch) (models.Product, bool) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	idx := s.productIndexLocked(id)
	if idx >= 0 {
		patch.apply(&s.products[idx])
	}
	s.recountLocked()
	if idx < 0 {
		s.mu.Unlock()
		s.logger(ctx, "update_product").Warn("product_update_skipped", "product_id", id, "reason", "product not found")
		return models.Product{}, false
	}
	out := s.products[idx].Clone()
	s.mu.Unlock()

	s.logger(ctx, "update_product").Info("product_updated", "product_id", id)
	s.emit(ctx, events.ProductUpdated{Product: out.Clone()})
	return out, true
}

func (s *Store) DeleteProduct(ctx context.Context, id string) bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	idx := s.productIndexLocked(id)
	var name string
	if idx >= 0 {
		name = s.products[idx].Name
		s.products = append(s.products[:idx], s.products[idx+1:]...)
	}
	s.recountLocked()
	s.mu.Unlock()

	l := s.logger(ctx, "delete_product")
	if idx < 0 {
		l.Warn("product_delete_skipped", "product_id", id, "reason", "product not found")
		return false
	}
	l.Info("product_deleted", "product_id", id, "name", name)
	s.emit(ctx, events.ProductDeleted{ProductID: id})
	return true
}

func (s *Store) GetProduct(id string) (models.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.productIndexLocked(id)
	if idx < 0 {
		return models.Product{}, false
	}
	return s.products[idx].Clone(), true
}

func (s *Store) Products() []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Product, len(s.products))
	for i, p := range s.products {
		out[i] = p.Clone()
	}
	return out
}

func (s *Store) productIndexLocked(id string) int {
	for i := range s.products {
		if s.products[i].ID == id {
			return i
		}
	}
	return -1
}
