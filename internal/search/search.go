// Package search indexes catalog products for free-text lookup.
package search

import (
	"context"
	"log/slog"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type Result struct {
	Total int64            `json:"total"`
	Items []models.Product `json:"items"`
}

type Index interface {
	Upsert(ctx context.Context, p models.Product) error
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, q string, from, size int) (Result, error)
}

// Calculate turns a 1-based page and a page size into an offset and limit.
func Calculate(page, size int) (from, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	return (page - 1) * size, size
}

// Sync keeps idx in step with product events published on bus. It returns
// a func that stops syncing.
func Sync(bus *events.Bus, idx Index, l *slog.Logger) func() {
	return bus.Subscribe(func(ctx context.Context, e events.Event) {
		var err error
		switch ev := e.(type) {
		case events.ProductCreated:
			err = idx.Upsert(ctx, ev.Product)
		case events.ProductUpdated:
			err = idx.Upsert(ctx, ev.Product)
		case events.ProductDeleted:
			err = idx.Remove(ctx, ev.ProductID)
		default:
			return
		}
		if err != nil {
			logging.FromContextOr(ctx, l).Error("search_sync_failed", "type", e.Type(), "key", e.Key(), "error", err)
		}
	})
}

// Reindex loads every product into idx, stopping at the first failure.
func Reindex(ctx context.Context, idx Index, products []models.Product) error {
	for _, p := range products {
		if err := idx.Upsert(ctx, p); err != nil {
			return err
		}
	}
	return nil
}
