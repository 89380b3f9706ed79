// Package kv is the synchronous key-value bridge the stateful stores mirror
// their state into. Values are JSON documents addressed by fixed key names.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Skotchmaster/storefront/internal/logging"
)

var ErrNotFound = errors.New("kv: key not found")

type Store interface {
	// Load returns ErrNotFound when the key is absent.
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// LoadJSON decodes the value under key into T. Absent keys, backend errors
// and malformed documents all report ok=false; only the latter two are logged.
func LoadJSON[T any](ctx context.Context, s Store, key string, l *slog.Logger) (T, bool) {
	var zero T
	l = logging.FromContextOr(ctx, l)

	b, err := s.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			l.Error("kv_load_failed", "key", key, "error", err)
		}
		return zero, false
	}

	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		l.Warn("kv_corrupt_value", "key", key, "reason", "value is not valid json, using defaults", "error", err)
		return zero, false
	}
	return v, true
}

func SaveJSON(ctx context.Context, s Store, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("kv: marshal %s: %w", key, err)
	}
	if err := s.Save(ctx, key, b); err != nil {
		return fmt.Errorf("kv: save %s: %w", key, err)
	}
	return nil
}
