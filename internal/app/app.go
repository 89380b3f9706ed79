// Package app builds every store and adapter from configuration and owns
// their lifetimes.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Skotchmaster/storefront/internal/cart"
	"github.com/Skotchmaster/storefront/internal/catalog"
	"github.com/Skotchmaster/storefront/internal/checkout"
	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/kv"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/seed"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/Skotchmaster/storefront/internal/tokens"
	"github.com/Skotchmaster/storefront/internal/wishlist"
)

const redisKeyPrefix = "storefront:"

// PersistedKeys lists every key the stores write.
var PersistedKeys = []string{
	cart.StorageKey,
	wishlist.StorageKey,
	"customers",
	"current-customer",
	"admin-users",
	"current-admin",
}

type App struct {
	Config config.Config
	Log    *slog.Logger

	KV    kv.Store
	Bus   *events.Bus
	Kafka *events.KafkaDispatcher

	Catalog   *catalog.Store
	Cart      *cart.Store
	Wishlist  *wishlist.Store
	Customers *session.Store[models.Customer]
	Admins    *session.Store[models.AdminUser]
	Checkout  *checkout.Service
	Search    search.Index
	Tokens    *tokens.Issuer

	stopSync func()
}

func OpenKV(ctx context.Context, cfg config.Config) (kv.Store, error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		return kv.NewMemoryStore(), nil
	case config.DriverSQLite:
		return kv.OpenSQLite(ctx, cfg.SQLitePath)
	case config.DriverPostgres:
		return kv.OpenPostgres(ctx, cfg.DatabaseURL)
	case config.DriverRedis:
		return kv.OpenRedis(cfg.RedisAddr, redisKeyPrefix)
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

func New(ctx context.Context, cfg config.Config, l *slog.Logger) (*App, error) {
	store, err := OpenKV(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open kv store: %w", err)
	}
	return NewWithStore(ctx, cfg, l, store)
}

// NewWithStore wires the application around an already open store, which
// the App then owns.
func NewWithStore(ctx context.Context, cfg config.Config, l *slog.Logger, store kv.Store) (*App, error) {
	a := &App{Config: cfg, Log: l, KV: store, Bus: events.NewBus()}

	var dispatcher events.Dispatcher = a.Bus
	if len(cfg.KafkaBrokers) > 0 {
		k, err := events.NewKafkaDispatcher(cfg.KafkaBrokers)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.Kafka = k
		dispatcher = events.Tee(a.Bus, k)
		l.Info("kafka_enabled", "brokers", cfg.KafkaBrokers)
	}

	data, err := seed.Load()
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.Catalog = catalog.New(data, catalog.WithDispatcher(dispatcher), catalog.WithLogger(l))
	a.Cart = cart.Open(ctx, store, cart.WithDispatcher(dispatcher), cart.WithLogger(l))
	a.Wishlist = wishlist.Open(ctx, store, wishlist.WithDispatcher(dispatcher), wishlist.WithLogger(l))

	sessionOpts := []session.Option{
		session.WithDelay(cfg.LoginDelay),
		session.WithDispatcher(dispatcher),
		session.WithLogger(l),
	}
	a.Customers = session.Open(ctx, session.CustomerRealm(), store, sessionOpts...)
	a.Admins = session.Open(ctx, session.AdminRealm(), store, sessionOpts...)

	a.Checkout = checkout.NewService(a.Cart, cfg.CheckoutDelay, dispatcher, l)
	a.Tokens = tokens.NewIssuer(cfg.JWTSecret)

	if cfg.ESURL != "" {
		idx, err := search.NewElasticIndex(search.ElasticConfig{
			URL:      cfg.ESURL,
			User:     cfg.ESUser,
			Password: cfg.ESPassword,
			Index:    cfg.ESIndex,
		}, l)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.Search = idx
	} else {
		a.Search = search.NewMemoryIndex()
	}
	if err := search.Reindex(ctx, a.Search, a.Catalog.Products()); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("reindex products: %w", err)
	}
	a.stopSync = search.Sync(a.Bus, a.Search, l)

	return a, nil
}

// Reset deletes every persisted key.
func Reset(ctx context.Context, store kv.Store) error {
	var errs []error
	for _, k := range PersistedKeys {
		if err := store.Delete(ctx, k); err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", k, err))
		}
	}
	return errors.Join(errs...)
}

func (a *App) Close() error {
	if a.stopSync != nil {
		a.stopSync()
	}
	var errs []error
	if a.Kafka != nil {
		if err := a.Kafka.Close(); err != nil {
			errs = append(errs, fmt.Errorf("kafka close: %w", err))
		}
	}
	if a.KV != nil {
		if err := a.KV.Close(); err != nil {
			errs = append(errs, fmt.Errorf("kv close: %w", err))
		}
	}
	return errors.Join(errs...)
}
