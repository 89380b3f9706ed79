package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/Skotchmaster/storefront/internal/app"
	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/session"
)

func main() {
	cliApp := &cli.App{
		Name:  "storefront",
		Usage: "storefront and admin demo shop",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env-file", Value: ".env", Usage: "dotenv file loaded before reading the environment"},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP server",
				Action: serve,
			},
			{
				Name:   "reset",
				Usage:  "delete every persisted cart, wishlist and session key",
				Action: reset,
			},
			{
				Name:  "accounts",
				Usage: "list the accounts of a realm",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "realm", Value: session.RealmCustomer, Usage: "customer or admin"},
				},
				Action: accounts,
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setup(c *cli.Context) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(c.String("env-file"))
	if err != nil {
		return config.Config{}, nil, err
	}
	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func serve(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	a, err := app.New(openCtx, cfg, logger)
	cancel()
	if err != nil {
		return fmt.Errorf("app init: %w", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("app_close_failed", "error", err)
		}
	}()

	e := httpserver.NewEcho(logger)
	httpserver.Register(e, httpserver.DepsFromApp(a))

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server_listening", "addr", srv.Addr, "storage", cfg.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	logger.Info("server_stopped")
	return err
}

func reset(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}

	store, err := app.OpenKV(c.Context, cfg)
	if err != nil {
		return fmt.Errorf("open kv store: %w", err)
	}
	defer store.Close()

	if err := app.Reset(c.Context, store); err != nil {
		return err
	}
	logger.Info("storage_reset", "driver", cfg.StorageDriver, "keys", app.PersistedKeys)
	return nil
}

func accounts(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}

	store, err := app.OpenKV(c.Context, cfg)
	if err != nil {
		return fmt.Errorf("open kv store: %w", err)
	}
	defer store.Close()

	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEMAIL\tNAME\tROLE")

	opts := []session.Option{session.WithLogger(logger)}
	switch realm := c.String("realm"); realm {
	case session.RealmCustomer:
		s := session.Open(c.Context, session.CustomerRealm(), store, opts...)
		for _, acc := range s.Accounts(c.Context) {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", acc.AccountID(), acc.AccountEmail(), acc.AccountName(), acc.AccountRole())
		}
	case session.RealmAdmin:
		s := session.Open(c.Context, session.AdminRealm(), store, opts...)
		for _, acc := range s.Accounts(c.Context) {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", acc.AccountID(), acc.AccountEmail(), acc.AccountName(), acc.AccountRole())
		}
	default:
		return fmt.Errorf("unknown realm %q", realm)
	}
	return w.Flush()
}
