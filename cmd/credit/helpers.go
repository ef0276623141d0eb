package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mahmoud-slama/creditapp/internal/api"
	"github.com/mahmoud-slama/creditapp/internal/cache"
	"github.com/mahmoud-slama/creditapp/internal/common"
	"github.com/mahmoud-slama/creditapp/internal/config"
	"github.com/mahmoud-slama/creditapp/internal/session"
	"github.com/mahmoud-slama/creditapp/internal/storage"
	"github.com/mahmoud-slama/creditapp/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app is everything a command needs, opened from the configuration.
type app struct {
	db        *storage.SQLiteStorage
	cache     cache.Cache
	sessions  *session.Manager
	api       *api.Client
	clients   *store.Clients
	products  *store.Products
	purchases *store.Purchases
	closers   []func() error
	settings  config.Settings
}

// openApp loads the settings, opens the local database, restores the session
// and builds the backend client and the stores.
func openApp(ctx context.Context) (*app, error) {
	settings, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	a := &app{settings: settings}

	db, err := initStorage(ctx, settings.Session.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	a.db = db
	a.closers = append(a.closers, db.Close)

	a.cache, err = a.openCache(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.sessions = session.NewManager(db)
	if err := a.sessions.Hydrate(ctx); err != nil {
		slog.Warn("Failed to restore session", "error", err)
	}

	a.api, err = api.New(settings.API.BaseURL,
		api.WithTimeout(settings.API.Timeout),
		api.WithMaxRetries(settings.API.MaxRetries),
		api.WithTokens(a.sessions),
		api.WithLogger(slog.Default()),
	)
	if err != nil {
		a.Close()
		return nil, err
	}

	opts := []store.Option{
		store.WithCache(a.cache, settings.Cache.TTL),
		store.WithLogger(slog.Default()),
	}
	a.clients = store.NewClients(a.api, opts...)
	a.products = store.NewProducts(a.api, opts...)
	a.purchases = store.NewPurchases(a.api, opts...)

	return a, nil
}

// initStorage opens the database, creating its directory on first use.
func initStorage(ctx context.Context, dbPath string) (*storage.SQLiteStorage, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	return storage.Open(ctx, dbPath)
}

func (a *app) openCache(ctx context.Context) (cache.Cache, error) {
	switch a.settings.Cache.Backend {
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, a.settings.Cache.RedisAddr)
		if err != nil {
			return nil, fmt.Errorf("failed to open redis cache: %w", err)
		}
		a.closers = append(a.closers, rc.Close)
		return rc, nil
	case config.CacheMemory:
		return cache.NewMemory(), nil
	case config.CacheNone:
		return cache.Nop{}, nil
	default:
		return a.db, nil
	}
}

// Close releases the database and cache connections.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			common.LogError(err, "Failed to close resource", common.Fields{"db": a.settings.Session.Path})
		}
	}
	a.closers = nil
}

// withApp opens the app for the duration of fn.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

// requireSession returns the signed-in session or a user error naming `credit auth login`.
func (a *app) requireSession() (session.Session, error) {
	return a.sessions.Require()
}

// requireAdmin is requireSession restricted to admin accounts.
func (a *app) requireAdmin() (session.Session, error) {
	s, err := a.sessions.Require()
	if err != nil {
		return s, err
	}
	if !s.IsAdmin() {
		return s, common.NewUserError("this command requires an admin account", common.ErrUnauthorized)
	}
	return s, nil
}

// load revalidates a collection. When the backend cannot be reached the last
// snapshot is used, with a warning; authentication failures are returned as is.
func load[T any](cmd *cobra.Command, ctx context.Context, c *store.Collection[T]) ([]T, error) {
	err := c.Revalidate(ctx)
	if err == nil {
		items, _ := c.Items()
		return items, nil
	}
	if isFatal(err) {
		return nil, err
	}
	if c.Warm(ctx) {
		items, _ := c.Items()
		warn(cmd, "Backend unavailable (%s), showing cached data", common.UserMessage(err))
		return items, nil
	}
	return nil, err
}

// isFatal reports errors that no cached data may hide.
func isFatal(err error) bool {
	return common.IsAuthError(err) || errors.Is(err, context.Canceled)
}

// resetStores forgets every cached listing, for example on logout.
func (a *app) resetStores(ctx context.Context, userID int) {
	a.clients.Reset(ctx)
	a.products.Reset(ctx)
	a.purchases.All.Reset(ctx)
	if userID > 0 {
		a.purchases.ForClient(userID).Reset(ctx)
	}
}

// clientNames loads the client list to resolve buyer names. Failures only cost the names.
func (a *app) clientNames(ctx context.Context) func(int) string {
	if err := a.clients.Revalidate(ctx); err != nil {
		slog.Debug("Client names unavailable", "error", err)
		a.clients.Warm(ctx)
	}
	return a.clients.NameOf
}
