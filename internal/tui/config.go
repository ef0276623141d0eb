package tui

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mahmoud-slama/creditapp/internal/credit"
	"github.com/mahmoud-slama/creditapp/internal/listing"
	"github.com/mahmoud-slama/creditapp/internal/model"
	"github.com/mahmoud-slama/creditapp/internal/session"
	"github.com/mahmoud-slama/creditapp/internal/store"
	"github.com/mahmoud-slama/creditapp/internal/tui/themes"
)

// Backend is the part of the API the console calls directly; listings go through the stores.
type Backend interface {
	Authenticate(ctx context.Context, creds model.Credentials) (*model.AuthResponse, error)
	Logout(ctx context.Context) error
	CreditSnapshot(ctx context.Context, id int) (credit.Progress, error)
}

// Config holds TUI configuration.
type Config struct {
	Theme     themes.Theme
	Backend   Backend
	Session   *session.Manager
	Clients   *store.Clients
	Products  *store.Products
	Purchases *store.Purchases
	Clock     listing.Clock
	Logger    *slog.Logger
	Width     int
	Height    int
	PageSize  int
	Debounce  time.Duration
	ToastTTL  time.Duration
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:    themes.Default,
		Width:    100,
		Height:   30,
		PageSize: listing.DefaultPageSize,
		Debounce: listing.DefaultDebounce,
		ToastTTL: 4 * time.Second,
		Logger:   slog.Default(),
	}
}

func (c Config) validate() error {
	var errs []error
	if c.Backend == nil {
		errs = append(errs, errors.New("backend is required"))
	}
	if c.Session == nil {
		errs = append(errs, errors.New("session manager is required"))
	}
	if c.Clients == nil || c.Products == nil || c.Purchases == nil {
		errs = append(errs, errors.New("client, product and purchase stores are required"))
	}
	return errors.Join(errs...)
}

// WithBackend sets the API used for login, logout and credit reads.
func WithBackend(b Backend) Option {
	return func(c *Config) {
		c.Backend = b
	}
}

// WithSession sets the session manager.
func WithSession(m *session.Manager) Option {
	return func(c *Config) {
		c.Session = m
	}
}

// WithStores sets the state containers behind the listings.
func WithStores(clients *store.Clients, products *store.Products, purchases *store.Purchases) Option {
	return func(c *Config) {
		c.Clients = clients
		c.Products = products
		c.Purchases = purchases
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithListing sets the page size and the search debounce window.
func WithListing(pageSize int, debounce time.Duration) Option {
	return func(c *Config) {
		if pageSize > 0 {
			c.PageSize = pageSize
		}
		c.Debounce = debounce
	}
}

// WithClock replaces the system clock, for tests.
func WithClock(clock listing.Clock) Option {
	return func(c *Config) {
		c.Clock = clock
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		if l != nil {
			c.Logger = l
		}
	}
}
