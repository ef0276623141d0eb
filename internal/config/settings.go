package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mahmoud-slama/creditapp/internal/common"
	"github.com/spf13/viper"
)

// Cache backends.
const (
	CacheSQLite = "sqlite"
	CacheRedis  = "redis"
	CacheMemory = "memory"
	CacheNone   = "none"
)

// Themes.
const (
	ThemeDefault    = "default"
	ThemeCatppuccin = "catppuccin"
)

// Settings is the typed view of the configuration.
type Settings struct {
	API     APISettings
	Session SessionSettings
	Cache   CacheSettings
	Listing ListingSettings
	TUI     TUISettings
}

// APISettings configure the backend client.
type APISettings struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// SessionSettings locate the local database.
type SessionSettings struct {
	Path string
}

// CacheSettings select where list snapshots are kept.
type CacheSettings struct {
	Backend   string
	RedisAddr string
	TTL       time.Duration
}

// ListingSettings configure list views.
type ListingSettings struct {
	PageSize int
	Debounce time.Duration
}

// TUISettings configure the interactive console.
type TUISettings struct {
	Theme string
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:8882")
	v.SetDefault("api.timeout", 10*time.Second)
	v.SetDefault("api.max_retries", 3)
	v.SetDefault("session.path", "~/.local/share/credit/credit.db")
	v.SetDefault("cache.backend", CacheSQLite)
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("listing.page_size", 10)
	v.SetDefault("listing.debounce", 300*time.Millisecond)
	v.SetDefault("tui.theme", ThemeDefault)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load reads Settings from v and validates them.
func Load(v *viper.Viper) (Settings, error) {
	SetDefaults(v)

	s := Settings{
		API: APISettings{
			BaseURL:    strings.TrimRight(v.GetString("api.base_url"), "/"),
			Timeout:    v.GetDuration("api.timeout"),
			MaxRetries: v.GetInt("api.max_retries"),
		},
		Session: SessionSettings{Path: ExpandPath(v.GetString("session.path"))},
		Cache: CacheSettings{
			Backend:   strings.ToLower(v.GetString("cache.backend")),
			RedisAddr: v.GetString("cache.redis_addr"),
			TTL:       v.GetDuration("cache.ttl"),
		},
		Listing: ListingSettings{
			PageSize: v.GetInt("listing.page_size"),
			Debounce: v.GetDuration("listing.debounce"),
		},
		TUI: TUISettings{Theme: strings.ToLower(v.GetString("tui.theme"))},
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate reports every invalid setting.
func (s Settings) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{common.ErrInvalidConfig}, args...)...))
	}

	if u, err := url.Parse(s.API.BaseURL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		invalid("api.base_url %q must be an absolute http(s) URL", s.API.BaseURL)
	}
	if s.API.Timeout <= 0 {
		invalid("api.timeout must be positive")
	}
	if s.API.MaxRetries < 0 {
		invalid("api.max_retries cannot be negative")
	}
	if s.Session.Path == "" {
		invalid("session.path is required")
	}

	switch s.Cache.Backend {
	case CacheSQLite, CacheMemory, CacheNone:
	case CacheRedis:
		if s.Cache.RedisAddr == "" {
			invalid("cache.redis_addr is required for the redis backend")
		}
	default:
		invalid("unknown cache.backend %q", s.Cache.Backend)
	}
	if s.Cache.TTL < 0 {
		invalid("cache.ttl cannot be negative")
	}

	if s.Listing.PageSize <= 0 {
		invalid("listing.page_size must be positive")
	}
	if s.Listing.Debounce < 0 {
		invalid("listing.debounce cannot be negative")
	}

	switch s.TUI.Theme {
	case ThemeDefault, ThemeCatppuccin:
	default:
		invalid("unknown tui.theme %q", s.TUI.Theme)
	}

	return errors.Join(errs...)
}
