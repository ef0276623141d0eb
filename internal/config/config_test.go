package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mahmoud-slama/creditapp/internal/common"
	"github.com/mahmoud-slama/creditapp/internal/sheets"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("CREDIT_TEST_DIR", "/srv/credit")

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"~", home},
		{"~/data/credit.db", filepath.Join(home, "data/credit.db")},
		{"$CREDIT_TEST_DIR/credit.db", "/srv/credit/credit.db"},
		{"/abs/path", "/abs/path"},
		{"~other/x", "~other/x"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	s, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8882", s.API.BaseURL)
	assert.Equal(t, 10*time.Second, s.API.Timeout)
	assert.Equal(t, 3, s.API.MaxRetries)
	assert.Equal(t, CacheSQLite, s.Cache.Backend)
	assert.Equal(t, 5*time.Minute, s.Cache.TTL)
	assert.Equal(t, 10, s.Listing.PageSize)
	assert.Equal(t, 300*time.Millisecond, s.Listing.Debounce)
	assert.Equal(t, ThemeDefault, s.TUI.Theme)
	assert.True(t, filepath.IsAbs(s.Session.Path))
}

func TestLoadOverrides(t *testing.T) {
	v := viper.New()
	v.Set("api.base_url", "https://credit.example.com/")
	v.Set("api.timeout", "3s")
	v.Set("cache.backend", "REDIS")
	v.Set("listing.page_size", 25)
	v.Set("tui.theme", "catppuccin")

	s, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "https://credit.example.com", s.API.BaseURL)
	assert.Equal(t, 3*time.Second, s.API.Timeout)
	assert.Equal(t, CacheRedis, s.Cache.Backend)
	assert.Equal(t, 25, s.Listing.PageSize)
	assert.Equal(t, ThemeCatppuccin, s.TUI.Theme)
}

func TestValidate(t *testing.T) {
	valid := func() Settings {
		s, err := Load(viper.New())
		require.NoError(t, err)
		return s
	}

	tests := []struct {
		name   string
		mutate func(*Settings)
		msg    string
	}{
		{"relative url", func(s *Settings) { s.API.BaseURL = "localhost:8882" }, "api.base_url"},
		{"ftp url", func(s *Settings) { s.API.BaseURL = "ftp://host" }, "api.base_url"},
		{"zero timeout", func(s *Settings) { s.API.Timeout = 0 }, "api.timeout"},
		{"negative retries", func(s *Settings) { s.API.MaxRetries = -1 }, "api.max_retries"},
		{"unknown cache", func(s *Settings) { s.Cache.Backend = "memcached" }, "cache.backend"},
		{"redis without addr", func(s *Settings) { s.Cache.Backend = CacheRedis; s.Cache.RedisAddr = "" }, "cache.redis_addr"},
		{"zero page size", func(s *Settings) { s.Listing.PageSize = 0 }, "listing.page_size"},
		{"unknown theme", func(s *Settings) { s.TUI.Theme = "neon" }, "tui.theme"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(&s)
			err := s.Validate()
			require.ErrorIs(t, err, common.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	s := Settings{}
	err := s.Validate()
	require.Error(t, err)
	for _, key := range []string{"api.base_url", "api.timeout", "session.path", "cache.backend", "listing.page_size", "tui.theme"} {
		assert.Contains(t, err.Error(), key)
	}
}

func clearSheetsEnv(t *testing.T) {
	for _, key := range []string{
		"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "GOOGLE_SHEETS_CLIENT_ID", "GOOGLE_SHEETS_CLIENT_SECRET",
		"GOOGLE_SHEETS_REFRESH_TOKEN", "GOOGLE_SHEETS_SPREADSHEET_ID", "GOOGLE_SHEETS_SPREADSHEET_NAME",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadSheetsConfig(t *testing.T) {
	t.Run("viper values", func(t *testing.T) {
		clearSheetsEnv(t)
		v := viper.New()
		v.Set("sheets.service_account_path", "/etc/sa.json")
		v.Set("sheets.spreadsheet_id", "sheet-1")
		v.Set("sheets.batch_size", 50)

		cfg, err := LoadSheetsConfig(v)
		require.NoError(t, err)
		assert.Equal(t, "/etc/sa.json", cfg.ServiceAccountPath)
		assert.Equal(t, "sheet-1", cfg.SpreadsheetID)
		assert.Equal(t, 50, cfg.BatchSize)
		assert.Equal(t, sheets.DefaultSpreadsheetName, cfg.SpreadsheetName)
	})

	t.Run("environment fallback", func(t *testing.T) {
		clearSheetsEnv(t)
		t.Setenv("GOOGLE_SHEETS_CLIENT_ID", "id")
		t.Setenv("GOOGLE_SHEETS_CLIENT_SECRET", "secret")
		t.Setenv("GOOGLE_SHEETS_REFRESH_TOKEN", "refresh")
		t.Setenv("GOOGLE_SHEETS_SPREADSHEET_NAME", "Ledger")

		cfg, err := LoadSheetsConfig(viper.New())
		require.NoError(t, err)
		assert.True(t, cfg.HasOAuth())
		assert.Equal(t, "Ledger", cfg.SpreadsheetName)
	})

	t.Run("saved token", func(t *testing.T) {
		clearSheetsEnv(t)
		tokenFile := filepath.Join(t.TempDir(), "token.json")
		require.NoError(t, sheets.SaveToken(tokenFile, &oauth2.Token{RefreshToken: "saved"}))

		v := viper.New()
		v.Set("sheets.client_id", "id")
		v.Set("sheets.client_secret", "secret")
		v.Set("sheets.token_file", tokenFile)

		cfg, err := LoadSheetsConfig(v)
		require.NoError(t, err)
		assert.Equal(t, "saved", cfg.RefreshToken)
	})

	t.Run("not configured", func(t *testing.T) {
		clearSheetsEnv(t)
		_, err := LoadSheetsConfig(viper.New())
		assert.ErrorIs(t, err, common.ErrMissingConfig)
	})
}
