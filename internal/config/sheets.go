package config

import (
	"os"

	"github.com/mahmoud-slama/creditapp/internal/sheets"
	"github.com/spf13/viper"
)

// DefaultSheetsTokenFile holds the token saved by the consent flow.
const DefaultSheetsTokenFile = "~/.config/credit/sheets-token.json"

// SheetsTokenFile returns the expanded path of the saved Sheets token.
func SheetsTokenFile(v *viper.Viper) string {
	if p := v.GetString("sheets.token_file"); p != "" {
		return ExpandPath(p)
	}
	return ExpandPath(DefaultSheetsTokenFile)
}

// LoadSheetsConfig loads the Google Sheets export configuration.
// Precedence: viper (config file or CREDIT_ env), then GOOGLE_SHEETS_* variables,
// then the refresh token saved by `credit auth sheets`, then defaults.
func LoadSheetsConfig(v *viper.Viper) (*sheets.Config, error) {
	config := sheets.DefaultConfig()

	config.ServiceAccountPath = ExpandPath(v.GetString("sheets.service_account_path"))
	config.ClientID = v.GetString("sheets.client_id")
	config.ClientSecret = v.GetString("sheets.client_secret")
	config.RefreshToken = v.GetString("sheets.refresh_token")
	config.SpreadsheetID = v.GetString("sheets.spreadsheet_id")
	if name := v.GetString("sheets.spreadsheet_name"); name != "" {
		config.SpreadsheetName = name
	}
	if v.IsSet("sheets.batch_size") {
		config.BatchSize = v.GetInt("sheets.batch_size")
	}

	fromEnv := func(dst *string, key string) {
		if *dst == "" {
			*dst = os.Getenv(key)
		}
	}
	if config.ServiceAccountPath == "" {
		config.ServiceAccountPath = ExpandPath(os.Getenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"))
	}
	fromEnv(&config.ClientID, "GOOGLE_SHEETS_CLIENT_ID")
	fromEnv(&config.ClientSecret, "GOOGLE_SHEETS_CLIENT_SECRET")
	fromEnv(&config.RefreshToken, "GOOGLE_SHEETS_REFRESH_TOKEN")
	fromEnv(&config.SpreadsheetID, "GOOGLE_SHEETS_SPREADSHEET_ID")
	if config.SpreadsheetName == sheets.DefaultSpreadsheetName {
		if name := os.Getenv("GOOGLE_SHEETS_SPREADSHEET_NAME"); name != "" {
			config.SpreadsheetName = name
		}
	}

	if config.RefreshToken == "" && config.ServiceAccountPath == "" && config.ClientID != "" {
		if token, err := sheets.LoadToken(SheetsTokenFile(v)); err == nil {
			config.RefreshToken = token.RefreshToken
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}
