package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/mahmoud-slama/creditapp/internal/tui"
	"github.com/mahmoud-slama/creditapp/internal/tui/themes"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func browseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "browse",
		Aliases: []string{"tui"},
		Short:   "Open the interactive console",
		Long: `Open the full-screen console.

Clients see their dashboard, the catalog and their history. Admins also get
the client and transaction lists. Sign in from the console if no session is
saved.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if theme, _ := cmd.Flags().GetString("theme"); theme != "" {
				viper.Set("tui.theme", theme)
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				// The console owns the terminal; logs would corrupt the screen.
				logger := slog.New(slog.NewTextHandler(io.Discard, nil))
				if viper.GetString("logging.level") == "debug" {
					logger = slog.Default()
				}

				return tui.Run(ctx,
					tui.WithBackend(a.api),
					tui.WithSession(a.sessions),
					tui.WithStores(a.clients, a.products, a.purchases),
					tui.WithTheme(themes.GetTheme(a.settings.TUI.Theme)),
					tui.WithListing(a.settings.Listing.PageSize, a.settings.Listing.Debounce),
					tui.WithLogger(logger),
				)
			})
		},
	}

	cmd.Flags().String("theme", "", "color theme (default, catppuccin)")
	return cmd
}
