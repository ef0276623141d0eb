package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local listing cache",
		Long: `Listings are kept in the local database so they show instantly and survive
a backend outage. These commands maintain that cache.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Remove expired entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				n, err := a.db.PurgeExpired(ctx)
				if err != nil {
					return fmt.Errorf("failed to purge cache: %w", err)
				}
				success(cmd, "Removed %d expired entries from %s", n, a.db.Path())
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached listing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.db.ClearSnapshots(ctx); err != nil {
					return fmt.Errorf("failed to clear cache: %w", err)
				}
				if s, ok := a.sessions.Current(); ok {
					a.resetStores(ctx, s.UserID)
				}
				success(cmd, "Cache cleared")
				return nil
			})
		},
	})

	return cmd
}
