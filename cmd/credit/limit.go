package main

import (
	"context"
	"fmt"

	"github.com/mahmoud-slama/creditapp/internal/cli"
	"github.com/mahmoud-slama/creditapp/internal/credit"
	"github.com/mahmoud-slama/creditapp/internal/session"
	"github.com/spf13/cobra"
)

func limitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "limit",
		Short: "Show or change your own credit limit",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show your credit limit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				s, err := a.requireSession()
				if err != nil {
					return err
				}
				limit, err := a.api.GetMaxAmount(ctx, s.UserID)
				if err != nil {
					return err
				}
				out(cmd, "Credit limit: %s", cli.FormatMoney(limit))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <amount>",
		Short: "Change your credit limit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseLimit(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				s, err := a.requireSession()
				if err != nil {
					return err
				}
				if err := a.api.UpdateMaxAmount(ctx, s.UserID, amount); err != nil {
					return fmt.Errorf("failed to update credit limit: %w", err)
				}
				if err := a.sessions.Update(ctx, func(cur *session.Session) { cur.MaxAmount = amount }); err != nil {
					warn(cmd, "Limit updated but the local session could not be saved: %s", err)
				}

				success(cmd, "Credit limit set to %s", cli.FormatMoney(amount))
				p := credit.Compute(s.Balance, amount)
				out(cmd, "%s %s", cli.CreditBar(p, 30), cli.TierStyle(p.Tier).Render(p.String()))
				if p.OverLimit {
					warn(cmd, "Your balance %s is over the new limit", cli.FormatMoney(s.Balance))
				}
				return nil
			})
		},
	})

	return cmd
}
