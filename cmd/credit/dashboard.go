package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/mahmoud-slama/creditapp/internal/cli"
	"github.com/mahmoud-slama/creditapp/internal/credit"
	"github.com/mahmoud-slama/creditapp/internal/model"
	"github.com/mahmoud-slama/creditapp/internal/session"
	"github.com/mahmoud-slama/creditapp/internal/views"
	"github.com/spf13/cobra"
)

func dashboardCmd() *cobra.Command {
	var admin bool

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show your credit usage and recent purchases",
		Long: `Show the credit gauge of the signed-in client and their latest purchases.

With --admin, show the store-wide figures instead: clients, products,
transactions, revenue and accounts over their limit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if admin {
					if _, err := a.requireAdmin(); err != nil {
						return err
					}
					return adminDashboard(cmd, ctx, a)
				}
				s, err := a.requireSession()
				if err != nil {
					return err
				}
				return clientDashboard(cmd, ctx, a, s)
			})
		},
	}

	cmd.Flags().BoolVar(&admin, "admin", false, "show the store-wide summary (admin)")
	return cmd
}

func clientDashboard(cmd *cobra.Command, ctx context.Context, a *app, s session.Session) error {
	progress, err := a.api.CreditSnapshot(ctx, s.UserID)
	if isFatal(err) {
		return err
	}
	if err != nil {
		slog.Debug("Credit snapshot unavailable, using the session", "error", err)
		warn(cmd, "Backend unavailable (%s), showing the last known balance", err)
		progress = credit.Compute(s.Balance, s.MaxAmount)
	} else if err := a.sessions.Update(ctx, func(cur *session.Session) {
		cur.Balance = progress.Current
		cur.MaxAmount = progress.Max
	}); err != nil {
		slog.Debug("Failed to save the credit snapshot", "error", err)
	}

	lines := []string{
		fmt.Sprintf("Balance:   %s", cli.FormatMoney(progress.Current)),
		fmt.Sprintf("Limit:     %s", cli.FormatMoney(progress.Max)),
		fmt.Sprintf("Available: %s", cli.FormatMoney(progress.Available())),
		"",
		cli.CreditBar(progress, 30) + " " + cli.TierStyle(progress.Tier).Render(progress.String()),
	}
	if progress.OverLimit {
		lines = append(lines, cli.FormatWarning("You are over your credit limit"))
	}
	out(cmd, "%s", cli.RenderBox(cli.CardIcon+" Credit of "+s.FirstName, strings.Join(lines, "\n")))

	history, err := load(cmd, ctx, a.purchases.ForClient(s.UserID))
	if err != nil {
		if isFatal(err) {
			return err
		}
		warn(cmd, "Recent purchases unavailable: %s", err)
		return nil
	}
	out(cmd, "")
	out(cmd, "%s", renderRecent(credit.Recent(history, credit.RecentCount), nil))
	return nil
}

func adminDashboard(cmd *cobra.Command, ctx context.Context, a *app) error {
	clients, err := load(cmd, ctx, a.clients.Collection)
	if err != nil {
		return fmt.Errorf("failed to load clients: %w", err)
	}
	products, err := load(cmd, ctx, a.products.Collection)
	if err != nil {
		return fmt.Errorf("failed to load products: %w", err)
	}
	purchases, err := load(cmd, ctx, a.purchases.All)
	if err != nil {
		return fmt.Errorf("failed to load transactions: %w", err)
	}

	sum := credit.Summarize(clients, products, purchases)
	lines := []string{
		fmt.Sprintf("Clients:       %d", sum.Clients),
		fmt.Sprintf("Products:      %d", sum.Products),
		fmt.Sprintf("Transactions:  %d", sum.Purchases),
		fmt.Sprintf("Revenue:       %s", sum.Revenue.StringFixed(2)),
	}
	if sum.OverLimit > 0 {
		lines = append(lines, cli.FormatWarning(fmt.Sprintf("%d clients over their limit", sum.OverLimit)))
	}
	out(cmd, "%s", cli.RenderBox(cli.ChartIcon+" Store summary", strings.Join(lines, "\n")))
	out(cmd, "")
	out(cmd, "%s", renderRecent(sum.Recent, views.Names(a.clients.NameOf)))
	return nil
}

func renderRecent(recent []model.Purchase, names views.Names) string {
	title := cli.FormatTitle(cli.CartIcon, "Recent purchases")
	if len(recent) == 0 {
		return title + "\n" + cli.SubtleStyle.Render("No purchases yet.")
	}
	headers := []string{"Date", "Product", "Qty", "Amount"}
	if names != nil {
		headers = append(headers, "Client")
	}
	t := cli.NewTable(headers...).AlignRight(2, 3)
	for _, p := range recent {
		row := []string{formatDate(p), p.DisplayName(), strconv.Itoa(p.Quantity), cli.FormatMoney(p.Amount)}
		if names != nil {
			row = append(row, names.Resolve(p.UserID))
		}
		t.Add(row...)
	}
	return title + "\n" + t.Render()
}
