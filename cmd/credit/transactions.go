package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/mahmoud-slama/creditapp/internal/cart"
	"github.com/mahmoud-slama/creditapp/internal/cli"
	"github.com/mahmoud-slama/creditapp/internal/common"
	"github.com/mahmoud-slama/creditapp/internal/model"
	"github.com/mahmoud-slama/creditapp/internal/views"
	"github.com/spf13/cobra"
)

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"tx"},
		Short:   "List purchases and create new ones",
	}

	cmd.AddCommand(transactionsListCmd())
	cmd.AddCommand(transactionsHistoryCmd())
	cmd.AddCommand(transactionsCreateCmd())

	return cmd
}

func transactionsListCmd() *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every purchase (admin)",
		Long: `List every purchase with the buyer's name.

The search matches product, amount, quantity and buyer. Use --amount and
--date to narrow the list.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filters, err := flags.filters()
			if err != nil {
				return common.NewUserError(err.Error(), common.ErrInvalidInput)
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if _, err := a.requireAdmin(); err != nil {
					return err
				}
				purchases, err := load(cmd, ctx, a.purchases.All)
				if err != nil {
					return fmt.Errorf("failed to load transactions: %w", err)
				}
				names := views.Names(a.clientNames(ctx))

				out(cmd, "%s", cli.FormatTitle(cli.CartIcon, "Transactions"))
				return renderListing(cmd, views.Purchases(names), flags.request(a.settings.Listing.PageSize), filters, filters.Purchases(), purchases, purchaseColumns(names))
			})
		},
	}

	addListFlags(cmd, &flags, views.Purchases(nil).Sort.Names(), amountFilter|dateFilter)
	return cmd
}

func purchaseColumns(names views.Names) []column[model.Purchase] {
	cols := []column[model.Purchase]{
		{title: "Date", value: func(p model.Purchase) string { return formatDate(p) }},
		{title: "Product", searchable: true, value: model.Purchase.DisplayName},
		{title: "Qty", right: true, value: func(p model.Purchase) string { return strconv.Itoa(p.Quantity) }},
		{title: "Amount", right: true, value: func(p model.Purchase) string { return cli.FormatMoney(p.Amount) }},
	}
	if names != nil {
		cols = append(cols, column[model.Purchase]{title: "Client", searchable: true, value: func(p model.Purchase) string { return names.Resolve(p.UserID) }})
	}
	return cols
}

func formatDate(p model.Purchase) string {
	d := p.Date()
	if d.IsZero() {
		return "-"
	}
	return d.Local().Format("2006-01-02 15:04")
}

func transactionsHistoryCmd() *cobra.Command {
	var flags listFlags
	var clientID int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List your purchases",
		Long: `List the purchases of the signed-in client.

The search matches the product name. Use --date to narrow the list.
Admins can pass --client to read another client's history.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filters, err := flags.filters()
			if err != nil {
				return common.NewUserError(err.Error(), common.ErrInvalidInput)
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				id, err := a.historyOwner(clientID)
				if err != nil {
					return err
				}
				purchases, err := load(cmd, ctx, a.purchases.ForClient(id))
				if err != nil {
					return fmt.Errorf("failed to load purchase history: %w", err)
				}

				out(cmd, "%s", cli.FormatTitle(cli.CartIcon, "Purchase history"))
				return renderListing(cmd, views.History(), flags.request(a.settings.Listing.PageSize), filters, filters.History(), purchases, purchaseColumns(nil))
			})
		},
	}

	addListFlags(cmd, &flags, views.History().Sort.Names(), dateFilter)
	cmd.Flags().IntVar(&clientID, "client", 0, "client id (admin only)")
	return cmd
}

// historyOwner picks whose history to read: the signed-in user, or any client for admins.
func (a *app) historyOwner(clientID int) (int, error) {
	s, err := a.requireSession()
	if err != nil {
		return 0, err
	}
	if clientID == 0 || clientID == s.UserID {
		return s.UserID, nil
	}
	if !s.IsAdmin() {
		return 0, common.NewUserError("only admins can read another client's purchases", common.ErrUnauthorized)
	}
	return clientID, nil
}

func transactionsCreateCmd() *cobra.Command {
	var (
		items       []string
		clientID    int
		stopOnError bool
		yes         bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Buy one or more products on credit",
		Long: `Stage products in a cart and submit them as purchases.

Items are given as name=quantity, for example --item "Coffee=2". Without
--item the cart is filled interactively. Names are matched against the
catalog first; unknown names are priced by the backend.

Items are submitted one at a time. A failed item does not stop the rest
unless --stop-on-error is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				buyer, err := a.historyOwner(clientID)
				if err != nil {
					return err
				}
				catalog, err := load(cmd, ctx, a.products.Collection)
				if err != nil {
					return fmt.Errorf("failed to load products: %w", err)
				}

				c := cart.New(cart.CatalogResolver{Catalog: catalog, Fallback: a.api})
				prompter := cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())

				if len(items) == 0 {
					if err := prompter.FillCart(ctx, c); err != nil {
						return err
					}
				}
				for _, raw := range items {
					name, qty, err := cli.ParseItem(raw)
					if err != nil {
						return common.NewUserError(fmt.Sprintf("invalid item %q: %s", raw, common.UserMessage(err)), err)
					}
					if _, err := c.Add(ctx, name, qty); err != nil {
						return common.NewUserError(fmt.Sprintf("cannot add %q: %s", name, common.UserMessage(err)), err)
					}
				}
				if c.Len() == 0 {
					info(cmd, "Cart is empty, nothing to submit.")
					return nil
				}

				out(cmd, "%s", cli.RenderCart(c))
				if !yes {
					ok, err := prompter.Confirm(ctx, fmt.Sprintf("Submit %d item(s) for %s?", c.Len(), c.TotalString()))
					if err != nil {
						return err
					}
					if !ok {
						info(cmd, "Nothing submitted.")
						return nil
					}
				}

				return submitCart(cmd, ctx, a, c, buyer, stopOnError)
			})
		},
	}

	cmd.Flags().StringArrayVarP(&items, "item", "i", nil, "item as name=quantity (repeatable)")
	cmd.Flags().IntVar(&clientID, "client", 0, "buy on behalf of this client (admin only)")
	cmd.Flags().BoolVar(&stopOnError, "stop-on-error", false, "skip the remaining items after a failure")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	return cmd
}

func submitCart(cmd *cobra.Command, ctx context.Context, a *app, c *cart.Cart, buyer int, stopOnError bool) error {
	handler := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Items not yet sent were skipped.")
	ctx, stop := handler.HandleInterrupts(ctx)
	defer stop()

	reporter := cli.NewSubmitReporter(cmd.ErrOrStderr(), c.Len())
	res, err := cart.Submit(ctx, c, buyer, a.api, cart.SubmitOptions{
		Progress:    reporter.Progress,
		StopOnError: stopOnError,
	})
	reporter.Finish()
	if err != nil {
		return err
	}

	out(cmd, "%s", cli.RenderBatch(res))
	common.LogInfo("Cart submitted", common.Fields{
		"user_id":   buyer,
		"succeeded": len(res.Succeeded()),
		"failed":    len(res.Failed()),
		"skipped":   len(res.Skipped()),
	})
	if len(res.Succeeded()) > 0 {
		if err := a.purchases.Invalidate(ctx); err != nil && !errors.Is(err, context.Canceled) {
			warn(cmd, "Purchases were created but the history could not be refreshed: %s", common.UserMessage(err))
		}
	}

	if res.OK() {
		success(cmd, "%d purchase(s) created", len(res.Results))
		return nil
	}
	if handler.WasInterrupted() {
		return common.NewUserError(fmt.Sprintf("interrupted: %d of %d purchase(s) created", len(res.Succeeded()), len(res.Results)), context.Canceled)
	}
	return common.NewUserError(fmt.Sprintf("%d of %d purchase(s) failed", len(res.Failed())+len(res.Skipped()), len(res.Results)), res.Err())
}
