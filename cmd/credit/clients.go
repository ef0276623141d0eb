package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mahmoud-slama/creditapp/internal/cli"
	"github.com/mahmoud-slama/creditapp/internal/common"
	"github.com/mahmoud-slama/creditapp/internal/credit"
	"github.com/mahmoud-slama/creditapp/internal/model"
	"github.com/mahmoud-slama/creditapp/internal/views"
	"github.com/spf13/cobra"
)

func clientsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "Manage client accounts (admin)",
		Long:  `List client accounts, inspect their credit usage, change limits and delete accounts.`,
	}

	cmd.AddCommand(clientsListCmd())
	cmd.AddCommand(clientsShowCmd())
	cmd.AddCommand(clientsDeleteCmd())
	cmd.AddCommand(clientsLimitCmd())

	return cmd
}

func clientsListCmd() *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List client accounts",
		Long: `List client accounts with their balance and credit limit.

The search matches name, email and id. Accounts over their limit are flagged.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if _, err := a.requireAdmin(); err != nil {
					return err
				}
				clients, err := load(cmd, ctx, a.clients.Collection)
				if err != nil {
					return fmt.Errorf("failed to load clients: %w", err)
				}

				out(cmd, "%s", cli.FormatTitle("👥", "Clients"))
				return renderListing(cmd, views.Clients(), flags.request(a.settings.Listing.PageSize), views.Filters{}, nil, clients, clientColumns())
			})
		},
	}

	addListFlags(cmd, &flags, views.Clients().Sort.Names(), 0)
	return cmd
}

func clientColumns() []column[model.Client] {
	return []column[model.Client]{
		{title: "ID", right: true, searchable: true, value: func(c model.Client) string { return strconv.Itoa(c.ID) }},
		{title: "Name", searchable: true, value: model.Client.FullName},
		{title: "Email", searchable: true, value: func(c model.Client) string { return c.Email }},
		{title: "Balance", right: true, value: func(c model.Client) string { return cli.FormatMoney(c.Montant) }},
		{title: "Limit", right: true, value: func(c model.Client) string { return cli.FormatMoney(c.MaxAmount) }},
		{title: "Usage", right: true, value: func(c model.Client) string {
			p := credit.Compute(c.Montant, c.MaxAmount)
			label := fmt.Sprintf("%.0f%%", p.Percent)
			if p.OverLimit {
				label = cli.WarningIcon + " " + label
			}
			return cli.TierStyle(p.Tier).Render(label)
		}},
	}
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || id <= 0 {
		return 0, common.NewUserError(fmt.Sprintf("invalid id %q", arg), common.ErrInvalidInput)
	}
	return id, nil
}

func clientsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one client and their credit usage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if _, err := a.requireAdmin(); err != nil {
					return err
				}
				c, err := a.api.GetClient(ctx, id)
				if err != nil {
					return err
				}
				out(cmd, "%s", renderClient(*c))
				return nil
			})
		},
	}
}

func renderClient(c model.Client) string {
	p := credit.Compute(c.Montant, c.MaxAmount)
	lines := []string{
		fmt.Sprintf("Email:     %s", c.Email),
		fmt.Sprintf("Phone:     %s", c.Phone),
		fmt.Sprintf("Role:      %s", c.Role),
		fmt.Sprintf("Balance:   %s", cli.FormatMoney(c.Montant)),
		fmt.Sprintf("Limit:     %s", cli.FormatMoney(c.MaxAmount)),
		fmt.Sprintf("Available: %s", cli.FormatMoney(p.Available())),
		"",
		cli.CreditBar(p, 30) + " " + cli.TierStyle(p.Tier).Render(p.String()),
	}
	if p.OverLimit {
		lines = append(lines, cli.FormatWarning("over the credit limit"))
	}
	title := fmt.Sprintf("%s (%s) #%d", c.FullName(), c.Initials(), c.ID)
	return cli.RenderBox(title, strings.Join(lines, "\n"))
}

func clientsDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a client account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if _, err := a.requireAdmin(); err != nil {
					return err
				}
				if !yes {
					ok, err := cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout()).Confirm(ctx, fmt.Sprintf("Delete client %d?", id))
					if err != nil {
						return err
					}
					if !ok {
						info(cmd, "Nothing deleted.")
						return nil
					}
				}
				if err := a.clients.Delete(ctx, id); err != nil {
					return fmt.Errorf("failed to delete client %d: %w", id, err)
				}
				success(cmd, "Client %d deleted", id)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func clientsLimitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "limit <id> <amount>",
		Short: "Change a client's credit limit",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			amount, err := parseLimit(args[1])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if _, err := a.requireAdmin(); err != nil {
					return err
				}
				if err := a.clients.SetLimit(ctx, id, amount); err != nil {
					return fmt.Errorf("failed to update limit of client %d: %w", id, err)
				}
				success(cmd, "Credit limit of client %d set to %s", id, cli.FormatMoney(amount))
				if c, ok := a.clients.Get(id); ok && c.OverLimit() {
					warn(cmd, "%s is over the new limit (balance %s)", c.FullName(), cli.FormatMoney(c.Montant))
				}
				return nil
			})
		},
	}
}

func parseLimit(arg string) (float64, error) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(arg), 64)
	if err == nil {
		err = credit.ValidateLimit(amount)
	}
	if err != nil {
		return 0, common.NewUserError(fmt.Sprintf("invalid limit %q: the limit must be a number greater than zero", arg), common.ErrInvalidInput)
	}
	return amount, nil
}
