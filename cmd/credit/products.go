package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mahmoud-slama/creditapp/internal/cli"
	"github.com/mahmoud-slama/creditapp/internal/common"
	"github.com/mahmoud-slama/creditapp/internal/model"
	"github.com/mahmoud-slama/creditapp/internal/views"
	"github.com/spf13/cobra"
)

func productsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Browse and manage the product catalog",
		Long: `Browse the product catalog.

Admins can also add, edit and delete products and adjust stock one unit at a time.`,
	}

	cmd.AddCommand(productsListCmd())
	cmd.AddCommand(productsShowCmd())
	cmd.AddCommand(productsAddCmd())
	cmd.AddCommand(productsEditCmd())
	cmd.AddCommand(productsAdjustCmd("inc", "Add one unit of stock", 1))
	cmd.AddCommand(productsAdjustCmd("dec", "Remove one unit of stock", -1))
	cmd.AddCommand(productsDeleteCmd())

	return cmd
}

func productsListCmd() *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products",
		Long: `List the catalog.

The search matches name, id and price. --price keeps one bracket:
low is under 50, medium from 50 to 200 and high from 200.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filters, err := flags.filters()
			if err != nil {
				return common.NewUserError(err.Error(), common.ErrInvalidInput)
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if _, err := a.requireSession(); err != nil {
					return err
				}
				products, err := load(cmd, ctx, a.products.Collection)
				if err != nil {
					return fmt.Errorf("failed to load products: %w", err)
				}

				out(cmd, "%s", cli.FormatTitle("📦", "Products"))
				return renderListing(cmd, views.Products(), flags.request(a.settings.Listing.PageSize), filters, filters.Products(), products, productColumns())
			})
		},
	}

	addListFlags(cmd, &flags, views.Products().Sort.Names(), priceFilter)
	return cmd
}

func productColumns() []column[model.Product] {
	return []column[model.Product]{
		{title: "ID", right: true, searchable: true, value: func(p model.Product) string { return strconv.Itoa(p.ID) }},
		{title: "Name", searchable: true, value: func(p model.Product) string { return p.Name }},
		{title: "Ref", value: func(p model.Product) string { return p.Ref }},
		{title: "Price", right: true, searchable: true, value: func(p model.Product) string { return cli.FormatMoney(p.Price) }},
		{title: "Stock", right: true, value: func(p model.Product) string {
			if p.Quantity == 0 {
				return cli.ErrorStyle.Render("out")
			}
			return strconv.Itoa(p.Quantity)
		}},
	}
}

func productsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if _, err := a.requireSession(); err != nil {
					return err
				}
				p, err := a.api.GetProduct(ctx, id)
				if err != nil {
					return err
				}
				out(cmd, "%s", renderProduct(*p))
				return nil
			})
		},
	}
}

func renderProduct(p model.Product) string {
	lines := []string{
		fmt.Sprintf("Ref:    %s", p.Ref),
		fmt.Sprintf("Price:  %s", cli.FormatMoney(p.Price)),
		fmt.Sprintf("Stock:  %d", p.Quantity),
		fmt.Sprintf("Image:  %s", p.Images),
	}
	return cli.RenderBox(fmt.Sprintf("%s #%d", p.Name, p.ID), strings.Join(lines, "\n"))
}

// productFlags binds the product form to flags.
func productFlags(cmd *cobra.Command, p *model.Product) {
	cmd.Flags().StringVar(&p.Name, "name", "", "product name")
	cmd.Flags().StringVar(&p.Ref, "ref", "", "product reference")
	cmd.Flags().StringVar(&p.Images, "image", "", "image URL")
	cmd.Flags().Float64Var(&p.Price, "price", 0, "unit price")
	cmd.Flags().IntVar(&p.Quantity, "quantity", 0, "stock level")
}

func invalidProduct(err error) error {
	return common.NewUserError("invalid product:\n"+err.Error(), common.ErrInvalidInput)
}

func productsAddCmd() *cobra.Command {
	var p model.Product

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := p.Validate(); err != nil {
				return invalidProduct(err)
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if _, err := a.requireAdmin(); err != nil {
					return err
				}
				if err := a.products.Create(ctx, p); err != nil {
					return fmt.Errorf("failed to create product: %w", err)
				}
				success(cmd, "Product %q added", p.Name)
				return nil
			})
		},
	}

	productFlags(cmd, &p)
	return cmd
}

func productsEditCmd() *cobra.Command {
	var changes model.Product

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a product",
		Long:  `Edit a product. Only the flags given are changed.`,
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
				current, err := a.api.GetProduct(ctx, id)
				if err != nil {
					return err
				}

				p := *current
				flags := cmd.Flags()
				if flags.Changed("name") {
					p.Name = changes.Name
				}
				if flags.Changed("ref") {
					p.Ref = changes.Ref
				}
				if flags.Changed("image") {
					p.Images = changes.Images
				}
				if flags.Changed("price") {
					p.Price = changes.Price
				}
				if flags.Changed("quantity") {
					p.Quantity = changes.Quantity
				}
				if p == *current {
					info(cmd, "Nothing to change.")
					return nil
				}
				if err := p.Validate(); err != nil {
					return invalidProduct(err)
				}

				if err := a.products.Update(ctx, p); err != nil {
					return fmt.Errorf("failed to update product %d: %w", id, err)
				}
				success(cmd, "Product %d updated", id)
				out(cmd, "%s", renderProduct(p))
				return nil
			})
		},
	}

	productFlags(cmd, &changes)
	return cmd
}

func productsAdjustCmd(use, short string, delta int) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
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
				if _, err := load(cmd, ctx, a.products.Collection); err != nil {
					return fmt.Errorf("failed to load products: %w", err)
				}

				var p model.Product
				if delta > 0 {
					p, err = a.products.Increment(ctx, id)
				} else {
					p, err = a.products.Decrement(ctx, id)
				}
				if err != nil {
					return err
				}
				success(cmd, "%s: %d in stock", p.Name, p.Quantity)
				return nil
			})
		},
	}
}

func productsDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product",
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
					ok, err := cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout()).Confirm(ctx, fmt.Sprintf("Delete product %d?", id))
					if err != nil {
						return err
					}
					if !ok {
						info(cmd, "Nothing deleted.")
						return nil
					}
				}
				if err := a.products.Delete(ctx, id); err != nil {
					return fmt.Errorf("failed to delete product %d: %w", id, err)
				}
				success(cmd, "Product %d deleted", id)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
