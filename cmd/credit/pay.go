package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mahmoud-slama/creditapp/internal/cli"
	"github.com/mahmoud-slama/creditapp/internal/common"
	"github.com/mahmoud-slama/creditapp/internal/payment"
	"github.com/spf13/cobra"
)

func payCmd() *cobra.Command {
	var (
		d       payment.Details
		delay   time.Duration
		noInput bool
	)

	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Pay for a product by card",
		Long: `Pay for a product by card.

The payment is validated and processed locally; no card data is sent to the
backend. Missing fields are prompted for unless --no-input is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			if !noInput {
				var err error
				prompter := cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
				out(cmd, "%s", cli.FormatTitle(cli.CardIcon, "Card payment"))
				if d, err = prompter.PromptPayment(ctx, d); err != nil {
					if errors.Is(err, cli.ErrAborted) {
						info(cmd, "Payment cancelled.")
						return nil
					}
					return err
				}
			}

			d = d.Normalize()
			if err := d.Validate(); err != nil {
				return common.NewUserError("invalid payment:\n"+err.Error(), common.ErrInvalidInput)
			}

			handler := cli.NewInterruptHandler(cmd.ErrOrStderr(), "No payment was made.")
			ctx, stop := handler.HandleInterrupts(ctx)
			defer stop()

			processor := payment.NewProcessor()
			processor.Delay = delay
			info(cmd, "Processing payment of %s for %s...", d.Amount, d.ProductName)
			receipt, err := processor.Process(ctx, d)
			if err != nil {
				if handler.WasInterrupted() {
					return common.NewUserError("payment interrupted", err)
				}
				return fmt.Errorf("payment failed: %w", err)
			}

			lines := []string{
				fmt.Sprintf("Product:    %s", receipt.ProductName),
				fmt.Sprintf("Amount:     %s", receipt.Amount.StringFixed(2)),
				fmt.Sprintf("Card:       •••• %s", receipt.Last4),
				fmt.Sprintf("Date:       %s", receipt.ProcessedAt.Local().Format(time.DateTime)),
				fmt.Sprintf("Reference:  %s", receipt.Reference),
			}
			success(cmd, "Payment accepted")
			out(cmd, "%s", cli.RenderBox(cli.CardIcon+" Receipt", strings.Join(lines, "\n")))
			return nil
		},
	}

	cmd.Flags().StringVar(&d.ProductName, "product", "", "product name")
	cmd.Flags().StringVar(&d.Amount, "amount", "", "amount to pay")
	cmd.Flags().IntVar(&d.Quantity, "quantity", 1, "quantity")
	cmd.Flags().StringVar(&d.Cardholder, "name", "", "cardholder name")
	cmd.Flags().StringVar(&d.CardNumber, "card", "", "card number (16 digits)")
	cmd.Flags().StringVar(&d.Expiry, "expiry", "", "expiry date (MM/YY)")
	cmd.Flags().StringVar(&d.CVV, "cvv", "", "card security code")
	cmd.Flags().DurationVar(&delay, "delay", payment.DefaultDelay, "simulated processing time")
	cmd.Flags().BoolVar(&noInput, "no-input", false, "fail instead of prompting for missing fields")

	return cmd
}
