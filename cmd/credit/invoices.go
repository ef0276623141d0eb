package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/mahmoud-slama/creditapp/internal/cli"
	"github.com/mahmoud-slama/creditapp/internal/common"
	"github.com/mahmoud-slama/creditapp/internal/config"
	"github.com/mahmoud-slama/creditapp/internal/model"
	"github.com/mahmoud-slama/creditapp/internal/sheets"
	"github.com/mahmoud-slama/creditapp/internal/views"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func invoicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoices",
		Short: "List and export invoices",
		Long: `Every purchase has an invoice numbered INV-<year>-<n>, where n counts the
purchases of the history in order.`,
	}

	cmd.AddCommand(invoicesListCmd())
	cmd.AddCommand(invoicesExportCmd())

	return cmd
}

// loadInvoices builds the invoices of the requested client's history.
func loadInvoices(cmd *cobra.Command, ctx context.Context, a *app, clientID int) ([]model.Invoice, int, error) {
	id, err := a.historyOwner(clientID)
	if err != nil {
		return nil, 0, err
	}
	history, err := load(cmd, ctx, a.purchases.ForClient(id))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load purchase history: %w", err)
	}
	return model.Invoices(history), id, nil
}

func invoiceColumns() []column[model.Invoice] {
	return []column[model.Invoice]{
		{title: "Invoice", searchable: true, value: func(i model.Invoice) string { return i.ID }},
		{title: "Date", value: func(i model.Invoice) string { return formatDate(i.Purchase) }},
		{title: "Product", searchable: true, value: func(i model.Invoice) string { return i.Purchase.DisplayName() }},
		{title: "Qty", right: true, value: func(i model.Invoice) string { return fmt.Sprint(i.Purchase.Quantity) }},
		{title: "Amount", right: true, value: func(i model.Invoice) string { return cli.FormatMoney(i.Purchase.Amount) }},
	}
}

func invoicesListCmd() *cobra.Command {
	var flags listFlags
	var clientID int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List invoices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filters, err := flags.filters()
			if err != nil {
				return common.NewUserError(err.Error(), common.ErrInvalidInput)
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				invoices, _, err := loadInvoices(cmd, ctx, a, clientID)
				if err != nil {
					return err
				}
				out(cmd, "%s", cli.FormatTitle("🧾", "Invoices"))
				return renderListing(cmd, views.Invoices(), flags.request(a.settings.Listing.PageSize), filters, filters.Invoices(), invoices, invoiceColumns())
			})
		},
	}

	addListFlags(cmd, &flags, views.Invoices().Sort.Names(), amountFilter|dateFilter)
	cmd.Flags().IntVar(&clientID, "client", 0, "client id (admin only)")
	return cmd
}

func invoicesExportCmd() *cobra.Command {
	var (
		flags    listFlags
		clientID int
		csvPath  string
		toSheets bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export invoices to CSV or Google Sheets",
		Long: `Export every invoice matching the search and filters.

--csv writes a CSV file, or standard output when the path is "-".
--sheets writes to the configured Google spreadsheet; run
'credit auth sheets' once first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (csvPath == "") == !toSheets {
				return common.NewUserError("choose exactly one of --csv or --sheets", common.ErrInvalidInput)
			}
			filters, err := flags.filters()
			if err != nil {
				return common.NewUserError(err.Error(), common.ErrInvalidInput)
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				invoices, owner, err := loadInvoices(cmd, ctx, a, clientID)
				if err != nil {
					return err
				}

				req := flags.request(len(invoices))
				req.Page, req.PageSize = 1, len(invoices)
				pipeline, err := views.NewPipeline(views.Invoices(), req, filters.Invoices()...)
				if err != nil {
					return err
				}
				matched := pipeline.Apply(invoices).Page.Items
				if len(matched) == 0 {
					info(cmd, "No invoices to export.")
					return nil
				}

				report := sheets.Report{
					GeneratedAt: time.Now(),
					Title:       fmt.Sprintf("Invoices of client %d", owner),
					Rows:        sheets.RowsFromInvoices(matched, a.invoiceClient(ctx, owner)),
				}

				if toSheets {
					return exportSheets(cmd, ctx, report)
				}
				return exportCSV(cmd, csvPath, report)
			})
		},
	}

	addListFlags(cmd, &flags, views.Invoices().Sort.Names(), amountFilter|dateFilter)
	cmd.Flags().IntVar(&clientID, "client", 0, "client id (admin only)")
	cmd.Flags().StringVar(&csvPath, "csv", "", `CSV file to write ("-" for stdout)`)
	cmd.Flags().BoolVar(&toSheets, "sheets", false, "export to Google Sheets")
	return cmd
}

// invoiceClient names the buyer of the exported rows.
func (a *app) invoiceClient(ctx context.Context, owner int) func(int) string {
	if s, ok := a.sessions.Current(); ok && s.UserID == owner {
		return func(int) string { return s.FirstName }
	}
	return a.clientNames(ctx)
}

func exportCSV(cmd *cobra.Command, path string, report sheets.Report) error {
	var w io.Writer = cmd.OutOrStdout()
	if path != "-" {
		f, err := os.Create(config.ExpandPath(path))
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil {
				slog.Error("Failed to close export file", "error", cerr)
			}
		}()
		w = f
	}

	if err := sheets.WriteCSV(w, report); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	if path != "-" {
		success(cmd, "Exported %d invoice(s) to %s (total %s)", len(report.Rows), path, report.Total().StringFixed(2))
	}
	return nil
}

func exportSheets(cmd *cobra.Command, ctx context.Context, report sheets.Report) error {
	cfg, err := config.LoadSheetsConfig(viper.GetViper())
	if err != nil {
		return common.NewUserError("Google Sheets is not configured, run 'credit auth sheets' first", err)
	}
	w, err := sheets.NewWriter(ctx, *cfg, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to connect to Google Sheets: %w", err)
	}

	id, err := w.WriteReport(ctx, report)
	if err != nil {
		return fmt.Errorf("failed to export to Google Sheets: %w", err)
	}
	success(cmd, "Exported %d invoice(s) to Google Sheets", len(report.Rows))
	out(cmd, "  https://docs.google.com/spreadsheets/d/%s", id)
	return nil
}
