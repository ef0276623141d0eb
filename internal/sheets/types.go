package sheets

import (
	"context"
	"time"

	"github.com/mahmoud-slama/creditapp/internal/model"
	"github.com/shopspring/decimal"
)

// PurchaseRow is one exported line.
type PurchaseRow struct {
	Date     time.Time
	Amount   decimal.Decimal
	Invoice  string
	Client   string
	Product  string
	Quantity int
}

// Report is a titled set of rows.
type Report struct {
	GeneratedAt time.Time
	Title       string
	Rows        []PurchaseRow
}

// Total sums the row amounts.
func (r Report) Total() decimal.Decimal {
	total := decimal.Zero
	for _, row := range r.Rows {
		total = total.Add(row.Amount)
	}
	return total
}

// RowsFromInvoices converts invoices into rows. client resolves a user id to a name.
func RowsFromInvoices(invoices []model.Invoice, client func(userID int) string) []PurchaseRow {
	rows := make([]PurchaseRow, 0, len(invoices))
	for _, inv := range invoices {
		p := inv.Purchase
		row := PurchaseRow{
			Date:     p.Date(),
			Amount:   decimal.NewFromFloat(p.Amount).Round(2),
			Invoice:  inv.ID,
			Product:  p.DisplayName(),
			Quantity: p.Quantity,
		}
		if client != nil {
			row.Client = client(p.UserID)
		}
		rows = append(rows, row)
	}
	return rows
}

// ReportWriter publishes a report and returns where it went.
type ReportWriter interface {
	WriteReport(ctx context.Context, report Report) (string, error)
}
