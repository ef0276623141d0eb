package model

import "fmt"

// Invoice presents a purchase as a billable document.
type Invoice struct {
	ID       string
	Purchase Purchase
}

// InvoiceID formats the identifier shown for the purchase at position index
// of the client's history: INV-<year>-<index+1 zero padded to 4>.
func InvoiceID(p Purchase, index int) string {
	return fmt.Sprintf("INV-%d-%04d", p.Date().Year(), index+1)
}

// Invoices builds the invoice list for a purchase history, preserving order.
func Invoices(purchases []Purchase) []Invoice {
	invoices := make([]Invoice, len(purchases))
	for i, p := range purchases {
		invoices[i] = Invoice{ID: InvoiceID(p, i), Purchase: p}
	}
	return invoices
}
