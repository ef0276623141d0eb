// Package views holds the listing configuration of each entity: which fields
// the search box matches, which filters apply and which columns sort.
package views

import (
	"strings"
	"time"

	"github.com/mahmoud-slama/creditapp/internal/listing"
	"github.com/mahmoud-slama/creditapp/internal/model"
)

// UnknownUser is shown for purchases whose client is not loaded.
const UnknownUser = "Unknown User"

// Names resolves a client id to a display name. "" means unknown.
type Names func(userID int) string

// Resolve returns the client name or UnknownUser.
func (n Names) Resolve(userID int) string {
	if n != nil {
		if name := strings.TrimSpace(n(userID)); name != "" {
			return name
		}
	}
	return UnknownUser
}

// Clients lists accounts.
func Clients() listing.Config[model.Client] {
	return listing.Config[model.Client]{
		Noun: "clients",
		Search: []listing.Field[model.Client]{
			model.Client.FullName,
			func(c model.Client) string { return c.Email },
			func(c model.Client) string { return listing.Int(c.ID) },
		},
		Sort: listing.NewSortKeys[model.Client]().
			Add("name", listing.ByString(model.Client.FullName)).
			Add("email", listing.ByString(func(c model.Client) string { return c.Email })).
			Add("balance", listing.ByNumber(func(c model.Client) float64 { return c.Montant })).
			Add("limit", listing.ByNumber(func(c model.Client) float64 { return c.MaxAmount })).
			Add("id", listing.ByNumber(func(c model.Client) float64 { return float64(c.ID) })),
		DefaultSort: listing.SortState{Key: "name"},
		PageSize:    listing.DefaultPageSize,
	}
}

// Products lists the catalog.
func Products() listing.Config[model.Product] {
	return listing.Config[model.Product]{
		Noun: "products",
		Search: []listing.Field[model.Product]{
			func(p model.Product) string { return p.Name },
			func(p model.Product) string { return listing.Int(p.ID) },
			func(p model.Product) string { return listing.Number(p.Price) },
		},
		Sort: listing.NewSortKeys[model.Product]().
			Add("name", listing.ByString(func(p model.Product) string { return p.Name })).
			Add("price", listing.ByNumber(func(p model.Product) float64 { return p.Price })).
			Add("quantity", listing.ByNumber(func(p model.Product) float64 { return float64(p.Quantity) })),
		DefaultSort: listing.SortState{Key: "name"},
		PageSize:    listing.DefaultPageSize,
	}
}

func purchaseSortKeys() *listing.SortKeys[model.Purchase] {
	return listing.NewSortKeys[model.Purchase]().
		Add("name", listing.ByString(model.Purchase.DisplayName)).
		Add("amount", listing.ByNumber(func(p model.Purchase) float64 { return p.Amount })).
		Add("quantity", listing.ByNumber(func(p model.Purchase) float64 { return float64(p.Quantity) })).
		Add("date", listing.ByTime(model.Purchase.Date))
}

// Purchases lists every transaction, searchable by the buyer's name.
func Purchases(names Names) listing.Config[model.Purchase] {
	return listing.Config[model.Purchase]{
		Noun: "transactions",
		Search: []listing.Field[model.Purchase]{
			model.Purchase.DisplayName,
			func(p model.Purchase) string { return listing.Number(p.Amount) },
			func(p model.Purchase) string { return listing.Int(p.Quantity) },
			func(p model.Purchase) string { return names.Resolve(p.UserID) },
		},
		Sort:        purchaseSortKeys(),
		DefaultSort: listing.SortState{Key: "date", Direction: listing.Descending},
		PageSize:    listing.DefaultPageSize,
	}
}

// History lists one client's own purchases.
func History() listing.Config[model.Purchase] {
	return listing.Config[model.Purchase]{
		Noun:        "purchases",
		Search:      []listing.Field[model.Purchase]{model.Purchase.DisplayName},
		Sort:        purchaseSortKeys(),
		DefaultSort: listing.SortState{Key: "date", Direction: listing.Descending},
		PageSize:    listing.DefaultPageSize,
	}
}

// Invoices lists invoices derived from purchases.
func Invoices() listing.Config[model.Invoice] {
	return listing.Config[model.Invoice]{
		Noun: "invoices",
		Search: []listing.Field[model.Invoice]{
			func(i model.Invoice) string { return i.ID },
			func(i model.Invoice) string { return i.Purchase.DisplayName() },
		},
		Sort: listing.NewSortKeys[model.Invoice]().
			Add("id", listing.ByString(func(i model.Invoice) string { return i.ID })).
			Add("amount", listing.ByNumber(func(i model.Invoice) float64 { return i.Purchase.Amount })).
			Add("date", listing.ByTime(func(i model.Invoice) time.Time { return i.Purchase.Date() })),
		DefaultSort: listing.SortState{Key: "date", Direction: listing.Descending},
		PageSize:    listing.DefaultPageSize,
	}
}
