package tui

import (
	"strconv"

	"github.com/mahmoud-slama/creditapp/internal/model"
	"github.com/mahmoud-slama/creditapp/internal/tui/components"
	"github.com/mahmoud-slama/creditapp/internal/views"
)

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func purchaseDate(p model.Purchase) string {
	if d := p.Date(); !d.IsZero() {
		return d.Format("2006-01-02 15:04")
	}
	return "-"
}

func newClientList(cfg Config) components.ListModel[model.Client] {
	return components.NewList(components.ListOptions[model.Client]{
		ID:     "clients",
		Title:  "Clients",
		Config: views.Clients(),
		Columns: []components.Column[model.Client]{
			{Title: "ID", Width: 5, SortKey: "id", Value: func(c model.Client) string { return strconv.Itoa(c.ID) }},
			{Title: "Name", Width: 24, SortKey: "name", Searchable: true, Value: model.Client.FullName},
			{Title: "Email", Width: 28, SortKey: "email", Searchable: true, Value: func(c model.Client) string { return c.Email }},
			{Title: "Balance", Width: 10, SortKey: "balance", Value: func(c model.Client) string { return money(c.Montant) }},
			{Title: "Limit", Width: 10, SortKey: "limit", Value: func(c model.Client) string { return money(c.MaxAmount) }},
			{Title: "", Width: 10, Value: func(c model.Client) string {
				if c.OverLimit() {
					return "over limit"
				}
				return ""
			}},
		},
		Debounce: cfg.Debounce,
		Clock:    cfg.Clock,
		PageSize: cfg.PageSize,
	}, cfg.Theme)
}

func newProductList(cfg Config) components.ListModel[model.Product] {
	return components.NewList(components.ListOptions[model.Product]{
		ID:     "products",
		Title:  "Products",
		Config: views.Products(),
		Columns: []components.Column[model.Product]{
			{Title: "Name", Width: 28, SortKey: "name", Searchable: true, Value: func(p model.Product) string { return p.Name }},
			{Title: "Price", Width: 10, SortKey: "price", Value: func(p model.Product) string { return money(p.Price) }},
			{Title: "Stock", Width: 8, SortKey: "quantity", Value: func(p model.Product) string { return strconv.Itoa(p.Quantity) }},
			{Title: "ID", Width: 5, Value: func(p model.Product) string { return strconv.Itoa(p.ID) }},
		},
		Filters:  views.Filters.Products,
		Cycles:   []components.FilterKind{components.FilterPrice},
		Debounce: cfg.Debounce,
		Clock:    cfg.Clock,
		PageSize: cfg.PageSize,
	}, cfg.Theme)
}

func newTransactionList(cfg Config) components.ListModel[model.Purchase] {
	names := views.Names(cfg.Clients.NameOf)
	return components.NewList(components.ListOptions[model.Purchase]{
		ID:     "transactions",
		Title:  "Transactions",
		Config: views.Purchases(names),
		Columns: []components.Column[model.Purchase]{
			{Title: "Product", Width: 24, SortKey: "name", Searchable: true, Value: model.Purchase.DisplayName},
			{Title: "Client", Width: 20, Searchable: true, Value: func(p model.Purchase) string { return names.Resolve(p.UserID) }},
			{Title: "Qty", Width: 5, SortKey: "quantity", Value: func(p model.Purchase) string { return strconv.Itoa(p.Quantity) }},
			{Title: "Amount", Width: 10, SortKey: "amount", Value: func(p model.Purchase) string { return money(p.Amount) }},
			{Title: "Date", Width: 17, SortKey: "date", Value: purchaseDate},
		},
		Filters:  views.Filters.Purchases,
		Cycles:   []components.FilterKind{components.FilterAmount, components.FilterDate},
		Debounce: cfg.Debounce,
		Clock:    cfg.Clock,
		PageSize: cfg.PageSize,
	}, cfg.Theme)
}

func newHistoryList(cfg Config) components.ListModel[model.Purchase] {
	return components.NewList(components.ListOptions[model.Purchase]{
		ID:     "history",
		Title:  "My purchases",
		Config: views.History(),
		Columns: []components.Column[model.Purchase]{
			{Title: "Product", Width: 28, SortKey: "name", Searchable: true, Value: model.Purchase.DisplayName},
			{Title: "Qty", Width: 5, SortKey: "quantity", Value: func(p model.Purchase) string { return strconv.Itoa(p.Quantity) }},
			{Title: "Amount", Width: 10, SortKey: "amount", Value: func(p model.Purchase) string { return money(p.Amount) }},
			{Title: "Date", Width: 17, SortKey: "date", Value: purchaseDate},
		},
		Filters:  views.Filters.History,
		Cycles:   []components.FilterKind{components.FilterDate},
		Debounce: cfg.Debounce,
		Clock:    cfg.Clock,
		PageSize: cfg.PageSize,
	}, cfg.Theme)
}
