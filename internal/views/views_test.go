package views

import (
	"testing"
	"time"

	"github.com/mahmoud-slama/creditapp/internal/listing"
	"github.com/mahmoud-slama/creditapp/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 5, 20, 15, 0, 0, 0, time.UTC)

func at(daysAgo int) model.Timestamp {
	return model.Timestamp{Time: now.AddDate(0, 0, -daysAgo)}
}

func products() []model.Product {
	return []model.Product{
		{ID: 1, Name: "Olive oil", Price: 12.5, Quantity: 3},
		{ID: 2, Name: "Coffee beans", Price: 60, Quantity: 10},
		{ID: 3, Name: "Espresso machine", Price: 450, Quantity: 1},
		{ID: 4, Name: "Tea", Price: 10, Quantity: 0},
	}
}

func purchases() []model.Purchase {
	return []model.Purchase{
		{ID: 1, UserID: 1, PurchaseName: "Olive oil", Amount: 25, Quantity: 2, PurchaseDate: at(0)},
		{ID: 2, UserID: 2, PurchaseName: "Espresso machine", Amount: 450, Quantity: 1, PurchaseDate: at(3)},
		{ID: 3, UserID: 9, Name: "Tea", Amount: 10, Quantity: 1, PurchaseDate: at(40)},
		{ID: 4, UserID: 1, PurchaseName: "Coffee beans", Amount: 600, Quantity: 10, PurchaseDate: at(400)},
	}
}

func names(id int) string {
	return map[int]string{1: "Amal Haddad", 2: "Sami Ben Ali"}[id]
}

func TestNamesResolve(t *testing.T) {
	assert.Equal(t, "Amal Haddad", Names(names).Resolve(1))
	assert.Equal(t, UnknownUser, Names(names).Resolve(9))
	assert.Equal(t, UnknownUser, Names(nil).Resolve(1))
}

func TestProductSearch(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []int
	}{
		{"by name", "oil", []int{1}},
		{"case insensitive", "COFFEE", []int{2}},
		{"by price", "12.5", []int{1}},
		{"by id", "3", []int{3}},
		{"blank matches all", "  ", []int{2, 3, 1, 4}},
		{"no match", "zzz", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPipeline(Products(), Request{Search: tt.query, PageSize: 50})
			require.NoError(t, err)
			res := p.Apply(products())

			var got []int
			for _, item := range res.Page.Items {
				got = append(got, item.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProductPriceBracket(t *testing.T) {
	f, err := ParseFilters("medium", "", "", now)
	require.NoError(t, err)

	p, err := NewPipeline(Products(), Request{}, f.Products()...)
	require.NoError(t, err)
	res := p.Apply(products())

	require.Len(t, res.Page.Items, 1)
	assert.Equal(t, "Coffee beans", res.Page.Items[0].Name)
	assert.Equal(t, "1 of 4 products", res.Summary(p.Config.Noun))
}

func TestPurchaseSearchByClientName(t *testing.T) {
	p, err := NewPipeline(Purchases(names), Request{Search: "sami"})
	require.NoError(t, err)
	res := p.Apply(purchases())
	require.Len(t, res.Page.Items, 1)
	assert.Equal(t, 2, res.Page.Items[0].ID)

	p, err = NewPipeline(Purchases(names), Request{Search: "unknown"})
	require.NoError(t, err)
	res = p.Apply(purchases())
	require.Len(t, res.Page.Items, 1)
	assert.Equal(t, 3, res.Page.Items[0].ID)
}

func TestPurchaseFilters(t *testing.T) {
	tests := []struct {
		amount string
		window string
		want   []int
	}{
		{"", "today", []int{1}},
		{"", "week", []int{1, 2}},
		{"", "month", []int{1, 2}},
		{"", "year", []int{1, 2, 3}},
		{"high", "", []int{4}},
		{"medium", "week", []int{2}},
		{"low", "all", []int{1, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.amount+"/"+tt.window, func(t *testing.T) {
			f, err := ParseFilters("", tt.amount, tt.window, now)
			require.NoError(t, err)
			p, err := NewPipeline(Purchases(names), Request{}, f.Purchases()...)
			require.NoError(t, err)

			var got []int
			for _, item := range p.Apply(purchases()).Page.Items {
				got = append(got, item.ID)
			}
			assert.Equal(t, tt.want, got, "default sort is newest first")
		})
	}
}

func TestHistorySearchesNameOnly(t *testing.T) {
	p, err := NewPipeline(History(), Request{Search: "25"})
	require.NoError(t, err)
	assert.Empty(t, p.Apply(purchases()).Page.Items)

	p, err = NewPipeline(History(), Request{Search: "tea"})
	require.NoError(t, err)
	assert.Len(t, p.Apply(purchases()).Page.Items, 1)
}

func TestSortKeys(t *testing.T) {
	_, err := NewPipeline(Clients(), Request{Sort: "colour"})
	assert.ErrorIs(t, err, listing.ErrUnknownSortKey)

	clients := []model.Client{
		{ID: 1, FirstName: "zoe", Montant: 10},
		{ID: 2, FirstName: "Adam", Montant: 30},
		{ID: 3, FirstName: "mia", Montant: 20},
	}

	p, err := NewPipeline(Clients(), Request{})
	require.NoError(t, err)
	res := p.Apply(clients)
	assert.Equal(t, []int{2, 3, 1}, ids(res.Page.Items))

	p, err = NewPipeline(Clients(), Request{Sort: "balance", Desc: true})
	require.NoError(t, err)
	res = p.Apply(clients)
	assert.Equal(t, []int{2, 3, 1}, ids(res.Page.Items))
	assert.Equal(t, "balance desc", res.Sort.String())
}

func ids(clients []model.Client) []int {
	out := make([]int, 0, len(clients))
	for _, c := range clients {
		out = append(out, c.ID)
	}
	return out
}

func TestParseFiltersErrors(t *testing.T) {
	_, err := ParseFilters("cheap", "huge", "decade", now)
	require.Error(t, err)
	assert.ErrorIs(t, err, listing.ErrUnknownFilter)
	assert.Contains(t, err.Error(), "price")
	assert.Contains(t, err.Error(), "amount")
	assert.Contains(t, err.Error(), "date")
}

func TestDescribe(t *testing.T) {
	f, err := ParseFilters("low", "", "week", now)
	require.NoError(t, err)
	assert.Equal(t, "price: low, date: week", f.Describe())

	f, err = ParseFilters("", "", "", now)
	require.NoError(t, err)
	assert.Empty(t, f.Describe())
}

func TestInvoicesConfig(t *testing.T) {
	invoices := model.Invoices(purchases())
	p, err := NewPipeline(Invoices(), Request{Search: "INV-"})
	require.NoError(t, err)
	res := p.Apply(invoices)
	assert.Equal(t, 4, res.Matched)
	assert.Equal(t, 1, res.Page.Items[0].Purchase.ID)
}

func TestPaginationThroughPipeline(t *testing.T) {
	var many []model.Product
	for i := 1; i <= 23; i++ {
		many = append(many, model.Product{ID: i, Name: "item", Price: float64(i)})
	}
	p, err := NewPipeline(Products(), Request{Sort: "price", Page: 99})
	require.NoError(t, err)
	res := p.Apply(many)

	assert.Equal(t, 3, res.Page.TotalPages)
	assert.Equal(t, 3, res.Page.Number)
	assert.Len(t, res.Page.Items, 3)
	assert.False(t, res.Page.HasNext())
}
