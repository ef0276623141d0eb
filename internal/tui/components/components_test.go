package components

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mahmoud-slama/creditapp/internal/credit"
	"github.com/mahmoud-slama/creditapp/internal/listing"
	"github.com/mahmoud-slama/creditapp/internal/model"
	"github.com/mahmoud-slama/creditapp/internal/tui/themes"
	"github.com/mahmoud-slama/creditapp/internal/tui/tuitest"
	"github.com/mahmoud-slama/creditapp/internal/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var runes = tuitest.KeyPress

func productList(t *testing.T, clock *tuitest.Clock, pageSize int) ListModel[model.Product] {
	t.Helper()
	m := NewList(ListOptions[model.Product]{
		ID:     "products",
		Title:  "Products",
		Config: views.Products(),
		Columns: []Column[model.Product]{
			{Title: "Name", Width: 20, SortKey: "name", Searchable: true, Value: func(p model.Product) string { return p.Name }},
			{Title: "Price", Width: 10, SortKey: "price", Value: func(p model.Product) string { return listing.Number(p.Price) }},
			{Title: "Qty", Width: 5, SortKey: "quantity", Value: func(p model.Product) string { return listing.Int(p.Quantity) }},
		},
		Filters:  views.Filters.Products,
		Cycles:   []FilterKind{FilterPrice},
		Debounce: 300 * time.Millisecond,
		Clock:    clock,
		PageSize: pageSize,
	}, themes.Default)
	t.Cleanup(m.Stop)
	return m
}

func sampleProducts() []model.Product {
	return []model.Product{
		{ID: 1, Name: "Olive oil", Price: 120, Quantity: 4},
		{ID: 2, Name: "Green tea", Price: 8, Quantity: 20},
		{ID: 3, Name: "Saffron", Price: 450, Quantity: 1},
	}
}

func newClock() *tuitest.Clock {
	return tuitest.NewClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
}

func TestListLoading(t *testing.T) {
	m := productList(t, newClock(), 10)
	assert.True(t, m.Result().Loading)
	assert.Contains(t, m.View(), "Loading products")

	m.SetItems([]model.Product{})
	assert.Contains(t, m.View(), "No products yet")

	m.SetItems(sampleProducts())
	assert.Contains(t, m.View(), "3 of 3 products")
}

func TestListDebouncedSearch(t *testing.T) {
	clock := newClock()
	m := productList(t, clock, 10)
	m.SetItems(sampleProducts())

	m, _ = m.Update(runes("/"))
	require.True(t, m.Searching())
	for _, r := range "tea" {
		m, _ = m.Update(runes(string(r)))
	}
	assert.Equal(t, 3, m.Result().Matched, "results wait for the debounce window")

	clock.Advance(299 * time.Millisecond)
	assert.Equal(t, "", m.Settled())

	clock.Advance(time.Millisecond)
	msg := m.waitForQuery()()
	require.Equal(t, QuerySettledMsg{ListID: "products", Query: "tea"}, msg)

	m, cmd := m.Update(msg)
	assert.NotNil(t, cmd, "the listener is re-armed")
	assert.Equal(t, "tea", m.Settled())
	assert.Equal(t, 1, m.Result().Matched)

	selected, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "Green tea", selected.Name)
}

func TestListIgnoresOtherLists(t *testing.T) {
	m := productList(t, newClock(), 10)
	m.SetItems(sampleProducts())
	m, cmd := m.Update(QuerySettledMsg{ListID: "clients", Query: "x"})
	assert.Nil(t, cmd)
	assert.Equal(t, 3, m.Result().Matched)
}

func TestListEnterFlushesSearch(t *testing.T) {
	m := productList(t, newClock(), 10)
	m.SetItems(sampleProducts())

	m, _ = m.Update(runes("/"))
	m, _ = m.Update(runes("s"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.Searching())

	m, _ = m.Update(m.waitForQuery()())
	assert.Equal(t, 1, m.Result().Matched)
}

func TestListPaging(t *testing.T) {
	m := productList(t, newClock(), 2)
	m.SetItems(sampleProducts())
	assert.Len(t, m.Result().Page.Items, 2)

	m, _ = m.Update(runes("n"))
	assert.Equal(t, 2, m.Result().Page.Number)
	assert.Len(t, m.Result().Page.Items, 1)

	m, _ = m.Update(runes("n"))
	assert.Equal(t, 2, m.Result().Page.Number, "paging stops at the last page")

	m, _ = m.Update(runes("p"))
	m, _ = m.Update(runes("p"))
	assert.Equal(t, 1, m.Result().Page.Number)
}

func TestListSortToggle(t *testing.T) {
	m := productList(t, newClock(), 10)
	m.SetItems(sampleProducts())

	m, _ = m.Update(runes("2"))
	assert.Equal(t, "Green tea", m.Result().Page.Items[0].Name)

	m, _ = m.Update(runes("2"))
	assert.Equal(t, listing.Descending, m.Result().Sort.Direction)
	assert.Equal(t, "Saffron", m.Result().Page.Items[0].Name)

	m, _ = m.Update(runes("9"))
	assert.Equal(t, "price", m.Result().Sort.Key, "columns past the end are ignored")
}

func TestListBracketFilter(t *testing.T) {
	m := productList(t, newClock(), 10)
	m.SetItems(sampleProducts())

	m, _ = m.Update(runes("f"))
	require.Equal(t, 1, m.Result().Matched)
	assert.Contains(t, m.View(), "price: low")

	m, _ = m.Update(runes("d"))
	assert.Equal(t, 1, m.Result().Matched, "products have no date filter")
}

func TestListSelectsFirstRowOnLoad(t *testing.T) {
	m := productList(t, newClock(), 10)
	_, ok := m.Selected()
	assert.False(t, ok)

	m.SetItems(sampleProducts())
	selected, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, m.Result().Page.Items[0], selected)
}

func TestListCursor(t *testing.T) {
	m := productList(t, newClock(), 10)
	m.SetItems(sampleProducts())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	selected, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "Olive oil", selected.Name)

	m.SetItems(sampleProducts()[:1])
	selected, ok = m.Selected()
	require.True(t, ok, "cursor is clamped to the remaining rows")
	assert.Equal(t, "Olive oil", selected.Name)
}

func TestListStopEndsListener(t *testing.T) {
	m := productList(t, newClock(), 10)
	m.Stop()
	assert.Nil(t, m.waitForQuery()())
}

func TestListError(t *testing.T) {
	m := productList(t, newClock(), 10)
	m.SetItems(sampleProducts())
	m.SetError(errors.New("backend unreachable"))
	assert.Contains(t, m.View(), "backend unreachable")
	assert.Equal(t, 3, m.Result().Matched)
}

func TestDashboard(t *testing.T) {
	d := NewDashboard(themes.Default)
	assert.Contains(t, d.View(), "Loading credit")

	d.SetCredit("Amal", credit.Compute(180, 200))
	d.SetRecent([]model.Purchase{{ID: 1, Name: "Tea", Amount: 8, Quantity: 1}})
	out := d.View()
	assert.Contains(t, out, "Credit of Amal")
	assert.Contains(t, out, "90.0% used (critical)")
	assert.Contains(t, out, "Available 20.00")
	assert.Contains(t, out, "Recent purchases")

	s := credit.Summarize([]model.Client{{ID: 1, Montant: 300, MaxAmount: 100}}, nil, nil)
	d.SetSummary(&s)
	out = d.View()
	assert.Contains(t, out, "1 clients, 0 products, 0 transactions")
	assert.Contains(t, out, "1 clients over their limit")
}

func TestLoginSubmit(t *testing.T) {
	m := NewLogin(themes.Default)
	for _, r := range "amal@example.com" {
		m, _ = m.Update(runes(string(r)))
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	for _, r := range "secret" {
		m, _ = m.Update(runes(string(r)))
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, LoginSubmitMsg{Email: "amal@example.com", Password: "secret"}, cmd())
	assert.Contains(t, m.View(), "Signing in")

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd, "no second submission while busy")

	m.SetError(errors.New("invalid credentials"))
	assert.Contains(t, m.View(), "invalid credentials")
	assert.Empty(t, m.password.Value())
}
