package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/mahmoud-slama/creditapp/internal/cart"
	"github.com/mahmoud-slama/creditapp/internal/common"
	"github.com/mahmoud-slama/creditapp/internal/credit"
	"github.com/mahmoud-slama/creditapp/internal/model"
	"github.com/mahmoud-slama/creditapp/internal/payment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalog() cart.Resolver {
	return cart.CatalogResolver{Catalog: []model.Product{
		{ID: 1, Name: "Olive oil", Price: 12.5, Quantity: 10},
		{ID: 2, Name: "Tea", Price: 4, Quantity: 3},
	}}
}

func TestParseItem(t *testing.T) {
	tests := []struct {
		in      string
		name    string
		qty     int
		wantErr bool
	}{
		{in: "Olive oil", name: "Olive oil", qty: 1},
		{in: "Olive oil=3", name: "Olive oil", qty: 3},
		{in: " Tea = 2 ", name: "Tea", qty: 2},
		{in: "a=b=4", name: "a=b", qty: 4},
		{in: "=2", wantErr: true},
		{in: "Tea=0", wantErr: true},
		{in: "Tea=two", wantErr: true},
		{in: "   ", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			name, qty, err := ParseItem(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.qty, qty)
		})
	}
}

func TestLineReader(t *testing.T) {
	r := NewLineReader(strings.NewReader("  first  \nlast"))

	line, err := r.ReadLine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "first", line)

	line, err = r.ReadLine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "last", line)

	_, err = r.ReadLine(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestLineReaderCancellation(t *testing.T) {
	t.Run("already canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewLineReader(strings.NewReader("ignored\n")).ReadLine(ctx)
		assert.ErrorIs(t, err, ErrInputCancelled)
	})

	t.Run("canceled while waiting", func(t *testing.T) {
		pr, pw := io.Pipe()
		defer func() { _ = pw.Close() }()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err := NewLineReader(pr).ReadLine(ctx)
		assert.ErrorIs(t, err, ErrInputCancelled)
	})
}

func TestAskAndConfirm(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("\nAmal\nyes\nnope\n"), &out)
	ctx := context.Background()

	got, err := p.Ask(ctx, "Name", "guest")
	require.NoError(t, err)
	assert.Equal(t, "guest", got)

	got, err = p.Ask(ctx, "Name", "guest")
	require.NoError(t, err)
	assert.Equal(t, "Amal", got)

	ok, err := p.Confirm(ctx, "Submit?")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Confirm(ctx, "Submit?")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = p.Ask(ctx, "More", "")
	assert.ErrorIs(t, err, ErrAborted)
	assert.Contains(t, out.String(), "Name [guest]")
}

func TestFillCart(t *testing.T) {
	input := strings.Join([]string{
		"Olive oil=2",
		"Tea",
		"Unknown thing",
		"/qty 2 3",
		"/qty 2 0",
		"/rm 9",
		"/bogus",
		"/rm 1",
		"/done",
	}, "\n") + "\n"

	var out bytes.Buffer
	c := cart.New(catalog())
	require.NoError(t, NewPrompter(strings.NewReader(input), &out).FillCart(context.Background(), c))

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Tea", items[0].Name)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, "12.00", c.TotalString())

	text := out.String()
	assert.Contains(t, text, `cannot add "Unknown thing"`)
	assert.Contains(t, text, "cannot remove")
	assert.Contains(t, text, "unknown command /bogus")
}

func TestFillCartEndsOnEmptyLine(t *testing.T) {
	c := cart.New(catalog())
	require.NoError(t, NewPrompter(strings.NewReader("Tea=2\n\nOlive oil\n"), io.Discard).FillCart(context.Background(), c))
	assert.Equal(t, 1, c.Len())
}

func TestRenderCart(t *testing.T) {
	c := cart.New(catalog())
	assert.Contains(t, RenderCart(c), "Cart is empty")

	_, err := c.Add(context.Background(), "olive OIL", 2)
	require.NoError(t, err)
	out := RenderCart(c)
	assert.Contains(t, out, "Olive oil")
	assert.Contains(t, out, "25.00")
	assert.Contains(t, out, "Total: 25.00")
}

func TestRenderBatch(t *testing.T) {
	item := cart.LineItem{Name: "Tea", Quantity: 1, Price: decimal.NewFromInt(4), Total: decimal.NewFromInt(4)}
	res := cart.BatchResult{Results: []cart.ItemResult{
		{Index: 0, Item: item, Status: cart.StatusSucceeded},
		{Index: 1, Item: item, Status: cart.StatusFailed, Err: common.NewUserError("product not found", errors.New("404"))},
		{Index: 2, Item: item, Status: cart.StatusSkipped, Err: cart.ErrStopped},
	}}

	out := RenderBatch(res)
	assert.Contains(t, out, "product not found")
	assert.Contains(t, out, "skipped")
	assert.Contains(t, out, "1 succeeded, 1 failed, 1 skipped")
}

func TestSubmitReporter(t *testing.T) {
	var out bytes.Buffer
	r := NewSubmitReporter(&out, 2)
	r.Progress(cart.ItemResult{Status: cart.StatusSucceeded}, 1, 2)
	r.Progress(cart.ItemResult{Status: cart.StatusFailed}, 2, 2)
	r.Finish()

	assert.Equal(t, 1, r.failed)
	assert.Contains(t, out.String(), "2/2")
}

func TestPromptPayment(t *testing.T) {
	input := "\n30\nAmal Haddad\n4111 1111-1111 1111 99\n1226\n12345\n"
	d, err := NewPrompter(strings.NewReader(input), io.Discard).PromptPayment(context.Background(), payment.Details{ProductName: "Tea"})
	require.NoError(t, err)

	assert.Equal(t, "Tea", d.ProductName)
	assert.Equal(t, "30", d.Amount)
	assert.Equal(t, "4111 1111 1111 1111", d.CardNumber)
	assert.Equal(t, "12/26", d.Expiry)
	assert.NoError(t, d.Validate())
}

func TestCreditBar(t *testing.T) {
	bar := CreditBar(credit.Compute(50, 100), 10)
	assert.Equal(t, 5, strings.Count(bar, "█"))
	assert.Equal(t, 5, strings.Count(bar, "░"))

	bar = CreditBar(credit.Compute(300, 100), 10)
	assert.Equal(t, 10, strings.Count(bar, "█"), "bar is clamped to full")
}

func TestInterruptHandler(t *testing.T) {
	var out bytes.Buffer
	h := NewInterruptHandler(&out, "Unsent items were not submitted.")
	ctx, stop := h.HandleInterrupts(context.Background())
	defer stop()

	assert.False(t, h.WasInterrupted())
	h.interrupt()
	h.interrupt()

	assert.True(t, h.WasInterrupted())
	assert.Equal(t, 1, strings.Count(out.String(), "Interrupted"))
	assert.Contains(t, out.String(), "Unsent items")
	assert.NoError(t, ctx.Err(), "only a signal cancels the context")
}

func TestHighlight(t *testing.T) {
	assert.Equal(t, "Green tea", Highlight("Green tea", ""))
	got := Highlight("Green tea", "TEA")
	assert.Contains(t, got, "tea")
	assert.True(t, strings.HasPrefix(got, "Green "))
}

func TestTable(t *testing.T) {
	tbl := NewTable("Name", "Amount").AlignRight(1)
	tbl.Add("Tea", FormatMoney(4))
	out := tbl.Render()
	assert.Contains(t, out, "Name")
	assert.Contains(t, out, "4.00")
}
