// Package cart stages purchase line items on the client before they are submitted.
package cart

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/mahmoud-slama/creditapp/internal/common"
	"github.com/mahmoud-slama/creditapp/internal/model"
	"github.com/shopspring/decimal"
)

// Cart errors.
var (
	ErrIndexOutOfRange = errors.New("line item index out of range")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrEmptyCart       = errors.New("cart is empty")
)

// LineItem is one product and quantity waiting to be submitted.
type LineItem struct {
	ProductID *int
	Name      string
	Images    string
	Price     decimal.Decimal
	Total     decimal.Decimal
	Quantity  int
}

func newLineItem(r Resolution, qty int) LineItem {
	return LineItem{
		ProductID: r.ProductID,
		Name:      r.Name,
		Images:    r.Images,
		Price:     r.Price,
		Quantity:  qty,
		Total:     r.Price.Mul(decimal.NewFromInt(int64(qty))),
	}
}

// Cart is a transient, client-only list of line items.
// It is owned by a single view and is not safe for concurrent use.
type Cart struct {
	resolver Resolver
	items    []LineItem
}

// New creates an empty cart that resolves names with r.
func New(r Resolver) *Cart {
	return &Cart{resolver: r}
}

// Add resolves name and appends a line item. A quantity below 1 is treated as 1.
func (c *Cart) Add(ctx context.Context, name string, qty int) (LineItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return LineItem{}, fmt.Errorf("%w: product name is required", common.ErrInvalidInput)
	}
	if c.resolver == nil {
		return LineItem{}, fmt.Errorf("%w: no product resolver", common.ErrMissingConfig)
	}

	res, err := c.resolver.Resolve(ctx, name)
	if err != nil {
		return LineItem{}, err
	}
	if res.Name == "" {
		res.Name = name
	}

	item := newLineItem(res, max(qty, 1))
	c.items = append(c.items, item)
	return item, nil
}

// AddProduct appends a catalog product without any lookup.
func (c *Cart) AddProduct(p model.Product, qty int) LineItem {
	item := newLineItem(FromProduct(p), max(qty, 1))
	c.items = append(c.items, item)
	return item
}

// Remove deletes the line item at index i.
func (c *Cart) Remove(i int) error {
	if i < 0 || i >= len(c.items) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	c.items = slices.Delete(c.items, i, i+1)
	return nil
}

// UpdateQuantity changes the quantity of item i and recomputes its total.
// Quantities below 1 are rejected and leave the item unchanged.
func (c *Cart) UpdateQuantity(i, qty int) error {
	if i < 0 || i >= len(c.items) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	if qty < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, qty)
	}
	item := &c.items[i]
	item.Quantity = qty
	item.Total = item.Price.Mul(decimal.NewFromInt(int64(qty)))
	return nil
}

// Items returns a copy of the line items.
func (c *Cart) Items() []LineItem {
	return slices.Clone(c.items)
}

// Len is the number of line items.
func (c *Cart) Len() int {
	return len(c.items)
}

// Total sums the line totals.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.Total)
	}
	return total
}

// TotalString renders the total with two decimals, e.g. "35.00".
func (c *Cart) TotalString() string {
	return c.Total().StringFixed(2)
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.items = nil
}

// keep retains only the items whose index is in idx.
func (c *Cart) keep(idx map[int]bool) {
	kept := make([]LineItem, 0, len(idx))
	for i, item := range c.items {
		if idx[i] {
			kept = append(kept, item)
		}
	}
	c.items = kept
}
