package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/mahmoud-slama/creditapp/internal/common"
	"github.com/mahmoud-slama/creditapp/internal/model"
)

// ListProducts returns the catalog.
func (c *Client) ListProducts(ctx context.Context) ([]model.Product, error) {
	products := []model.Product{}
	if err := c.get(ctx, "/Product", &products); err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return products, nil
}

// GetProduct returns one catalog entry.
func (c *Client) GetProduct(ctx context.Context, id int) (*model.Product, error) {
	var p model.Product
	if err := c.get(ctx, fmt.Sprintf("/Product/%d", id), &p); err != nil {
		return nil, fmt.Errorf("failed to fetch product %d: %w", id, err)
	}
	return &p, nil
}

// CreateProduct adds a catalog entry.
func (c *Client) CreateProduct(ctx context.Context, p model.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := c.post(ctx, "/Product", p, nil); err != nil {
		return fmt.Errorf("failed to create product %q: %w", p.Name, err)
	}
	return nil
}

// UpdateProduct replaces a catalog entry.
func (c *Client) UpdateProduct(ctx context.Context, p model.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := c.put(ctx, fmt.Sprintf("/Product/%d", p.ID), p, nil); err != nil {
		return fmt.Errorf("failed to update product %d: %w", p.ID, err)
	}
	return nil
}

// DeleteProduct removes a catalog entry.
func (c *Client) DeleteProduct(ctx context.Context, id int) error {
	if err := c.delete(ctx, fmt.Sprintf("/Product/%d", id)); err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	return nil
}

// IncrementQuantity raises the stock of p by one unit and returns the new state.
func (c *Client) IncrementQuantity(ctx context.Context, p model.Product) (model.Product, error) {
	return c.setQuantity(ctx, p, p.Quantity+1)
}

// DecrementQuantity lowers the stock of p by one unit. At zero nothing is sent.
func (c *Client) DecrementQuantity(ctx context.Context, p model.Product) (model.Product, error) {
	if p.Quantity <= 0 {
		return p, nil
	}
	return c.setQuantity(ctx, p, p.Quantity-1)
}

func (c *Client) setQuantity(ctx context.Context, p model.Product, qty int) (model.Product, error) {
	p.Quantity = qty
	if err := c.put(ctx, fmt.Sprintf("/Product/%d", p.ID), p, nil); err != nil {
		return p, fmt.Errorf("failed to set quantity of product %d: %w", p.ID, err)
	}
	return p, nil
}

// LookupPrice finds the price of a product by free-text name.
func (c *Client) LookupPrice(ctx context.Context, name string) (float64, error) {
	var raw string
	if err := c.get(ctx, "/Product/price/"+url.PathEscape(name), &raw); err != nil {
		return 0, fmt.Errorf("failed to look up price of %q: %w", name, err)
	}
	price, err := strconv.ParseFloat(strings.Trim(raw, `"`), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: price %q for %q", common.ErrInvalidInput, raw, name)
	}
	return price, nil
}

// LookupImage finds the image URL of a product by free-text name.
func (c *Client) LookupImage(ctx context.Context, name string) (string, error) {
	var image string
	if err := c.get(ctx, "/Product/image/"+url.PathEscape(name), &image); err != nil {
		return "", fmt.Errorf("failed to look up image of %q: %w", name, err)
	}
	return strings.Trim(image, `"`), nil
}
