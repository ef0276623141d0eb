package cart

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mahmoud-slama/creditapp/internal/common"
	"github.com/mahmoud-slama/creditapp/internal/model"
	"github.com/shopspring/decimal"
)

// Resolution is what the cart needs to know about a product name.
type Resolution struct {
	ProductID *int
	Name      string
	Images    string
	Price     decimal.Decimal
}

// Resolver turns a free-text product name into a priced resolution.
type Resolver interface {
	Resolve(ctx context.Context, name string) (Resolution, error)
}

// PriceLookup finds price and image for a product that is not in the fetched catalog.
type PriceLookup interface {
	LookupPrice(ctx context.Context, name string) (float64, error)
	LookupImage(ctx context.Context, name string) (string, error)
}

// CatalogResolver resolves against the fetched catalog first and falls back to a PriceLookup.
type CatalogResolver struct {
	Fallback PriceLookup
	Catalog  []model.Product
}

// Resolve implements Resolver. Catalog names match case-insensitively.
func (r CatalogResolver) Resolve(ctx context.Context, name string) (Resolution, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Resolution{}, fmt.Errorf("%w: product name is empty", common.ErrInvalidInput)
	}

	if p, ok := FindProduct(r.Catalog, name); ok {
		return FromProduct(p), nil
	}

	if r.Fallback == nil {
		return Resolution{}, fmt.Errorf("%w: product %q", common.ErrNotFound, name)
	}

	price, err := r.Fallback.LookupPrice(ctx, name)
	if err != nil {
		return Resolution{}, fmt.Errorf("failed to look up price of %q: %w", name, err)
	}

	images, err := r.Fallback.LookupImage(ctx, name)
	if err != nil {
		// The line item is still usable without a picture.
		slog.Warn("Image lookup failed", "product", name, "error", err)
		images = ""
	}

	return Resolution{
		Name:   name,
		Price:  decimal.NewFromFloat(price),
		Images: images,
	}, nil
}

// FindProduct returns the catalog product whose name equals name, ignoring case.
func FindProduct(catalog []model.Product, name string) (model.Product, bool) {
	for _, p := range catalog {
		if strings.EqualFold(strings.TrimSpace(p.Name), name) {
			return p, true
		}
	}
	return model.Product{}, false
}

// FromProduct builds a resolution from a catalog product.
func FromProduct(p model.Product) Resolution {
	id := p.ID
	return Resolution{
		ProductID: &id,
		Name:      p.Name,
		Images:    p.Images,
		Price:     decimal.NewFromFloat(p.Price),
	}
}
