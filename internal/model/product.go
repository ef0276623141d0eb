package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Product validation errors.
var (
	ErrProductName     = errors.New("product name is required")
	ErrProductRef      = errors.New("product reference is required")
	ErrProductImage    = errors.New("product image URL is required")
	ErrProductPrice    = errors.New("product price cannot be negative")
	ErrProductQuantity = errors.New("product quantity cannot be negative")
)

// Product is a catalog entry. Quantity is the stock level.
type Product struct {
	Name     string  `json:"name"`
	Ref      string  `json:"ref"`
	Images   string  `json:"images"`
	ID       int     `json:"id"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// UnmarshalJSON accepts both "id" and the backend column name "product_id".
func (p *Product) UnmarshalJSON(data []byte) error {
	type plain Product
	aux := struct {
		*plain
		ProductID *int `json:"product_id"`
	}{plain: (*plain)(p)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if p.ID == 0 && aux.ProductID != nil {
		p.ID = *aux.ProductID
	}
	return nil
}

// Validate checks the fields required by the add and edit product forms.
func (p Product) Validate() error {
	var errs []error
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, ErrProductName)
	}
	if strings.TrimSpace(p.Ref) == "" {
		errs = append(errs, ErrProductRef)
	}
	if strings.TrimSpace(p.Images) == "" {
		errs = append(errs, ErrProductImage)
	}
	if p.Price < 0 {
		errs = append(errs, fmt.Errorf("%w: %v", ErrProductPrice, p.Price))
	}
	if p.Quantity < 0 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrProductQuantity, p.Quantity))
	}
	return errors.Join(errs...)
}
