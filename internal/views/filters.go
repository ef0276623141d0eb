package views

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mahmoud-slama/creditapp/internal/listing"
	"github.com/mahmoud-slama/creditapp/internal/model"
)

// Filters are the user's bracket and window choices.
type Filters struct {
	Now    time.Time
	Price  listing.Bracket
	Amount listing.Bracket
	Window listing.Window
}

// ParseFilters parses flag values; empty values mean "all".
func ParseFilters(price, amount, window string, now time.Time) (Filters, error) {
	f := Filters{Now: now}
	var errs []error
	var err error
	if f.Price, err = listing.ParseBracket(price); err != nil {
		errs = append(errs, fmt.Errorf("price: %w", err))
	}
	if f.Amount, err = listing.ParseBracket(amount); err != nil {
		errs = append(errs, fmt.Errorf("amount: %w", err))
	}
	if f.Window, err = listing.ParseWindow(window); err != nil {
		errs = append(errs, fmt.Errorf("date: %w", err))
	}
	return f, errors.Join(errs...)
}

func (f Filters) now() time.Time {
	if f.Now.IsZero() {
		return time.Now()
	}
	return f.Now
}

// Products returns the product filters.
func (f Filters) Products() []listing.Predicate[model.Product] {
	return []listing.Predicate[model.Product]{
		listing.BracketPredicate(f.Price, listing.PriceThresholds, func(p model.Product) float64 { return p.Price }),
	}
}

// Purchases returns the transaction filters.
func (f Filters) Purchases() []listing.Predicate[model.Purchase] {
	return []listing.Predicate[model.Purchase]{
		listing.BracketPredicate(f.Amount, listing.AmountThresholds, func(p model.Purchase) float64 { return p.Amount }),
		listing.WindowPredicate(f.Window, f.now(), model.Purchase.Date),
	}
}

// History returns the filters of a client's own history: the date window only.
func (f Filters) History() []listing.Predicate[model.Purchase] {
	return []listing.Predicate[model.Purchase]{
		listing.WindowPredicate(f.Window, f.now(), model.Purchase.Date),
	}
}

// Invoices returns the invoice filters.
func (f Filters) Invoices() []listing.Predicate[model.Invoice] {
	return []listing.Predicate[model.Invoice]{
		listing.BracketPredicate(f.Amount, listing.AmountThresholds, func(i model.Invoice) float64 { return i.Purchase.Amount }),
		listing.WindowPredicate(f.Window, f.now(), func(i model.Invoice) time.Time { return i.Purchase.Date() }),
	}
}

// Describe renders the active filters, e.g. "price: low, date: week". Empty when none apply.
func (f Filters) Describe() string {
	var parts []string
	if f.Price != "" && f.Price != listing.BracketAll {
		parts = append(parts, "price: "+string(f.Price))
	}
	if f.Amount != "" && f.Amount != listing.BracketAll {
		parts = append(parts, "amount: "+string(f.Amount))
	}
	if f.Window != "" && f.Window != listing.WindowAll {
		parts = append(parts, "date: "+string(f.Window))
	}
	return strings.Join(parts, ", ")
}

// Request is a listing request as typed on the command line.
type Request struct {
	Search   string
	Sort     string
	Desc     bool
	Page     int
	PageSize int
}

// NewPipeline validates req against cfg and builds the pipeline.
func NewPipeline[T any](cfg listing.Config[T], req Request, filters ...listing.Predicate[T]) (listing.Pipeline[T], error) {
	if err := cfg.Sort.Validate(req.Sort); err != nil {
		return listing.Pipeline[T]{}, err
	}

	state := cfg.DefaultSort
	if req.Sort != "" {
		state = listing.SortState{Key: req.Sort}
	}
	if req.Desc {
		state.Direction = listing.Descending
	}

	page := req.Page
	if page < 1 {
		page = 1
	}

	return listing.Pipeline[T]{
		Config: cfg,
		Query: listing.Query[T]{
			Text:     req.Search,
			Filters:  filters,
			Sort:     state,
			Page:     page,
			PageSize: req.PageSize,
		},
	}, nil
}
