package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mahmoud-slama/creditapp/internal/common"
	"github.com/mahmoud-slama/creditapp/internal/model"
)

// Submitter creates one purchase on the backend.
type Submitter interface {
	CreatePurchase(ctx context.Context, req model.PurchaseRequest) error
}

// Status is the outcome of one line item.
type Status int

// Item outcomes.
const (
	StatusSucceeded Status = iota
	StatusFailed
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	default:
		return "succeeded"
	}
}

// ItemResult records what happened to one line item.
type ItemResult struct {
	Err    error
	Item   LineItem
	Index  int
	Status Status
}

// BatchResult holds one result per submitted line item, in cart order.
type BatchResult struct {
	Results []ItemResult
}

func (b BatchResult) filter(s Status) []ItemResult {
	var out []ItemResult
	for _, r := range b.Results {
		if r.Status == s {
			out = append(out, r)
		}
	}
	return out
}

// Succeeded returns the items the backend accepted.
func (b BatchResult) Succeeded() []ItemResult { return b.filter(StatusSucceeded) }

// Failed returns the items the backend rejected.
func (b BatchResult) Failed() []ItemResult { return b.filter(StatusFailed) }

// Skipped returns the items never sent.
func (b BatchResult) Skipped() []ItemResult { return b.filter(StatusSkipped) }

// OK reports whether every item succeeded.
func (b BatchResult) OK() bool {
	return len(b.Succeeded()) == len(b.Results)
}

// Err joins the errors of failed and skipped items, or returns nil.
func (b BatchResult) Err() error {
	var errs []error
	for _, r := range b.Results {
		if r.Status != StatusSucceeded && r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Item.Name, r.Err))
		}
	}
	return errors.Join(errs...)
}

// SubmitOptions controls partial-failure handling.
type SubmitOptions struct {
	// Progress is called after each item with the number of items handled so far.
	Progress func(r ItemResult, done, total int)
	// StopOnError halts at the first failure and marks later items skipped.
	StopOnError bool
}

// ErrStopped marks items skipped after an earlier failure.
var ErrStopped = errors.New("not submitted after an earlier failure")

// Submit sends one create-purchase request per line item, sequentially.
// Items that succeed are removed from the cart; failed and skipped items stay for a retry.
func Submit(ctx context.Context, c *Cart, userID int, s Submitter, opts SubmitOptions) (BatchResult, error) {
	if c.Len() == 0 {
		return BatchResult{}, ErrEmptyCart
	}
	if userID <= 0 {
		return BatchResult{}, fmt.Errorf("%w: user id %d", common.ErrInvalidInput, userID)
	}

	items := c.Items()
	result := BatchResult{Results: make([]ItemResult, 0, len(items))}
	var halt error

	for i, item := range items {
		r := ItemResult{Index: i, Item: item}

		switch {
		case halt != nil:
			r.Status = StatusSkipped
			r.Err = halt
		case ctx.Err() != nil:
			r.Status = StatusSkipped
			r.Err = ctx.Err()
		default:
			err := s.CreatePurchase(ctx, model.PurchaseRequest{
				Name:     item.Name,
				Quantity: item.Quantity,
				UserID:   userID,
			})
			if err != nil {
				r.Status = StatusFailed
				r.Err = err
				slog.Warn("Purchase submission failed",
					"item", item.Name,
					"quantity", item.Quantity,
					"user_id", userID,
					"error", err)
				if opts.StopOnError {
					halt = ErrStopped
				}
			} else {
				slog.Debug("Purchase submitted", "item", item.Name, "quantity", item.Quantity, "user_id", userID)
			}
		}

		result.Results = append(result.Results, r)
		if opts.Progress != nil {
			opts.Progress(r, i+1, len(items))
		}
	}

	remaining := make(map[int]bool, len(items))
	for _, r := range result.Results {
		if r.Status != StatusSucceeded {
			remaining[r.Index] = true
		}
	}
	c.keep(remaining)

	return result, nil
}
