package api

import (
	"context"
	"fmt"

	"github.com/mahmoud-slama/creditapp/internal/credit"
	"github.com/mahmoud-slama/creditapp/internal/model"
	"golang.org/x/sync/errgroup"
)

// ListClients returns every account.
func (c *Client) ListClients(ctx context.Context) ([]model.Client, error) {
	clients := []model.Client{}
	if err := c.get(ctx, "/api/v1/management/users", &clients); err != nil {
		return nil, fmt.Errorf("failed to fetch clients: %w", err)
	}
	return clients, nil
}

// GetClient returns one account.
func (c *Client) GetClient(ctx context.Context, id int) (*model.Client, error) {
	var client model.Client
	if err := c.get(ctx, fmt.Sprintf("/api/v1/management/user/%d", id), &client); err != nil {
		return nil, fmt.Errorf("failed to fetch client %d: %w", id, err)
	}
	return &client, nil
}

// UpdateClient replaces an account's profile.
func (c *Client) UpdateClient(ctx context.Context, client model.Client) error {
	if err := c.put(ctx, fmt.Sprintf("/api/v1/management/user/%d", client.ID), client, nil); err != nil {
		return fmt.Errorf("failed to update client %d: %w", client.ID, err)
	}
	return nil
}

// DeleteClient removes an account.
func (c *Client) DeleteClient(ctx context.Context, id int) error {
	if err := c.delete(ctx, fmt.Sprintf("/api/v1/management/user/%d", id)); err != nil {
		return fmt.Errorf("failed to delete client %d: %w", id, err)
	}
	return nil
}

// GetMaxAmount returns the credit limit of a client.
func (c *Client) GetMaxAmount(ctx context.Context, id int) (float64, error) {
	var amount float64
	if err := c.get(ctx, fmt.Sprintf("/api/v1/user/maxAmount/%d", id), &amount); err != nil {
		return 0, fmt.Errorf("failed to fetch credit limit of client %d: %w", id, err)
	}
	return amount, nil
}

// GetCurrentAmount returns the balance of a client.
func (c *Client) GetCurrentAmount(ctx context.Context, id int) (float64, error) {
	var amount float64
	if err := c.get(ctx, fmt.Sprintf("/api/v1/user/montant/%d", id), &amount); err != nil {
		return 0, fmt.Errorf("failed to fetch balance of client %d: %w", id, err)
	}
	return amount, nil
}

type maxAmountRequest struct {
	MaxAmount float64 `json:"maxAmount"`
}

// UpdateMaxAmount sets a new credit limit.
func (c *Client) UpdateMaxAmount(ctx context.Context, id int, amount float64) error {
	if err := credit.ValidateLimit(amount); err != nil {
		return err
	}
	if err := c.put(ctx, fmt.Sprintf("/api/v1/user/maxAmount/%d", id), maxAmountRequest{MaxAmount: amount}, nil); err != nil {
		return fmt.Errorf("failed to update credit limit of client %d: %w", id, err)
	}
	return nil
}

// CreditSnapshot reads balance and limit concurrently and combines them only
// when both reads succeed, so a half-updated view is never returned.
func (c *Client) CreditSnapshot(ctx context.Context, id int) (credit.Progress, error) {
	var current, limit float64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = c.GetCurrentAmount(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		limit, err = c.GetMaxAmount(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return credit.Progress{}, err
	}

	return credit.Compute(current, limit), nil
}
