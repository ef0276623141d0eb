package api

import (
	"context"
	"fmt"

	"github.com/mahmoud-slama/creditapp/internal/common"
	"github.com/mahmoud-slama/creditapp/internal/model"
)

// ListAllPurchases returns every purchase, for admins.
func (c *Client) ListAllPurchases(ctx context.Context) ([]model.Purchase, error) {
	purchases := []model.Purchase{}
	if err := c.get(ctx, "/api/purchases/admin", &purchases); err != nil {
		return nil, fmt.Errorf("failed to fetch purchases: %w", err)
	}
	return purchases, nil
}

// ListClientPurchases returns the purchase history of one client.
func (c *Client) ListClientPurchases(ctx context.Context, clientID int) ([]model.Purchase, error) {
	purchases := []model.Purchase{}
	if err := c.get(ctx, fmt.Sprintf("/api/purchases/client/%d", clientID), &purchases); err != nil {
		return nil, fmt.Errorf("failed to fetch purchases of client %d: %w", clientID, err)
	}
	for i := range purchases {
		if purchases[i].UserID == 0 {
			purchases[i].UserID = clientID
		}
	}
	return purchases, nil
}

// purchaseBody repeats the name under the entity's own field name.
type purchaseBody struct {
	model.PurchaseRequest
	PurchaseName string `json:"purchaseName"`
}

// CreatePurchase records one purchase for a client.
func (c *Client) CreatePurchase(ctx context.Context, req model.PurchaseRequest) error {
	if req.Name == "" || req.Quantity < 1 || req.UserID <= 0 {
		return fmt.Errorf("%w: purchase %+v", common.ErrInvalidInput, req)
	}
	body := purchaseBody{PurchaseRequest: req, PurchaseName: req.Name}
	if err := c.post(ctx, "/api/purchases/admin", body, nil); err != nil {
		return fmt.Errorf("failed to create purchase %q: %w", req.Name, err)
	}
	return nil
}
