package fixtures_test

import (
	"testing"

	"github.com/mahmoud-slama/creditapp/internal/model"
	"github.com/mahmoud-slama/creditapp/internal/testutil"
	"github.com/mahmoud-slama/creditapp/internal/testutil/fixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderBasicClients(t *testing.T) {
	data := fixtures.NewBuilder(t).WithBasicClients().Build()
	require.Len(t, data.Clients, 3)

	admin, ok := data.Client(fixtures.AdminID)
	require.True(t, ok)
	assert.True(t, admin.Role.IsAdmin())

	over, ok := data.Client(fixtures.OverLimitID)
	require.True(t, ok)
	assert.True(t, over.OverLimit())
}

func TestBuilderPurchasesUseCatalogPrices(t *testing.T) {
	data := fixtures.NewBuilder(t).
		WithCatalog().
		WithPurchase(fixtures.UserID, fixtures.ProductOliveOil, 3, 1).
		Build()

	require.Len(t, data.Purchases, 1)
	p := data.Purchases[0]
	assert.InDelta(t, 360, p.Amount, 0.001)
	assert.Equal(t, fixtures.Epoch.AddDate(0, 0, -1), p.Date())
	assert.Equal(t, "OLIVE-OIL", data.MustProduct(t, fixtures.ProductOliveOil).Ref)
}

func TestBuilderDefaultsRole(t *testing.T) {
	data := fixtures.NewBuilder(t).WithClient(model.Client{ID: 9, Email: "x@example.com"}).Build()
	assert.Equal(t, model.RoleUser, data.Clients[0].Role)
}

func TestSeedFakeAPI(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	data := fixtures.NewBuilder(t).
		WithBasicClients().
		WithCatalog().
		WithHistory(fixtures.UserID).
		Seed(api)

	c, ok := api.Client(fixtures.UserID)
	require.True(t, ok)
	assert.Equal(t, fixtures.UserEmail, c.Email)
	assert.Len(t, api.Purchases(), len(data.PurchasesOf(fixtures.UserID)))

	p := data.MustProduct(t, fixtures.ProductSaffron)
	seeded, ok := api.Product(p.ID)
	require.True(t, ok)
	assert.Equal(t, p, seeded)
}
