// Package fixtures builds accounts, catalog entries and purchases for tests.
// It offers a fluent API that seeds any backend fake implementing Seeder.
//
// Example usage:
//
//	api := testutil.NewFakeAPI(t)
//	data := fixtures.NewBuilder(t).
//		WithBasicClients().
//		WithCatalog().
//		WithHistory(fixtures.UserID).
//		Seed(api)
package fixtures

import (
	"strings"
	"testing"
	"time"

	"github.com/mahmoud-slama/creditapp/internal/model"
)

// Well-known account ids and emails.
const (
	AdminID     = 1
	UserID      = 2
	OverLimitID = 3

	AdminEmail     = "admin@example.com"
	UserEmail      = "amal@example.com"
	OverLimitEmail = "karim@example.com"
)

// ProductName is a strongly-typed catalog name.
type ProductName string

// Catalog entries used across tests.
const (
	ProductOliveOil ProductName = "Olive oil"
	ProductGreenTea ProductName = "Green tea"
	ProductSaffron  ProductName = "Saffron"
	ProductDates    ProductName = "Dates"
	ProductCouscous ProductName = "Couscous"
)

// Epoch is the instant purchases are dated from.
var Epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// Seeder accepts fixture data. testutil.FakeAPI implements it.
type Seeder interface {
	AddClient(c model.Client)
	AddProduct(p model.Product)
	AddPurchase(p model.Purchase)
}

// Data is what a builder produced.
type Data struct {
	Clients   []model.Client
	Products  []model.Product
	Purchases []model.Purchase
}

// Client returns the account with id.
func (d Data) Client(id int) (model.Client, bool) {
	for _, c := range d.Clients {
		if c.ID == id {
			return c, true
		}
	}
	return model.Client{}, false
}

// MustProduct returns the product called name or fails the test.
func (d Data) MustProduct(t *testing.T, name ProductName) model.Product {
	t.Helper()
	for _, p := range d.Products {
		if strings.EqualFold(p.Name, string(name)) {
			return p
		}
	}
	t.Fatalf("product %q not found in test data", name)
	return model.Product{}
}

// PurchasesOf returns the purchases of one account.
func (d Data) PurchasesOf(userID int) []model.Purchase {
	var out []model.Purchase
	for _, p := range d.Purchases {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out
}

// Builder collects fixture data.
type Builder struct {
	t          *testing.T
	data       Data
	nextBuyID  int
	nextProdID int
}

// NewBuilder creates an empty builder for t.
func NewBuilder(t *testing.T) *Builder {
	t.Helper()
	return &Builder{t: t, nextBuyID: 1, nextProdID: 1}
}

// WithClient adds an account. Ids must be unique.
func (b *Builder) WithClient(c model.Client) *Builder {
	if _, dup := b.data.Client(c.ID); dup {
		b.t.Fatalf("duplicate client id %d", c.ID)
	}
	if c.Role == "" {
		c.Role = model.RoleUser
	}
	b.data.Clients = append(b.data.Clients, c)
	return b
}

// WithBasicClients adds an admin, a client within limit and one over it.
func (b *Builder) WithBasicClients() *Builder {
	return b.
		WithClient(model.Client{ID: AdminID, FirstName: "Nadia", LastName: "Admin", Email: AdminEmail, Role: model.RoleAdmin, MaxAmount: 1000}).
		WithClient(model.Client{ID: UserID, FirstName: "Amal", LastName: "Haddad", Email: UserEmail, Montant: 90, MaxAmount: 200}).
		WithClient(model.Client{ID: OverLimitID, FirstName: "Karim", LastName: "Benali", Email: OverLimitEmail, Montant: 650, MaxAmount: 500})
}

// WithProduct adds a catalog entry with the next free id.
func (b *Builder) WithProduct(name ProductName, price float64, quantity int) *Builder {
	b.data.Products = append(b.data.Products, model.Product{
		ID:       b.nextProdID,
		Name:     string(name),
		Ref:      strings.ToUpper(strings.ReplaceAll(string(name), " ", "-")),
		Price:    price,
		Quantity: quantity,
	})
	b.nextProdID++
	return b
}

// WithCatalog adds products spread over the low, medium and high price brackets.
func (b *Builder) WithCatalog() *Builder {
	return b.
		WithProduct(ProductGreenTea, 8, 40).
		WithProduct(ProductCouscous, 12.5, 25).
		WithProduct(ProductDates, 75, 10).
		WithProduct(ProductOliveOil, 120, 6).
		WithProduct(ProductSaffron, 450, 2)
}

// WithPurchase records qty units of a catalog product bought by userID, daysAgo days before Epoch.
func (b *Builder) WithPurchase(userID int, name ProductName, qty, daysAgo int) *Builder {
	var price float64
	for _, p := range b.data.Products {
		if p.Name == string(name) {
			price = p.Price
		}
	}
	b.data.Purchases = append(b.data.Purchases, model.Purchase{
		ID:           b.nextBuyID,
		UserID:       userID,
		PurchaseName: string(name),
		Quantity:     qty,
		Price:        price,
		Amount:       price * float64(qty),
		PurchaseDate: model.Timestamp{Time: Epoch.AddDate(0, 0, -daysAgo)},
	})
	b.nextBuyID++
	return b
}

// WithHistory adds a few purchases for userID spread over the last months.
func (b *Builder) WithHistory(userID int) *Builder {
	return b.
		WithPurchase(userID, ProductGreenTea, 2, 0).
		WithPurchase(userID, ProductDates, 1, 3).
		WithPurchase(userID, ProductOliveOil, 1, 20).
		WithPurchase(userID, ProductSaffron, 1, 200)
}

// Build returns the collected data.
func (b *Builder) Build() Data {
	return b.data
}

// Seed pushes the data into s and returns it.
func (b *Builder) Seed(s Seeder) Data {
	b.t.Helper()
	for _, c := range b.data.Clients {
		s.AddClient(c)
	}
	for _, p := range b.data.Products {
		s.AddProduct(p)
	}
	for _, p := range b.data.Purchases {
		s.AddPurchase(p)
	}
	return b.data
}
