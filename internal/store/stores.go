package store

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/mahmoud-slama/creditapp/internal/cache"
	"github.com/mahmoud-slama/creditapp/internal/common"
	"github.com/mahmoud-slama/creditapp/internal/model"
)

// ClientAPI is the part of the backend the client store needs.
type ClientAPI interface {
	ListClients(ctx context.Context) ([]model.Client, error)
	UpdateClient(ctx context.Context, c model.Client) error
	DeleteClient(ctx context.Context, id int) error
	UpdateMaxAmount(ctx context.Context, id int, amount float64) error
}

// Clients holds every account. Mutations go to the backend and then re-fetch.
type Clients struct {
	*Collection[model.Client]
	api ClientAPI
}

// NewClients creates the client store.
func NewClients(api ClientAPI, opts ...Option) *Clients {
	return &Clients{
		Collection: NewCollection(cache.Key("clients"), api.ListClients, opts...),
		api:        api,
	}
}

// Update saves a profile.
func (s *Clients) Update(ctx context.Context, c model.Client) error {
	if err := s.api.UpdateClient(ctx, c); err != nil {
		return err
	}
	return s.Revalidate(ctx)
}

// Delete removes an account.
func (s *Clients) Delete(ctx context.Context, id int) error {
	if err := s.api.DeleteClient(ctx, id); err != nil {
		return err
	}
	return s.Revalidate(ctx)
}

// SetLimit changes a credit limit.
func (s *Clients) SetLimit(ctx context.Context, id int, amount float64) error {
	if err := s.api.UpdateMaxAmount(ctx, id, amount); err != nil {
		return err
	}
	return s.Revalidate(ctx)
}

// Get returns a loaded client by id.
func (s *Clients) Get(id int) (model.Client, bool) {
	return s.Find(func(c model.Client) bool { return c.ID == id })
}

// NameOf returns the full name of a loaded client, or "" when unknown.
func (s *Clients) NameOf(id int) string {
	c, ok := s.Get(id)
	if !ok {
		return ""
	}
	return c.FullName()
}

// ProductAPI is the part of the backend the product store needs.
type ProductAPI interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	CreateProduct(ctx context.Context, p model.Product) error
	UpdateProduct(ctx context.Context, p model.Product) error
	DeleteProduct(ctx context.Context, id int) error
	IncrementQuantity(ctx context.Context, p model.Product) (model.Product, error)
	DecrementQuantity(ctx context.Context, p model.Product) (model.Product, error)
}

// Products holds the catalog.
type Products struct {
	*Collection[model.Product]
	api ProductAPI
}

// NewProducts creates the product store.
func NewProducts(api ProductAPI, opts ...Option) *Products {
	return &Products{
		Collection: NewCollection(cache.Key("products"), api.ListProducts, opts...),
		api:        api,
	}
}

// Create adds a product.
func (s *Products) Create(ctx context.Context, p model.Product) error {
	if err := s.api.CreateProduct(ctx, p); err != nil {
		return err
	}
	return s.Revalidate(ctx)
}

// Update saves a product.
func (s *Products) Update(ctx context.Context, p model.Product) error {
	if err := s.api.UpdateProduct(ctx, p); err != nil {
		return err
	}
	return s.Revalidate(ctx)
}

// Delete removes a product.
func (s *Products) Delete(ctx context.Context, id int) error {
	if err := s.api.DeleteProduct(ctx, id); err != nil {
		return err
	}
	return s.Revalidate(ctx)
}

// Get returns a loaded product by id.
func (s *Products) Get(id int) (model.Product, bool) {
	return s.Find(func(p model.Product) bool { return p.ID == id })
}

// Increment adds one unit of stock. The cached product is patched once the call succeeds.
func (s *Products) Increment(ctx context.Context, id int) (model.Product, error) {
	return s.adjust(ctx, id, s.api.IncrementQuantity)
}

// Decrement removes one unit of stock, never going below zero.
func (s *Products) Decrement(ctx context.Context, id int) (model.Product, error) {
	return s.adjust(ctx, id, s.api.DecrementQuantity)
}

func (s *Products) adjust(ctx context.Context, id int, call func(context.Context, model.Product) (model.Product, error)) (model.Product, error) {
	p, ok := s.Get(id)
	if !ok {
		return model.Product{}, fmt.Errorf("product %d: %w", id, common.ErrNotFound)
	}
	updated, err := call(ctx, p)
	if err != nil {
		return p, err
	}
	s.Patch(ctx,
		func(x model.Product) bool { return x.ID == id },
		func(x model.Product) model.Product {
			x.Quantity = updated.Quantity
			return x
		})
	return updated, nil
}

// PurchaseAPI is the part of the backend the purchase store needs.
type PurchaseAPI interface {
	ListAllPurchases(ctx context.Context) ([]model.Purchase, error)
	ListClientPurchases(ctx context.Context, clientID int) ([]model.Purchase, error)
}

// Purchases holds the admin list and one history per client.
type Purchases struct {
	All      *Collection[model.Purchase]
	api      PurchaseAPI
	byClient map[int]*Collection[model.Purchase]
	opts     []Option
	mu       sync.Mutex
}

// NewPurchases creates the purchase store.
func NewPurchases(api PurchaseAPI, opts ...Option) *Purchases {
	return &Purchases{
		All:      NewCollection(cache.Key("purchases"), api.ListAllPurchases, opts...),
		api:      api,
		byClient: make(map[int]*Collection[model.Purchase]),
		opts:     opts,
	}
}

// ForClient returns the purchase history collection of one client.
func (s *Purchases) ForClient(clientID int) *Collection[model.Purchase] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.byClient[clientID]; ok {
		return c
	}
	c := NewCollection(
		cache.Key("purchases", "client", strconv.Itoa(clientID)),
		func(ctx context.Context) ([]model.Purchase, error) {
			return s.api.ListClientPurchases(ctx, clientID)
		},
		s.opts...,
	)
	s.byClient[clientID] = c
	return c
}

// Invalidate re-fetches every purchase view that has loaded, e.g. after a cart submission.
func (s *Purchases) Invalidate(ctx context.Context) error {
	s.mu.Lock()
	views := []*Collection[model.Purchase]{s.All}
	for _, c := range s.byClient {
		views = append(views, c)
	}
	s.mu.Unlock()

	for _, c := range views {
		if _, loaded := c.Items(); !loaded {
			continue
		}
		if err := c.Revalidate(ctx); err != nil {
			return err
		}
	}
	return nil
}
