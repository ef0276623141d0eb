package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mahmoud-slama/creditapp/internal/model"
)

// FakePassword is accepted for every seeded account.
const FakePassword = "secret"

var fakeSigningKey = []byte("test-signing-key")

// FakeAPI is an in-memory credit backend served over httptest.
// Access tokens are HS256 JWTs so clients can read their expiry.
type FakeAPI struct {
	server        *httptest.Server
	access        map[string]bool
	refresh       map[string]int
	failures      map[string][]int
	calls         map[string]int
	prices        map[string]float64
	images        map[string]string
	clients       []model.Client
	products      []model.Product
	purchases     []model.Purchase
	tokenTTL      time.Duration
	seq           int
	nextID        int
	mu            sync.Mutex
	rejectRefresh bool
}

// NewFakeAPI starts a fake backend that is closed when the test ends.
func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()

	f := &FakeAPI{
		access:   make(map[string]bool),
		refresh:  make(map[string]int),
		failures: make(map[string][]int),
		calls:    make(map[string]int),
		prices:   make(map[string]float64),
		images:   make(map[string]string),
		tokenTTL: time.Hour,
		nextID:   100,
	}

	r := chi.NewRouter()
	r.Use(f.record)
	r.Use(f.injectFailures)

	r.Post("/api/v1/auth/authenticate", f.authenticate)
	r.Post("/api/v1/auth/register", f.register)
	r.Post("/api/v1/auth/refresh-token", f.refreshToken)

	r.Group(func(r chi.Router) {
		r.Use(f.requireAuth)

		r.Post("/api/v1/auth/logout", f.logout)

		r.Get("/api/v1/management/users", f.listClients)
		r.Get("/api/v1/management/user/{id}", f.getClient)
		r.Put("/api/v1/management/user/{id}", f.updateClient)
		r.Delete("/api/v1/management/user/{id}", f.deleteClient)
		r.Get("/api/v1/user/maxAmount/{id}", f.getMaxAmount)
		r.Put("/api/v1/user/maxAmount/{id}", f.putMaxAmount)
		r.Get("/api/v1/user/montant/{id}", f.getMontant)

		r.Get("/Product", f.listProducts)
		r.Post("/Product", f.createProduct)
		r.Get("/Product/{id}", f.getProduct)
		r.Put("/Product/{id}", f.updateProduct)
		r.Delete("/Product/{id}", f.deleteProduct)
		r.Get("/Product/price/{name}", f.lookupPrice)
		r.Get("/Product/image/{name}", f.lookupImage)

		r.Get("/api/purchases/admin", f.listPurchases)
		r.Post("/api/purchases/admin", f.createPurchase)
		r.Get("/api/purchases/client/{id}", f.listClientPurchases)
	})

	f.server = httptest.NewServer(r)
	t.Cleanup(f.server.Close)
	return f
}

// URL is the base URL of the fake backend.
func (f *FakeAPI) URL() string {
	return f.server.URL
}

// AddClient seeds an account.
func (f *FakeAPI) AddClient(c model.Client) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clients = append(f.clients, c)
}

// AddProduct seeds a catalog entry.
func (f *FakeAPI) AddProduct(p model.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products = append(f.products, p)
}

// AddPurchase seeds a purchase.
func (f *FakeAPI) AddPurchase(p model.Purchase) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purchases = append(f.purchases, p)
}

// SetLookup registers the fallback price and image of a product name.
func (f *FakeAPI) SetLookup(name string, price float64, image string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prices[strings.ToLower(name)] = price
	f.images[strings.ToLower(name)] = image
}

// Client returns a seeded account.
func (f *FakeAPI) Client(id int) (model.Client, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.clientIndex(id)
	if i < 0 {
		return model.Client{}, false
	}
	return f.clients[i], true
}

// Product returns a catalog entry.
func (f *FakeAPI) Product(id int) (model.Product, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.productIndex(id)
	if i < 0 {
		return model.Product{}, false
	}
	return f.products[i], true
}

// Purchases returns a copy of every recorded purchase.
func (f *FakeAPI) Purchases() []model.Purchase {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Purchase(nil), f.purchases...)
}

// Fail makes the next len(statuses) requests to "METHOD /path" answer with those statuses.
func (f *FakeAPI) Fail(method, path string, statuses ...int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := method + " " + path
	f.failures[key] = append(f.failures[key], statuses...)
}

// Calls counts requests to "METHOD /path".
func (f *FakeAPI) Calls(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method+" "+path]
}

// ExpireAccessTokens invalidates every issued access token; refresh tokens stay valid.
func (f *FakeAPI) ExpireAccessTokens() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.access = make(map[string]bool)
}

// RejectRefresh makes the refresh endpoint answer 403.
func (f *FakeAPI) RejectRefresh() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejectRefresh = true
}

// IssueTokens creates a valid token pair for userID.
func (f *FakeAPI) IssueTokens(userID int) (access, refresh string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.issueLocked(userID)
}

func (f *FakeAPI) issueLocked(userID int) (string, string) {
	f.seq++
	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userID),
		ID:        strconv.Itoa(f.seq),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(f.tokenTTL)),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(fakeSigningKey)
	if err != nil {
		panic(fmt.Sprintf("sign fake token: %v", err))
	}
	refresh := fmt.Sprintf("refresh-%d-%d", userID, f.seq)
	f.access[access] = true
	f.refresh[refresh] = userID
	return access, refresh
}

func (f *FakeAPI) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.calls[r.Method+" "+r.URL.Path]++
		f.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (f *FakeAPI) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		f.mu.Lock()
		queue := f.failures[key]
		status := 0
		if len(queue) > 0 {
			status, f.failures[key] = queue[0], queue[1:]
		}
		f.mu.Unlock()

		if status != 0 {
			http.Error(w, http.StatusText(status), status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearer(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func (f *FakeAPI) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		ok := f.access[bearer(r)]
		f.mu.Unlock()
		if !ok {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	return id, err == nil
}

func (f *FakeAPI) clientIndex(id int) int {
	for i, c := range f.clients {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (f *FakeAPI) productIndex(id int) int {
	for i, p := range f.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (f *FakeAPI) authResponse(c model.Client) model.AuthResponse {
	access, refresh := f.issueLocked(c.ID)
	return model.AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		FirstName:    c.FirstName,
		Role:         c.Role,
		ID:           c.ID,
		MaxAmount:    c.MaxAmount,
		TotalAmount:  c.Montant,
	}
}

func (f *FakeAPI) authenticate(w http.ResponseWriter, r *http.Request) {
	var creds model.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.clients {
		if strings.EqualFold(c.Email, creds.Email) && creds.Password == FakePassword {
			writeJSON(w, http.StatusOK, f.authResponse(c))
			return
		}
	}
	http.Error(w, "bad credentials", http.StatusForbidden)
}

func (f *FakeAPI) register(w http.ResponseWriter, r *http.Request) {
	var reg model.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	c := model.Client{
		ID:        f.nextID,
		FirstName: reg.FirstName,
		LastName:  reg.LastName,
		Email:     reg.Email,
		Phone:     reg.Phone,
		Role:      reg.Role,
	}
	f.clients = append(f.clients, c)
	writeJSON(w, http.StatusOK, f.authResponse(c))
}

func (f *FakeAPI) refreshToken(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	userID, ok := f.refresh[bearer(r)]
	if !ok || f.rejectRefresh {
		http.Error(w, "invalid refresh token", http.StatusForbidden)
		return
	}
	access, _ := f.issueLocked(userID)
	writeJSON(w, http.StatusOK, model.AuthResponse{AccessToken: access, RefreshToken: bearer(r), ID: userID})
}

func (f *FakeAPI) logout(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	delete(f.access, bearer(r))
	f.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (f *FakeAPI) listClients(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, f.clients)
}

func (f *FakeAPI) withClient(w http.ResponseWriter, r *http.Request, fn func(i int)) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.clientIndex(id)
	if i < 0 {
		http.NotFound(w, r)
		return
	}
	fn(i)
}

func (f *FakeAPI) getClient(w http.ResponseWriter, r *http.Request) {
	f.withClient(w, r, func(i int) { writeJSON(w, http.StatusOK, f.clients[i]) })
}

func (f *FakeAPI) updateClient(w http.ResponseWriter, r *http.Request) {
	var c model.Client
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.withClient(w, r, func(i int) {
		c.ID = f.clients[i].ID
		f.clients[i] = c
		writeJSON(w, http.StatusOK, c)
	})
}

func (f *FakeAPI) deleteClient(w http.ResponseWriter, r *http.Request) {
	f.withClient(w, r, func(i int) {
		f.clients = append(f.clients[:i], f.clients[i+1:]...)
		w.WriteHeader(http.StatusNoContent)
	})
}

func (f *FakeAPI) getMaxAmount(w http.ResponseWriter, r *http.Request) {
	f.withClient(w, r, func(i int) { writeJSON(w, http.StatusOK, f.clients[i].MaxAmount) })
}

func (f *FakeAPI) getMontant(w http.ResponseWriter, r *http.Request) {
	f.withClient(w, r, func(i int) { writeJSON(w, http.StatusOK, f.clients[i].Montant) })
}

func (f *FakeAPI) putMaxAmount(w http.ResponseWriter, r *http.Request) {
	var body struct {
		MaxAmount float64 `json:"maxAmount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.withClient(w, r, func(i int) {
		f.clients[i].MaxAmount = body.MaxAmount
		writeJSON(w, http.StatusOK, f.clients[i])
	})
}

func (f *FakeAPI) listProducts(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, f.products)
}

func (f *FakeAPI) createProduct(w http.ResponseWriter, r *http.Request) {
	var p model.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p.ID = f.nextID
	f.products = append(f.products, p)
	writeJSON(w, http.StatusCreated, p)
}

func (f *FakeAPI) withProduct(w http.ResponseWriter, r *http.Request, fn func(i int)) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.productIndex(id)
	if i < 0 {
		http.NotFound(w, r)
		return
	}
	fn(i)
}

func (f *FakeAPI) getProduct(w http.ResponseWriter, r *http.Request) {
	f.withProduct(w, r, func(i int) { writeJSON(w, http.StatusOK, f.products[i]) })
}

func (f *FakeAPI) updateProduct(w http.ResponseWriter, r *http.Request) {
	var p model.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.withProduct(w, r, func(i int) {
		p.ID = f.products[i].ID
		f.products[i] = p
		writeJSON(w, http.StatusOK, p)
	})
}

func (f *FakeAPI) deleteProduct(w http.ResponseWriter, r *http.Request) {
	f.withProduct(w, r, func(i int) {
		f.products = append(f.products[:i], f.products[i+1:]...)
		w.WriteHeader(http.StatusNoContent)
	})
}

func (f *FakeAPI) lookupPrice(w http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(chi.URLParam(r, "name"))
	f.mu.Lock()
	price, ok := f.prices[name]
	f.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, price)
}

func (f *FakeAPI) lookupImage(w http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(chi.URLParam(r, "name"))
	f.mu.Lock()
	image, ok := f.images[name]
	f.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte(image))
}

func (f *FakeAPI) listPurchases(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, f.purchases)
}

func (f *FakeAPI) listClientPurchases(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Purchase{}
	for _, p := range f.purchases {
		if p.UserID == id {
			out = append(out, p)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (f *FakeAPI) createPurchase(w http.ResponseWriter, r *http.Request) {
	var req model.PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var product *model.Product
	for i := range f.products {
		if strings.EqualFold(f.products[i].Name, req.Name) {
			product = &f.products[i]
		}
	}
	if product == nil {
		http.Error(w, "Product not found with name: "+req.Name, http.StatusNotFound)
		return
	}

	f.nextID++
	p := model.Purchase{
		ID:           f.nextID,
		UserID:       req.UserID,
		PurchaseName: product.Name,
		Quantity:     req.Quantity,
		Amount:       product.Price * float64(req.Quantity),
		PurchaseDate: model.Timestamp{Time: time.Now()},
	}
	f.purchases = append(f.purchases, p)
	if i := f.clientIndex(req.UserID); i >= 0 {
		f.clients[i].Montant += p.Amount
	}
	writeJSON(w, http.StatusCreated, p)
}
