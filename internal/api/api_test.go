package api

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mahmoud-slama/creditapp/internal/common"
	"github.com/mahmoud-slama/creditapp/internal/credit"
	"github.com/mahmoud-slama/creditapp/internal/model"
	"github.com/mahmoud-slama/creditapp/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type memTokens struct {
	tok   *oauth2.Token
	saves int
	mu    sync.Mutex
}

func (m *memTokens) Token() (*oauth2.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tok == nil {
		return nil, common.ErrMissingAuth
	}
	cp := *m.tok
	return &cp, nil
}

func (m *memTokens) SaveToken(tok *oauth2.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tok = tok
	m.saves++
	return nil
}

type headerRecorder struct {
	base    http.RoundTripper
	headers []http.Header
	mu      sync.Mutex
}

func (h *headerRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	h.mu.Lock()
	h.headers = append(h.headers, req.Header.Clone())
	h.mu.Unlock()
	return h.base.RoundTrip(req)
}

func setup(t *testing.T) (*testutil.FakeAPI, *Client, *memTokens) {
	t.Helper()

	fake := testutil.NewFakeAPI(t)
	fake.AddClient(model.Client{ID: 1, FirstName: "Amal", LastName: "Haddad", Email: "amal@example.com", Role: model.RoleAdmin, Montant: 35, MaxAmount: 100})
	access, refresh := fake.IssueTokens(1)
	tokens := &memTokens{tok: TokenFromAuth(access, refresh)}

	client, err := New(fake.URL(), WithTokens(tokens), WithTimeout(5*time.Second))
	require.NoError(t, err)
	return fake, client, tokens
}

func TestNew(t *testing.T) {
	t.Run("defaults blank url", func(t *testing.T) {
		c, err := New("")
		require.NoError(t, err)
		assert.Equal(t, DefaultBaseURL, c.BaseURL())
	})

	t.Run("trims trailing slash", func(t *testing.T) {
		c, err := New("https://credit.example.com/")
		require.NoError(t, err)
		assert.Equal(t, "https://credit.example.com", c.BaseURL())
	})

	t.Run("rejects other schemes", func(t *testing.T) {
		_, err := New("ftp://credit.example.com")
		assert.ErrorIs(t, err, common.ErrInvalidConfig)
	})
}

func TestAuthenticate(t *testing.T) {
	fake, client, _ := setup(t)

	resp, err := client.Authenticate(context.Background(), model.Credentials{Email: "amal@example.com", Password: testutil.FakePassword})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.ID)
	assert.Equal(t, model.RoleAdmin, resp.Role)
	assert.NotEmpty(t, resp.AccessToken)

	_, err = client.Authenticate(context.Background(), model.Credentials{Email: "amal@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUnauthorized)
	assert.Equal(t, 2, fake.Calls(http.MethodPost, "/api/v1/auth/authenticate"))
}

func TestRegisterValidatesBeforeSending(t *testing.T) {
	fake, client, _ := setup(t)

	_, err := client.Register(context.Background(), model.Registration{FirstName: "Sami"})
	require.Error(t, err)
	assert.Zero(t, fake.Calls(http.MethodPost, "/api/v1/auth/register"))

	resp, err := client.Register(context.Background(), model.Registration{
		FirstName: "Sami",
		LastName:  "Ben Ali",
		Email:     "sami@example.com",
		Password:  "pw",
		Phone:     "12345678",
		Role:      model.RoleUser,
	})
	require.NoError(t, err)
	assert.Positive(t, resp.ID)
}

func TestAuthTransport(t *testing.T) {
	t.Run("refreshes and replays once on 401", func(t *testing.T) {
		fake, client, tokens := setup(t)
		before, _ := tokens.Token()
		fake.ExpireAccessTokens()

		clients, err := client.ListClients(context.Background())
		require.NoError(t, err)
		assert.Len(t, clients, 1)

		after, _ := tokens.Token()
		assert.NotEqual(t, before.AccessToken, after.AccessToken)
		assert.Equal(t, before.RefreshToken, after.RefreshToken)
		assert.Equal(t, 1, tokens.saves)
		assert.Equal(t, 1, fake.Calls(http.MethodPost, "/api/v1/auth/refresh-token"))
		assert.Equal(t, 2, fake.Calls(http.MethodGet, "/api/v1/management/users"))
	})

	t.Run("replays the request body", func(t *testing.T) {
		fake, client, _ := setup(t)
		fake.AddProduct(model.Product{ID: 7, Name: "Tea", Price: 5, Quantity: 10})
		fake.ExpireAccessTokens()

		err := client.CreatePurchase(context.Background(), model.PurchaseRequest{Name: "Tea", Quantity: 3, UserID: 1})
		require.NoError(t, err)

		purchases := fake.Purchases()
		require.Len(t, purchases, 1)
		assert.Equal(t, 3, purchases[0].Quantity)
		assert.InDelta(t, 15.0, purchases[0].Amount, 0.001)
	})

	t.Run("second 401 ends the session", func(t *testing.T) {
		fake, client, _ := setup(t)
		fake.Fail(http.MethodGet, "/api/v1/management/users", http.StatusUnauthorized, http.StatusUnauthorized)

		_, err := client.ListClients(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrSessionExpired)
		assert.Equal(t, 2, fake.Calls(http.MethodGet, "/api/v1/management/users"))
	})

	t.Run("rejected refresh ends the session", func(t *testing.T) {
		fake, client, _ := setup(t)
		fake.RejectRefresh()
		fake.ExpireAccessTokens()

		_, err := client.ListProducts(context.Background())
		assert.ErrorIs(t, err, common.ErrSessionExpired)
		assert.Equal(t, 1, fake.Calls(http.MethodGet, "/Product"))
	})

	t.Run("missing token sends nothing", func(t *testing.T) {
		fake := testutil.NewFakeAPI(t)
		client, err := New(fake.URL(), WithTokens(&memTokens{}))
		require.NoError(t, err)

		_, err = client.ListClients(context.Background())
		assert.ErrorIs(t, err, common.ErrMissingAuth)
		assert.Zero(t, fake.Calls(http.MethodGet, "/api/v1/management/users"))
	})

	t.Run("expired token refreshes proactively", func(t *testing.T) {
		fake, client, tokens := setup(t)
		tokens.tok.Expiry = time.Now().Add(-time.Minute)

		_, err := client.ListClients(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, fake.Calls(http.MethodPost, "/api/v1/auth/refresh-token"))
		assert.Equal(t, 1, fake.Calls(http.MethodGet, "/api/v1/management/users"))
	})
}

func TestRetries(t *testing.T) {
	t.Run("reads retry transient failures", func(t *testing.T) {
		fake, client, _ := setup(t)
		fake.Fail(http.MethodGet, "/api/v1/management/users", http.StatusServiceUnavailable, http.StatusBadGateway)

		clients, err := client.ListClients(context.Background())
		require.NoError(t, err)
		assert.Len(t, clients, 1)
		assert.Equal(t, 3, fake.Calls(http.MethodGet, "/api/v1/management/users"))
	})

	t.Run("not found is not retried", func(t *testing.T) {
		fake, client, _ := setup(t)

		_, err := client.GetClient(context.Background(), 99)
		assert.ErrorIs(t, err, common.ErrNotFound)
		assert.Equal(t, 1, fake.Calls(http.MethodGet, "/api/v1/management/user/99"))
	})

	t.Run("writes are sent once", func(t *testing.T) {
		fake, client, _ := setup(t)
		fake.AddProduct(model.Product{ID: 7, Name: "Tea", Price: 5, Quantity: 10})
		fake.Fail(http.MethodPost, "/api/purchases/admin", http.StatusServiceUnavailable)

		err := client.CreatePurchase(context.Background(), model.PurchaseRequest{Name: "Tea", Quantity: 1, UserID: 1})
		assert.ErrorIs(t, err, common.ErrServerUnavailable)
		assert.Equal(t, 1, fake.Calls(http.MethodPost, "/api/purchases/admin"))
		assert.Empty(t, fake.Purchases())
	})
}

func TestRetryOptions(t *testing.T) {
	tests := []struct {
		name     string
		opts     []Option
		attempts int
	}{
		{name: "default", attempts: DefaultMaxRetries},
		{name: "configured", opts: []Option{WithMaxRetries(5)}, attempts: 5},
		{name: "non-positive keeps default", opts: []Option{WithMaxRetries(0)}, attempts: DefaultMaxRetries},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(DefaultBaseURL, tt.opts...)
			require.NoError(t, err)

			want := common.DefaultRetryOptions()
			want.MaxAttempts = tt.attempts
			assert.Equal(t, want, client.retryOptions())
		})
	}
}

func TestRequestIDHeader(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	fake.AddClient(model.Client{ID: 1, Email: "amal@example.com"})
	access, refresh := fake.IssueTokens(1)

	rec := &headerRecorder{base: http.DefaultTransport}
	client, err := New(fake.URL(),
		WithHTTPClient(&http.Client{Transport: rec}),
		WithTokens(&memTokens{tok: TokenFromAuth(access, refresh)}),
	)
	require.NoError(t, err)

	_, err = client.ListClients(context.Background())
	require.NoError(t, err)
	_, err = client.ListProducts(context.Background())
	require.NoError(t, err)

	require.Len(t, rec.headers, 2)
	first := rec.headers[0].Get(RequestIDHeader)
	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, rec.headers[1].Get(RequestIDHeader))
	assert.Equal(t, "Bearer "+access, rec.headers[0].Get("Authorization"))
}

func TestCreditEndpoints(t *testing.T) {
	fake, client, _ := setup(t)
	ctx := context.Background()

	progress, err := client.CreditSnapshot(ctx, 1)
	require.NoError(t, err)
	assert.InDelta(t, 35.0, progress.Percent, 0.001)
	assert.Equal(t, credit.Nominal, progress.Tier)

	require.NoError(t, client.UpdateMaxAmount(ctx, 1, 40))
	progress, err = client.CreditSnapshot(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, credit.Critical, progress.Tier)

	err = client.UpdateMaxAmount(ctx, 1, 0)
	assert.ErrorIs(t, err, credit.ErrInvalidLimit)
	assert.Equal(t, 1, fake.Calls(http.MethodPut, "/api/v1/user/maxAmount/1"))

	_, err = client.CreditSnapshot(ctx, 42)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestProductQuantity(t *testing.T) {
	fake, client, _ := setup(t)
	ctx := context.Background()
	fake.AddProduct(model.Product{ID: 3, Name: "Rice", Ref: "R-1", Images: "rice.png", Price: 2.5, Quantity: 1})

	p, err := client.GetProduct(ctx, 3)
	require.NoError(t, err)

	got, err := client.DecrementQuantity(ctx, *p)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)

	got, err = client.DecrementQuantity(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)
	assert.Equal(t, 1, fake.Calls(http.MethodPut, "/Product/3"))

	got, err = client.IncrementQuantity(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Quantity)

	stored, ok := fake.Product(3)
	require.True(t, ok)
	assert.Equal(t, 1, stored.Quantity)
}

func TestLookups(t *testing.T) {
	fake, client, _ := setup(t)
	fake.SetLookup("Green Tea", 4.75, "https://img.example.com/tea.png")

	price, err := client.LookupPrice(context.Background(), "Green Tea")
	require.NoError(t, err)
	assert.InDelta(t, 4.75, price, 0.0001)

	image, err := client.LookupImage(context.Background(), "Green Tea")
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/tea.png", image)

	_, err = client.LookupPrice(context.Background(), "Coffee")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestListClientPurchasesFillsUser(t *testing.T) {
	fake, client, _ := setup(t)
	fake.AddPurchase(model.Purchase{ID: 1, UserID: 1, PurchaseName: "Tea", Amount: 5})
	fake.AddPurchase(model.Purchase{ID: 2, UserID: 2, PurchaseName: "Rice", Amount: 3})

	purchases, err := client.ListClientPurchases(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, purchases, 1)
	assert.Equal(t, 1, purchases[0].UserID)

	all, err := client.ListAllPurchases(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCreatePurchaseRejectsBadInput(t *testing.T) {
	fake, client, _ := setup(t)

	tests := []model.PurchaseRequest{
		{Name: "", Quantity: 1, UserID: 1},
		{Name: "Tea", Quantity: 0, UserID: 1},
		{Name: "Tea", Quantity: 1, UserID: 0},
	}
	for _, req := range tests {
		err := client.CreatePurchase(context.Background(), req)
		assert.ErrorIs(t, err, common.ErrInvalidInput)
	}
	assert.Zero(t, fake.Calls(http.MethodPost, "/api/purchases/admin"))
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	got, err := tokenExpiry(raw)
	require.NoError(t, err)
	assert.True(t, got.Equal(exp))

	tok := TokenFromAuth(raw, "r")
	assert.True(t, tok.Expiry.Equal(exp.Add(-expiryLeeway)))
	assert.True(t, tok.Valid())

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "1"}).SignedString([]byte("k"))
	require.NoError(t, err)
	_, err = tokenExpiry(noExp)
	assert.ErrorIs(t, err, errNoExpiry)

	opaque := TokenFromAuth("not-a-jwt", "r")
	assert.True(t, opaque.Expiry.IsZero())
	assert.True(t, opaque.Valid())
}

func TestStatusErrorIs(t *testing.T) {
	tests := []struct {
		target error
		status int
		want   bool
	}{
		{common.ErrUnauthorized, http.StatusUnauthorized, true},
		{common.ErrUnauthorized, http.StatusForbidden, true},
		{common.ErrNotFound, http.StatusNotFound, true},
		{common.ErrServerUnavailable, http.StatusGatewayTimeout, true},
		{common.ErrServerUnavailable, http.StatusInternalServerError, false},
		{common.ErrNotFound, http.StatusBadRequest, false},
	}
	for _, tt := range tests {
		err := &StatusError{Method: http.MethodGet, Path: "/x", Status: tt.status}
		assert.Equal(t, tt.want, err.Is(tt.target), "status %d", tt.status)
	}
}
