package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Names(t *testing.T) {
	tests := []struct {
		name     string
		client   Client
		fullName string
		initials string
	}{
		{"both parts", Client{FirstName: "amina", LastName: "Slama"}, "amina Slama", "AS"},
		{"first only", Client{FirstName: "Omar"}, "Omar", "O"},
		{"empty", Client{}, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.fullName, tt.client.FullName())
			assert.Equal(t, tt.initials, tt.client.Initials())
		})
	}
}

func TestClient_OverLimit(t *testing.T) {
	assert.False(t, Client{Montant: 100, MaxAmount: 100}.OverLimit())
	assert.True(t, Client{Montant: 100.01, MaxAmount: 100}.OverLimit())
}

func TestProduct_UnmarshalJSON(t *testing.T) {
	t.Run("id field", func(t *testing.T) {
		var p Product
		require.NoError(t, json.Unmarshal([]byte(`{"id":7,"name":"Oil","price":12.5,"quantity":3}`), &p))
		assert.Equal(t, 7, p.ID)
		assert.Equal(t, "Oil", p.Name)
		assert.InDelta(t, 12.5, p.Price, 0.0001)
	})

	t.Run("product_id column", func(t *testing.T) {
		var p Product
		require.NoError(t, json.Unmarshal([]byte(`{"product_id":9,"name":"Rice"}`), &p))
		assert.Equal(t, 9, p.ID)
	})
}

func TestProduct_Validate(t *testing.T) {
	valid := Product{Name: "Tea", Ref: "T-1", Images: "http://img/tea.png", Price: 3, Quantity: 1}
	require.NoError(t, valid.Validate())

	invalid := Product{Price: -1, Quantity: -2}
	err := invalid.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProductName)
	assert.ErrorIs(t, err, ErrProductRef)
	assert.ErrorIs(t, err, ErrProductImage)
	assert.ErrorIs(t, err, ErrProductPrice)
	assert.ErrorIs(t, err, ErrProductQuantity)
}

func TestPurchase_DisplayName(t *testing.T) {
	assert.Equal(t, "A", Purchase{PurchaseName: "A", Name: "B"}.DisplayName())
	assert.Equal(t, "B", Purchase{Name: "B"}.DisplayName())
	assert.Equal(t, "C", Purchase{Product: &Product{Name: "C"}}.DisplayName())
	assert.Empty(t, Purchase{}.DisplayName())
}

func TestTimestamp_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
		zero  bool
	}{
		{"rfc3339", `"2024-03-05T10:20:30Z"`, time.Date(2024, 3, 5, 10, 20, 30, 0, time.UTC), false},
		{"local datetime", `"2024-03-05T10:20:30"`, time.Date(2024, 3, 5, 10, 20, 30, 0, time.Local), false},
		{"fractional", `"2024-03-05T10:20:30.123"`, time.Date(2024, 3, 5, 10, 20, 30, 123000000, time.Local), false},
		{"array", `[2024,3,5,10,20]`, time.Date(2024, 3, 5, 10, 20, 0, 0, time.Local), false},
		{"null", `null`, time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(tt.input), &ts))
			if tt.zero {
				assert.True(t, ts.IsZero())
				return
			}
			assert.True(t, tt.want.Equal(ts.Time), "got %v want %v", ts.Time, tt.want)
		})
	}

	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
}

func TestPurchase_JSONRoundTrip(t *testing.T) {
	body := `{"id":3,"userId":4,"amount":25.5,"purchaseName":"Milk","quantity":2,"purchaseDate":"2024-01-02T08:00:00"}`
	var p Purchase
	require.NoError(t, json.Unmarshal([]byte(body), &p))
	assert.Equal(t, 3, p.ID)
	assert.Equal(t, 4, p.UserID)
	assert.Equal(t, "Milk", p.DisplayName())
	assert.Equal(t, 2024, p.Date().Year())
}

func TestInvoiceID(t *testing.T) {
	p := Purchase{PurchaseDate: Timestamp{time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)}}
	assert.Equal(t, "INV-2023-0001", InvoiceID(p, 0))
	assert.Equal(t, "INV-2023-0042", InvoiceID(p, 41))

	invoices := Invoices([]Purchase{p, p})
	require.Len(t, invoices, 2)
	assert.Equal(t, "INV-2023-0002", invoices[1].ID)
}

func TestRegistration_Validate(t *testing.T) {
	valid := Registration{
		FirstName: "Mahmoud",
		LastName:  "Slama",
		Email:     "m@example.com",
		Password:  "secret",
		Phone:     "12345678",
		Role:      RoleUser,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		mutate func(*Registration)
		want   error
		name   string
	}{
		{func(r *Registration) { r.FirstName = "" }, ErrMissingField, "missing first name"},
		{func(r *Registration) { r.Email = "not-an-email" }, ErrInvalidEmail, "bad email"},
		{func(r *Registration) { r.LastName = "Sl4ma" }, ErrInvalidName, "digits in name"},
		{func(r *Registration) { r.Phone = "123456789" }, ErrInvalidPhone, "phone too long"},
		{func(r *Registration) { r.Role = "ROOT" }, ErrInvalidRole, "unknown role"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			assert.ErrorIs(t, r.Validate(), tt.want)
		})
	}
}
