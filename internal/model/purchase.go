package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Purchase is a transaction recorded against a client's account.
// It is immutable once created.
type Purchase struct {
	PurchaseDate Timestamp `json:"purchaseDate"`
	Product      *Product  `json:"product,omitempty"`
	Name         string    `json:"name,omitempty"`
	PurchaseName string    `json:"purchaseName"`
	ID           int       `json:"id"`
	UserID       int       `json:"userId"`
	Quantity     int       `json:"quantity"`
	Amount       float64   `json:"amount"`
	Price        float64   `json:"price,omitempty"`
}

// DisplayName prefers PurchaseName, then Name, then the product name.
func (p Purchase) DisplayName() string {
	switch {
	case p.PurchaseName != "":
		return p.PurchaseName
	case p.Name != "":
		return p.Name
	case p.Product != nil:
		return p.Product.Name
	default:
		return ""
	}
}

// Date returns the purchase instant.
func (p Purchase) Date() time.Time {
	return p.PurchaseDate.Time
}

// PurchaseRequest is the body of a create-purchase call.
type PurchaseRequest struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	UserID   int    `json:"userId"`
}

// Timestamp decodes the date formats the backend emits.
// Both RFC 3339 and zone-less local date-times are accepted.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses s using the accepted layouts.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == `""` {
		t.Time = time.Time{}
		return nil
	}

	// Jackson may serialize LocalDateTime as an array: [y, m, d, h, min, s, nanos].
	if strings.HasPrefix(raw, "[") {
		var parts []int
		if err := json.Unmarshal(data, &parts); err != nil {
			return err
		}
		for len(parts) < 7 {
			parts = append(parts, 0)
		}
		t.Time = time.Date(parts[0], time.Month(parts[1]), parts[2], parts[3], parts[4], parts[5], parts[6], time.Local)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339))
}
