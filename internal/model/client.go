// Package model holds the entities exchanged with the credit backend.
package model

import (
	"strings"
	"unicode/utf8"
)

// Role is the authorization role of an account.
type Role string

const (
	// RoleAdmin manages clients, products and transactions.
	RoleAdmin Role = "ADMIN"
	// RoleUser is a client with a credit account.
	RoleUser Role = "USER"
)

// IsAdmin reports whether the role grants admin access.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// Client is an account holder as returned by the management endpoints.
// Montant is the current balance, MaxAmount the credit limit.
type Client struct {
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone,omitempty"`
	Role      Role    `json:"role"`
	ID        int     `json:"id"`
	Montant   float64 `json:"montant"`
	MaxAmount float64 `json:"maxAmount"`
}

// FullName returns "First Last", trimmed when either part is missing.
func (c Client) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Initials returns the upper-cased first letters of the first and last name.
func (c Client) Initials() string {
	var b strings.Builder
	for _, part := range []string{c.FirstName, c.LastName} {
		if r, _ := utf8.DecodeRuneInString(part); r != utf8.RuneError {
			b.WriteString(strings.ToUpper(string(r)))
		}
	}
	return b.String()
}

// OverLimit reports whether the balance exceeds the credit limit.
// The backend does not enforce this; the UI only warns.
func (c Client) OverLimit() bool {
	return c.Montant > c.MaxAmount
}
