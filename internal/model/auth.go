package model

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
)

// Registration validation errors.
var (
	ErrMissingField = errors.New("field is required")
	ErrInvalidEmail = errors.New("invalid email address")
	ErrInvalidRole  = errors.New("invalid role")
	ErrInvalidName  = errors.New("names may only contain letters and spaces")
	ErrInvalidPhone = errors.New("phone number must be at most 8 digits")
)

var (
	lettersOnly = regexp.MustCompile(`^[a-zA-Z\s]*$`)
	digitsOnly  = regexp.MustCompile(`^[0-9]{0,8}$`)
)

// Credentials are posted to the authenticate endpoint.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by authenticate and refresh-token.
type AuthResponse struct {
	AccessToken  string  `json:"accessToken"`
	RefreshToken string  `json:"refreshToken"`
	FirstName    string  `json:"firstName"`
	Role         Role    `json:"role"`
	ID           int     `json:"id"`
	MaxAmount    float64 `json:"maxAmount"`
	TotalAmount  float64 `json:"totalAmount"`
}

// Registration is the body of the register endpoint.
type Registration struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone"`
	Role      Role   `json:"role"`
}

// Validate checks that every field is present and the email is well formed.
func (r Registration) Validate() error {
	var errs []error
	required := []struct {
		name  string
		value string
	}{
		{"first name", r.FirstName},
		{"last name", r.LastName},
		{"email", r.Email},
		{"password", r.Password},
		{"phone", r.Phone},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			errs = append(errs, fmt.Errorf("%w: %s", ErrMissingField, f.name))
		}
	}

	for _, name := range []string{r.FirstName, r.LastName} {
		if !lettersOnly.MatchString(name) {
			errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidName, name))
		}
	}
	if !digitsOnly.MatchString(r.Phone) {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidPhone, r.Phone))
	}

	if strings.TrimSpace(r.Email) != "" {
		if _, err := mail.ParseAddress(r.Email); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidEmail, r.Email))
		}
	}

	switch r.Role {
	case RoleAdmin, RoleUser:
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidRole, r.Role))
	}

	return errors.Join(errs...)
}
