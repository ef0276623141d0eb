// Package storage is the local persistence layer of the credit console.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mahmoud-slama/creditapp/internal/session"
)

// Validation errors.
var (
	ErrNilContext    = errors.New("context cannot be nil")
	ErrEmptyString   = errors.New("string parameter cannot be empty")
	ErrNilParameter  = errors.New("parameter cannot be nil")
	ErrInvalidTTL    = errors.New("ttl cannot be negative")
	ErrInvalidSession = errors.New("invalid session")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateSession(s *session.Session) error {
	if s == nil {
		return fmt.Errorf("%w: session", ErrNilParameter)
	}
	if s.AccessToken == "" {
		return fmt.Errorf("%w: access token is required", ErrInvalidSession)
	}
	if s.UserID <= 0 {
		return fmt.Errorf("%w: user id must be positive, got %d", ErrInvalidSession, s.UserID)
	}
	return nil
}
