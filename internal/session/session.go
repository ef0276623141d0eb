// Package session holds the logged-in user and the token pair, persisted between runs.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mahmoud-slama/creditapp/internal/api"
	"github.com/mahmoud-slama/creditapp/internal/common"
	"github.com/mahmoud-slama/creditapp/internal/model"
	"golang.org/x/oauth2"
)

// Session is everything the console remembers about the logged-in user.
type Session struct {
	UpdatedAt    time.Time
	TokenExpiry  time.Time
	AccessToken  string
	RefreshToken string
	FirstName    string
	Email        string
	Role         model.Role
	UserID       int
	MaxAmount    float64
	Balance      float64
}

// Valid reports whether the session carries an access token.
func (s Session) Valid() bool {
	return s.AccessToken != ""
}

// IsAdmin reports whether the user manages other accounts.
func (s Session) IsAdmin() bool {
	return s.Role.IsAdmin()
}

// Token returns the token pair in oauth2 form.
func (s Session) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       s.TokenExpiry,
	}
}

// FromAuth builds a session from a login or registration response.
func FromAuth(resp model.AuthResponse, email string, now time.Time) Session {
	tok := api.TokenFromAuth(resp.AccessToken, resp.RefreshToken)
	return Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TokenExpiry:  tok.Expiry,
		UserID:       resp.ID,
		FirstName:    resp.FirstName,
		Email:        email,
		Role:         resp.Role,
		MaxAmount:    resp.MaxAmount,
		Balance:      resp.TotalAmount,
		UpdatedAt:    now,
	}
}

// Store persists a single session. LoadSession returns common.ErrNotFound when none is saved.
type Store interface {
	LoadSession(ctx context.Context) (*Session, error)
	SaveSession(ctx context.Context, s *Session) error
	DeleteSession(ctx context.Context) error
}

// Manager guards the current session and writes every change through to the store.
// It is safe for concurrent use and implements api.TokenStore.
type Manager struct {
	store   Store
	current *Session
	now     func() time.Time
	mu      sync.RWMutex
}

// NewManager creates a manager backed by store. A nil store keeps the session in memory only.
func NewManager(store Store) *Manager {
	return &Manager{store: store, now: time.Now}
}

// Hydrate loads the persisted session, if any.
func (m *Manager) Hydrate(ctx context.Context) error {
	if m.store == nil {
		return nil
	}
	s, err := m.store.LoadSession(ctx)
	if errors.Is(err, common.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s.Valid() {
		m.current = s
		slog.Debug("Session restored", "user_id", s.UserID, "role", s.Role)
	}
	return nil
}

// Current returns a copy of the session and whether someone is logged in.
func (m *Manager) Current() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return Session{}, false
	}
	return *m.current, true
}

// Require returns the session or a user error telling the user to log in.
func (m *Manager) Require() (Session, error) {
	s, ok := m.Current()
	if !ok {
		return Session{}, common.LoginRequired()
	}
	return s, nil
}

// Login replaces the session with the one described by resp.
func (m *Manager) Login(ctx context.Context, resp *model.AuthResponse, email string) (Session, error) {
	if resp == nil || resp.AccessToken == "" {
		return Session{}, fmt.Errorf("%w: login response has no access token", common.ErrInvalidInput)
	}
	s := FromAuth(*resp, email, m.now())

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.persist(ctx, &s); err != nil {
		return Session{}, err
	}
	m.current = &s
	slog.Info("Logged in", "user_id", s.UserID, "role", s.Role)
	return s, nil
}

// Update applies fn to the current session and saves the result.
func (m *Manager) Update(ctx context.Context, fn func(*Session)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return common.LoginRequired()
	}

	next := *m.current
	fn(&next)
	next.UpdatedAt = m.now()
	if err := m.persist(ctx, &next); err != nil {
		return err
	}
	m.current = &next
	return nil
}

// Clear forgets the session locally and in the store.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
	if m.store == nil {
		return nil
	}
	if err := m.store.DeleteSession(ctx); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Token implements api.TokenStore.
func (m *Manager) Token() (*oauth2.Token, error) {
	s, ok := m.Current()
	if !ok || !s.Valid() {
		return nil, common.ErrMissingAuth
	}
	return s.Token(), nil
}

// SaveToken implements api.TokenStore. The refreshed pair is persisted at once.
func (m *Manager) SaveToken(tok *oauth2.Token) error {
	return m.Update(context.Background(), func(s *Session) {
		s.AccessToken = tok.AccessToken
		if tok.RefreshToken != "" {
			s.RefreshToken = tok.RefreshToken
		}
		s.TokenExpiry = tok.Expiry
	})
}

func (m *Manager) persist(ctx context.Context, s *Session) error {
	if m.store == nil {
		return nil
	}
	if err := m.store.SaveSession(ctx, s); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}
