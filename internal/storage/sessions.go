package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mahmoud-slama/creditapp/internal/common"
	"github.com/mahmoud-slama/creditapp/internal/model"
	"github.com/mahmoud-slama/creditapp/internal/session"
)

var _ session.Store = (*SQLiteStorage)(nil)

// LoadSession returns the saved session or common.ErrNotFound.
func (s *SQLiteStorage) LoadSession(ctx context.Context) (*session.Session, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var (
		sess      session.Session
		role      string
		expiry    int64
		updatedAt int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT access_token, refresh_token, token_expiry, user_id, first_name,
		       email, role, max_amount, balance, updated_at
		FROM sessions WHERE id = 1
	`).Scan(
		&sess.AccessToken, &sess.RefreshToken, &expiry, &sess.UserID, &sess.FirstName,
		&sess.Email, &role, &sess.MaxAmount, &sess.Balance, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session: %w", common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	sess.Role = model.Role(role)
	sess.TokenExpiry = fromUnixMilli(expiry)
	sess.UpdatedAt = fromUnixMilli(updatedAt)
	return &sess, nil
}

// SaveSession replaces the saved session.
func (s *SQLiteStorage) SaveSession(ctx context.Context, sess *session.Session) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateSession(sess); err != nil {
		return err
	}

	updated := sess.UpdatedAt
	if updated.IsZero() {
		updated = s.now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, access_token, refresh_token, token_expiry, user_id, first_name,
		                      email, role, max_amount, balance, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			token_expiry = excluded.token_expiry,
			user_id = excluded.user_id,
			first_name = excluded.first_name,
			email = excluded.email,
			role = excluded.role,
			max_amount = excluded.max_amount,
			balance = excluded.balance,
			updated_at = excluded.updated_at
	`,
		sess.AccessToken, sess.RefreshToken, toUnixMilli(sess.TokenExpiry), sess.UserID, sess.FirstName,
		sess.Email, string(sess.Role), sess.MaxAmount, sess.Balance, toUnixMilli(updated),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// DeleteSession removes the saved session. Deleting nothing is not an error.
func (s *SQLiteStorage) DeleteSession(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = 1`); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func toUnixMilli(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromUnixMilli(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
