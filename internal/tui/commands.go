package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mahmoud-slama/creditapp/internal/common"
	"github.com/mahmoud-slama/creditapp/internal/model"
	"github.com/mahmoud-slama/creditapp/internal/session"
	"github.com/mahmoud-slama/creditapp/internal/store"
)

// revalidateCmd refetches a collection. The snapshot cache is read first so the
// last known data shows while the request is in flight.
func revalidateCmd[T any](ctx context.Context, t tab, c *store.Collection[T]) tea.Cmd {
	warm := func() tea.Msg {
		if c.Warm(ctx) {
			return collectionLoadedMsg{tab: t}
		}
		return nil
	}
	fetch := func() tea.Msg {
		if err := c.Revalidate(ctx); err != nil {
			return collectionLoadedMsg{tab: t, err: fmt.Errorf("failed to load %s: %w", t, err)}
		}
		return collectionLoadedMsg{tab: t}
	}
	return tea.Sequence(warm, fetch)
}

// loadCreditCmd reads the user's balance and limit and stores them in the session.
func (m Model) loadCreditCmd(userID int) tea.Cmd {
	ctx, backend, sessions := m.ctx, m.config.Backend, m.config.Session
	return func() tea.Msg {
		p, err := backend.CreditSnapshot(ctx, userID)
		if err != nil {
			return creditLoadedMsg{err: fmt.Errorf("failed to load credit: %w", err)}
		}
		if err := sessions.Update(ctx, func(s *session.Session) {
			s.Balance = p.Current
			s.MaxAmount = p.Max
		}); err != nil {
			m.config.Logger.Warn("Failed to persist credit", "error", err)
		}
		return creditLoadedMsg{progress: p}
	}
}

func (m Model) loginCmd(email, password string) tea.Cmd {
	ctx, backend, sessions := m.ctx, m.config.Backend, m.config.Session
	return func() tea.Msg {
		resp, err := backend.Authenticate(ctx, model.Credentials{Email: email, Password: password})
		if err != nil {
			return loginResultMsg{err: common.NewUserError("Sign in failed: "+common.UserMessage(err), err)}
		}
		s, err := sessions.Login(ctx, resp, email)
		if err != nil {
			return loginResultMsg{err: err}
		}
		return loginResultMsg{session: s}
	}
}

// logoutCmd ends the session remotely and locally and forgets every cached listing.
func (m Model) logoutCmd() tea.Cmd {
	ctx, cfg := m.ctx, m.config
	userID := m.session.UserID
	return func() tea.Msg {
		if err := cfg.Backend.Logout(ctx); err != nil {
			cfg.Logger.Debug("Remote logout failed", "error", err)
		}
		if err := cfg.Session.Clear(ctx); err != nil {
			cfg.Logger.Warn("Failed to clear session", "error", err)
		}
		cfg.Clients.Reset(ctx)
		cfg.Products.Reset(ctx)
		cfg.Purchases.All.Reset(ctx)
		cfg.Purchases.ForClient(userID).Reset(ctx)
		return loggedOutMsg{}
	}
}

func (m Model) adjustQuantityCmd(p model.Product, delta int) tea.Cmd {
	ctx, products := m.ctx, m.config.Products
	return func() tea.Msg {
		var (
			updated model.Product
			err     error
		)
		if delta > 0 {
			updated, err = products.Increment(ctx, p.ID)
		} else {
			updated, err = products.Decrement(ctx, p.ID)
		}
		if err != nil {
			return quantityChangedMsg{product: p, delta: delta, err: err}
		}
		return quantityChangedMsg{product: updated, delta: delta}
	}
}

func toastCmd(text string, kind toastKind) tea.Cmd {
	return func() tea.Msg { return toastMsg{text: text, kind: kind} }
}

func expireToastCmd(id int, after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg { return toastExpiredMsg{id: id} })
}
