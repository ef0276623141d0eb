package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.loggedIn {
		return m.renderLogin()
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderTabs(),
		"",
		m.renderActive(),
	)
	if t := m.renderToast(); t != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, content, "", t)
	}
	return lipgloss.JoinVertical(lipgloss.Left, content, "", m.renderStatusBar())
}

func (m Model) renderLogin() string {
	parts := []string{
		m.theme.Title.Render("Credit console"),
		m.login.View(),
	}
	if t := m.renderToast(); t != "" {
		parts = append(parts, t)
	}
	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, parts...),
	)
}

func (m Model) renderTabs() string {
	labels := make([]string, len(m.tabs))
	for i, t := range m.tabs {
		label := " " + tabTitle(t) + " "
		if i == m.active {
			labels[i] = m.theme.Selected.Render(label)
		} else {
			labels[i] = m.theme.Normal.Render(label)
		}
	}
	return strings.Join(labels, m.theme.Subtitle.UnsetMargins().Render("│"))
}

func tabTitle(t tab) string {
	switch t {
	case tabClients:
		return "Clients"
	case tabProducts:
		return "Products"
	case tabTransactions:
		return "Transactions"
	case tabHistory:
		return "History"
	default:
		return "Dashboard"
	}
}

func (m Model) renderActive() string {
	switch m.activeTab() {
	case tabClients:
		return m.clients.View()
	case tabProducts:
		return m.products.View()
	case tabTransactions:
		return m.transactions.View()
	case tabHistory:
		return m.history.View()
	default:
		return m.dashboard.View()
	}
}

func (m Model) renderToast() string {
	if m.toast == nil {
		return ""
	}
	style := m.theme.StatusInfo
	icon := "ℹ"
	switch m.toast.kind {
	case toastSuccess:
		style, icon = m.theme.StatusSuccess, "✓"
	case toastError:
		style, icon = m.theme.StatusError, "⚠"
	}
	return m.theme.RoundedBox.Render(style.Render(icon + " " + m.toast.text))
}

// renderStatusBar shows who is signed in and the key help.
func (m Model) renderStatusBar() string {
	who := m.session.Email
	if m.session.IsAdmin() {
		who += " (admin)"
	}
	left := m.theme.StatusInfo.Render(who)
	return lipgloss.JoinVertical(
		lipgloss.Left,
		left,
		lipgloss.NewStyle().Foreground(m.theme.Muted).Render(m.help.View(m.keymap)),
	)
}

// String is used in debug logs.
func (m Model) String() string {
	return fmt.Sprintf("tui.Model{tab: %s, loggedIn: %t}", m.activeTab(), m.loggedIn)
}
