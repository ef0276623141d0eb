package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mahmoud-slama/creditapp/internal/tui/themes"
)

// LoginModel is the email and password form shown when no session exists.
type LoginModel struct {
	err      error
	theme    themes.Theme
	email    textinput.Model
	password textinput.Model
	busy     bool
}

// NewLogin creates the form with the email field focused.
func NewLogin(theme themes.Theme) LoginModel {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 128
	email.Prompt = "Email    "
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.Prompt = "Password "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return LoginModel{theme: theme, email: email, password: password}
}

// Init blinks the cursor.
func (m LoginModel) Init() tea.Cmd {
	return textinput.Blink
}

// SetBusy marks a submission in flight.
func (m *LoginModel) SetBusy(busy bool) {
	m.busy = busy
}

// SetError shows a failed login and clears the password.
func (m *LoginModel) SetError(err error) {
	m.err = err
	m.busy = false
	m.password.SetValue("")
}

// Update handles typing, focus switching and submission.
func (m LoginModel) Update(msg tea.Msg) (LoginModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.busy {
		return m, nil
	}

	switch keyMsg.String() {
	case "tab", "shift+tab", "up", "down":
		m.toggleFocus()
		return m, textinput.Blink
	case "enter":
		if m.email.Focused() && m.password.Value() == "" {
			m.toggleFocus()
			return m, textinput.Blink
		}
		email := strings.TrimSpace(m.email.Value())
		if email == "" || m.password.Value() == "" {
			return m, nil
		}
		m.busy = true
		m.err = nil
		pw := m.password.Value()
		return m, func() tea.Msg { return LoginSubmitMsg{Email: email, Password: pw} }
	}

	var cmd tea.Cmd
	if m.email.Focused() {
		m.email, cmd = m.email.Update(keyMsg)
	} else {
		m.password, cmd = m.password.Update(keyMsg)
	}
	return m, cmd
}

func (m *LoginModel) toggleFocus() {
	if m.email.Focused() {
		m.email.Blur()
		m.password.Focus()
		return
	}
	m.password.Blur()
	m.email.Focus()
}

// View renders the form.
func (m LoginModel) View() string {
	lines := []string{
		m.theme.Title.Render("Sign in"),
		m.email.View(),
		m.password.View(),
		"",
	}
	switch {
	case m.busy:
		lines = append(lines, m.theme.StatusPending.Render("Signing in..."))
	case m.err != nil:
		lines = append(lines, m.theme.StatusError.Render("⚠ "+m.err.Error()))
	default:
		lines = append(lines, m.theme.Subtitle.UnsetMargins().Render("tab to switch field, enter to sign in, ctrl+c to quit"))
	}
	return m.theme.BorderedBox.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
