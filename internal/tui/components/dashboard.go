package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/mahmoud-slama/creditapp/internal/credit"
	"github.com/mahmoud-slama/creditapp/internal/model"
	"github.com/mahmoud-slama/creditapp/internal/tui/themes"
)

// DashboardModel shows the user's credit usage and, for admins, the store totals.
type DashboardModel struct {
	err      error
	summary  *credit.Summary
	theme    themes.Theme
	name     string
	recent   []model.Purchase
	progress credit.Progress
	width    int
	loaded   bool
}

// NewDashboard creates an empty dashboard.
func NewDashboard(theme themes.Theme) DashboardModel {
	return DashboardModel{theme: theme, width: 60}
}

// SetCredit sets the usage of the logged-in user.
func (m *DashboardModel) SetCredit(name string, p credit.Progress) {
	m.name = name
	m.progress = p
	m.loaded = true
	m.err = nil
}

// SetRecent sets the user's latest purchases.
func (m *DashboardModel) SetRecent(purchases []model.Purchase) {
	m.recent = credit.Recent(purchases, credit.RecentCount)
}

// SetSummary sets the admin totals. nil hides the section.
func (m *DashboardModel) SetSummary(s *credit.Summary) {
	m.summary = s
}

// SetError shows a load failure.
func (m *DashboardModel) SetError(err error) {
	m.err = err
}

// SetWidth resizes the dashboard.
func (m *DashboardModel) SetWidth(w int) {
	m.width = w
}

// Progress is the usage currently shown.
func (m DashboardModel) Progress() credit.Progress { return m.progress }

// View renders the dashboard.
func (m DashboardModel) View() string {
	var sections []string
	if m.err != nil {
		sections = append(sections, m.theme.StatusError.Render("⚠ "+m.err.Error()))
	}
	if !m.loaded {
		sections = append(sections, m.theme.StatusPending.Render("Loading credit..."))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	sections = append(sections, m.renderCredit())
	if len(m.recent) > 0 {
		sections = append(sections, m.renderRecent("Recent purchases", m.recent))
	}
	if m.summary != nil {
		sections = append(sections, m.renderSummary())
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m DashboardModel) renderCredit() string {
	p := m.progress
	bar := progress.New(progress.WithSolidFill(string(m.theme.TierColor(p.Tier))))
	bar.ShowPercentage = false
	bar.Width = min(max(m.width-8, 10), 40)

	title := "Credit"
	if m.name != "" {
		title = "Credit of " + m.name
	}
	status := m.theme.TierStyle(p.Tier).Render(fmt.Sprintf("%.1f%% used (%s)", p.Percent, p.Tier))
	if p.OverLimit {
		status += "  " + m.theme.StatusError.Render("over limit")
	}

	lines := []string{
		m.theme.Bold.Render(title),
		bar.ViewAs(p.Ratio()),
		status,
		fmt.Sprintf("Balance %.2f  Limit %.2f  Available %.2f", p.Current, p.Max, p.Available()),
	}
	return m.theme.BorderedBox.Width(min(max(m.width-2, 20), 70)).Render(strings.Join(lines, "\n"))
}

func (m DashboardModel) renderSummary() string {
	s := m.summary
	lines := []string{
		m.theme.Bold.Render("Store"),
		fmt.Sprintf("%d clients, %d products, %d transactions", s.Clients, s.Products, s.Purchases),
		"Revenue " + s.Revenue.StringFixed(2),
	}
	if s.OverLimit > 0 {
		lines = append(lines, m.theme.StatusWarning.Render(fmt.Sprintf("%d clients over their limit", s.OverLimit)))
	}
	box := m.theme.BorderedBox.Width(min(max(m.width-2, 20), 70)).Render(strings.Join(lines, "\n"))
	if len(s.Recent) == 0 {
		return box
	}
	return lipgloss.JoinVertical(lipgloss.Left, box, m.renderRecent("Latest transactions", s.Recent))
}

func (m DashboardModel) renderRecent(title string, purchases []model.Purchase) string {
	lines := []string{m.theme.Bold.Render(title)}
	for _, p := range purchases {
		date := "unknown date"
		if d := p.Date(); !d.IsZero() {
			date = d.Format("2006-01-02")
		}
		lines = append(lines, fmt.Sprintf("  %s  %-24s x%-3d %10.2f", date, p.DisplayName(), p.Quantity, p.Amount))
	}
	return strings.Join(lines, "\n")
}
