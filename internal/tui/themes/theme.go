// Package themes holds the colour schemes of the interactive console.
package themes

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/mahmoud-slama/creditapp/internal/credit"
)

// Theme defines the visual style for the TUI.
type Theme struct {
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	Normal        lipgloss.Style
	Bold          lipgloss.Style
	Selected      lipgloss.Style
	Match         lipgloss.Style
	BorderedBox   lipgloss.Style
	RoundedBox    lipgloss.Style
	StatusPending lipgloss.Style
	StatusInfo    lipgloss.Style
	StatusError   lipgloss.Style
	StatusWarning lipgloss.Style
	StatusSuccess lipgloss.Style
	Primary       lipgloss.Color
	Muted         lipgloss.Color
	Border        lipgloss.Color
	Success       lipgloss.Color
	Warning       lipgloss.Color
	Error         lipgloss.Color
}

// palette is the handful of colours a theme is derived from.
type palette struct {
	primary, text, subtext, base lipgloss.Color
	border, muted                lipgloss.Color
	success, warning, danger     lipgloss.Color
	info                         lipgloss.Color
}

func build(p palette) Theme {
	status := func(c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	box := func(b lipgloss.Border) lipgloss.Style {
		return lipgloss.NewStyle().Border(b).BorderForeground(p.border).Padding(1, 2)
	}

	return Theme{
		Primary: p.primary,
		Muted:   p.muted,
		Border:  p.border,
		Success: p.success,
		Warning: p.warning,
		Error:   p.danger,

		Title:    lipgloss.NewStyle().Bold(true).Foreground(p.text).MarginBottom(1),
		Subtitle: lipgloss.NewStyle().Foreground(p.subtext).MarginBottom(1),
		Normal:   lipgloss.NewStyle().Foreground(p.text),
		Bold:     lipgloss.NewStyle().Bold(true).Foreground(p.text),
		Selected: lipgloss.NewStyle().Background(p.primary).Foreground(p.base).Bold(true),
		Match:    lipgloss.NewStyle().Foreground(p.warning).Underline(true),

		BorderedBox: box(lipgloss.NormalBorder()),
		RoundedBox:  box(lipgloss.RoundedBorder()),

		StatusSuccess: status(p.success),
		StatusWarning: status(p.warning),
		StatusError:   status(p.danger),
		StatusInfo:    status(p.info),
		StatusPending: lipgloss.NewStyle().Foreground(p.muted).Italic(true),
	}
}

// Default is the default theme.
var Default = build(palette{
	primary: lipgloss.Color("#0ea5e9"),
	text:    lipgloss.Color("#fafafa"),
	subtext: lipgloss.Color("#a3a3a3"),
	base:    lipgloss.Color("#0a0a0a"),
	border:  lipgloss.Color("#404040"),
	muted:   lipgloss.Color("#737373"),
	success: lipgloss.Color("#22c55e"),
	warning: lipgloss.Color("#eab308"),
	danger:  lipgloss.Color("#ef4444"),
	info:    lipgloss.Color("#3b82f6"),
})

// CatppuccinMocha is the Catppuccin Mocha theme.
var CatppuccinMocha = build(palette{
	primary: lipgloss.Color("#cba6f7"),
	text:    lipgloss.Color("#cdd6f4"),
	subtext: lipgloss.Color("#a6adc8"),
	base:    lipgloss.Color("#1e1e2e"),
	border:  lipgloss.Color("#45475a"),
	muted:   lipgloss.Color("#6c7086"),
	success: lipgloss.Color("#a6e3a1"),
	warning: lipgloss.Color("#f9e2af"),
	danger:  lipgloss.Color("#f38ba8"),
	info:    lipgloss.Color("#89dceb"),
})

// GetTheme returns a theme by name. Unknown names get Default.
func GetTheme(name string) Theme {
	switch name {
	case "catppuccin", "catppuccin-mocha":
		return CatppuccinMocha
	default:
		return Default
	}
}

// TierColor is the severity colour of credit usage: green, yellow, then red.
func (t Theme) TierColor(tier credit.Tier) lipgloss.Color {
	switch tier {
	case credit.Critical:
		return t.Error
	case credit.Caution:
		return t.Warning
	default:
		return t.Success
	}
}

// TierStyle renders text in the tier colour.
func (t Theme) TierStyle(tier credit.Tier) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.TierColor(tier)).Bold(true)
}
