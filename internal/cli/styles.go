// Package cli provides styled terminal output and prompts for the credit commands.
package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/mahmoud-slama/creditapp/internal/credit"
	"github.com/mahmoud-slama/creditapp/internal/listing"
)

var (
	// PrimaryColor is the main theme color.
	PrimaryColor = lipgloss.Color("#5B8DEF")
	// SuccessColor indicates successful operations.
	SuccessColor = lipgloss.Color("#22C55E")
	// WarningColor indicates caution.
	WarningColor = lipgloss.Color("#EAB308")
	// ErrorColor indicates failure.
	ErrorColor = lipgloss.Color("#EF4444")
	// InfoColor indicates informational messages.
	InfoColor = lipgloss.Color("#60A5FA")
	// SubtleColor is for less prominent text.
	SubtleColor = lipgloss.Color("#6B7280")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().Foreground(SubtleColor)
	SuccessStyle  = lipgloss.NewStyle().Foreground(SuccessColor)
	WarningStyle  = lipgloss.NewStyle().Foreground(WarningColor)
	ErrorStyle    = lipgloss.NewStyle().Foreground(ErrorColor)
	InfoStyle     = lipgloss.NewStyle().Foreground(InfoColor)
	SubtleStyle   = lipgloss.NewStyle().Foreground(SubtleColor)
	BoldStyle     = lipgloss.NewStyle().Bold(true)

	// HighlightStyle marks search matches inside table cells.
	HighlightStyle = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(WarningColor)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#374151")).
			Padding(1, 2)

	PromptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠"
	InfoIcon    = "ℹ"
	CardIcon    = "💳"
	ChartIcon   = "📊"
	CartIcon    = "🛒"
)

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

// FormatError formats an error message with icon.
func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

// FormatInfo formats an info message with icon.
func FormatInfo(message string) string {
	return InfoStyle.Render(InfoIcon + " " + message)
}

// FormatTitle formats a section title.
func FormatTitle(icon, title string) string {
	if icon == "" {
		return TitleStyle.Render(title)
	}
	return TitleStyle.Render(icon + " " + title)
}

// FormatPrompt formats a prompt message.
func FormatPrompt(prompt string) string {
	return PromptStyle.Render(prompt + " → ")
}

// RenderBox renders content in a bordered box under title.
func RenderBox(title, content string) string {
	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		TitleStyle.UnsetMargins().Render(title),
		content,
	))
}

// TierColor is the severity colour of a credit tier.
func TierColor(t credit.Tier) lipgloss.Color {
	switch t {
	case credit.Critical:
		return ErrorColor
	case credit.Caution:
		return WarningColor
	default:
		return SuccessColor
	}
}

// TierStyle renders text in the tier colour.
func TierStyle(t credit.Tier) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(TierColor(t)).Bold(true)
}

// FormatMoney renders an amount with two decimals.
func FormatMoney(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

// Highlight marks term inside text with HighlightStyle.
func Highlight(text, term string) string {
	return listing.Highlight(text, term, func(s string) string { return HighlightStyle.Render(s) })
}
