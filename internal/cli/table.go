package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mahmoud-slama/creditapp/internal/credit"
)

var (
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(PrimaryColor).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
	tableBorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#374151"))
)

// Table is a bordered table of string cells. Columns listed in Right are right aligned.
type Table struct {
	Right   map[int]bool
	Headers []string
	Rows    [][]string
}

// NewTable creates a table with the given headers.
func NewTable(headers ...string) *Table {
	return &Table{Headers: headers, Right: map[int]bool{}}
}

// AlignRight right-aligns the given columns, typically amounts.
func (t *Table) AlignRight(cols ...int) *Table {
	for _, c := range cols {
		t.Right[c] = true
	}
	return t
}

// Add appends a row.
func (t *Table) Add(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Render draws the table.
func (t *Table) Render() string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		Headers(t.Headers...).
		Rows(t.Rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := tableCellStyle
			if row == table.HeaderRow {
				style = tableHeaderStyle
			}
			if t.Right[col] {
				style = style.Align(lipgloss.Right)
			}
			return style
		}).
		Render()
}

// CreditBar draws a text progress bar of width cells coloured by tier.
func CreditBar(p credit.Progress, width int) string {
	if width <= 0 {
		width = 30
	}
	filled := int(p.Ratio()*float64(width) + 0.5)
	done := lipgloss.NewStyle().Foreground(TierColor(p.Tier)).Render(strings.Repeat("█", filled))
	return done + SubtleStyle.Render(strings.Repeat("░", width-filled))
}
