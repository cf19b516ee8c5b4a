package ui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary   = lipgloss.Color("39")  // Blue
	colorSecondary = lipgloss.Color("245") // Gray
	colorSuccess   = lipgloss.Color("34")  // Green
	colorError     = lipgloss.Color("196") // Red
)

// Symbols for visual feedback.
const (
	SymbolCheck = "✓"
	SymbolCross = "✗"
)

// styles binds the palette to one renderer so color support is detected
// for the writer actually used.
type styles struct {
	title   lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	box     lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:   r.NewStyle().Bold(true).Foreground(colorPrimary),
		label:   r.NewStyle().Foreground(colorSecondary).Width(labelWidth),
		value:   r.NewStyle(),
		box:     r.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorSecondary).Padding(0, 1),
		success: r.NewStyle().Foreground(colorSuccess).Bold(true),
		failure: r.NewStyle().Foreground(colorError).Bold(true),
	}
}
