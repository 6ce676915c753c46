package tui

import "github.com/charmbracelet/lipgloss"

// Styles contains all lipgloss styles for the TUI
type Styles struct {
	// Header styling
	Title   lipgloss.Style
	Timer   lipgloss.Style
	Subject lipgloss.Style

	// Iteration rows
	Passed  lipgloss.Style
	Failed  lipgloss.Style
	Active  lipgloss.Style
	Number  lipgloss.Style
	Muted   lipgloss.Style
	Degrade lipgloss.Style

	// Budget bar colors
	ProgressFilled lipgloss.Style
	ProgressEmpty  lipgloss.Style

	// Phase icons and text
	PhaseIcon lipgloss.Style
	PhaseText lipgloss.Style

	// Footer styling
	Footer    lipgloss.Style
	FooterKey lipgloss.Style

	// Log area styling
	LogTitle lipgloss.Style
	LogLine  lipgloss.Style
}

// 256-color palette
var (
	colorAccent = lipgloss.Color("39")
	colorGood   = lipgloss.Color("42")
	colorBad    = lipgloss.Color("196")
	colorWarn   = lipgloss.Color("214")
	colorDim    = lipgloss.Color("240")
	colorMuted  = lipgloss.Color("245")
	colorText   = lipgloss.Color("250")
)

// DefaultStyles returns the default TUI styles
func DefaultStyles() Styles {
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	return Styles{
		Title:   fg(colorAccent).Bold(true),
		Timer:   fg(colorMuted),
		Subject: fg(colorText),

		Passed:  fg(colorGood),
		Failed:  fg(colorBad),
		Active:  fg(colorWarn),
		Number:  lipgloss.NewStyle().Bold(true),
		Muted:   fg(colorMuted),
		Degrade: fg(colorWarn),

		ProgressFilled: fg(colorWarn),
		ProgressEmpty:  fg(colorDim),

		PhaseIcon: fg(colorMuted),
		PhaseText: fg(colorText).Italic(true),

		Footer:    fg(colorMuted).MarginTop(1),
		FooterKey: fg(colorWarn).Bold(true),

		LogTitle: fg(colorDim).Bold(true),
		LogLine:  fg(colorMuted),
	}
}

const (
	IconActive   = "●"
	IconComplete = "✓"
	IconFailed   = "✗"
	IconOracle   = "🤖"
	IconValidate = "🧪"
)
