// Package styles provides Lip Gloss styles for the shears terminal output.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Color palette.
var (
	Accent      = lipgloss.Color("#15AABF") // Teal
	Success     = lipgloss.Color("#40C057") // Green
	Warning     = lipgloss.Color("#FAB005") // Yellow
	Error       = lipgloss.Color("#FA5252") // Red
	Muted       = lipgloss.Color("#868E96") // Gray
	MutedLight  = lipgloss.Color("#ADB5BD") // Light Gray
	Background  = lipgloss.Color("#212529") // Near Black
	Foreground  = lipgloss.Color("#F8F9FA") // Off White
	BorderColor = lipgloss.Color("#343A40") // Border Gray
)

// statusGlyph renders a one-character status marker in a color.
func statusGlyph(c lipgloss.Color, glyph string) string {
	return lipgloss.NewStyle().Foreground(c).Render(glyph)
}

// Status icons for report lines and removal previews.
var (
	// StatusRemoved marks a deleted path or dependency.
	StatusRemoved = statusGlyph(Success, "✓")
	// StatusPending marks a path a dry run would delete.
	StatusPending = statusGlyph(Muted, "○")
	// StatusWarning marks a skipped or missing path.
	StatusWarning = statusGlyph(Warning, "!")
	// StatusFailed marks a failed action.
	StatusFailed = statusGlyph(Error, "✗")
)

// Text styles applied to report and dialog copy.
var (
	// SectionStyle colors report section headings.
	SectionStyle = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)

	// MutedTextStyle dims secondary text.
	MutedTextStyle = lipgloss.NewStyle().
			Foreground(Muted)

	// ErrorTextStyle colors failure lines.
	ErrorTextStyle = lipgloss.NewStyle().
			Foreground(Error)

	// WarningTextStyle colors warning lines.
	WarningTextStyle = lipgloss.NewStyle().
				Foreground(Warning)

	// HelpStyle dims key binding hints.
	HelpStyle = lipgloss.NewStyle().
			Foreground(Muted)
)

// Confirm dialog button styles. The destructive choice stays red in
// both focus states so it reads as dangerous either way.
var (
	// ButtonDangerStyle is for the destructive choice (focused).
	ButtonDangerStyle = lipgloss.NewStyle().
				Foreground(Foreground).
				Background(Error).
				Bold(true).
				Padding(0, 2)

	// ButtonDangerUnfocusedStyle is for the destructive choice (unfocused).
	ButtonDangerUnfocusedStyle = lipgloss.NewStyle().
					Foreground(Error).
					Border(lipgloss.NormalBorder()).
					BorderForeground(Error).
					Padding(0, 1)

	// ButtonSecondaryStyle is for the safe choice (focused).
	ButtonSecondaryStyle = lipgloss.NewStyle().
				Foreground(Background).
				Background(Accent).
				Bold(true).
				Padding(0, 2)

	// ButtonSecondaryUnfocusedStyle is for the safe choice (unfocused).
	ButtonSecondaryUnfocusedStyle = lipgloss.NewStyle().
					Foreground(MutedLight).
					Border(lipgloss.NormalBorder()).
					BorderForeground(Muted).
					Padding(0, 1)
)
