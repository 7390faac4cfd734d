package ui

import "github.com/charmbracelet/lipgloss"

// Semantic colors for status indication
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow
	ColorInfo    lipgloss.Color = "6" // Cyan
)

// Text colors for content hierarchy
const (
	ColorPrimary   lipgloss.Color = "7" // White/default
	ColorSecondary lipgloss.Color = "4" // Blue
	ColorMuted     lipgloss.Color = "8" // Gray (bright black)
)

// Brand colors
const (
	ColorHeading lipgloss.Color = "#0A64C8"
	ColorAccent  lipgloss.Color = "#FF8C00"
)

// SpinnerColors cycle while the connection spinner animates.
var SpinnerColors = []lipgloss.Color{ColorHeading, ColorInfo, ColorAccent, ColorInfo}

// HeadingStyle renders field and column labels.
func HeadingStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(ColorHeading)
}

// AccentStyle renders section titles.
func AccentStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorAccent)
}

// MutedStyle renders secondary text.
func MutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorMuted)
}

// ErrorStyle renders failures.
func ErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorError)
}
