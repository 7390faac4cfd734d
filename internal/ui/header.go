package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HeaderWidth is the width of the divider under the header.
const HeaderWidth = 50

// RenderHeader renders the title line shown above the live screen, with
// an optional status on the right ("cycle 12 · 0H:0M:8S").
func RenderHeader(title, status string) string {
	titleStyle := lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)

	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	if status != "" {
		gap := HeaderWidth - lipgloss.Width(title) - lipgloss.Width(status)
		if gap < 1 {
			gap = 1
		}
		b.WriteString(strings.Repeat(" ", gap))
		b.WriteString(MutedStyle().Render(status))
	}
	b.WriteString("\n")
	b.WriteString(MutedStyle().Render(strings.Repeat("━", HeaderWidth)))
	b.WriteString("\n")
	return b.String()
}
