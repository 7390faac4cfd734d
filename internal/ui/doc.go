// Package ui holds the terminal building blocks shared by b2gmon's
// commands and displays: the colour palette, status symbols, tables,
// sparklines and the connection spinner.
//
// # Colour Scheme
//
//	ColorHeading (blue)   - Column and field labels
//	ColorAccent  (orange) - Section titles and completion notices
//	ColorSuccess (green)  - Healthy values
//	ColorWarning (yellow) - Values climbing towards their peak
//	ColorError   (red)    - Failures, values at their peak
//	ColorMuted   (gray)   - Secondary text, timing info
//
// Colours degrade with the terminal's profile; tests pin the profile
// with lipgloss.SetColorProfile(termenv.Ascii).
package ui
