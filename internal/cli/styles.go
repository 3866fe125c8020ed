package cli

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor = lipgloss.Color("#7C3AED")
	mutedColor   = lipgloss.Color("#6B7280")
	accentColor  = lipgloss.Color("#F59E0B")
	errorColor   = lipgloss.Color("#EF4444")
	successColor = lipgloss.Color("#10B981")

	titleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(successColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	starStyle = lipgloss.NewStyle().
			Foreground(accentColor)

	mutedTextStyle = lipgloss.NewStyle().
			Foreground(mutedColor)
)

func okMark() string   { return successStyle.Render("✓") }
func failMark() string { return errorStyle.Render("✗") }

// stars renders a 0-5 rating as filled and empty stars.
func stars(n int) string {
	if n <= 0 {
		return mutedTextStyle.Render("-")
	}
	filled := ""
	for i := 0; i < 5; i++ {
		if i < n {
			filled += "★"
		} else {
			filled += "☆"
		}
	}
	return starStyle.Render(filled)
}
