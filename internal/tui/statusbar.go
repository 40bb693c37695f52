package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/duydb2/cloud9/internal/ui"
)

func RenderStatusBar(status, hints string, width int) string {
	style := ui.StyleMuted
	switch {
	case strings.HasPrefix(status, "Error"):
		style = ui.StyleFailure
	case strings.HasPrefix(status, "Warning"):
		style = ui.StyleWarning
	}
	left := style.Render("  " + status)

	help := lipgloss.NewStyle().Foreground(ui.ColorMuted).
		Render(hints + " ")

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(help), 0)
	padding := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.NewStyle().
		Background(lipgloss.Color("#111827")).
		Width(width).
		Render(left + padding + help)
}
