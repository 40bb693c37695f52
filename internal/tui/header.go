package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/duydb2/cloud9/internal/stream"
	"github.com/duydb2/cloud9/internal/ui"
)

func RenderHeader(server, project string, state stream.State, width int) string {
	left := lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.Color("#F9FAFB")).
		Render(fmt.Sprintf(" c9search | %s | %s", server, project))

	right := ""
	if state != stream.StateIdle {
		right = ui.StateIcon(state) + " " + ui.StateStyle(state).Render(state.String()) + " "
	}

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	padding := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.NewStyle().
		Background(lipgloss.Color("#1F2937")).
		Width(width).
		Render(left + padding + right)
}
