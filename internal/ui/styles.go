package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/duydb2/cloud9/internal/stream"
)

var (
	ColorPrimary   = lipgloss.Color("#7C3AED")
	ColorSuccess   = lipgloss.Color("#10B981")
	ColorFailure   = lipgloss.Color("#EF4444")
	ColorWarning   = lipgloss.Color("#F59E0B")
	ColorInfo      = lipgloss.Color("#3B82F6")
	ColorMuted     = lipgloss.Color("#6B7280")
	ColorHighlight = lipgloss.Color("#1F2937")

	StylePaneFocused = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary)

	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleFailure = lipgloss.NewStyle().Foreground(ColorFailure)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)
	StyleInfo    = lipgloss.NewStyle().Foreground(ColorInfo)
	StyleMuted   = lipgloss.NewStyle().Foreground(ColorMuted)

	StylePath   = lipgloss.NewStyle().Foreground(ColorInfo)
	StyleLineNo = lipgloss.NewStyle().Foreground(ColorMuted)
	StyleCursor = lipgloss.NewStyle().Background(ColorHighlight)

	StyleMatch = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FCD34D")).
			Background(lipgloss.Color("#78350F"))
)

// StateStyle colours a task state.
func StateStyle(s stream.State) lipgloss.Style {
	switch s {
	case stream.StateCompleted:
		return StyleSuccess
	case stream.StateFailed:
		return StyleFailure
	case stream.StateCancelled:
		return StyleWarning
	case stream.StatePolling:
		return StyleInfo
	default:
		return StyleMuted
	}
}

func StateIcon(s stream.State) string {
	switch s {
	case stream.StateCompleted:
		return StyleSuccess.Render("V")
	case stream.StateFailed:
		return StyleFailure.Render("X")
	case stream.StateCancelled:
		return StyleWarning.Render("!")
	case stream.StatePolling:
		return StyleInfo.Render("*")
	default:
		return StyleMuted.Render("o")
	}
}

// ArchiveStateStyle colours the state string stored with an archived
// document.
func ArchiveStateStyle(state string) lipgloss.Style {
	switch state {
	case stream.StateCompleted.String():
		return StyleSuccess
	case stream.StateFailed.String():
		return StyleFailure
	case stream.StateCancelled.String():
		return StyleWarning
	default:
		return StyleMuted
	}
}
