package confirm

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/duydb2/cloud9/internal/ui"
)

type Action string

const (
	ActionReplaceAll    Action = "replace-all"
	ActionDeleteEntry   Action = "delete-entry"
	ActionDeleteEntries Action = "delete-entries"
	ActionClearArchive  Action = "clear-archive"
)

type ResultMsg struct {
	Confirmed bool
	Action    Action
	Data      any
}

// Model is a yes/no dialog. No is focused initially.
type Model struct {
	Title   string
	Message string
	Details []string
	Action  Action
	Data    any

	active   bool
	selected bool // true = yes focused
}

func New(title, message string, action Action, data any, details ...string) Model {
	return Model{
		Title:   title,
		Message: message,
		Details: details,
		Action:  action,
		Data:    data,
		active:  true,
	}
}

func (m Model) IsActive() bool { return m.active }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.active {
		return m, nil
	}
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "y", "Y":
		return m.close(true)
	case "n", "N", "esc":
		return m.close(false)
	case "enter":
		return m.close(m.selected)
	case "tab", "left", "right", "h", "l":
		m.selected = !m.selected
	}
	return m, nil
}

func (m Model) close(confirmed bool) (Model, tea.Cmd) {
	m.active = false
	res := ResultMsg{Confirmed: confirmed, Action: m.Action, Data: m.Data}
	return m, func() tea.Msg { return res }
}

func (m Model) View() string {
	if !m.active {
		return ""
	}

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorWarning).
		Padding(1, 2).
		Width(60)

	title := lipgloss.NewStyle().Bold(true).Foreground(ui.ColorWarning).Render(m.Title)

	yes := lipgloss.NewStyle().Padding(0, 1)
	no := lipgloss.NewStyle().Padding(0, 1)
	if m.selected {
		yes = yes.Bold(true).Background(ui.ColorSuccess).Foreground(lipgloss.Color("#F9FAFB"))
		no = no.Foreground(ui.ColorMuted)
	} else {
		yes = yes.Foreground(ui.ColorMuted)
		no = no.Bold(true).Background(ui.ColorFailure).Foreground(lipgloss.Color("#F9FAFB"))
	}

	parts := []string{title, "", m.Message}
	if len(m.Details) > 0 {
		parts = append(parts, "")
		for _, d := range m.Details {
			parts = append(parts, ui.StyleMuted.Render("  "+d))
		}
	}
	parts = append(parts, "", yes.Render("Yes")+"  "+no.Render("No"), "", "y/n to confirm, esc to cancel")
	return style.Render(strings.Join(parts, "\n"))
}
