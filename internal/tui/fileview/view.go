package fileview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/duydb2/cloud9/internal/search"
	"github.com/duydb2/cloud9/internal/tui/resultsview"
)

// Model shows a project file opened from a result row.
type Model struct {
	viewport viewport.Model
	content  string
	path     string
	width    int
	height   int
	ready    bool
	loading  bool
	err      error

	// matches of the search that led here
	matcher *search.Matcher

	// in-file search
	searchInput textinput.Model
	searching   bool
	searchQuery string
	matchLines  []int // 0-based
	matchIndex  int

	jumpLine int // 0-based line to highlight, -1 = none
}

func New() Model {
	ti := textinput.New()
	ti.Placeholder = "Search in file..."
	ti.CharLimit = 256
	return Model{searchInput: ti, jumpLine: -1}
}

func (m *Model) SetContent(path, content string, mt *search.Matcher) {
	m.path = path
	m.content = strings.ReplaceAll(content, "\r\n", "\n")
	m.matcher = mt
	m.loading = false
	m.err = nil
	m.searchQuery = ""
	m.matchLines = nil
	m.matchIndex = 0
	m.jumpLine = -1
	if m.ready {
		m.viewport.SetContent(m.applyHighlights())
		m.viewport.GotoTop()
	}
}

func (m *Model) SetLoading(path string) {
	m.path = path
	m.loading = true
	m.err = nil
}

func (m *Model) SetError(path string, err error) {
	m.path = path
	m.loading = false
	m.err = err
}

func (m Model) Path() string      { return m.path }
func (m Model) JumpLine() int     { return m.jumpLine }
func (m Model) IsSearching() bool { return m.searching }

// GotoLine scrolls to the 1-based line and highlights it, leaving a few
// lines of context above.
func (m *Model) GotoLine(line int) {
	if line <= 0 {
		return
	}
	m.jumpLine = line - 1
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.applyHighlights())
	m.viewport.SetYOffset(max(line-1-m.viewport.Height/3, 0))
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.searching {
			switch msg.String() {
			case "enter":
				if q := m.searchInput.Value(); q != "" {
					m.searchQuery = q
					m.findMatches()
					m.viewport.SetContent(m.applyHighlights())
					if len(m.matchLines) > 0 {
						m.matchIndex = 0
						m.viewport.SetYOffset(m.matchLines[0])
					}
				}
				m.searching = false
				m.searchInput.Blur()
				return m, nil
			case "esc":
				m.searching = false
				m.searchInput.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.searchInput, cmd = m.searchInput.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "/":
			m.searching = true
			m.searchInput.SetValue("")
			m.searchInput.Focus()
			return m, textinput.Blink
		case "n":
			if len(m.matchLines) > 0 {
				m.matchIndex = (m.matchIndex + 1) % len(m.matchLines)
				m.viewport.SetContent(m.applyHighlights())
				m.viewport.SetYOffset(m.matchLines[m.matchIndex])
			}
			return m, nil
		case "N":
			if len(m.matchLines) > 0 {
				m.matchIndex = (m.matchIndex - 1 + len(m.matchLines)) % len(m.matchLines)
				m.viewport.SetContent(m.applyHighlights())
				m.viewport.SetYOffset(m.matchLines[m.matchIndex])
			}
			return m, nil
		case "g":
			m.viewport.GotoTop()
			return m, nil
		case "G":
			m.viewport.GotoBottom()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		headerH := 1
		if m.searching {
			headerH = 2
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerH)
			m.ready = true
			if m.content != "" {
				m.viewport.SetContent(m.applyHighlights())
				if m.jumpLine >= 0 {
					m.viewport.SetYOffset(max(m.jumpLine-m.viewport.Height/3, 0))
				}
			}
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerH
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) findMatches() {
	m.matchLines = nil
	if m.searchQuery == "" || m.content == "" {
		return
	}
	q := strings.ToLower(m.searchQuery)
	for i, line := range strings.Split(m.content, "\n") {
		if strings.Contains(strings.ToLower(line), q) {
			m.matchLines = append(m.matchLines, i)
		}
	}
}

// applyHighlights numbers the lines, marks the jump line and the in-file
// search matches, and emphasises the originating query's matches.
func (m Model) applyHighlights() string {
	matchSet := make(map[int]bool, len(m.matchLines))
	for _, idx := range m.matchLines {
		matchSet[idx] = true
	}
	current := -1
	if m.matchIndex < len(m.matchLines) {
		current = m.matchLines[m.matchIndex]
	}

	gutter := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	highlight := lipgloss.NewStyle().Background(lipgloss.Color("#374151"))
	emphasis := lipgloss.NewStyle().Background(lipgloss.Color("#92400E")).Bold(true)

	lines := strings.Split(m.content, "\n")
	width := len(fmt.Sprint(len(lines)))
	for i, line := range lines {
		num := gutter.Render(fmt.Sprintf("%*d ", width, i+1))
		switch {
		case i == m.jumpLine || i == current:
			line = emphasis.Render(line)
		case matchSet[i]:
			line = highlight.Render(line)
		default:
			line = resultsview.Highlight(line, m.matcher)
		}
		lines[i] = num + line
	}
	return strings.Join(lines, "\n")
}

func (m Model) View() string {
	if m.loading {
		return fmt.Sprintf("\n  Opening %s...", m.path)
	}
	if m.err != nil {
		return fmt.Sprintf("\n  Could not open %s: %v\n\n  Press esc to go back.", m.path, m.err)
	}
	if m.path == "" {
		return "\n  Select a result to open its file"
	}

	head := fmt.Sprintf(" %s  %3.f%%", m.path, m.viewport.ScrollPercent()*100)
	if m.jumpLine >= 0 {
		head += fmt.Sprintf("  line %d", m.jumpLine+1)
	}
	if m.searchQuery != "" && len(m.matchLines) > 0 {
		head += fmt.Sprintf("  [%d/%d matches]", m.matchIndex+1, len(m.matchLines))
	} else if m.searchQuery != "" {
		head += "  [no matches]"
	}
	header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F9FAFB")).Render(head)

	if m.searching {
		return header + "\n  /" + m.searchInput.View() + "\n" + m.viewport.View()
	}
	return header + "\n" + m.viewport.View()
}
