package resultsview

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/duydb2/cloud9/internal/model"
	"github.com/duydb2/cloud9/internal/search"
	"github.com/duydb2/cloud9/internal/stream"
	"github.com/duydb2/cloud9/internal/ui"
)

// Model renders the results document and tracks a cursor over its lines.
// While following, the cursor sticks to the last line as output streams in.
type Model struct {
	viewport viewport.Model
	lines    []string
	cursor   int
	follow   bool
	matcher  *search.Matcher
	title    string
	width    int
	height   int
	ready    bool
}

func New() Model {
	return Model{follow: true}
}

// SetLines replaces the rendered document.
func (m *Model) SetLines(lines []string) {
	m.lines = lines
	if m.follow || m.cursor >= len(lines) {
		m.cursor = max(len(lines)-1, 0)
	}
	m.refresh()
}

// SetQuery sets the query whose matches are highlighted. Replace results
// show rewritten text, so nothing is highlighted for them.
func (m *Model) SetQuery(d model.QueryDescriptor) {
	m.matcher = nil
	if d.ReplaceAll {
		return
	}
	if mt, err := search.Compile(d); err == nil {
		m.matcher = mt
	}
	m.refresh()
}

// SetTitle sets the label shown above the document.
func (m *Model) SetTitle(title string) {
	m.title = title
}

func (m *Model) SetFollow(on bool) {
	m.follow = on
	if on {
		m.cursor = max(len(m.lines)-1, 0)
		m.refresh()
	}
}

func (m Model) Following() bool { return m.follow }
func (m Model) Cursor() int     { return m.cursor }
func (m Model) Len() int        { return len(m.lines) }

// SelectedLine returns the result row under the cursor.
func (m Model) SelectedLine() (model.ResultLine, bool) {
	if m.cursor < 0 || m.cursor >= len(m.lines) {
		return model.ResultLine{}, false
	}
	return model.ParseResultLine(m.lines[m.cursor])
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		page := max(m.viewport.Height-1, 1)
		switch {
		case key.Matches(msg, ui.Keys.Down):
			m.move(1)
		case key.Matches(msg, ui.Keys.Up):
			m.move(-1)
		case key.Matches(msg, ui.Keys.PageDown):
			m.move(page)
		case key.Matches(msg, ui.Keys.PageUp):
			m.move(-page)
		case key.Matches(msg, ui.Keys.Top):
			m.move(-len(m.lines))
		case key.Matches(msg, ui.Keys.Bottom):
			m.SetFollow(true)
		case key.Matches(msg, ui.Keys.Follow):
			m.SetFollow(!m.follow)
		case msg.String() == "n":
			m.jump(1)
		case msg.String() == "N":
			m.jump(-1)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-1)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 1
		}
		m.refresh()
	}
	return m, nil
}

func (m *Model) move(delta int) {
	if len(m.lines) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.lines)-1)
	m.follow = false
	m.refresh()
}

// jump moves to the next result row in dir, skipping headers and footers.
func (m *Model) jump(dir int) {
	for i := m.cursor + dir; i >= 0 && i < len(m.lines); i += dir {
		if _, ok := model.ParseResultLine(m.lines[i]); ok {
			m.cursor = i
			m.follow = false
			m.refresh()
			return
		}
	}
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.render())
	h := m.viewport.Height
	switch {
	case m.cursor < m.viewport.YOffset:
		m.viewport.SetYOffset(m.cursor)
	case h > 0 && m.cursor >= m.viewport.YOffset+h:
		m.viewport.SetYOffset(m.cursor - h + 1)
	}
}

func (m Model) render() string {
	var b strings.Builder
	for i, line := range m.lines {
		rendered := m.renderLine(line)
		if i == m.cursor {
			rendered = ui.StyleCursor.Render("> ") + rendered
		} else {
			rendered = "  " + rendered
		}
		b.WriteString(rendered)
		if i < len(m.lines)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (m Model) renderLine(line string) string {
	if stream.IsHeader(line) {
		return lipgloss.NewStyle().Bold(true).Render(line)
	}
	if stream.IsFooter(line) {
		return ui.StyleSuccess.Render(line)
	}
	r, ok := model.ParseResultLine(line)
	if !ok {
		return line
	}
	return ui.StylePath.Render(r.Path) + ":" +
		ui.StyleLineNo.Render(strconv.Itoa(r.Line)) + ":" +
		Highlight(r.Text, m.matcher)
}

// Highlight renders text with the ranges matched by mt emphasised.
func Highlight(text string, mt *search.Matcher) string {
	if mt == nil {
		return text
	}
	ranges := mt.Ranges(text)
	if len(ranges) == 0 {
		return text
	}
	runes := []rune(text)
	var b strings.Builder
	last := 0
	for _, rg := range ranges {
		start, end := min(rg[0], len(runes)), min(rg[1], len(runes))
		if start < last {
			continue
		}
		b.WriteString(string(runes[last:start]))
		b.WriteString(ui.StyleMatch.Render(string(runes[start:end])))
		last = end
	}
	b.WriteString(string(runes[last:]))
	return b.String()
}

func (m Model) View() string {
	if len(m.lines) == 0 {
		return "\n  No results yet. Press / to find in files, C-r to replace."
	}
	follow := ""
	if m.follow {
		follow = ui.StyleSuccess.Render(" [FOLLOW]")
	}
	header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F9FAFB")).
		Render(fmt.Sprintf(" %s  line %d/%d", m.titleOrDefault(), m.cursor+1, len(m.lines))) + follow
	return header + "\n" + m.viewport.View()
}

func (m Model) titleOrDefault() string {
	if m.title == "" {
		return "Search Results"
	}
	return m.title
}
