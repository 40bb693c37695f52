package findform

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/duydb2/cloud9/internal/history"
	"github.com/duydb2/cloud9/internal/model"
	"github.com/duydb2/cloud9/internal/query"
	"github.com/duydb2/cloud9/internal/ui"
)

// ResultMsg is emitted when the form is submitted or dismissed.
type ResultMsg struct {
	Submitted bool
	Query     model.QueryDescriptor
}

// Defaults are the initial toggle values of a new form.
type Defaults struct {
	Regex        bool
	MatchCase    bool
	WholeWord    bool
	FilePatterns string
}

type field int

const (
	fieldPattern field = iota
	fieldReplacement
	fieldFiles
	fieldScope
	fieldSelection
	fieldRegex
	fieldCase
	fieldWord
	fieldCount
)

// recall walks the history entries matching what was typed before the
// first ctrl+p.
type recall struct {
	field   field
	typed   string
	matches []model.HistoryEntry
	idx     int
}

// Model is the find / replace in files form.
type Model struct {
	active  bool
	replace bool
	focused field
	project string

	pattern     textinput.Model
	replacement textinput.Model
	files       textinput.Model
	selection   textinput.Model

	scope     query.ScopeMode
	regex     bool
	matchCase bool
	wholeWord bool

	history map[string][]model.HistoryEntry
	recall  *recall

	width  int
	height int
}

func newInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 1024
	ti.Width = 40
	return ti
}

// New creates an inactive form searching below project.
func New(project string, d Defaults) Model {
	files := newInput("e.g. *.go, *.js")
	files.SetValue(d.FilePatterns)
	return Model{
		project:     project,
		pattern:     newInput("Find in files"),
		replacement: newInput("Replace with"),
		files:       files,
		selection:   newInput("folder or file below " + project),
		regex:       d.Regex,
		matchCase:   d.MatchCase,
		wholeWord:   d.WholeWord,
		history:     make(map[string][]model.HistoryEntry),
	}
}

// Open shows the form, keeping the values of the previous search.
func (m *Model) Open(replace bool) tea.Cmd {
	m.active = true
	m.replace = replace
	m.recall = nil
	m.blurInputs()
	m.focused = fieldPattern
	m.pattern.Focus()
	return textinput.Blink
}

func (m Model) IsActive() bool    { return m.active }
func (m Model) IsReplace() bool   { return m.replace }
func (m Model) Project() string   { return m.project }
func (m Model) Init() tea.Cmd     { return nil }
func (m *Model) SetSize(w, h int) { m.width, m.height = w, h }

// SetHistory replaces the recall entries of kind, newest first.
func (m *Model) SetHistory(kind string, entries []model.HistoryEntry) {
	m.history[kind] = entries
}

// Fields returns the raw form values.
func (m Model) Fields() query.Fields {
	return query.Fields{
		Pattern:       m.pattern.Value(),
		IsRegex:       m.regex,
		CaseSensitive: m.matchCase,
		WholeWord:     m.wholeWord,
		Replacement:   m.replacement.Value(),
		ReplaceAll:    m.replace,
		FilePatterns:  m.files.Value(),
		Scope:         m.scope,
		ProjectPath:   m.project,
		Selection:     m.selectionPath(),
	}
}

// selectionPath resolves the selection field against the project root.
func (m Model) selectionPath() string {
	sel := strings.TrimSpace(m.selection.Value())
	if sel == "" || strings.HasPrefix(sel, "/") {
		return sel
	}
	return strings.TrimSuffix(m.project, "/") + "/" + sel
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.active {
		return m, nil
	}
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		m.active = false
		m.blurInputs()
		return m, emit(ResultMsg{})
	case "enter":
		d, ok := query.Build(m.Fields())
		if !ok {
			return m, nil
		}
		m.active = false
		m.blurInputs()
		return m, emit(ResultMsg{Submitted: true, Query: d})
	case "tab", "down":
		m.moveFocus(1)
		return m, m.focusCurrent()
	case "shift+tab", "up":
		m.moveFocus(-1)
		return m, m.focusCurrent()
	case "alt+r":
		m.regex = !m.regex
		return m, nil
	case "alt+c":
		m.matchCase = !m.matchCase
		return m, nil
	case "alt+w":
		m.wholeWord = !m.wholeWord
		return m, nil
	case "ctrl+p":
		m.stepRecall(1)
		return m, nil
	case "ctrl+n":
		m.stepRecall(-1)
		return m, nil
	}

	if in := m.input(m.focused); in != nil {
		m.recall = nil
		var cmd tea.Cmd
		*in, cmd = in.Update(keyMsg)
		return m, cmd
	}

	switch keyMsg.String() {
	case " ", "left", "right", "h", "l":
		switch m.focused {
		case fieldScope:
			if m.scope == query.ScopeProject {
				m.scope = query.ScopeSelection
			} else {
				m.scope = query.ScopeProject
			}
		case fieldRegex:
			m.regex = !m.regex
		case fieldCase:
			m.matchCase = !m.matchCase
		case fieldWord:
			m.wholeWord = !m.wholeWord
		}
	}
	return m, nil
}

// stepRecall moves through history entries for the focused text field.
// dir 1 goes to older entries.
func (m *Model) stepRecall(dir int) {
	var kind string
	switch m.focused {
	case fieldPattern:
		kind = model.HistorySearch
	case fieldReplacement:
		kind = model.HistoryReplace
	default:
		return
	}
	in := m.input(m.focused)

	if m.recall == nil || m.recall.field != m.focused {
		typed := in.Value()
		m.recall = &recall{
			field:   m.focused,
			typed:   typed,
			matches: history.Filter(m.history[kind], typed),
			idx:     -1,
		}
	}
	r := m.recall
	if len(r.matches) == 0 {
		return
	}
	r.idx += dir
	switch {
	case r.idx < 0:
		r.idx = -1
		in.SetValue(r.typed)
	case r.idx >= len(r.matches):
		r.idx = len(r.matches) - 1
		in.SetValue(r.matches[r.idx].Query)
	default:
		in.SetValue(r.matches[r.idx].Query)
	}
	in.CursorEnd()
}

func (m *Model) input(f field) *textinput.Model {
	switch f {
	case fieldPattern:
		return &m.pattern
	case fieldReplacement:
		return &m.replacement
	case fieldFiles:
		return &m.files
	case fieldSelection:
		return &m.selection
	}
	return nil
}

func (m Model) visible(f field) bool {
	switch f {
	case fieldReplacement:
		return m.replace
	case fieldSelection:
		return m.scope == query.ScopeSelection
	}
	return true
}

func (m *Model) moveFocus(delta int) {
	next := m.focused
	for range fieldCount {
		next = field((int(next) + delta + int(fieldCount)) % int(fieldCount))
		if m.visible(next) {
			break
		}
	}
	m.focused = next
}

func (m *Model) focusCurrent() tea.Cmd {
	m.blurInputs()
	if in := m.input(m.focused); in != nil {
		in.Focus()
		return textinput.Blink
	}
	return nil
}

func (m *Model) blurInputs() {
	m.pattern.Blur()
	m.replacement.Blur()
	m.files.Blur()
	m.selection.Blur()
}

func (m Model) View() string {
	if !m.active {
		return ""
	}

	labelStyle := lipgloss.NewStyle().Width(12).Foreground(ui.ColorMuted)
	focusedLabelStyle := lipgloss.NewStyle().Width(12).Bold(true).Foreground(ui.ColorPrimary)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#F9FAFB"))

	rows := make([]string, 0, int(fieldCount))
	for f := field(0); f < fieldCount; f++ {
		if !m.visible(f) {
			continue
		}
		ls := labelStyle
		if f == m.focused {
			ls = focusedLabelStyle
		}

		var label, value string
		switch f {
		case fieldPattern:
			label, value = "Find:", m.pattern.View()
		case fieldReplacement:
			label, value = "Replace:", m.replacement.View()
		case fieldFiles:
			label, value = "Files:", m.files.View()
		case fieldScope:
			label = "Scope:"
			if m.scope == query.ScopeProject {
				value = valueStyle.Render("Project ( " + m.project + " )")
			} else {
				value = valueStyle.Render(query.SelectionLabel(m.selectionPath()))
			}
		case fieldSelection:
			label, value = "Path:", m.selection.View()
		case fieldRegex:
			label, value = "Regexp:", toggle(m.regex)
		case fieldCase:
			label, value = "Match case:", toggle(m.matchCase)
		case fieldWord:
			label, value = "Whole word:", toggle(m.wholeWord)
		}

		cursor := "  "
		if f == m.focused {
			cursor = lipgloss.NewStyle().Foreground(ui.ColorPrimary).Render("> ")
		}
		rows = append(rows, fmt.Sprintf("%s%s %s", cursor, ls.Render(label), value))
	}

	titleText := "Find in Files"
	if m.replace {
		titleText = "Replace in Files"
	}
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(ui.ColorPrimary).
		MarginBottom(1).
		Render(titleText)

	help := lipgloss.NewStyle().
		Foreground(ui.ColorMuted).
		MarginTop(1).
		Render("enter: run  tab: next  space: toggle  C-p/C-n: history  esc: close")

	body := lipgloss.JoinVertical(lipgloss.Left,
		title,
		strings.Join(rows, "\n"),
		help,
	)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorPrimary).
		Padding(1, 2).
		Width(64).
		Render(body)

	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}

func toggle(on bool) string {
	if on {
		return ui.StyleSuccess.Render("[x]")
	}
	return ui.StyleMuted.Render("[ ]")
}

func emit(r ResultMsg) tea.Cmd {
	return func() tea.Msg { return r }
}
