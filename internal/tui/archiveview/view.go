package archiveview

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/duydb2/cloud9/internal/model"
	"github.com/duydb2/cloud9/internal/ui"
)

type entryItem struct {
	entry    model.ArchiveEntry
	selected bool
}

func (e entryItem) Title() string {
	mark := " "
	if e.selected {
		mark = ui.StyleWarning.Render("● ")
	}
	q := "'" + e.entry.Query + "'"
	if e.entry.Replacement != "" {
		q += " -> '" + e.entry.Replacement + "'"
	}
	size := ui.StyleWarning.Render(humanize.IBytes(uint64(e.entry.Size)))
	return fmt.Sprintf("%s%s  %s", mark, q, size)
}

func (e entryItem) Description() string {
	parts := []string{ui.StyleInfo.Render(e.entry.Scope)}
	if e.entry.State != "" {
		parts = append(parts, ui.ArchiveStateStyle(e.entry.State).Render(e.entry.State))
	}
	parts = append(parts, fmt.Sprintf("%d matches in %d files", e.entry.Count, e.entry.FileCount))
	if !e.entry.StoredAt.IsZero() {
		parts = append(parts, ui.StyleMuted.Render("stored "+humanize.Time(e.entry.StoredAt)))
	}
	if !e.entry.LastAccessed.IsZero() {
		parts = append(parts, ui.StyleMuted.Render("opened "+humanize.Time(e.entry.LastAccessed)))
	}
	return strings.Join(parts, "  ")
}

func (e entryItem) FilterValue() string {
	return e.entry.Query + " " + e.entry.Replacement + " " + e.entry.Scope
}

// SortMode determines how entries are ordered.
type SortMode int

const (
	SortByAccessed SortMode = iota
	SortByStored
	SortBySize
)

func (s SortMode) String() string {
	switch s {
	case SortByStored:
		return "stored"
	case SortBySize:
		return "size"
	default:
		return "last opened"
	}
}

// Model lists the archived results documents.
type Model struct {
	list      list.Model
	entries   []model.ArchiveEntry
	selected  map[string]bool
	sortMode  SortMode
	totalSize int64
	width     int
	height    int
	loading   bool
	err       error
}

func New() Model {
	delegate := list.NewDefaultDelegate()
	delegate.SetHeight(2)
	delegate.SetSpacing(0)

	l := list.New(nil, delegate, 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.KeyMap.Filter = ui.Keys.Filter
	l.DisableQuitKeybindings()

	return Model{list: l, selected: make(map[string]bool), loading: true}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.ArchiveLoadedMsg:
		m.loading = false
		m.err = msg.Err
		if msg.Err != nil {
			return m, nil
		}
		m.entries = msg.Entries
		m.totalSize = msg.TotalSize
		m.selected = make(map[string]bool)
		m.sortEntries()
		return m, m.list.SetItems(m.buildItems())

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-1)

	case tea.KeyMsg:
		if !m.IsFiltering() {
			switch {
			case key.Matches(msg, ui.Keys.Select):
				if item, ok := m.list.SelectedItem().(entryItem); ok {
					k := item.entry.Key
					if m.selected[k] {
						delete(m.selected, k)
					} else {
						m.selected[k] = true
					}
					return m, m.list.SetItems(m.buildItems())
				}
				return m, nil
			case key.Matches(msg, ui.Keys.Sort):
				m.sortMode = (m.sortMode + 1) % 3
				m.sortEntries()
				return m, m.list.SetItems(m.buildItems())
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.loading {
		return "\n  Loading archived results..."
	}
	if m.err != nil {
		return fmt.Sprintf("\n  Error: %v\n\n  Press r to retry.", m.err)
	}
	if len(m.entries) == 0 {
		return "\n  No archived results.\n\n  Finished searches are kept here. Press r to refresh."
	}

	header := fmt.Sprintf("  %d results | Total: %s | Sort: %s | enter: open  s: sort  d: delete  p: prune  X: clear all",
		len(m.entries), humanize.IBytes(uint64(m.totalSize)), m.sortMode)
	return ui.StyleMuted.Render(header) + "\n" + m.list.View()
}

// SelectedEntry returns the entry under the cursor, or nil.
func (m Model) SelectedEntry() *model.ArchiveEntry {
	if item, ok := m.list.SelectedItem().(entryItem); ok {
		return &item.entry
	}
	return nil
}

func (m Model) Entries() []model.ArchiveEntry { return m.entries }

func (m Model) IsFiltering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) HasActiveFilter() bool {
	return m.list.FilterState() != list.Unfiltered
}

func (m *Model) sortEntries() {
	switch m.sortMode {
	case SortByAccessed:
		sort.SliceStable(m.entries, func(i, j int) bool {
			return m.entries[i].LastAccessed.After(m.entries[j].LastAccessed)
		})
	case SortByStored:
		sort.SliceStable(m.entries, func(i, j int) bool {
			return m.entries[i].StoredAt.After(m.entries[j].StoredAt)
		})
	case SortBySize:
		sort.SliceStable(m.entries, func(i, j int) bool {
			return m.entries[i].Size > m.entries[j].Size
		})
	}
}

func (m Model) buildItems() []list.Item {
	items := make([]list.Item, len(m.entries))
	for i, e := range m.entries {
		items[i] = entryItem{entry: e, selected: m.selected[e.Key]}
	}
	return items
}

// SelectedKeys returns the keys of the multi-selected entries, sorted.
func (m Model) SelectedKeys() []string {
	keys := make([]string, 0, len(m.selected))
	for k := range m.selected {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m Model) SelectionCount() int {
	return len(m.selected)
}

func (m *Model) ClearSelection() {
	clear(m.selected)
}
