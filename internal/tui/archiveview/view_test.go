package archiveview

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/duydb2/cloud9/internal/model"
	"github.com/duydb2/cloud9/internal/ui"
)

func loaded(t *testing.T) Model {
	t.Helper()
	now := time.Now()
	m := New()
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 20})
	m, _ = m.Update(ui.ArchiveLoadedMsg{
		Entries: []model.ArchiveEntry{
			{Key: "q-a", ArchiveMeta: model.ArchiveMeta{Query: "old", StoredAt: now.Add(-time.Hour)}, Size: 10, LastAccessed: now.Add(-time.Hour)},
			{Key: "q-b", ArchiveMeta: model.ArchiveMeta{Query: "new", StoredAt: now}, Size: 500, LastAccessed: now},
		},
		TotalSize: 510,
	})
	return m
}

func TestEntriesSortedByLastAccess(t *testing.T) {
	m := loaded(t)
	e := m.SelectedEntry()
	if e == nil || e.Key != "q-b" {
		t.Fatalf("selected = %+v, want the most recently opened entry", e)
	}
}

func TestSortCycles(t *testing.T) {
	m := loaded(t)
	for _, want := range []SortMode{SortByStored, SortBySize, SortByAccessed} {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
		if m.sortMode != want {
			t.Fatalf("sort = %v, want %v", m.sortMode, want)
		}
	}
}

func TestMultiSelect(t *testing.T) {
	m := loaded(t)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace})
	if got := m.SelectedKeys(); len(got) != 1 || got[0] != "q-b" {
		t.Fatalf("selected keys = %v", got)
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace})
	if m.SelectionCount() != 0 {
		t.Fatal("space again should unselect")
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace})
	m.ClearSelection()
	if m.SelectionCount() != 0 {
		t.Error("ClearSelection left entries selected")
	}
}
