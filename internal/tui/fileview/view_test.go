package fileview

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestGotoLineAndSearch(t *testing.T) {
	m := New()
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 10})
	m.SetContent("/workspace/a.go", "package a\r\n\r\nfunc foo() {}\r\n// foo again\r\n", nil)
	m.GotoLine(3)
	if m.JumpLine() != 2 {
		t.Fatalf("jump line = %d, want 2", m.JumpLine())
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	if !m.IsSearching() {
		t.Fatal("/ should start an in-file search")
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("FOO")})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.IsSearching() {
		t.Fatal("enter should confirm the search")
	}
	if len(m.matchLines) != 2 || m.matchLines[0] != 2 || m.matchLines[1] != 3 {
		t.Fatalf("match lines = %v, want [2 3]", m.matchLines)
	}
	if !strings.Contains(m.View(), "[1/2 matches]") {
		t.Errorf("header should count matches: %q", m.View())
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	if m.matchIndex != 1 {
		t.Errorf("n should move to the next match, index = %d", m.matchIndex)
	}
}

func TestLoadingAndError(t *testing.T) {
	m := New()
	m.SetLoading("/workspace/a.go")
	if !strings.Contains(m.View(), "Opening /workspace/a.go") {
		t.Errorf("view = %q", m.View())
	}
	m.SetError("/workspace/a.go", errors.New("permission denied"))
	if !strings.Contains(m.View(), "permission denied") {
		t.Errorf("view = %q", m.View())
	}
}
