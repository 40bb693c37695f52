package confirm

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestDialogKeys(t *testing.T) {
	tests := []struct {
		name string
		keys []tea.KeyMsg
		want bool
	}{
		{"yes", []tea.KeyMsg{{Type: tea.KeyRunes, Runes: []rune("y")}}, true},
		{"no", []tea.KeyMsg{{Type: tea.KeyRunes, Runes: []rune("n")}}, false},
		{"esc", []tea.KeyMsg{{Type: tea.KeyEsc}}, false},
		{"enter defaults to no", []tea.KeyMsg{{Type: tea.KeyEnter}}, false},
		{"tab then enter", []tea.KeyMsg{{Type: tea.KeyTab}, {Type: tea.KeyEnter}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New("Clear Archive", "Delete ALL archived results?", ActionClearArchive, []string{"q-1"})
			var cmd tea.Cmd
			for _, k := range tt.keys {
				m, cmd = m.Update(k)
			}
			if m.IsActive() {
				t.Fatal("dialog should close")
			}
			res, ok := cmd().(ResultMsg)
			if !ok {
				t.Fatal("expected a ResultMsg")
			}
			if res.Confirmed != tt.want || res.Action != ActionClearArchive {
				t.Errorf("result = %+v", res)
			}
			if keys, _ := res.Data.([]string); len(keys) != 1 {
				t.Errorf("data = %v", res.Data)
			}
		})
	}
}
