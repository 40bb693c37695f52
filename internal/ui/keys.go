package ui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Quit     key.Binding
	Help     key.Binding
	Find     key.Binding
	Replace  key.Binding
	Enter    key.Binding
	Back     key.Binding
	Refresh  key.Binding
	Cancel   key.Binding
	Copy     key.Binding
	Delete   key.Binding
	ClearAll key.Binding
	Prune    key.Binding
	Select   key.Binding
	Sort     key.Binding
	Filter   key.Binding
	Follow   key.Binding
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding
}

var Keys = KeyMap{
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Find:     key.NewBinding(key.WithKeys("/", "ctrl+f"), key.WithHelp("/", "find")),
	Replace:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("C-r", "replace")),
	Enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Cancel:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop search")),
	Copy:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy path")),
	Delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	ClearAll: key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "clear all")),
	Prune:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "prune expired")),
	Select:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
	Sort:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
	Filter:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
	Follow:   key.NewBinding(key.WithKeys("F"), key.WithHelp("F", "follow")),
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("k/up", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("j/down", "down")),
	PageUp:   key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
	PageDown: key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
	Top:      key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
	Bottom:   key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
}
