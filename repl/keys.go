package main

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type keyMap struct {
	Accept    []key.Binding
	Undo      key.Binding
	Terminate key.Binding
	Refresh   key.Binding
	Clear     key.Binding
	Quit      key.Binding
}

var keys = keyMap{
	Accept: []key.Binding{
		key.NewBinding(key.WithKeys("alt+1", "f1"), key.WithHelp("alt+1", "1st")),
		key.NewBinding(key.WithKeys("alt+2", "f2"), key.WithHelp("alt+2", "2nd")),
		key.NewBinding(key.WithKeys("alt+3", "f3"), key.WithHelp("alt+3", "3rd")),
		key.NewBinding(key.WithKeys("alt+4", "f4"), key.WithHelp("alt+4", "4th")),
	},
	Undo: key.NewBinding(
		key.WithKeys("ctrl+z"),
		key.WithHelp("ctrl+z", "undo word"),
	),
	Terminate: key.NewBinding(
		key.WithKeys("ctrl+t"),
		key.WithHelp("ctrl+t", "।"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "new suggestions"),
	),
	Clear: key.NewBinding(
		key.WithKeys("ctrl+l"),
		key.WithHelp("ctrl+l", "clear"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "esc"),
		key.WithHelp("esc", "quit"),
	),
}

// acceptIndex returns which suggestion msg accepts, or -1.
func acceptIndex(msg tea.KeyMsg) int {
	for i, b := range keys.Accept {
		if key.Matches(msg, b) {
			return i
		}
	}
	return -1
}
