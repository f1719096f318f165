package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// keyMap defines global key bindings used across the TUI.
type keyMap struct {
	Start    key.Binding
	Reset    key.Binding
	Flash    key.Binding
	Favorite key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Start: key.NewBinding(
			key.WithKeys("s", " ", "enter"),
			key.WithHelp("s/space", "scan"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r", "esc"),
			key.WithHelp("r/esc", "reset"),
		),
		Flash: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "flash"),
		),
		Favorite: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "favorite"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Reset, k.Flash, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Start, k.Reset},
		{k.Flash, k.Favorite},
		{k.Help, k.Quit},
	}
}
