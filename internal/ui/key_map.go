package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	moveUp   key.Binding
	moveDown key.Binding
	top      key.Binding
	bottom   key.Binding
	enter    key.Binding
	back     key.Binding
	refresh  key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		moveUp:   key.NewBinding(key.WithKeys("shift+up", "K"), key.WithHelp("K", "move up")),
		moveDown: key.NewBinding(key.WithKeys("shift+down", "J"), key.WithHelp("J", "move down")),
		top:      key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "to top")),
		bottom:   key.NewBinding(key.WithKeys("B"), key.WithHelp("B", "to bottom")),
		enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter},
		{k.moveUp, k.moveDown, k.top, k.bottom},
		{k.back, k.refresh, k.quit},
	}
}
