package main

import (
	"github.com/aschmelyun/scenematch/internal/config"
	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Focus   key.Binding
	Select  key.Binding
	Play    key.Binding
	Back    key.Binding
	Forward key.Binding
	Seek    key.Binding
	Primary key.Binding
	Second  key.Binding
	Quit    key.Binding
}

func newKeyMap(mode config.Mode) keyMap {
	km := keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Focus:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch side")),
		Select:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Play:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		Back:    key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "back")),
		Forward: key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "forward")),
		Seek:    key.NewBinding(key.WithKeys("0", "1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("0-9", "seek %")),
		Quit:    key.NewBinding(key.WithKeys("esc", "q", "ctrl+c"), key.WithHelp("esc", "quit")),
	}

	if mode == config.ModeAnnotate {
		km.Primary = key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "mark start"))
		km.Second = key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "mark end"))
		km.Select.SetHelp("enter", "jump to")
		km.Focus.SetHelp("tab", "switch player")
	} else {
		km.Primary = key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "match"))
		km.Second = key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "unmatch"))
	}
	return km
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Focus, k.Select, k.Primary, k.Second, k.Play, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Focus, k.Select},
		{k.Play, k.Back, k.Forward, k.Seek},
		{k.Primary, k.Second, k.Quit},
	}
}
