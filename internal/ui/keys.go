package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// keyMap holds the overlay's key bindings
type keyMap struct {
	Toggle   key.Binding
	Close    key.Binding
	Next     key.Binding
	Previous key.Binding
	Commit   key.Binding
	Tree     key.Binding
	Quit     key.Binding
	QuitIdle key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Toggle: key.NewBinding(
			key.WithKeys("ctrl+k"),
			key.WithHelp("ctrl+k", "open/close"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab", "down", "ctrl+n"),
			key.WithHelp("tab/↓", "next"),
		),
		Previous: key.NewBinding(
			key.WithKeys("shift+tab", "up", "ctrl+p"),
			key.WithHelp("shift+tab/↑", "previous"),
		),
		Commit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "run"),
		),
		Tree: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "menu tree"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		QuitIdle: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Commit, k.Close, k.Tree}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Previous, k.Commit},
		{k.Toggle, k.Close, k.Tree, k.Quit},
	}
}

// idleHelp is shown while no session is open
type idleHelp struct{ keys keyMap }

func (h idleHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.keys.Toggle, h.keys.QuitIdle}
}

func (h idleHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{h.ShortHelp()}
}

// actionFor maps a key press to an action. Keys that map to nothing are
// typed into the query field while a session is open.
func (k keyMap) actionFor(msg tea.KeyMsg, open bool) Action {
	switch {
	case key.Matches(msg, k.Quit):
		return QuitAction{}
	case key.Matches(msg, k.Toggle):
		return ToggleAction{}
	}

	if !open {
		if key.Matches(msg, k.QuitIdle) {
			return QuitAction{}
		}
		return nil
	}

	switch {
	case key.Matches(msg, k.Close):
		return CloseAction{}
	case key.Matches(msg, k.Next):
		return CycleAction{Forward: true}
	case key.Matches(msg, k.Previous):
		return CycleAction{Forward: false}
	case key.Matches(msg, k.Commit):
		return CommitAction{}
	case key.Matches(msg, k.Tree):
		return ShowTreeAction{}
	}
	return nil
}
