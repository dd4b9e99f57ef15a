package ui

// Action is a user intent decoded from input
type Action interface {
	Type() string
}

type ToggleAction struct{}

func (a ToggleAction) Type() string { return "toggle" }

type CloseAction struct{}

func (a CloseAction) Type() string { return "close" }

type CycleAction struct {
	Forward bool
}

func (a CycleAction) Type() string { return "cycle" }

// SelectAction highlights a result row (pointer selection)
type SelectAction struct {
	Index int
}

func (a SelectAction) Type() string { return "select" }

type CommitAction struct{}

func (a CommitAction) Type() string { return "commit" }

type ShowTreeAction struct{}

func (a ShowTreeAction) Type() string { return "show_tree" }

type QuitAction struct{}

func (a QuitAction) Type() string { return "quit" }
