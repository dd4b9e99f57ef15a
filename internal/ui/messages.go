package ui

import (
	"quickmenu/internal/eventbus"
	"quickmenu/internal/session"
)

// EventMsg wraps a domain event for the UI
type EventMsg struct {
	Event eventbus.DomainEvent
}

// outcomeMsg carries the result of a session task back to Update
type outcomeMsg struct {
	outcome session.Outcome
}

// clearStatusMsg clears the status line
type clearStatusMsg struct {
	seq int
}

// pagerMsg reports that the pager was closed
type pagerMsg struct {
	err error
}

// pauseRenderingMsg signals to pause Bubble Tea rendering
type pauseRenderingMsg struct{}

// resumeRenderingMsg signals to resume Bubble Tea rendering
type resumeRenderingMsg struct{}
