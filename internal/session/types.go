package session

import (
	"time"

	"quickmenu/internal/domain"
)

// Task is blocking work started by the controller. It runs off the
// interaction thread and its Outcome is handed back through Deliver.
type Task func() Outcome

// Outcome is the result of a Task
type Outcome interface {
	// SessionGeneration is the generation the task was started under
	SessionGeneration() uint64
}

// Captured is the outcome of a capture task
type Captured struct {
	Generation uint64
	Target     domain.Target
	Tree       *domain.MenuNode
	Items      []domain.Item
	Duration   time.Duration
	Err        error
}

func (o Captured) SessionGeneration() uint64 { return o.Generation }

// Executed is the outcome of an execution task
type Executed struct {
	Generation uint64
	SessionID  string
	Target     domain.Target
	Item       domain.Item
	Err        error
}

func (o Executed) SessionGeneration() uint64 { return o.Generation }
