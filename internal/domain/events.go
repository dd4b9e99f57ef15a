package domain

import "time"

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventSessionStateChanged EventType = "SessionStateChanged"
	EventResultsUpdated      EventType = "ResultsUpdated"
	EventCaptureCompleted    EventType = "CaptureCompleted"
	EventCaptureFailed       EventType = "CaptureFailed"
	EventExecutionFinished   EventType = "ExecutionFinished"
	EventPermissionDenied    EventType = "PermissionDenied"
	EventError               EventType = "Error"
	EventConfigLoaded        EventType = "ConfigLoaded"
	EventConfigSaved         EventType = "ConfigSaved"
	EventConfigChanged       EventType = "ConfigChanged"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// SessionStateChangedEvent is emitted on every session state transition
type SessionStateChangedEvent struct {
	SessionID  string
	Generation uint64
	From       SessionState
	To         SessionState
	Target     Target
}

func (e SessionStateChangedEvent) Type() EventType { return EventSessionStateChanged }

// ResultsUpdatedEvent is emitted whenever the result list is recomputed
type ResultsUpdatedEvent struct {
	SessionID   string
	Query       string
	Count       int
	Highlighted int // -1 when nothing is highlighted
}

func (e ResultsUpdatedEvent) Type() EventType { return EventResultsUpdated }

// CaptureCompletedEvent is emitted when a menu bar was captured and indexed
type CaptureCompletedEvent struct {
	SessionID string
	Target    Target
	Items     int
	Duration  time.Duration
}

func (e CaptureCompletedEvent) Type() EventType { return EventCaptureCompleted }

// CaptureFailedEvent is emitted when a capture ends without a usable index
type CaptureFailedEvent struct {
	SessionID string
	Target    Target
	Err       error
}

func (e CaptureFailedEvent) Type() EventType { return EventCaptureFailed }

// ExecutionFinishedEvent is emitted after an action was attempted
type ExecutionFinishedEvent struct {
	SessionID  string
	Target     Target
	Path       Path
	Breadcrumb string
	Err        error // nil on success
}

func (e ExecutionFinishedEvent) Type() EventType { return EventExecutionFinished }

// PermissionDeniedEvent is emitted when a session is refused for lack of
// accessibility permission
type PermissionDeniedEvent struct{}

func (e PermissionDeniedEvent) Type() EventType { return EventPermissionDenied }

// ErrorEvent is emitted when an error occurs outside a session
type ErrorEvent struct {
	Message string
	Err     error
}

func (e ErrorEvent) Type() EventType { return EventError }

// ConfigSavedEvent is emitted when configuration is saved
type ConfigSavedEvent struct {
	Path string
}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }
