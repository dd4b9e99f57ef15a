package domain

import "errors"

// Capture failures
var (
	ErrNoMenuBar = errors.New("target has no accessible menu bar")
	ErrEmpty     = errors.New("menu bar has no usable items")
	ErrTimeout   = errors.New("menu capture timed out")
)

// Execution failures
var (
	ErrStaleTree    = errors.New("menu changed since it was captured")
	ErrActionFailed = errors.New("menu action failed")
)

// ErrPermissionDenied is reported by the accessibility layer when the process
// is not trusted to query other applications
var ErrPermissionDenied = errors.New("accessibility permission denied")

// IsCaptureError reports whether err belongs to the capture taxonomy
func IsCaptureError(err error) bool {
	return errors.Is(err, ErrNoMenuBar) || errors.Is(err, ErrEmpty) || errors.Is(err, ErrTimeout)
}

// IsExecutionError reports whether err belongs to the execution taxonomy
func IsExecutionError(err error) bool {
	return errors.Is(err, ErrStaleTree) || errors.Is(err, ErrActionFailed)
}
