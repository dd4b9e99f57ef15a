// Package accessibility defines the boundary to the platform accessibility
// API that exposes another application's menu bar.
//
// Handles are opaque and only valid for the query that produced them: the
// target may tear its menus down and rebuild them between any two calls.
// Callers that need to reach a node later keep its path, never its handle.
package accessibility

import (
	"context"
	"errors"

	"quickmenu/internal/domain"
)

// Handle is an opaque reference to one node of the live menu tree
type Handle any

// ErrInvalidHandle is returned when a handle outlived the tree it came from
var ErrInvalidHandle = errors.New("accessibility handle is no longer valid")

// Source answers attribute queries against a live menu tree
type Source interface {
	// Root returns the menu bar of the process identified by pid
	Root(ctx context.Context, pid int) (Handle, error)
	// Children returns the node's children in source order. Both an error and
	// an empty slice mean the node is a leaf.
	Children(ctx context.Context, h Handle) ([]Handle, error)
	Title(ctx context.Context, h Handle) (string, error)
	Enabled(ctx context.Context, h Handle) (bool, error)
	// Perform invokes the node's default action
	Perform(ctx context.Context, h Handle) error
}

// TargetResolver reports which application a new session should capture
type TargetResolver interface {
	Frontmost(ctx context.Context) (domain.Target, error)
}

// PermissionChecker reports whether the process may query other applications
type PermissionChecker interface {
	Trusted() bool
}
