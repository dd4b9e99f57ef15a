// Package executor invokes a captured menu entry by re-walking its path
// through the live menu tree.
package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quickmenu/internal/accessibility"
	"quickmenu/internal/domain"
	"quickmenu/internal/logging"
)

// DefaultDelay gives the overlay time to close before the target reacts
const DefaultDelay = 120 * time.Millisecond

// ActionExecutor runs the default action of the entry at a path
type ActionExecutor interface {
	Execute(ctx context.Context, target domain.Target, path domain.Path) error
}

// executor is the concrete implementation
type executor struct {
	source   accessibility.Source
	delay    time.Duration
	inflight chan struct{} // one action at a time
}

// New creates an executor. delay < 0 selects DefaultDelay.
func New(source accessibility.Source, delay time.Duration) ActionExecutor {
	if delay < 0 {
		delay = DefaultDelay
	}
	return &executor{
		source:   source,
		delay:    delay,
		inflight: make(chan struct{}, 1),
	}
}

// Execute waits out the delay, then walks path from the menu bar of target
// through each node's current children and performs the entry it lands on.
// Path components are raw child indices, exactly as assigned at capture.
// An index that no longer exists yields domain.ErrStaleTree and nothing is
// performed.
func (e *executor) Execute(ctx context.Context, target domain.Target, path domain.Path) error {
	if len(path) == 0 {
		return fmt.Errorf("%w: empty path", domain.ErrStaleTree)
	}

	select {
	case e.inflight <- struct{}{}:
		defer func() { <-e.inflight }()
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := e.wait(ctx); err != nil {
		return err
	}

	log := logging.Log.WithField("target", target.String()).WithField("path", path.Key())

	h, err := e.resolve(ctx, target, path)
	if err != nil {
		log.WithError(err).Info("Could not resolve menu entry")
		return err
	}

	if err := e.source.Perform(ctx, h); err != nil {
		if errors.Is(err, accessibility.ErrInvalidHandle) {
			return fmt.Errorf("%w: %w", domain.ErrStaleTree, err)
		}
		// Cancellation means the caller gave up; a deadline means the action hung
		if errors.Is(ctx.Err(), context.Canceled) {
			return ctx.Err()
		}
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		log.WithError(err).Warn("Menu action failed")
		return fmt.Errorf("%w: %w", domain.ErrActionFailed, err)
	}

	log.Debug("Menu action performed")
	return nil
}

// resolve walks path from a fresh root handle
func (e *executor) resolve(ctx context.Context, target domain.Target, path domain.Path) (accessibility.Handle, error) {
	h, err := e.source.Root(ctx, target.PID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, domain.ErrPermissionDenied) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: menu bar unavailable: %w", domain.ErrStaleTree, err)
	}

	for depth, index := range path {
		children, err := e.source.Children(ctx, h)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w: children of %s: %w", domain.ErrStaleTree, path[:depth], err)
		}
		if index < 0 || index >= len(children) {
			return nil, fmt.Errorf("%w: index %d out of range at %s (%d children)",
				domain.ErrStaleTree, index, path[:depth], len(children))
		}
		h = children[index]
	}
	return h, nil
}

func (e *executor) wait(ctx context.Context) error {
	if e.delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(e.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
