// Package memsource is an in-memory accessibility source. It backs the file
// source and the tests, and can inject the failures a live accessibility API
// produces: failing queries, latency and handles invalidated by a menu rebuild.
package memsource

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"quickmenu/internal/accessibility"
	"quickmenu/internal/domain"
)

// Node is one entry of an in-memory menu tree
type Node struct {
	Title    string
	Disabled bool
	Children []*Node
	Command  string // run by the file source's perform hook

	FailChildren bool
	FailTitle    bool
	FailEnabled  bool
	FailPerform  bool
}

// Menu builds a node with children
func Menu(title string, children ...*Node) *Node {
	return &Node{Title: title, Children: children}
}

// Item builds a leaf node
func Item(title string) *Node {
	return &Node{Title: title}
}

// DisabledItem builds a disabled leaf node
func DisabledItem(title string) *Node {
	return &Node{Title: title, Disabled: true}
}

// Separator builds a separator row
func Separator() *Node {
	return &Node{Title: domain.SeparatorTitle}
}

// Group builds an untitled container
func Group(children ...*Node) *Node {
	return &Node{Children: children}
}

// ErrQueryFailed is returned by queries configured to fail
var ErrQueryFailed = errors.New("accessibility query failed")

// PerformFunc runs a node's action
type PerformFunc func(ctx context.Context, n *Node) error

type handle struct {
	node  *Node
	epoch uint64
}

// Source serves one application's menu bar from memory
type Source struct {
	mu        sync.Mutex
	app       domain.Target
	root      *Node
	epoch     uint64
	trusted   bool
	latency   time.Duration
	rootErr   error
	perform   PerformFunc
	performed []*Node
	queries   int
}

// New creates a source serving root as the menu bar of app
func New(app domain.Target, root *Node) *Source {
	return &Source{
		app:     app,
		root:    root,
		trusted: true,
	}
}

// Replace swaps the menu tree, invalidating every handle handed out so far
func (s *Source) Replace(root *Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.root = root
	s.epoch++
}

// Mutate edits the tree in place under the source lock. Like Replace, it
// invalidates outstanding handles.
func (s *Source) Mutate(fn func(root *Node)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.root)
	s.epoch++
}

// SetTrusted toggles the reported accessibility permission
func (s *Source) SetTrusted(trusted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trusted = trusted
}

// SetLatency delays every query by d
func (s *Source) SetLatency(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latency = d
}

// SetRootError makes Root fail with err; nil restores normal behaviour
func (s *Source) SetRootError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rootErr = err
}

// SetPerformFunc installs the hook run by Perform
func (s *Source) SetPerformFunc(fn PerformFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.perform = fn
}

// Performed returns the nodes whose action was invoked, in order
func (s *Source) Performed() []*Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Node, len(s.performed))
	copy(out, s.performed)
	return out
}

// Queries returns the number of attribute queries answered so far
func (s *Source) Queries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries
}

// Frontmost reports the application served by this source
func (s *Source) Frontmost(ctx context.Context) (domain.Target, error) {
	return s.app, nil
}

// Trusted reports the configured permission
func (s *Source) Trusted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trusted
}

func (s *Source) Root(ctx context.Context, pid int) (accessibility.Handle, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries++

	if !s.trusted {
		return nil, domain.ErrPermissionDenied
	}
	if s.rootErr != nil {
		return nil, s.rootErr
	}
	if pid != s.app.PID {
		return nil, fmt.Errorf("no application with pid %d", pid)
	}
	if s.root == nil {
		return nil, fmt.Errorf("%s has no menu bar", s.app)
	}
	return handle{node: s.root, epoch: s.epoch}, nil
}

func (s *Source) Children(ctx context.Context, h accessibility.Handle) ([]accessibility.Handle, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.resolve(h)
	if err != nil {
		return nil, err
	}
	if n.FailChildren {
		return nil, ErrQueryFailed
	}

	out := make([]accessibility.Handle, len(n.Children))
	for i, c := range n.Children {
		out[i] = handle{node: c, epoch: s.epoch}
	}
	return out, nil
}

func (s *Source) Title(ctx context.Context, h accessibility.Handle) (string, error) {
	if err := s.wait(ctx); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.resolve(h)
	if err != nil {
		return "", err
	}
	if n.FailTitle {
		return "", ErrQueryFailed
	}
	return n.Title, nil
}

func (s *Source) Enabled(ctx context.Context, h accessibility.Handle) (bool, error) {
	if err := s.wait(ctx); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.resolve(h)
	if err != nil {
		return false, err
	}
	if n.FailEnabled {
		return false, ErrQueryFailed
	}
	return !n.Disabled, nil
}

func (s *Source) Perform(ctx context.Context, h accessibility.Handle) error {
	if err := s.wait(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	n, err := s.resolve(h)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if n.FailPerform {
		s.mu.Unlock()
		return ErrQueryFailed
	}
	s.performed = append(s.performed, n)
	hook := s.perform
	s.mu.Unlock()

	if hook != nil {
		return hook(ctx, n)
	}
	return nil
}

// resolve must be called with s.mu held
func (s *Source) resolve(h accessibility.Handle) (*Node, error) {
	s.queries++
	hd, ok := h.(handle)
	if !ok || hd.node == nil {
		return nil, fmt.Errorf("foreign handle %T: %w", h, accessibility.ErrInvalidHandle)
	}
	if hd.epoch != s.epoch {
		return nil, accessibility.ErrInvalidHandle
	}
	return hd.node, nil
}

func (s *Source) wait(ctx context.Context) error {
	s.mu.Lock()
	d := s.latency
	s.mu.Unlock()

	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
