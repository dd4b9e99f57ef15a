package session

import (
	"quickmenu/internal/domain"
)

// State returns the session state
func (c *Controller) State() domain.SessionState { return c.state }

// Query returns the current query text
func (c *Controller) Query() string { return c.query }

// Results returns the ranked results for the current query
func (c *Controller) Results() []domain.Item { return c.sel.Items() }

// Highlighted returns the highlighted result index, or -1
func (c *Controller) Highlighted() int { return c.sel.Highlighted() }

// Target returns the application pinned by the current or last session
func (c *Controller) Target() domain.Target { return c.target }

// Generation identifies the current session; it changes on every start and
// close.
func (c *Controller) Generation() uint64 { return c.generation }

// SessionID returns the ID of the current or last session
func (c *Controller) SessionID() string { return c.sessionID }

// Tree returns the captured menu of the presenting session
func (c *Controller) Tree() *domain.MenuNode { return c.tree }

// Items returns the full index of the presenting session
func (c *Controller) Items() []domain.Item { return c.items }

// Err returns the error that ended the last session, if any
func (c *Controller) Err() error { return c.lastErr }

// SetViewportHeight sets how many results fit on screen
func (c *Controller) SetViewportHeight(height int) {
	c.viewport = height
	c.sel.SetViewportHeight(height)
}

// Window returns the half-open range of result indices on screen
func (c *Controller) Window() (start, end int) { return c.sel.Window() }
