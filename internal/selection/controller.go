// Package selection tracks which search result is highlighted. Disabled
// results are shown but can never be highlighted.
package selection

import (
	"quickmenu/internal/domain"
)

// Controller moves the highlight over the current result list
type Controller struct {
	items []domain.Item
	state State
}

// New creates a controller over items with nothing highlighted. The first
// cycle from this state lands on the first (or last) enabled result.
func New(items []domain.Item) *Controller {
	return &Controller{
		items: items,
		state: State{Highlighted: None},
	}
}

// Refresh replaces the result list. The previous index is kept when it is
// still in range and enabled; otherwise the first enabled result is
// highlighted, or nothing when none is enabled.
func (c *Controller) Refresh(items []domain.Item) {
	prev := c.state.Highlighted
	c.items = items
	c.state.Highlighted = None

	if c.selectable(prev) {
		c.state.Highlighted = prev
	} else {
		c.state.Highlighted = c.firstEnabled()
	}
	c.ensureVisible()
}

// Cycle moves the highlight to the next enabled result in direction,
// wrapping at either end. With nothing enabled it is a no-op.
func (c *Controller) Cycle(dir Direction) int {
	n := len(c.items)
	if n == 0 {
		return c.state.Highlighted
	}

	step := 1
	if dir == DirectionBackward {
		step = -1
	}

	start := c.state.Highlighted
	if start == None {
		// Entering the list: forward lands on the first index, backward on the last
		if dir == DirectionBackward {
			start = 0
		} else {
			start = n - 1
		}
	}

	for i := 1; i <= n; i++ {
		idx := ((start+step*i)%n + n) % n
		if c.items[idx].Enabled {
			c.state.Highlighted = idx
			break
		}
	}
	c.ensureVisible()
	return c.state.Highlighted
}

// Next is Cycle forward
func (c *Controller) Next() int { return c.Cycle(DirectionForward) }

// Previous is Cycle backward
func (c *Controller) Previous() int { return c.Cycle(DirectionBackward) }

// Select jumps to index when it is in range and enabled
func (c *Controller) Select(index int) bool {
	if !c.selectable(index) {
		return false
	}
	c.state.Highlighted = index
	c.ensureVisible()
	return true
}

// Highlighted returns the highlighted index, or None
func (c *Controller) Highlighted() int {
	return c.state.Highlighted
}

// Current returns the highlighted item
func (c *Controller) Current() (domain.Item, bool) {
	if c.state.Highlighted == None {
		return domain.Item{}, false
	}
	return c.items[c.state.Highlighted], true
}

// Items returns the current result list
func (c *Controller) Items() []domain.Item {
	return c.items
}

// Len returns the number of results
func (c *Controller) Len() int {
	return len(c.items)
}

// State returns a snapshot of the highlight and viewport
func (c *Controller) State() State {
	return c.state
}

func (c *Controller) selectable(index int) bool {
	return index >= 0 && index < len(c.items) && c.items[index].Enabled
}

func (c *Controller) firstEnabled() int {
	for i, item := range c.items {
		if item.Enabled {
			return i
		}
	}
	return None
}
