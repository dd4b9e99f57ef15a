package selection

// SetViewportHeight sets how many rows fit on screen. Zero or less shows
// every result.
func (c *Controller) SetViewportHeight(height int) {
	c.state.ViewportHeight = height
	c.ensureVisible()
}

// Window returns the half-open range of result indices currently on screen
func (c *Controller) Window() (start, end int) {
	total := len(c.items)
	if c.state.ViewportHeight <= 0 || total <= c.state.ViewportHeight {
		return 0, total
	}
	start = c.state.ViewportOffset
	end = start + c.state.ViewportHeight
	if end > total {
		end = total
	}
	return start, end
}

// ensureVisible scrolls the viewport so the highlight stays on screen
func (c *Controller) ensureVisible() {
	total := len(c.items)
	height := c.state.ViewportHeight
	if height <= 0 || total <= height {
		c.state.ViewportOffset = 0
		return
	}

	sel := c.state.Highlighted
	if sel != None {
		if sel < c.state.ViewportOffset {
			c.state.ViewportOffset = sel
		}
		if sel >= c.state.ViewportOffset+height {
			c.state.ViewportOffset = sel - height + 1
		}
	}

	maxOffset := total - height
	if c.state.ViewportOffset > maxOffset {
		c.state.ViewportOffset = maxOffset
	}
	if c.state.ViewportOffset < 0 {
		c.state.ViewportOffset = 0
	}
}
