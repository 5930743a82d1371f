package overlay

// Key is an editing key delivered to a pending text region.
type Key int

const (
	KeyBackspace Key = iota
	KeyNewline
	KeyCommit
	KeyCancel
)

// TypeRune appends r to the pending text region.
func (c *Controller) TypeRune(r rune) {
	c.update(func() effect {
		if !c.engine.InsertText(string(r)) {
			return 0
		}
		return publish
	})
}

// TypeKey applies an editing key to the pending text region.
func (c *Controller) TypeKey(k Key) {
	switch k {
	case KeyCommit:
		c.CommitText()
	case KeyCancel:
		c.CancelText()
	case KeyBackspace:
		c.update(func() effect {
			if !c.engine.Backspace() {
				return 0
			}
			return publish
		})
	case KeyNewline:
		c.TypeRune('\n')
	}
}

// SetText replaces the text of the pending region.
func (c *Controller) SetText(text string) {
	c.update(func() effect {
		if !c.engine.SetText(text) {
			return 0
		}
		return publish
	})
}

// CommitText rasterizes the pending text region at the current pen width.
func (c *Controller) CommitText() {
	c.update(func() effect {
		if !c.engine.CommitText(c.tools.PenWidth) {
			return 0
		}
		return publish | repaint
	})
}

// CancelText discards the pending text region.
func (c *Controller) CancelText() {
	c.update(func() effect {
		if !c.engine.CancelText() {
			return 0
		}
		return publish
	})
}
