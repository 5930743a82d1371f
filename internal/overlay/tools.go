package overlay

import (
	"ScoreScribble/internal/state"
)

// SetTool selects the active tool. Unknown tools are ignored.
func (c *Controller) SetTool(t state.Tool) {
	c.update(func() effect {
		if !c.surface.Ready() || c.tools.Tool == t {
			return 0
		}
		if !t.Valid() {
			state.Logger().Warn("overlay: unknown tool ignored", "tool", t)
			return 0
		}
		c.tools.Tool = t
		state.Logger().Info("overlay: tool selected", "tool", t)
		return publish
	})
}

// SetEnabled turns annotation on or off. Turning it off while the eraser is
// active also selects the pen, so enabling again never starts out erasing.
func (c *Controller) SetEnabled(enabled bool) {
	c.update(func() effect {
		if !c.surface.Ready() || c.tools.Enabled == enabled {
			return 0
		}
		c.tools.Enabled = enabled
		if !enabled && c.tools.Tool == state.ToolEraser {
			c.tools.Tool = state.ToolPen
			state.Logger().Info("overlay: eraser released on disable", "tool", c.tools.Tool)
		}
		state.Logger().Info("overlay: annotation toggled", "enabled", enabled)
		return publish
	})
}

// AdjustActiveSize changes the size that belongs to the active tool by
// delta, clamped to [state.MinWidth, state.MaxWidth]. Pen and text share
// the pen width; the eraser has its own.
func (c *Controller) AdjustActiveSize(delta float64) {
	c.update(func() effect {
		if !c.surface.Ready() {
			return 0
		}
		var w *float64
		switch c.tools.Tool {
		case state.ToolPen, state.ToolText:
			w = &c.tools.PenWidth
		case state.ToolEraser:
			w = &c.tools.EraserWidth
		default:
			return 0
		}
		next := state.ClampWidth(*w + delta)
		if next == *w {
			return 0
		}
		*w = next
		state.Logger().Debug("overlay: size adjusted", "tool", c.tools.Tool, "width", next)
		return publish
	})
}

// SetColor sets the pen color. A pending text region keeps the color it was
// opened with.
func (c *Controller) SetColor(rgb state.RGB) {
	c.update(func() effect {
		if !c.surface.Ready() || c.tools.PenColor == rgb {
			return 0
		}
		c.tools.PenColor = rgb
		state.Logger().Debug("overlay: color set", "color", rgb.Hex())
		return publish
	})
}
