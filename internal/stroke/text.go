package stroke

import (
	"strings"
	"unicode/utf8"

	"ScoreScribble/internal/state"

	"github.com/google/uuid"
)

// Minimum editor box for a pending region, in logical pixels.
const (
	minRegionWidth  = 120
	minRegionHeight = 24
	regionPadding   = 4
)

// TextRegion is a floating text label that has not been rasterized yet.
type TextRegion struct {
	ID    uuid.UUID
	Pos   state.Point // top-left, logical
	Text  string
	Color state.RGB
}

// Lines splits the text into the lines DrawText will set.
func (r TextRegion) Lines() []string {
	return strings.Split(r.Text, "\n")
}

// textHandler opens a pending region on press, or drags the pending region
// when a modifier is held on top of it. Moves carry no modifiers, so the
// modifiers held at the press decide the whole gesture. Motion never
// rasterizes anything.
type textHandler struct{}

func (textHandler) begin(e *Engine, g *gesture, p state.Point, mods state.Modifiers) bool {
	log := state.Logger()
	if e.pending != nil {
		if mods.Any() && e.regionBox(g.tools.PenWidth).Contains(p) {
			g.dragging = true
			g.dragOffset = p.Sub(e.pending.Pos)
			return true
		}
		log.Debug("stroke: text region already pending", "id", e.pending.ID)
		return false
	}
	e.pending = &TextRegion{
		ID:    uuid.New(),
		Pos:   p,
		Color: g.tools.PenColor,
	}
	log.Debug("stroke: text region opened", "id", e.pending.ID, "x", p.X, "y", p.Y)
	return true
}

func (textHandler) move(e *Engine, g *gesture, p state.Point) {
	if !g.dragging || e.pending == nil {
		return
	}
	box := e.regionBox(g.tools.PenWidth)
	pos := p.Sub(g.dragOffset)
	box.X, box.Y = pos.X, pos.Y
	box = box.ClampInto(e.canvas.Area())
	e.pending.Pos = state.Point{X: box.X, Y: box.Y}
}

func (textHandler) end(*Engine, *gesture) {}

// Pending returns a copy of the pending text region, if any.
func (e *Engine) Pending() (TextRegion, bool) {
	if e.pending == nil {
		return TextRegion{}, false
	}
	return *e.pending, true
}

// RegionBox returns the editor box of the pending region for a pen width.
func (e *Engine) RegionBox(penWidth float64) (state.Area, bool) {
	if e.pending == nil {
		return state.Area{}, false
	}
	return e.regionBox(penWidth), true
}

func (e *Engine) regionBox(penWidth float64) state.Area {
	r := e.pending
	w, h := e.canvas.MeasureText(r.Lines(), e.textOptions(r.Color, penWidth))
	return state.Area{
		X:      r.Pos.X,
		Y:      r.Pos.Y,
		Width:  max(w+2*regionPadding, minRegionWidth),
		Height: max(h+2*regionPadding, minRegionHeight),
	}
}

// SetText replaces the pending region's text. It reports whether a region
// was pending.
func (e *Engine) SetText(text string) bool {
	if e.pending == nil {
		return false
	}
	e.pending.Text = text
	return true
}

// InsertText appends s to the pending region's text.
func (e *Engine) InsertText(s string) bool {
	if e.pending == nil {
		return false
	}
	e.pending.Text += s
	return true
}

// Backspace removes the last rune of the pending region's text.
func (e *Engine) Backspace() bool {
	if e.pending == nil || e.pending.Text == "" {
		return false
	}
	_, size := utf8.DecodeLastRuneInString(e.pending.Text)
	e.pending.Text = e.pending.Text[:len(e.pending.Text)-size]
	return true
}

// CommitText rasterizes the pending region at its position in its own
// color, at the font size derived from penWidth, and discards it. Blank
// text is discarded without drawing. It reports whether a region was
// pending.
func (e *Engine) CommitText(penWidth float64) bool {
	r := e.pending
	if r == nil {
		return false
	}
	e.dropPending()
	if strings.TrimSpace(r.Text) == "" {
		state.Logger().Debug("stroke: blank text region discarded", "id", r.ID)
		return true
	}
	e.canvas.DrawText(r.Pos, r.Lines(), e.textOptions(r.Color, penWidth))
	state.Logger().Debug("stroke: text region committed", "id", r.ID, "lines", len(r.Lines()))
	return true
}

// CancelText discards the pending region without drawing. It reports
// whether a region was pending.
func (e *Engine) CancelText() bool {
	if e.pending == nil {
		return false
	}
	state.Logger().Debug("stroke: text region cancelled", "id", e.pending.ID)
	e.dropPending()
	return true
}

// dropPending forgets the region and any drag that was moving it.
func (e *Engine) dropPending() {
	e.pending = nil
	if e.gesture != nil && e.gesture.dragging {
		e.gesture = nil
	}
}
