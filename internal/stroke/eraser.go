package stroke

import (
	"ScoreScribble/internal/state"
	"ScoreScribble/internal/surface"
)

// eraserHandler punches each pointer delta out of the surface. There is no
// smoothing; a disc at every sample keeps sharp turns covered.
type eraserHandler struct{}

func (eraserHandler) begin(e *Engine, g *gesture, p state.Point, _ state.Modifiers) bool {
	g.last = p
	e.canvas.DrawDisc(p, g.tools.EraserWidth/2, eraserDisc)
	return true
}

func (eraserHandler) move(e *Engine, g *gesture, p state.Point) {
	e.canvas.DrawLine(g.last, p, surface.LineOptions{
		Compositing: surface.Subtractive,
		Width:       g.tools.EraserWidth,
	})
	e.canvas.DrawDisc(p, g.tools.EraserWidth/2, eraserDisc)
	g.last = p
}

func (eraserHandler) end(*Engine, *gesture) {}

var eraserDisc = surface.DiscOptions{Compositing: surface.Subtractive}
