package stroke

import (
	"ScoreScribble/internal/state"
	"ScoreScribble/internal/surface"
)

// penHandler draws a smoothed additive line.
//
// Samples are chained as quadratic segments: the pair (p[i-1], p[i]) gives
// a curve from the previous segment's end with control p[i-1] ending at the
// midpoint of the pair, so the path runs through successive midpoints.
// Segments meet with matching tangents, which lets each new sample render
// only its own segment. Line ends are butt ends, so the first and last
// samples get a disc each to round them off.
type penHandler struct{}

func (penHandler) begin(e *Engine, g *gesture, p state.Point, _ state.Modifiers) bool {
	g.points = append(g.points[:0], p)
	e.canvas.DrawDisc(p, g.tools.PenWidth/2, penDisc(g))
	return true
}

func (penHandler) move(e *Engine, g *gesture, p state.Point) {
	g.points = append(g.points, p)
	pts := g.points
	n := len(pts)
	switch {
	case n == 2:
		// Straight feedback until there is enough to curve.
		e.canvas.DrawLine(pts[0], pts[1], penLine(g))
	case n == 3:
		path := chainSegment(pts, 1, e.tolerance)
		path = append(path, chainSegment(pts, 2, e.tolerance)[1:]...)
		e.canvas.DrawPath(path, penLine(g))
	case n > 3:
		e.canvas.DrawPath(chainSegment(pts, n-1, e.tolerance), penLine(g))
	}
}

func (penHandler) end(e *Engine, g *gesture) {
	pts := g.points
	n := len(pts)
	if n == 0 {
		return
	}
	last := pts[n-1]
	if n >= 3 {
		e.canvas.DrawLine(pts[n-2].Mid(last), last, penLine(g))
	}
	e.canvas.DrawDisc(last, g.tools.PenWidth/2, penDisc(g))
}

// chainSegment flattens the curve contributed by the pair (pts[i-1], pts[i]).
func chainSegment(pts []state.Point, i int, tol float64) []state.Point {
	start := pts[0]
	if i > 1 {
		start = pts[i-2].Mid(pts[i-1])
	}
	return flattenQuad(start, pts[i-1], pts[i-1].Mid(pts[i]), tol)
}

func penLine(g *gesture) surface.LineOptions {
	return surface.LineOptions{
		Compositing: surface.Additive,
		Width:       g.tools.PenWidth,
		Color:       g.tools.PenColor,
	}
}

func penDisc(g *gesture) surface.DiscOptions {
	return surface.DiscOptions{Compositing: surface.Additive, Color: g.tools.PenColor}
}
