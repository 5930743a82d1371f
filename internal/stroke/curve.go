package stroke

import (
	"math"

	"ScoreScribble/internal/state"
)

const maxCurveSegments = 64

// flattenQuad approximates the quadratic Bézier p0-c-p1 with a polyline
// whose points stay within tol of the curve. The result starts at p0 and
// ends at p1.
func flattenQuad(p0, c, p1 state.Point, tol float64) []state.Point {
	// The chord error of n uniform steps is bounded by |p0-2c+p1| / (8n²).
	dd := math.Hypot(p0.X-2*c.X+p1.X, p0.Y-2*c.Y+p1.Y)
	n := int(math.Ceil(math.Sqrt(dd / (8 * tol))))
	n = max(1, min(n, maxCurveSegments))

	pts := make([]state.Point, 0, n+1)
	pts = append(pts, p0)
	for i := 1; i < n; i++ {
		t := float64(i) / float64(n)
		u := 1 - t
		pts = append(pts, state.Point{
			X: u*u*p0.X + 2*u*t*c.X + t*t*p1.X,
			Y: u*u*p0.Y + 2*u*t*c.Y + t*t*p1.Y,
		})
	}
	return append(pts, p1)
}
