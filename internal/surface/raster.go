package surface

import (
	"image"
	"image/draw"
	"math"

	"ScoreScribble/internal/state"

	"golang.org/x/image/vector"
)

// Compositing selects how a shape combines with existing marks.
type Compositing int

const (
	// Additive paints the shape's color over existing marks.
	Additive Compositing = iota
	// Subtractive punches the shape out of existing marks, ignoring color.
	Subtractive
)

func (c Compositing) String() string {
	switch c {
	case Additive:
		return "additive"
	case Subtractive:
		return "subtractive"
	}
	return "unknown"
}

// LineOptions configures DrawLine and DrawPath.
type LineOptions struct {
	Compositing Compositing
	Width       float64
	Color       state.RGB
}

// DiscOptions configures DrawDisc.
type DiscOptions struct {
	Compositing Compositing
	Color       state.RGB
}

// circleK places cubic control points so four arcs approximate a circle.
const circleK = 0.5522847498307936

// shape adds one closed outline to z, translated by -origin.
type shape func(z *vector.Rasterizer, origin vec)

type vec struct{ x, y float64 }

// DrawLine strokes one segment with butt ends. A zero-length segment draws
// nothing.
func (s *Surface) DrawLine(from, to state.Point, opts LineOptions) {
	if !s.ready || opts.Width <= 0 {
		return
	}
	a, b := s.vec(from), s.vec(to)
	hw := opts.Width * s.scale / 2
	q, ok := segmentShape(a, b, hw)
	if !ok {
		return
	}
	s.composite(boxOf(hw, a, b), opts.Compositing, opts.Color, q)
}

// DrawPath strokes a polyline with round joins between segments and butt
// ends at the first and last point.
func (s *Surface) DrawPath(points []state.Point, opts LineOptions) {
	if !s.ready || opts.Width <= 0 || len(points) < 2 {
		return
	}
	hw := opts.Width * s.scale / 2
	pts := make([]vec, len(points))
	for i, p := range points {
		pts[i] = s.vec(p)
	}
	shapes := make([]shape, 0, 2*len(pts))
	for i := 1; i < len(pts); i++ {
		if q, ok := segmentShape(pts[i-1], pts[i], hw); ok {
			shapes = append(shapes, q)
		}
		if i < len(pts)-1 {
			shapes = append(shapes, discShape(pts[i], hw))
		}
	}
	s.composite(boxOf(hw, pts...), opts.Compositing, opts.Color, shapes...)
}

// DrawDisc fills a circle of the given logical radius.
func (s *Surface) DrawDisc(center state.Point, radius float64, opts DiscOptions) {
	if !s.ready || radius <= 0 {
		return
	}
	c := s.vec(center)
	r := radius * s.scale
	s.composite(boxOf(r, c), opts.Compositing, opts.Color, discShape(c, r))
}

func (s *Surface) vec(p state.Point) vec {
	x, y := s.toPixel(p)
	return vec{x, y}
}

func segmentShape(a, b vec, hw float64) (shape, bool) {
	dx, dy := b.x-a.x, b.y-a.y
	l := math.Hypot(dx, dy)
	if l == 0 {
		return nil, false
	}
	nx, ny := -dy/l*hw, dx/l*hw
	return func(z *vector.Rasterizer, o vec) {
		z.MoveTo(f32(a.x+nx-o.x), f32(a.y+ny-o.y))
		z.LineTo(f32(b.x+nx-o.x), f32(b.y+ny-o.y))
		z.LineTo(f32(b.x-nx-o.x), f32(b.y-ny-o.y))
		z.LineTo(f32(a.x-nx-o.x), f32(a.y-ny-o.y))
		z.ClosePath()
	}, true
}

func discShape(c vec, r float64) shape {
	k := r * circleK
	return func(z *vector.Rasterizer, o vec) {
		x, y := c.x-o.x, c.y-o.y
		z.MoveTo(f32(x+r), f32(y))
		z.CubeTo(f32(x+r), f32(y+k), f32(x+k), f32(y+r), f32(x), f32(y+r))
		z.CubeTo(f32(x-k), f32(y+r), f32(x-r), f32(y+k), f32(x-r), f32(y))
		z.CubeTo(f32(x-r), f32(y-k), f32(x-k), f32(y-r), f32(x), f32(y-r))
		z.CubeTo(f32(x+k), f32(y-r), f32(x+r), f32(y-k), f32(x+r), f32(y))
		z.ClosePath()
	}
}

func f32(v float64) float32 { return float32(v) }

// boxOf returns the pixel rectangle covering pts grown by pad.
func boxOf(pad float64, pts ...vec) image.Rectangle {
	minX, minY := pts[0].x, pts[0].y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX, maxX = min(minX, p.x), max(maxX, p.x)
		minY, maxY = min(minY, p.y), max(maxY, p.y)
	}
	return image.Rect(
		int(math.Floor(minX-pad))-1, int(math.Floor(minY-pad))-1,
		int(math.Ceil(maxX+pad))+1, int(math.Ceil(maxY+pad))+1,
	)
}

// composite rasterizes shapes into a coverage mask spanning box and applies
// it to the buffer. Shapes are rasterized one at a time so overlapping
// outlines of opposite winding never cancel.
func (s *Surface) composite(box image.Rectangle, mode Compositing, c state.RGB, shapes ...shape) {
	if len(shapes) == 0 || box.Empty() {
		return
	}
	clip := box.Intersect(s.buf.Bounds())
	if clip.Empty() {
		return
	}

	mask := image.NewAlpha(image.Rect(0, 0, box.Dx(), box.Dy()))
	origin := vec{float64(box.Min.X), float64(box.Min.Y)}
	for _, sh := range shapes {
		s.raster.Reset(box.Dx(), box.Dy())
		sh(s.raster, origin)
		s.raster.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	}
	mp := clip.Min.Sub(box.Min)

	switch mode {
	case Additive:
		draw.DrawMask(s.buf, clip, image.NewUniform(c.Color()), image.Point{}, mask, mp, draw.Over)
	case Subtractive:
		punch(s.buf, clip, mask, mp)
	default:
		state.Logger().Warn("surface: unknown compositing", "mode", int(mode))
	}
}

// punch scales every premultiplied channel in r by the inverse of the mask
// coverage, so full coverage leaves a transparent pixel.
func punch(dst *image.RGBA, r image.Rectangle, mask *image.Alpha, mp image.Point) {
	for y := 0; y < r.Dy(); y++ {
		mi := mask.PixOffset(mp.X, mp.Y+y)
		di := dst.PixOffset(r.Min.X, r.Min.Y+y)
		for x := 0; x < r.Dx(); x, mi, di = x+1, mi+1, di+4 {
			m := mask.Pix[mi]
			if m == 0 {
				continue
			}
			keep := uint32(0xff - m)
			px := dst.Pix[di : di+4 : di+4]
			px[0] = uint8(uint32(px[0]) * keep / 0xff)
			px[1] = uint8(uint32(px[1]) * keep / 0xff)
			px[2] = uint8(uint32(px[2]) * keep / 0xff)
			px[3] = uint8(uint32(px[3]) * keep / 0xff)
		}
	}
}
