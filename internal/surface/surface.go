// Package surface owns the annotation bitmap that sits on top of the score.
//
// The bitmap covers the full scrollable extent of the content and is scaled
// by the display's pixel density. Every drawing call takes logical (CSS)
// coordinates; the surface maps them to buffer pixels itself, so callers
// never see the scale factor.
//
// A Surface is not safe for concurrent use.
package surface

import (
	"image"
	"image/color"
	"math"

	"ScoreScribble/internal/state"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// Surface is a persistent raster of user marks.
type Surface struct {
	buf    *image.RGBA
	width  int // logical
	height int // logical
	scale  float64
	ready  bool

	raster *vector.Rasterizer
	faces  faceCache
}

// New returns an uninitialized surface. Every operation is a no-op until
// Initialize succeeds.
func New() *Surface {
	return &Surface{raster: vector.NewRasterizer(0, 0)}
}

// PixelSize returns the buffer dimensions for a logical size at a scale
// factor. Fractional pixels are truncated.
func PixelSize(width, height int, scale float64) (int, int) {
	return int(math.Floor(float64(width) * scale)), int(math.Floor(float64(height) * scale))
}

func validGeometry(width, height int, scale float64) bool {
	if width <= 0 || height <= 0 || !(scale > 0) || math.IsInf(scale, 0) {
		return false
	}
	pw, ph := PixelSize(width, height, scale)
	return pw > 0 && ph > 0
}

// Initialize allocates the buffer for a logical size and scale factor.
// It runs at most once per surface and reports whether it did.
func (s *Surface) Initialize(width, height int, scale float64) bool {
	log := state.Logger()
	if s.ready {
		log.Warn("surface: already initialized", "width", s.width, "height", s.height)
		return false
	}
	if !validGeometry(width, height, scale) {
		log.Warn("surface: rejected degenerate size", "width", width, "height", height, "scale", scale)
		return false
	}
	pw, ph := PixelSize(width, height, scale)
	s.buf = image.NewRGBA(image.Rect(0, 0, pw, ph))
	s.width, s.height, s.scale = width, height, scale
	s.ready = true
	log.Info("surface: initialized", "width", width, "height", height, "scale", scale, "pixels", s.buf.Rect.Size())
	return true
}

// Resize reallocates the buffer for a new logical size and stretches the
// existing marks from the old logical extent onto the new one. The stretch
// is bilinear and therefore approximate. It reports whether the buffer was
// replaced; an unchanged geometry, a degenerate size or an uninitialized
// surface leave everything as is.
func (s *Surface) Resize(width, height int, scale float64) bool {
	if !s.ready {
		return false
	}
	if !validGeometry(width, height, scale) {
		state.Logger().Warn("surface: rejected degenerate resize", "width", width, "height", height, "scale", scale)
		return false
	}
	if width == s.width && height == s.height && scale == s.scale {
		return false
	}

	old := s.buf
	pw, ph := PixelSize(width, height, scale)
	next := image.NewRGBA(image.Rect(0, 0, pw, ph))
	xdraw.BiLinear.Scale(next, next.Bounds(), old, old.Bounds(), xdraw.Src, nil)

	state.Logger().Debug("surface: resized",
		"from", image.Pt(s.width, s.height), "to", image.Pt(width, height),
		"scale", scale, "pixels", next.Rect.Size())
	s.buf = next
	s.width, s.height, s.scale = width, height, scale
	return true
}

// Clear erases every mark.
func (s *Surface) Clear() {
	if !s.ready {
		return
	}
	clear(s.buf.Pix)
}

// Ready reports whether Initialize has succeeded.
func (s *Surface) Ready() bool { return s.ready }

// LogicalSize returns the size in logical coordinates.
func (s *Surface) LogicalSize() (width, height int) { return s.width, s.height }

// Scale returns the device scale factor.
func (s *Surface) Scale() float64 { return s.scale }

// Area returns the logical extent as an area anchored at the origin.
func (s *Surface) Area() state.Area {
	return state.Area{Width: float64(s.width), Height: float64(s.height)}
}

// Bounds returns the buffer bounds in device pixels.
func (s *Surface) Bounds() image.Rectangle {
	if !s.ready {
		return image.Rectangle{}
	}
	return s.buf.Bounds()
}

// Pixel returns the premultiplied color of a buffer pixel.
func (s *Surface) Pixel(x, y int) color.RGBA {
	if !s.ready {
		return color.RGBA{}
	}
	return s.buf.RGBAAt(x, y)
}

// AlphaAt returns the coverage of the buffer pixel under a logical point.
func (s *Surface) AlphaAt(p state.Point) uint8 {
	x, y := s.toPixel(p)
	return s.Pixel(int(math.Floor(x)), int(math.Floor(y))).A
}

// Image returns a copy of the buffer, or nil before Initialize.
func (s *Surface) Image() *image.RGBA {
	if !s.ready {
		return nil
	}
	img := image.NewRGBA(s.buf.Rect)
	copy(img.Pix, s.buf.Pix)
	return img
}

// View returns the live buffer without copying. The caller must not retain
// it across a Resize.
func (s *Surface) View() *image.RGBA {
	if !s.ready {
		return nil
	}
	return s.buf
}

func (s *Surface) toPixel(p state.Point) (float64, float64) {
	return p.X * s.scale, p.Y * s.scale
}
