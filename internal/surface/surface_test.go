package surface

import (
	"image"
	"math"
	"testing"

	"ScoreScribble/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var red = state.RGB{R: 0xff}

func newSurface(t *testing.T, w, h int, scale float64) *Surface {
	t.Helper()
	s := New()
	require.True(t, s.Initialize(w, h, scale))
	return s
}

// inked counts pixels with any coverage inside r.
func inked(img *image.RGBA, r image.Rectangle) int {
	n := 0
	r = r.Intersect(img.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if img.RGBAAt(x, y).A != 0 {
				n++
			}
		}
	}
	return n
}

// centroid returns the alpha-weighted center of the marks.
func centroid(img *image.RGBA) (float64, float64) {
	var sx, sy, sw float64
	for y := img.Rect.Min.Y; y < img.Rect.Max.Y; y++ {
		for x := img.Rect.Min.X; x < img.Rect.Max.X; x++ {
			a := float64(img.RGBAAt(x, y).A)
			sx += a * (float64(x) + 0.5)
			sy += a * (float64(y) + 0.5)
			sw += a
		}
	}
	if sw == 0 {
		return math.NaN(), math.NaN()
	}
	return sx / sw, sy / sw
}

func TestSurfaceInitialize(t *testing.T) {
	tests := []struct {
		name   string
		w, h   int
		scale  float64
		wantOK bool
		wantPx image.Point
	}{
		{"unit scale", 800, 600, 1, true, image.Pt(800, 600)},
		{"retina", 800, 600, 2, true, image.Pt(1600, 1200)},
		{"fractional", 801, 600, 1.5, true, image.Pt(1201, 900)},
		{"zero width", 0, 600, 1, false, image.Point{}},
		{"negative height", 800, -1, 1, false, image.Point{}},
		{"zero scale", 800, 600, 0, false, image.Point{}},
		{"NaN scale", 800, 600, math.NaN(), false, image.Point{}},
		{"rounds to nothing", 1, 1, 0.5, false, image.Point{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			assert.Equal(t, tt.wantOK, s.Initialize(tt.w, tt.h, tt.scale))
			assert.Equal(t, tt.wantOK, s.Ready())
			assert.Equal(t, tt.wantPx, s.Bounds().Size())
		})
	}
}

func TestSurfaceInitializeOnce(t *testing.T) {
	s := newSurface(t, 100, 50, 1)
	assert.False(t, s.Initialize(300, 300, 2))
	w, h := s.LogicalSize()
	assert.Equal(t, 100, w)
	assert.Equal(t, 50, h)
	assert.Equal(t, 1.0, s.Scale())
}

func TestSurfaceNotReadyIsNoop(t *testing.T) {
	s := New()
	assert.False(t, s.Resize(100, 100, 1))
	s.DrawLine(state.Point{}, state.Point{X: 10, Y: 10}, LineOptions{Width: 3, Color: red})
	s.DrawPath([]state.Point{{}, {X: 5}, {X: 5, Y: 5}}, LineOptions{Width: 3, Color: red})
	s.DrawDisc(state.Point{X: 5, Y: 5}, 4, DiscOptions{Color: red})
	s.DrawText(state.Point{}, []string{"x"}, TextOptions{FontSize: 12, Color: red})
	s.Clear()
	assert.Nil(t, s.Image())
	assert.Nil(t, s.View())
	assert.True(t, s.Bounds().Empty())
	assert.Equal(t, uint8(0), s.AlphaAt(state.Point{X: 1, Y: 1}))
}

func TestSurfaceResizeKeepsPixelInvariant(t *testing.T) {
	s := newSurface(t, 800, 600, 1)
	steps := []struct {
		w, h  int
		scale float64
	}{
		{1600, 600, 1},
		{1600, 600, 2},
		{640, 2000, 2},
		{0, 100, 2},    // rejected
		{640, 2000, 2}, // unchanged
		{333, 777, 1.25},
		{333, 777, 3},
		{10, 10, 1},
	}
	for _, st := range steps {
		s.Resize(st.w, st.h, st.scale)
		w, h := s.LogicalSize()
		pw, ph := PixelSize(w, h, s.Scale())
		require.Equal(t, image.Pt(pw, ph), s.Bounds().Size(), "after resize to %dx%d@%g", st.w, st.h, st.scale)
	}
	w, h := s.LogicalSize()
	assert.Equal(t, 10, w)
	assert.Equal(t, 10, h)
}

func TestSurfaceResizeSameGeometryIsNoop(t *testing.T) {
	s := newSurface(t, 100, 100, 2)
	before := s.View()
	assert.False(t, s.Resize(100, 100, 2))
	assert.Same(t, before, s.View())
	assert.True(t, s.Resize(100, 100, 1))
	assert.NotSame(t, before, s.View())
}

func TestSurfaceResizePreservesProportions(t *testing.T) {
	s := newSurface(t, 800, 600, 1)
	s.DrawDisc(state.Point{X: 400, Y: 300}, 10, DiscOptions{Color: red})

	cx, cy := centroid(s.Image())
	assert.InDelta(t, 400, cx, 0.5)
	assert.InDelta(t, 300, cy, 0.5)

	require.True(t, s.Resize(1600, 600, 1))
	cx, cy = centroid(s.Image())
	assert.InDelta(t, 800, cx, 2)
	assert.InDelta(t, 300, cy, 2)
	assert.Greater(t, int(s.AlphaAt(state.Point{X: 800, Y: 300})), 200)
	assert.Equal(t, uint8(0), s.AlphaAt(state.Point{X: 400, Y: 300}))
}

func TestDrawLineHorizontal(t *testing.T) {
	for _, scale := range []float64{1, 2} {
		s := newSurface(t, 800, 600, scale)
		s.DrawLine(state.Point{X: 10, Y: 10}, state.Point{X: 100, Y: 10}, LineOptions{Width: 2, Color: red})

		for x := 10.5; x < 100; x++ {
			require.Equal(t, uint8(0xff), s.AlphaAt(state.Point{X: x, Y: 9.5}), "x=%g scale=%g", x, scale)
			require.Equal(t, uint8(0xff), s.AlphaAt(state.Point{X: x, Y: 10.5}), "x=%g scale=%g", x, scale)
		}
		img := s.Image()
		px := func(v float64) int { return int(v * scale) }
		assert.Zero(t, inked(img, image.Rect(0, 0, px(800), px(9))), "above the line")
		assert.Zero(t, inked(img, image.Rect(0, px(11), px(800), px(600))), "below the line")
		assert.Zero(t, inked(img, image.Rect(px(101), 0, px(800), px(600))), "past the end")

		c := s.Pixel(px(50), px(10))
		assert.Equal(t, uint8(0xff), c.R)
		assert.Zero(t, c.G)
	}
}

func TestDrawLineZeroLengthDrawsNothing(t *testing.T) {
	s := newSurface(t, 50, 50, 1)
	s.DrawLine(state.Point{X: 10, Y: 10}, state.Point{X: 10, Y: 10}, LineOptions{Width: 8, Color: red})
	s.DrawLine(state.Point{X: 10, Y: 10}, state.Point{X: 30, Y: 10}, LineOptions{Width: 0, Color: red})
	assert.Zero(t, inked(s.Image(), s.Bounds()))
}

func TestSubtractiveClearsOnlyInsidePath(t *testing.T) {
	s := newSurface(t, 200, 100, 1)
	for y := 0.0; y < 100; y += 4 {
		s.DrawLine(state.Point{X: 0, Y: y + 2}, state.Point{X: 200, Y: y + 2}, LineOptions{Width: 4, Color: red})
	}
	before := s.Image()
	require.Equal(t, 200*100, inked(before, before.Rect))

	s.DrawLine(state.Point{X: 50, Y: 50}, state.Point{X: 150, Y: 50}, LineOptions{
		Compositing: Subtractive,
		Width:       20,
		Color:       state.RGB{G: 0xff},
	})
	after := s.Image()

	assert.Zero(t, inked(after, image.Rect(50, 40, 150, 60)), "erased band")
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			if x >= 49 && x <= 150 && y >= 39 && y <= 60 {
				continue
			}
			require.Equal(t, before.RGBAAt(x, y), after.RGBAAt(x, y), "pixel (%d,%d)", x, y)
		}
	}
}

func TestDrawPathRoundJoins(t *testing.T) {
	s := newSurface(t, 100, 100, 1)
	s.DrawPath([]state.Point{{X: 10, Y: 10}, {X: 50, Y: 10}, {X: 50, Y: 50}}, LineOptions{Width: 6, Color: red})

	// Outer corner of the join is filled by the round join.
	assert.Greater(t, int(s.AlphaAt(state.Point{X: 51.5, Y: 8.5})), 0xf0)
	assert.Equal(t, uint8(0xff), s.AlphaAt(state.Point{X: 30, Y: 10}))
	assert.Equal(t, uint8(0xff), s.AlphaAt(state.Point{X: 50, Y: 30}))
	assert.Zero(t, s.AlphaAt(state.Point{X: 30, Y: 30}))
}

func TestDrawDiscSubtractive(t *testing.T) {
	s := newSurface(t, 100, 100, 1)
	s.DrawLine(state.Point{X: 0, Y: 50}, state.Point{X: 100, Y: 50}, LineOptions{Width: 10, Color: red})
	s.DrawDisc(state.Point{X: 50, Y: 50}, 10, DiscOptions{Compositing: Subtractive})

	assert.Zero(t, s.AlphaAt(state.Point{X: 50, Y: 50}))
	assert.Zero(t, s.AlphaAt(state.Point{X: 44, Y: 52}))
	assert.Equal(t, uint8(0xff), s.AlphaAt(state.Point{X: 20, Y: 50}))
}

func TestClear(t *testing.T) {
	s := newSurface(t, 100, 100, 2)
	s.DrawDisc(state.Point{X: 50, Y: 50}, 20, DiscOptions{Color: red})
	require.NotZero(t, inked(s.Image(), s.Bounds()))
	s.Clear()
	assert.Zero(t, inked(s.Image(), s.Bounds()))
}

func TestImageIsACopy(t *testing.T) {
	s := newSurface(t, 10, 10, 1)
	img := s.Image()
	img.Pix[3] = 0xff
	assert.Zero(t, s.Pixel(0, 0).A)
}
