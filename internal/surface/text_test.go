package surface

import (
	"image"
	"testing"

	"ScoreScribble/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaselines(t *testing.T) {
	ys := Baselines(state.Point{X: 5, Y: 10}, 3, TextOptions{FontSize: 20})
	require.Len(t, ys, 3)
	assert.InDelta(t, 30, ys[0], 1e-9)
	assert.InDelta(t, 54, ys[1], 1e-9)
	assert.InDelta(t, 78, ys[2], 1e-9)

	ys = Baselines(state.Point{}, 2, TextOptions{FontSize: 10, LineHeightFactor: 2})
	assert.InDelta(t, 20, ys[1]-ys[0], 1e-9)
	assert.Empty(t, Baselines(state.Point{}, 0, TextOptions{FontSize: 10}))
}

func TestDrawTextLines(t *testing.T) {
	s := newSurface(t, 200, 100, 1)
	s.DrawText(state.Point{X: 10, Y: 10}, []string{"HH", "HH"}, TextOptions{Color: red, FontSize: 20})
	img := s.Image()

	// Capital H sits on the baseline (30 and 54) and rises about 0.7em.
	assert.Zero(t, inked(img, image.Rect(0, 0, 200, 13)), "above first line")
	assert.NotZero(t, inked(img, image.Rect(0, 16, 200, 30)), "first line")
	assert.Zero(t, inked(img, image.Rect(0, 32, 200, 38)), "between lines")
	assert.NotZero(t, inked(img, image.Rect(0, 40, 200, 54)), "second line")
	assert.Zero(t, inked(img, image.Rect(0, 56, 200, 100)), "below second line")
	assert.Zero(t, inked(img, image.Rect(0, 0, 9, 100)), "left of the origin")
}

func TestDrawTextScaled(t *testing.T) {
	s := newSurface(t, 100, 50, 2)
	s.DrawText(state.Point{X: 10, Y: 10}, []string{"H"}, TextOptions{Color: red, FontSize: 10})
	img := s.Image()

	// Baseline at logical 20, device 40.
	assert.NotZero(t, inked(img, image.Rect(0, 30, 200, 40)))
	assert.Zero(t, inked(img, image.Rect(0, 42, 200, 100)))
	assert.Zero(t, inked(img, image.Rect(0, 0, 200, 24)))
}

func TestMeasureText(t *testing.T) {
	s := New()
	opts := TextOptions{FontSize: 20}

	short, h1 := s.MeasureText([]string{"ab"}, opts)
	long, h2 := s.MeasureText([]string{"ab", "abcdef"}, opts)
	assert.Greater(t, short, 0.0)
	assert.Greater(t, long, short)
	assert.InDelta(t, 24, h2-h1, 1e-9)

	w, h := s.MeasureText(nil, opts)
	assert.Zero(t, w)
	assert.Zero(t, h)
}
