package surface

import (
	"image"
	"math"
	"sync"

	"ScoreScribble/internal/state"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// DefaultLineHeightFactor spaces consecutive baselines by 1.2 font sizes.
const DefaultLineHeightFactor = 1.2

// TextOptions configures DrawText.
type TextOptions struct {
	Color            state.RGB
	FontSize         float64 // logical pixels
	LineHeightFactor float64 // zero means DefaultLineHeightFactor
}

func (o TextOptions) lineHeight() float64 {
	f := o.LineHeightFactor
	if f <= 0 {
		f = DefaultLineHeightFactor
	}
	return o.FontSize * f
}

// Baselines returns the logical y of each line's baseline when n lines are
// set with their top at pos.
func Baselines(pos state.Point, n int, opts TextOptions) []float64 {
	ys := make([]float64, n)
	for i := range ys {
		ys[i] = pos.Y + opts.FontSize + float64(i)*opts.lineHeight()
	}
	return ys
}

// DrawText paints lines additively with their top-left at pos.
func (s *Surface) DrawText(pos state.Point, lines []string, opts TextOptions) {
	if !s.ready || opts.FontSize <= 0 || len(lines) == 0 {
		return
	}
	face := s.faces.get(opts.FontSize * s.scale)
	if face == nil {
		return
	}
	d := font.Drawer{
		Dst:  s.buf,
		Src:  image.NewUniform(opts.Color.Color()),
		Face: face,
	}
	x, _ := s.toPixel(pos)
	for i, y := range Baselines(pos, len(lines), opts) {
		d.Dot = fixed.Point26_6{X: toFixed(x), Y: toFixed(y * s.scale)}
		d.DrawString(lines[i])
	}
}

// MeasureText returns the logical width of the widest line and the height
// of the block as DrawText would set it.
func (s *Surface) MeasureText(lines []string, opts TextOptions) (width, height float64) {
	if opts.FontSize <= 0 || len(lines) == 0 {
		return 0, 0
	}
	face := s.faces.get(opts.FontSize)
	if face == nil {
		return 0, 0
	}
	for _, l := range lines {
		width = max(width, fromFixed(font.MeasureString(face, l)))
	}
	height = opts.FontSize + float64(len(lines)-1)*opts.lineHeight() + float64(face.Metrics().Descent.Ceil())
	return width, height
}

func toFixed(v float64) fixed.Int26_6 { return fixed.Int26_6(math.Round(v * 64)) }

func fromFixed(v fixed.Int26_6) float64 { return float64(v) / 64 }

var parseGoRegular = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(goregular.TTF)
})

// faceCache keeps one face per pixel size, keyed in 1/64 pixel steps.
type faceCache struct {
	faces map[fixed.Int26_6]font.Face
}

func (c *faceCache) get(px float64) font.Face {
	key := toFixed(px)
	if f, ok := c.faces[key]; ok {
		return f
	}
	log := state.Logger()
	otf, err := parseGoRegular()
	if err != nil {
		log.Warn("surface: parse font", "err", err)
		return nil
	}
	face, err := opentype.NewFace(otf, &opentype.FaceOptions{
		Size:    fromFixed(key),
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		log.Warn("surface: create face", "size", px, "err", err)
		return nil
	}
	if c.faces == nil {
		c.faces = make(map[fixed.Int26_6]font.Face)
	}
	c.faces[key] = face
	return face
}
