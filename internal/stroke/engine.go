// Package stroke turns pointer gestures into drawing operations.
//
// An Engine holds at most one active gesture. Each gesture snapshots the
// tool state when it starts and renders through the tool's handler:
// the pen draws a smoothed additive line, the eraser punches a plain
// subtractive line, and the text tool opens a pending text region that is
// only rasterized when committed.
//
// An Engine is not safe for concurrent use.
package stroke

import (
	"ScoreScribble/internal/state"
	"ScoreScribble/internal/surface"
)

// Canvas is the drawing surface a gesture renders into. *surface.Surface
// implements it.
type Canvas interface {
	DrawLine(from, to state.Point, opts surface.LineOptions)
	DrawPath(points []state.Point, opts surface.LineOptions)
	DrawDisc(center state.Point, radius float64, opts surface.DiscOptions)
	DrawText(pos state.Point, lines []string, opts surface.TextOptions)
	MeasureText(lines []string, opts surface.TextOptions) (width, height float64)
	Area() state.Area
}

var _ Canvas = (*surface.Surface)(nil)

// Font size mapping for committed text: BaseFontSize + PenWidth*FontSizeGain.
const (
	DefaultBaseFontSize = 14
	DefaultFontSizeGain = 2
)

// Option configures an Engine.
type Option func(*Engine)

// WithFontSize sets the linear mapping from pen width to text size.
func WithFontSize(base, gain float64) Option {
	return func(e *Engine) {
		if base > 0 {
			e.baseFontSize = base
		}
		if gain >= 0 {
			e.fontSizeGain = gain
		}
	}
}

// WithLineHeight sets the baseline spacing as a multiple of the font size.
func WithLineHeight(factor float64) Option {
	return func(e *Engine) {
		if factor > 0 {
			e.lineHeight = factor
		}
	}
}

// WithCurveTolerance sets the maximum logical distance between a flattened
// pen curve and the exact quadratic.
func WithCurveTolerance(tol float64) Option {
	return func(e *Engine) {
		if tol > 0 {
			e.tolerance = tol
		}
	}
}

// Engine renders gestures onto a Canvas.
type Engine struct {
	canvas Canvas

	baseFontSize float64
	fontSizeGain float64
	lineHeight   float64
	tolerance    float64

	gesture *gesture
	pending *TextRegion
}

// gesture is one pointer-down-to-up interaction.
type gesture struct {
	tools   state.ToolState
	handler handler

	points []state.Point // pen samples, in order
	last   state.Point   // eraser position

	dragging   bool        // text region drag
	dragOffset state.Point // pointer minus region position at drag start
}

// handler implements one tool's gesture lifecycle. begin reports whether
// the gesture became active.
type handler interface {
	begin(e *Engine, g *gesture, p state.Point, mods state.Modifiers) bool
	move(e *Engine, g *gesture, p state.Point)
	end(e *Engine, g *gesture)
}

// handlerFor returns the handler for t. Every declared tool must have one.
func handlerFor(t state.Tool) handler {
	switch t {
	case state.ToolPen:
		return penHandler{}
	case state.ToolEraser:
		return eraserHandler{}
	case state.ToolText:
		return textHandler{}
	}
	return nil
}

// NewEngine returns an engine drawing into c.
func NewEngine(c Canvas, opts ...Option) *Engine {
	e := &Engine{
		canvas:       c,
		baseFontSize: DefaultBaseFontSize,
		fontSizeGain: DefaultFontSizeGain,
		lineHeight:   surface.DefaultLineHeightFactor,
		tolerance:    0.1,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Begin starts a gesture at p with a snapshot of ts. It reports whether a
// gesture became active. A disabled tool state, an already active gesture
// or a tool without a handler reject the gesture.
func (e *Engine) Begin(ts state.ToolState, p state.Point, mods state.Modifiers) bool {
	log := state.Logger()
	if !ts.Enabled {
		return false
	}
	if e.gesture != nil {
		log.Debug("stroke: gesture already active", "tool", e.gesture.tools.Tool)
		return false
	}
	h := handlerFor(ts.Tool)
	if h == nil {
		log.Warn("stroke: no handler for tool", "tool", ts.Tool)
		return false
	}
	g := &gesture{tools: ts, handler: h}
	if !h.begin(e, g, p, mods) {
		return false
	}
	e.gesture = g
	log.Debug("stroke: gesture started", "tool", ts.Tool, "x", p.X, "y", p.Y)
	return true
}

// Move feeds the next pointer position to the active gesture.
func (e *Engine) Move(p state.Point) {
	if e.gesture == nil {
		return
	}
	e.gesture.handler.move(e, e.gesture, p)
}

// End finishes the active gesture. Pointer-up and pointer-leave both end
// up here.
func (e *Engine) End() {
	g := e.gesture
	if g == nil {
		return
	}
	e.gesture = nil
	g.handler.end(e, g)
	state.Logger().Debug("stroke: gesture ended", "tool", g.tools.Tool)
}

// Active reports whether a gesture is in progress.
func (e *Engine) Active() bool { return e.gesture != nil }

// FontSize returns the text size used for a pen width.
func (e *Engine) FontSize(penWidth float64) float64 {
	return e.baseFontSize + penWidth*e.fontSizeGain
}

// LineHeight is the baseline spacing of text committed at penWidth.
func (e *Engine) LineHeight(penWidth float64) float64 {
	return e.FontSize(penWidth) * e.lineHeight
}

func (e *Engine) textOptions(c state.RGB, penWidth float64) surface.TextOptions {
	return surface.TextOptions{
		Color:            c,
		FontSize:         e.FontSize(penWidth),
		LineHeightFactor: e.lineHeight,
	}
}
