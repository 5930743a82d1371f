// Package overlay is the mode and tool controller of the annotation layer.
//
// A Controller is the only mutation surface for tool state. It owns the
// annotation surface and the stroke engine, routes pointer and keyboard
// input to the engine, follows the host's size changes and tells observers
// when tool state or pixels change.
//
// Hosts deliver callbacks from several goroutines (a UI loop, the resize
// poller, bridge connections), so every exported method serializes on one
// mutex. Observer and redraw callbacks run after the mutex is released and
// may call back into the Controller.
package overlay

import (
	"context"
	"image"
	"slices"
	"sync"
	"time"

	"ScoreScribble/internal/state"
	"ScoreScribble/internal/stroke"
	"ScoreScribble/internal/surface"
)

// DefaultPollInterval is how often the polling fallback re-reads the host
// size.
const DefaultPollInterval = 500 * time.Millisecond

// Host is the content surface the overlay is laid over.
type Host interface {
	// LogicalSize returns the full scrollable extent in logical pixels.
	LogicalSize() (width, height int)
	ScaleFactor() float64
}

// ResizeNotifier is implemented by hosts that report size changes
// themselves. Hosts without it are polled.
type ResizeNotifier interface {
	// NotifyResize arranges for fn to run after every size change and
	// returns a function that stops the notifications. fn must not be
	// called before NotifyResize returns.
	NotifyResize(fn func()) (stop func())
}

// Snapshot is what observers see after a change.
type Snapshot struct {
	Ready   bool
	Tools   state.ToolState
	Pending *stroke.TextRegion
	// PendingBox is the editor box of Pending at the current pen width.
	PendingBox state.Area
	// FontSize and LineHeight are what Pending will be committed with.
	FontSize   float64
	LineHeight float64
}

// Chrome returns the chrome state for s.
func (s Snapshot) Chrome(headerVisible bool) state.Chrome {
	return state.Chrome{Tools: s.Tools, HeaderVisible: headerVisible, PendingText: s.Pending != nil}
}

// Option configures a Controller.
type Option func(*Controller)

// WithToolState sets the initial tool state.
func WithToolState(ts state.ToolState) Option {
	return func(c *Controller) { c.tools = ts.Normalize() }
}

// WithClock sets the clock driving the polling fallback.
func WithClock(clk state.Clock) Option {
	return func(c *Controller) { c.clock = clk }
}

// WithPollInterval sets the polling fallback interval.
func WithPollInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithStrokeOptions configures the stroke engine.
func WithStrokeOptions(opts ...stroke.Option) Option {
	return func(c *Controller) { c.strokeOpts = append(c.strokeOpts, opts...) }
}

// WithRedraw registers fn to run whenever the surface pixels change.
func WithRedraw(fn func()) Option {
	return func(c *Controller) { c.redraw = fn }
}

// Controller routes input to the stroke engine and owns tool state.
type Controller struct {
	mu sync.Mutex

	tools   state.ToolState
	surface *surface.Surface
	engine  *stroke.Engine
	host    Host

	strokeOpts   []stroke.Option
	clock        state.Clock
	pollInterval time.Duration
	stopWatch    func()

	redraw  func()
	subs    []subscriber
	nextSub int
}

type subscriber struct {
	id int
	fn func(Snapshot)
}

// effect says which notifications an operation owes once unlocked.
type effect uint8

const (
	publish effect = 1 << iota
	repaint
)

// New returns a controller with an uninitialized surface.
func New(opts ...Option) *Controller {
	c := &Controller{
		tools:        state.DefaultToolState(),
		surface:      surface.New(),
		clock:        state.SystemClock,
		pollInterval: DefaultPollInterval,
	}
	for _, o := range opts {
		o(c)
	}
	c.engine = stroke.NewEngine(c.surface, c.strokeOpts...)
	return c
}

// update runs fn under the lock and then delivers the notifications it
// asked for.
func (c *Controller) update(fn func() effect) {
	c.mu.Lock()
	eff := fn()
	var (
		snap   Snapshot
		subs   []subscriber
		redraw func()
	)
	if eff&publish != 0 {
		snap = c.snapshotLocked()
		subs = slices.Clone(c.subs)
	}
	if eff&repaint != 0 {
		redraw = c.redraw
	}
	c.mu.Unlock()

	for _, s := range subs {
		s.fn(snap)
	}
	if redraw != nil {
		redraw()
	}
}

// SetRedraw replaces the function run after pixel changes.
func (c *Controller) SetRedraw(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.redraw = fn
}

// Subscribe registers fn for tool state and pending text changes and
// returns a function that removes it.
func (c *Controller) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs = append(c.subs, subscriber{id: id, fn: fn})
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.subs = slices.DeleteFunc(c.subs, func(s subscriber) bool { return s.id == id })
	}
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{Ready: c.surface.Ready(), Tools: c.tools}
	if r, ok := c.engine.Pending(); ok {
		s.Pending = &r
		s.PendingBox, _ = c.engine.RegionBox(c.tools.PenWidth)
		s.FontSize = c.engine.FontSize(c.tools.PenWidth)
		s.LineHeight = c.engine.LineHeight(c.tools.PenWidth)
	}
	return s
}

// Ready initializes the surface from host and starts following its size,
// through the host's own notifications when it implements ResizeNotifier
// and by polling otherwise. Polling stops when ctx is done or on Close.
// Only the first successful call has any effect.
func (c *Controller) Ready(ctx context.Context, host Host) bool {
	ok := false
	c.update(func() effect {
		if c.surface.Ready() {
			return 0
		}
		w, h := host.LogicalSize()
		if !c.surface.Initialize(w, h, host.ScaleFactor()) {
			return 0
		}
		c.host = host
		c.stopWatch = c.watch(ctx, host)
		ok = true
		return publish | repaint
	})
	return ok
}

// Close stops following the host's size.
func (c *Controller) Close() {
	c.mu.Lock()
	stop := c.stopWatch
	c.stopWatch = nil
	c.mu.Unlock()
	if stop != nil {
		stop()
	}
}

// Resize follows a new logical size and scale factor. Marks are stretched
// onto the new extent; an active gesture carries on in logical space.
func (c *Controller) Resize(width, height int, scale float64) {
	c.update(func() effect {
		if !c.surface.Resize(width, height, scale) {
			return 0
		}
		return publish | repaint
	})
}

// syncSize re-reads the host size.
func (c *Controller) syncSize() {
	c.mu.Lock()
	host := c.host
	c.mu.Unlock()
	if host == nil {
		return
	}
	w, h := host.LogicalSize()
	c.Resize(w, h, host.ScaleFactor())
}

// PointerDown starts a gesture with the active tool. It is ignored before
// Ready, while annotation is disabled and while another gesture is active.
func (c *Controller) PointerDown(p state.Point, mods state.Modifiers) {
	c.update(func() effect {
		if !c.surface.Ready() {
			return 0
		}
		before := c.pendingLocked()
		if !c.engine.Begin(c.tools, p, mods) {
			return 0
		}
		return c.changed(before) | repaint
	})
}

// PointerMove continues the active gesture.
func (c *Controller) PointerMove(p state.Point) {
	c.update(func() effect {
		if !c.engine.Active() {
			return 0
		}
		before := c.pendingLocked()
		c.engine.Move(p)
		return c.changed(before) | repaint
	})
}

// PointerUp ends the active gesture.
func (c *Controller) PointerUp() { c.endGesture() }

// PointerLeave ends the active gesture exactly like PointerUp, so a
// pointer leaving the surface never leaves a stroke stuck on.
func (c *Controller) PointerLeave() { c.endGesture() }

func (c *Controller) endGesture() {
	c.update(func() effect {
		if !c.engine.Active() {
			return 0
		}
		c.engine.End()
		return repaint
	})
}

func (c *Controller) pendingLocked() *stroke.TextRegion {
	if r, ok := c.engine.Pending(); ok {
		return &r
	}
	return nil
}

// changed reports publish when the pending region differs from before.
func (c *Controller) changed(before *stroke.TextRegion) effect {
	after := c.pendingLocked()
	if (before == nil) != (after == nil) || (before != nil && *before != *after) {
		return publish
	}
	return 0
}

// Clear erases every mark. Confirmation is the caller's business.
func (c *Controller) Clear() {
	c.update(func() effect {
		if !c.surface.Ready() {
			return 0
		}
		c.surface.Clear()
		state.Logger().Info("overlay: cleared")
		return repaint
	})
}

// Render calls fn with the live surface buffer while holding the lock.
// fn must not retain img or call into the Controller. Before Ready, fn is
// not called.
func (c *Controller) Render(fn func(img *image.RGBA)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if img := c.surface.View(); img != nil {
		fn(img)
	}
}

// Image returns a copy of the surface, or nil before Ready.
func (c *Controller) Image() *image.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.surface.Image()
}

// LogicalSize returns the surface's logical size and scale factor.
func (c *Controller) LogicalSize() (width, height int, scale float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	w, h := c.surface.LogicalSize()
	return w, h, c.surface.Scale()
}
