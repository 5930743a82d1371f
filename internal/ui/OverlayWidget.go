package ui

import (
	"image"
	"image/color"
	"strings"
	"sync/atomic"

	"ScoreScribble/internal/overlay"
	"ScoreScribble/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// OverlayWidget shows the annotation surface and feeds pointer input to the
// controller. It is laid over the score at the page size, so event positions
// are already logical page coordinates.
type OverlayWidget struct {
	widget.BaseWidget
	ctrl *overlay.Controller

	page  fyne.Size
	dirty atomic.Bool

	// buf is the surface as last shown. It is only touched on the fyne
	// goroutine.
	buf     *image.RGBA
	img     *canvas.Image
	preview *fyne.Container
}

// NewOverlayWidget returns a widget drawing ctrl's surface.
func NewOverlayWidget(ctrl *overlay.Controller, page fyne.Size) *OverlayWidget {
	w := &OverlayWidget{
		ctrl:    ctrl,
		page:    page,
		img:     canvas.NewImageFromImage(nil),
		preview: container.NewWithoutLayout(),
	}
	w.img.FillMode = canvas.ImageFillStretch
	w.img.ScaleMode = canvas.ImageScaleSmooth
	w.ExtendBaseWidget(w)
	return w
}

// Invalidate schedules a copy of the surface into the displayed image. It is
// safe to call from any goroutine; calls arriving before the copy runs are
// folded into it.
func (w *OverlayWidget) Invalidate() {
	if !w.dirty.CompareAndSwap(false, true) {
		return
	}
	fyne.Do(func() {
		w.dirty.Store(false)
		w.sync()
	})
}

// sync copies the surface into buf, reusing it while the pixel size holds.
func (w *OverlayWidget) sync() {
	shown := false
	w.ctrl.Render(func(img *image.RGBA) {
		if w.buf == nil || w.buf.Bounds() != img.Bounds() {
			w.buf = image.NewRGBA(img.Bounds())
		}
		copy(w.buf.Pix, img.Pix)
		shown = true
	})
	if shown {
		w.img.Image = w.buf
	} else {
		w.img.Image = nil
	}
	w.img.Refresh()
}

// ShowPending draws the text region being edited, or hides it.
func (w *OverlayWidget) ShowPending(s overlay.Snapshot) {
	w.preview.Objects = nil
	if s.Pending != nil {
		box := s.PendingBox
		frame := canvas.NewRectangle(color.Transparent)
		frame.StrokeColor = color.NRGBA{R: 0x33, G: 0x66, B: 0xcc, A: 0xc0}
		frame.StrokeWidth = 1
		frame.Move(fyne.NewPos(float32(box.X), float32(box.Y)))
		frame.Resize(fyne.NewSize(float32(box.Width), float32(box.Height)))
		w.preview.Objects = append(w.preview.Objects, frame)

		lineHeight := float32(s.LineHeight)
		for i, line := range strings.Split(s.Pending.Text, "\n") {
			t := canvas.NewText(line, s.Pending.Color.Color())
			t.TextSize = float32(s.FontSize)
			t.Move(fyne.NewPos(float32(s.Pending.Pos.X), float32(s.Pending.Pos.Y)+float32(i)*lineHeight))
			w.preview.Objects = append(w.preview.Objects, t)
		}
	}
	w.preview.Refresh()
}

func (w *OverlayWidget) MinSize() fyne.Size { return w.page }

func (w *OverlayWidget) CreateRenderer() fyne.WidgetRenderer {
	return &overlayRenderer{w: w}
}

func modifiers(m fyne.KeyModifier) state.Modifiers {
	var mods state.Modifiers
	if m&fyne.KeyModifierShift != 0 {
		mods |= state.ModShift
	}
	if m&fyne.KeyModifierControl != 0 {
		mods |= state.ModCtrl
	}
	if m&fyne.KeyModifierAlt != 0 {
		mods |= state.ModAlt
	}
	if m&fyne.KeyModifierSuper != 0 {
		mods |= state.ModMeta
	}
	return mods
}

func point(p fyne.Position) state.Point {
	return state.Point{X: float64(p.X), Y: float64(p.Y)}
}

// Implement desktop.Mouseable interface
func (w *OverlayWidget) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	w.ctrl.PointerDown(point(ev.Position), modifiers(ev.Modifier))
}

func (w *OverlayWidget) MouseUp(*desktop.MouseEvent) { w.ctrl.PointerUp() }

// Implement desktop.Hoverable interface
func (w *OverlayWidget) MouseIn(*desktop.MouseEvent) {}

func (w *OverlayWidget) MouseMoved(ev *desktop.MouseEvent) {
	w.ctrl.PointerMove(point(ev.Position))
}

func (w *OverlayWidget) MouseOut() { w.ctrl.PointerLeave() }

// Implement fyne.Draggable interface
func (w *OverlayWidget) Dragged(ev *fyne.DragEvent) {
	w.ctrl.PointerMove(point(ev.Position))
}

func (w *OverlayWidget) DragEnd() { w.ctrl.PointerUp() }

type overlayRenderer struct {
	w *OverlayWidget
}

func (r *overlayRenderer) Layout(size fyne.Size) {
	r.w.img.Resize(size)
	r.w.preview.Resize(size)
}

func (r *overlayRenderer) MinSize() fyne.Size { return r.w.MinSize() }

func (r *overlayRenderer) Refresh() {
	r.w.img.Refresh()
	r.w.preview.Refresh()
}

func (r *overlayRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.w.img, r.w.preview}
}

func (r *overlayRenderer) Destroy() {}
