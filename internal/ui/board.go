package ui

import (
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"
	"sync"

	"ScoreScribble/internal/overlay"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
)

// Staff paper used when no score image is given.
const (
	paperWidth   = 1000
	paperHeight  = 1400
	paperMargin  = 60
	staffLines   = 5
	lineSpacing  = 10
	staffSpacing = 110
)

var paperColor = color.NRGBA{R: 0xfd, G: 0xfb, B: 0xf5, A: 0xff}

// ScoreView is the scrollable score page with the annotation overlay on top.
// It is the controller's host. The logical size is the page, which the
// score and the overlay share whatever room the window gives them, so marks
// stay on the notes they were drawn over. Scale changes are reported from
// layout.
type ScoreView struct {
	scroll  *container.Scroll
	content *fyne.Container
	overlay *OverlayWidget
	page    fyne.Size
	ctx     context.Context
	ctrl    *overlay.Controller
	canvas  fyne.Canvas

	mu     sync.Mutex
	scale  float32
	ready  bool
	notify func()
}

// NewScoreView lays ctrl's overlay over score. A nil score shows staff
// paper.
func NewScoreView(ctx context.Context, ctrl *overlay.Controller, score image.Image) *ScoreView {
	var (
		page   fyne.Size
		layers []fyne.CanvasObject
	)
	if score != nil {
		b := score.Bounds()
		page = fyne.NewSize(float32(b.Dx()), float32(b.Dy()))
		img := canvas.NewImageFromImage(score)
		img.FillMode = canvas.ImageFillStretch
		img.SetMinSize(page)
		img.Resize(page)
		layers = append(layers, img)
	} else {
		page = fyne.NewSize(paperWidth, paperHeight)
		layers = append(layers, staffPaper(page)...)
	}

	v := &ScoreView{ctx: ctx, ctrl: ctrl, page: page, scale: 1}
	v.overlay = NewOverlayWidget(ctrl, page)
	ctrl.SetRedraw(v.overlay.Invalidate)

	pl := &pageLayout{page: page, onLayout: v.layoutChanged}
	v.content = container.New(pl, container.NewWithoutLayout(layers...), v.overlay)
	v.scroll = container.NewScroll(v.content)
	return v
}

// pageLayout pins every object to the page's top-left corner at the page
// size. The scroller may hand the content more room than the page; that
// room stays empty.
type pageLayout struct {
	page     fyne.Size
	onLayout func(fyne.Size)
}

func (l *pageLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	for _, o := range objects {
		o.Move(fyne.NewPos(0, 0))
		o.Resize(l.page)
	}
	if l.onLayout != nil {
		l.onLayout(size)
	}
}

func (l *pageLayout) MinSize([]fyne.CanvasObject) fyne.Size { return l.page }

// LoadScore decodes a PNG or JPEG score page.
func LoadScore(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open score: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode score %s: %w", path, err)
	}
	return img, nil
}

func staffPaper(page fyne.Size) []fyne.CanvasObject {
	bg := canvas.NewRectangle(paperColor)
	bg.SetMinSize(page)
	bg.Resize(page)
	objects := []fyne.CanvasObject{bg}

	lineColor := color.NRGBA{R: 0x60, G: 0x60, B: 0x60, A: 0xff}
	for top := float32(paperMargin); top+lineSpacing*(staffLines-1) < page.Height-paperMargin; top += staffSpacing {
		for i := 0; i < staffLines; i++ {
			y := top + float32(i*lineSpacing)
			line := canvas.NewLine(lineColor)
			line.Position1 = fyne.NewPos(paperMargin, y)
			line.Position2 = fyne.NewPos(page.Width-paperMargin, y)
			line.StrokeWidth = 1
			objects = append(objects, line)
		}
	}
	return objects
}

// Object returns the canvas object to place in the window.
func (v *ScoreView) Object() fyne.CanvasObject { return v.scroll }

// Overlay returns the annotation widget.
func (v *ScoreView) Overlay() *OverlayWidget { return v.overlay }

// AttachCanvas sets the window canvas the scale factor is read from.
func (v *ScoreView) AttachCanvas(c fyne.Canvas) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.canvas = c
}

// LogicalSize implements overlay.Host.
func (v *ScoreView) LogicalSize() (int, int) {
	return int(v.page.Width), int(v.page.Height)
}

// ScaleFactor implements overlay.Host.
func (v *ScoreView) ScaleFactor() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return float64(v.scale)
}

// NotifyResize implements overlay.ResizeNotifier.
func (v *ScoreView) NotifyResize(fn func()) func() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notify = fn
	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		v.notify = nil
	}
}

// layoutChanged runs on every content layout. The first layout with room
// to show the page readies the controller; later ones only report scale
// changes, since the page itself never changes size.
func (v *ScoreView) layoutChanged(size fyne.Size) {
	if size.Width < 1 || size.Height < 1 {
		return
	}
	v.mu.Lock()
	changed := false
	if v.canvas != nil && v.canvas.Scale() != v.scale {
		v.scale = v.canvas.Scale()
		changed = true
	}
	ready, notify := v.ready, v.notify
	v.mu.Unlock()

	if !ready {
		if v.ctrl.Ready(v.ctx, v) {
			v.mu.Lock()
			v.ready = true
			v.mu.Unlock()
			log.Printf("[HOST] Overlay ready at %.0fx%.0f", v.page.Width, v.page.Height)
		}
		return
	}
	if changed && notify != nil {
		notify()
	}
}
