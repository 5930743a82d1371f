package ui

import (
	"context"
	"image"
	"log"

	"ScoreScribble/internal/overlay"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
)

// Options configures the desktop window.
type Options struct {
	Title         string
	Score         image.Image
	HeaderVisible bool
}

// Window is the assembled desktop host.
type Window struct {
	fyne.Window
	View    *ScoreView
	Toolbar *Toolbar
	Keys    *Keys

	unsub func()
}

// NewWindow builds the score window for ctrl in a.
func NewWindow(ctx context.Context, a fyne.App, ctrl *overlay.Controller, opts Options) *Window {
	title := opts.Title
	if title == "" {
		title = "ScoreScribble"
	}
	w := a.NewWindow(title)
	w.Resize(fyne.NewSize(1024, 768))

	view := NewScoreView(ctx, ctrl, opts.Score)
	view.AttachCanvas(w.Canvas())
	toolbar := NewToolbar(ctrl, w, opts.HeaderVisible)
	unsub := ctrl.Subscribe(func(s overlay.Snapshot) {
		fyne.Do(func() { view.Overlay().ShowPending(s) })
	})

	keys := NewKeys(ctrl, toolbar)
	keys.Install(w.Canvas())

	w.SetContent(container.NewBorder(toolbar.Object(), nil, nil, nil, view.Object()))
	return &Window{Window: w, View: view, Toolbar: toolbar, Keys: keys, unsub: unsub}
}

// Detach stops following the controller.
func (w *Window) Detach() {
	w.Toolbar.Close()
	w.unsub()
}

// RunApp shows the score window and blocks until it is closed or ctx is
// done.
func RunApp(ctx context.Context, ctrl *overlay.Controller, opts Options) {
	myApp := app.NewWithID("io.scorescribble.desktop")
	win := NewWindow(ctx, myApp, ctrl, opts)
	win.SetOnClosed(func() {
		win.Detach()
		ctrl.Close()
	})

	go func() {
		<-ctx.Done()
		fyne.Do(myApp.Quit)
	}()

	log.Println("[HOST] Opening score window")
	win.ShowAndRun()
}
