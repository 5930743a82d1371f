package ui

import (
	"image/color"

	"ScoreScribble/internal/overlay"
	"ScoreScribble/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// sizeStep is how much one size button press or bracket key changes the
// active width.
const sizeStep = 1

// Palette offered by the toolbar.
var palette = []state.RGB{
	{R: 0xff},          // Red
	{},                 // Black
	{B: 0xff},          // Blue
	{G: 0x99},          // Green
	{R: 0xff, G: 0x99}, // Orange
	{R: 0x99, B: 0xcc}, // Purple
}

// --- Custom Widget for Color Swatches ---
type colorSwatch struct {
	widget.BaseWidget
	Color    state.RGB
	OnTapped func(state.RGB)
	selected bool
	border   *canvas.Rectangle
}

func newColorSwatch(c state.RGB, tapped func(state.RGB)) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.Color.Color())
	rect.SetMinSize(fyne.NewSize(28, 28))

	s.border = canvas.NewRectangle(color.Transparent)
	s.applyBorder()

	return widget.NewSimpleRenderer(container.NewStack(rect, s.border))
}

func (s *colorSwatch) setSelected(v bool) {
	if s.selected == v {
		return
	}
	s.selected = v
	if s.border != nil {
		s.applyBorder()
		s.border.Refresh()
	}
}

func (s *colorSwatch) applyBorder() {
	if s.selected {
		s.border.StrokeColor = theme.Color(theme.ColorNamePrimary)
		s.border.StrokeWidth = 3
		return
	}
	s.border.StrokeColor = color.Gray{Y: 150}
	s.border.StrokeWidth = 1
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Color)
	}
}

// Toolbar is the control panel. It holds no tool state of its own: every
// press goes to the controller and the buttons are redrawn from the chrome
// view the controller's snapshots produce.
type Toolbar struct {
	ctrl   *overlay.Controller
	window fyne.Window

	header   bool
	last     overlay.Snapshot
	buttons  map[string]*widget.Button
	swatches []*colorSwatch
	size     *widget.Label
	panel    *fyne.Container
	toggle   *widget.Button
	root     *fyne.Container
	unsub    func()

	// OnChange runs after the chrome was redrawn.
	OnChange func(state.ChromeView)
}

// NewToolbar builds the control panel for ctrl. window parents the clear
// confirmation dialog.
func NewToolbar(ctrl *overlay.Controller, window fyne.Window, headerVisible bool) *Toolbar {
	t := &Toolbar{
		ctrl:    ctrl,
		window:  window,
		header:  headerVisible,
		buttons: make(map[string]*widget.Button),
		size:    widget.NewLabel(""),
	}

	icons := map[string]fyne.Resource{
		state.ButtonPen:        theme.DocumentCreateIcon(),
		state.ButtonEraser:     theme.ContentClearIcon(),
		state.ButtonText:       theme.FileTextIcon(),
		state.ButtonSizeDown:   theme.ZoomOutIcon(),
		state.ButtonSizeUp:     theme.ZoomInIcon(),
		state.ButtonClear:      theme.DeleteIcon(),
		state.ButtonCommitText: theme.ConfirmIcon(),
		state.ButtonCancelText: theme.CancelIcon(),
	}
	view := state.RenderChrome(ctrl.Snapshot().Chrome(headerVisible))
	for _, b := range view.Buttons {
		id := b.ID
		t.buttons[id] = widget.NewButtonWithIcon(b.Label, icons[id], func() { t.press(id) })
	}

	onColorTapped := func(c state.RGB) { t.ctrl.SetColor(c) }
	colorBox := container.NewHBox()
	for _, c := range palette {
		s := newColorSwatch(c, onColorTapped)
		t.swatches = append(t.swatches, s)
		colorBox.Add(s)
	}

	t.panel = container.NewHBox(
		t.buttons[state.ButtonToggle],
		widget.NewSeparator(),
		widget.NewLabel("Tool:"),
		t.buttons[state.ButtonPen],
		t.buttons[state.ButtonEraser],
		t.buttons[state.ButtonText],
		widget.NewSeparator(),
		widget.NewLabel("Color:"),
		colorBox,
		widget.NewSeparator(),
		t.buttons[state.ButtonSizeDown],
		t.size,
		t.buttons[state.ButtonSizeUp],
		widget.NewSeparator(),
		t.buttons[state.ButtonCommitText],
		t.buttons[state.ButtonCancelText],
		layout.NewSpacer(),
		t.buttons[state.ButtonClear],
	)
	t.toggle = widget.NewButtonWithIcon("", theme.MenuIcon(), t.ToggleHeader)
	t.root = container.NewBorder(nil, nil, t.toggle, nil, t.panel)

	t.unsub = ctrl.Subscribe(func(s overlay.Snapshot) {
		fyne.Do(func() { t.Apply(s) })
	})
	t.Apply(ctrl.Snapshot())
	return t
}

// Object returns the canvas object to place in the window.
func (t *Toolbar) Object() fyne.CanvasObject { return t.root }

// Close stops following the controller.
func (t *Toolbar) Close() { t.unsub() }

// HeaderVisible reports whether the panel is expanded.
func (t *Toolbar) HeaderVisible() bool { return t.header }

// ToggleHeader collapses or expands the panel.
func (t *Toolbar) ToggleHeader() {
	t.header = !t.header
	t.Apply(t.last)
}

// Apply redraws the chrome from s.
func (t *Toolbar) Apply(s overlay.Snapshot) {
	t.last = s
	view := state.RenderChrome(s.Chrome(t.header))
	for _, b := range view.Buttons {
		btn, ok := t.buttons[b.ID]
		if !ok {
			continue
		}
		btn.SetText(b.Label)
		if b.Active {
			btn.Importance = widget.HighImportance
		} else {
			btn.Importance = widget.MediumImportance
		}
		if b.Disabled {
			btn.Disable()
		} else {
			btn.Enable()
		}
		btn.Refresh()
	}
	t.size.SetText(view.SizeLabel)
	for _, sw := range t.swatches {
		sw.setSelected(sw.Color.Hex() == view.Color)
	}
	if view.HeaderVisible {
		t.panel.Show()
	} else {
		t.panel.Hide()
	}
	if t.OnChange != nil {
		t.OnChange(view)
	}
}

// press dispatches a chrome button to the controller.
func (t *Toolbar) press(id string) {
	c := t.ctrl
	switch id {
	case state.ButtonPen:
		c.SetTool(state.ToolPen)
	case state.ButtonEraser:
		c.SetTool(state.ToolEraser)
	case state.ButtonText:
		c.SetTool(state.ToolText)
	case state.ButtonToggle:
		c.SetEnabled(!c.Snapshot().Tools.Enabled)
	case state.ButtonSizeDown:
		c.AdjustActiveSize(-sizeStep)
	case state.ButtonSizeUp:
		c.AdjustActiveSize(sizeStep)
	case state.ButtonCommitText:
		c.CommitText()
	case state.ButtonCancelText:
		c.CancelText()
	case state.ButtonClear:
		t.confirmClear()
	}
}

func (t *Toolbar) confirmClear() {
	if t.window == nil {
		t.ctrl.Clear()
		return
	}
	dialog.ShowConfirm("Clear annotations", "Erase every mark on this page?", func(ok bool) {
		if ok {
			t.ctrl.Clear()
		}
	}, t.window)
}
