package state

import "fmt"

// Button identifiers used by ChromeView.
const (
	ButtonPen        = "pen"
	ButtonEraser     = "eraser"
	ButtonText       = "text"
	ButtonToggle     = "toggle"
	ButtonSizeDown   = "size-down"
	ButtonSizeUp     = "size-up"
	ButtonClear      = "clear"
	ButtonCommitText = "commit-text"
	ButtonCancelText = "cancel-text"
)

// Chrome is everything the control panel needs to draw itself.
type Chrome struct {
	Tools         ToolState
	HeaderVisible bool
	PendingText   bool
}

// ButtonView describes one control panel button.
type ButtonView struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Active   bool   `json:"active"`
	Disabled bool   `json:"disabled"`
}

// ChromeView is a declarative description of the control panel.
type ChromeView struct {
	HeaderVisible bool         `json:"headerVisible"`
	Buttons       []ButtonView `json:"buttons"`
	SizeLabel     string       `json:"sizeLabel"`
	Color         string       `json:"color"`
}

// Button returns the button with the given id.
func (v ChromeView) Button(id string) (ButtonView, bool) {
	for _, b := range v.Buttons {
		if b.ID == id {
			return b, true
		}
	}
	return ButtonView{}, false
}

// RenderChrome maps chrome state to its view. It has no side effects.
func RenderChrome(c Chrome) ChromeView {
	ts := c.Tools
	off := !ts.Enabled
	toggle := "Annotate: off"
	if ts.Enabled {
		toggle = "Annotate: on"
	}

	size := ts.PenWidth
	sizeName := "Pen"
	switch ts.Tool {
	case ToolEraser:
		size, sizeName = ts.EraserWidth, "Eraser"
	case ToolText:
		sizeName = "Text"
	}

	return ChromeView{
		HeaderVisible: c.HeaderVisible,
		Buttons: []ButtonView{
			{ID: ButtonPen, Label: "Pen", Active: ts.Enabled && ts.Tool == ToolPen, Disabled: off},
			{ID: ButtonEraser, Label: "Eraser", Active: ts.Enabled && ts.Tool == ToolEraser, Disabled: off},
			{ID: ButtonText, Label: "Text", Active: ts.Enabled && ts.Tool == ToolText, Disabled: off},
			{ID: ButtonToggle, Label: toggle, Active: ts.Enabled},
			{ID: ButtonSizeDown, Label: "-", Disabled: off},
			{ID: ButtonSizeUp, Label: "+", Disabled: off},
			{ID: ButtonClear, Label: "Clear"},
			{ID: ButtonCommitText, Label: "Place text", Disabled: !c.PendingText},
			{ID: ButtonCancelText, Label: "Discard text", Disabled: !c.PendingText},
		},
		SizeLabel: fmt.Sprintf("%s %gpx", sizeName, size),
		Color:     ts.PenColor.Hex(),
	}
}
