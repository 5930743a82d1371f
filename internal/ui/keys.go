package ui

import (
	"unicode"

	"ScoreScribble/internal/overlay"
	"ScoreScribble/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// Keys routes keyboard input. While a text region is pending every printable
// rune is typed into it; otherwise single letters are tool shortcuts.
type Keys struct {
	ctrl    *overlay.Controller
	toolbar *Toolbar
}

// NewKeys returns the keyboard router for ctrl and toolbar.
func NewKeys(ctrl *overlay.Controller, toolbar *Toolbar) *Keys {
	return &Keys{ctrl: ctrl, toolbar: toolbar}
}

// Install hooks the router into a window canvas.
func (k *Keys) Install(c fyne.Canvas) {
	c.SetOnTypedRune(k.TypedRune)
	c.SetOnTypedKey(k.TypedKey)
	commit := &desktop.CustomShortcut{KeyName: fyne.KeyReturn, Modifier: fyne.KeyModifierShortcutDefault}
	c.AddShortcut(commit, func(fyne.Shortcut) { k.ctrl.TypeKey(overlay.KeyCommit) })
	commitEnter := &desktop.CustomShortcut{KeyName: fyne.KeyEnter, Modifier: fyne.KeyModifierShortcutDefault}
	c.AddShortcut(commitEnter, func(fyne.Shortcut) { k.ctrl.TypeKey(overlay.KeyCommit) })
}

func (k *Keys) pending() bool { return k.ctrl.Snapshot().Pending != nil }

// TypedRune handles a printable character.
func (k *Keys) TypedRune(r rune) {
	if k.pending() {
		k.ctrl.TypeRune(r)
		return
	}
	switch unicode.ToLower(r) {
	case 'p':
		k.ctrl.SetTool(state.ToolPen)
	case 'e':
		k.ctrl.SetTool(state.ToolEraser)
	case 't':
		k.ctrl.SetTool(state.ToolText)
	case '[':
		k.ctrl.AdjustActiveSize(-sizeStep)
	case ']':
		k.ctrl.AdjustActiveSize(sizeStep)
	case 'd':
		k.ctrl.SetEnabled(!k.ctrl.Snapshot().Tools.Enabled)
	case 'h':
		if k.toolbar != nil {
			k.toolbar.ToggleHeader()
		}
	}
}

// TypedKey handles editing keys for the pending text region.
func (k *Keys) TypedKey(ev *fyne.KeyEvent) {
	if !k.pending() {
		return
	}
	switch ev.Name {
	case fyne.KeyBackspace:
		k.ctrl.TypeKey(overlay.KeyBackspace)
	case fyne.KeyReturn, fyne.KeyEnter:
		k.ctrl.TypeKey(overlay.KeyNewline)
	case fyne.KeyEscape:
		k.ctrl.TypeKey(overlay.KeyCancel)
	}
}
