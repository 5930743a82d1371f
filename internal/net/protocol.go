package net

import (
	"fmt"
	"strings"

	"ScoreScribble/internal/overlay"
	"ScoreScribble/internal/state"
)

// Message types a bridge client may send.
const (
	MsgReady       = "ready"
	MsgResize      = "resize"
	MsgPointerDown = "pointerdown"
	MsgPointerMove = "pointermove"
	MsgPointerUp   = "pointerup"
	MsgPointerOut  = "pointerleave"
	MsgTouchStart  = "touchstart"
	MsgTouchMove   = "touchmove"
	MsgTouchEnd    = "touchend"
	MsgTouchCancel = "touchcancel"
	MsgTool        = "tool"
	MsgEnabled     = "enabled"
	MsgSize        = "size"
	MsgColor       = "color"
	MsgClear       = "clear"
	MsgText        = "text"
	MsgKey         = "key"
	MsgCommit      = "commit"
	MsgCancel      = "cancel"
	MsgState       = "state"
	MsgSnapshot    = "snapshot"
)

// Message types the bridge sends back.
const (
	ReplyState  = "state"
	ReplyDamage = "damage"
	ReplyError  = "error"
)

// Message is one client request. Coordinates are logical pixels of the
// host page.
type Message struct {
	Type      string        `json:"type"`
	X         float64       `json:"x,omitempty"`
	Y         float64       `json:"y,omitempty"`
	Touches   []state.Point `json:"touches,omitempty"`
	Width     int           `json:"width,omitempty"`
	Height    int           `json:"height,omitempty"`
	Scale     float64       `json:"scale,omitempty"`
	Modifiers []string      `json:"modifiers,omitempty"`
	Tool      string        `json:"tool,omitempty"`
	Enabled   *bool         `json:"enabled"`
	Delta     float64       `json:"delta,omitempty"`
	Color     string        `json:"color,omitempty"`
	Text      string        `json:"text,omitempty"`
	Key       string        `json:"key,omitempty"`
}

// point returns the pointer position, taking the first touch when present.
func (m Message) point() state.Point {
	if len(m.Touches) > 0 {
		return m.Touches[0]
	}
	return state.Point{X: m.X, Y: m.Y}
}

func (m Message) mods() (state.Modifiers, error) {
	var mods state.Modifiers
	for _, name := range m.Modifiers {
		switch strings.ToLower(name) {
		case "shift":
			mods |= state.ModShift
		case "ctrl", "control":
			mods |= state.ModCtrl
		case "alt":
			mods |= state.ModAlt
		case "meta":
			mods |= state.ModMeta
		default:
			return 0, fmt.Errorf("unknown modifier %q", name)
		}
	}
	return mods, nil
}

func parseKey(s string) (overlay.Key, error) {
	switch strings.ToLower(s) {
	case "backspace":
		return overlay.KeyBackspace, nil
	case "enter", "newline":
		return overlay.KeyNewline, nil
	case "commit":
		return overlay.KeyCommit, nil
	case "escape", "cancel":
		return overlay.KeyCancel, nil
	}
	return 0, fmt.Errorf("unknown key %q", s)
}

// PendingText describes the floating text region a client should display.
type PendingText struct {
	ID    string     `json:"id"`
	X     float64    `json:"x"`
	Y     float64    `json:"y"`
	Text  string     `json:"text"`
	Color string     `json:"color"`
	Box   state.Area `json:"box"`
}

// Reply is what the bridge sends as text frames.
type Reply struct {
	Type        string            `json:"type"`
	Ready       bool              `json:"ready"`
	Tool        string            `json:"tool,omitempty"`
	Enabled     bool              `json:"enabled"`
	Color       string            `json:"color,omitempty"`
	PenWidth    float64           `json:"penWidth,omitempty"`
	EraserWidth float64           `json:"eraserWidth,omitempty"`
	Chrome      *state.ChromeView `json:"chrome,omitempty"`
	Pending     *PendingText      `json:"pending,omitempty"`
	Error       string            `json:"error,omitempty"`
}

func stateReply(s overlay.Snapshot) Reply {
	view := state.RenderChrome(s.Chrome(true))
	r := Reply{
		Type:        ReplyState,
		Ready:       s.Ready,
		Tool:        s.Tools.Tool.String(),
		Enabled:     s.Tools.Enabled,
		Color:       s.Tools.PenColor.Hex(),
		PenWidth:    s.Tools.PenWidth,
		EraserWidth: s.Tools.EraserWidth,
		Chrome:      &view,
	}
	if p := s.Pending; p != nil {
		r.Pending = &PendingText{
			ID:    p.ID.String(),
			X:     p.Pos.X,
			Y:     p.Pos.Y,
			Text:  p.Text,
			Color: p.Color.Hex(),
			Box:   s.PendingBox,
		}
	}
	return r
}
