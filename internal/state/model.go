package state

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Point is a position in logical (CSS) coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Mid returns the midpoint between p and q.
func (p Point) Mid(q Point) Point {
	return Point{X: (p.X + q.X) / 2, Y: (p.Y + q.Y) / 2}
}

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// RGB is an opaque stroke color.
type RGB struct{ R, G, B uint8 }

// Color converts the value for use with image/draw.
func (c RGB) Color() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

// Hex formats the color as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseRGB accepts #rrggbb, rrggbb or #rgb.
func ParseRGB(s string) (RGB, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return RGB{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// Tool selects how a gesture is rendered.
type Tool int

const (
	ToolPen Tool = iota
	ToolEraser
	ToolText

	toolCount
)

var toolNames = [toolCount]string{
	ToolPen:    "pen",
	ToolEraser: "eraser",
	ToolText:   "text",
}

// Tools lists every tool in declaration order.
func Tools() []Tool {
	tools := make([]Tool, 0, toolCount)
	for t := Tool(0); t < toolCount; t++ {
		tools = append(tools, t)
	}
	return tools
}

// Valid reports whether t is one of the declared tools.
func (t Tool) Valid() bool { return t >= 0 && t < toolCount }

func (t Tool) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Tool(%d)", int(t))
	}
	return toolNames[t]
}

// ParseTool maps a tool name ("pen", "eraser", "text") to its Tool.
func ParseTool(s string) (Tool, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for t, name := range toolNames {
		if name == s {
			return Tool(t), nil
		}
	}
	return 0, fmt.Errorf("unknown tool %q", s)
}

// Modifiers is the set of keyboard modifiers held during a pointer press.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// Any reports whether at least one modifier is held.
func (m Modifiers) Any() bool { return m != 0 }

// Width limits shared by the pen and the eraser.
const (
	MinWidth = 1
	MaxWidth = 100
)

// ClampWidth limits w to [MinWidth, MaxWidth].
func ClampWidth(w float64) float64 {
	if w < MinWidth {
		return MinWidth
	}
	if w > MaxWidth {
		return MaxWidth
	}
	return w
}

// ToolState is the tool configuration read at the start of every gesture.
type ToolState struct {
	Tool        Tool
	Enabled     bool
	PenColor    RGB
	PenWidth    float64
	EraserWidth float64
}

// DefaultToolState is a red two pixel pen with a twenty pixel eraser.
func DefaultToolState() ToolState {
	return ToolState{
		Tool:        ToolPen,
		Enabled:     true,
		PenColor:    RGB{R: 0xff},
		PenWidth:    2,
		EraserWidth: 20,
	}
}

// Normalize clamps widths and resets an unknown tool to the pen.
func (ts ToolState) Normalize() ToolState {
	if !ts.Tool.Valid() {
		ts.Tool = ToolPen
	}
	ts.PenWidth = ClampWidth(ts.PenWidth)
	ts.EraserWidth = ClampWidth(ts.EraserWidth)
	return ts
}
