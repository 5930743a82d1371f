package state

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRGB(t *testing.T) {
	tests := []struct {
		in      string
		want    RGB
		wantErr bool
	}{
		{"#ff0000", RGB{R: 0xff}, false},
		{"00ff7f", RGB{G: 0xff, B: 0x7f}, false},
		{"#abc", RGB{R: 0xaa, G: 0xbb, B: 0xcc}, false},
		{" #102030 ", RGB{R: 0x10, G: 0x20, B: 0x30}, false},
		{"#12345", RGB{}, true},
		{"#gg0000", RGB{}, true},
		{"", RGB{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRGB(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, mustParse(t, got.Hex()))
		})
	}
}

func mustParse(t *testing.T, s string) RGB {
	t.Helper()
	c, err := ParseRGB(s)
	require.NoError(t, err)
	return c
}

func TestParseTool(t *testing.T) {
	for _, tool := range Tools() {
		got, err := ParseTool(tool.String())
		require.NoError(t, err)
		assert.Equal(t, tool, got)
	}
	got, err := ParseTool(" Eraser ")
	require.NoError(t, err)
	assert.Equal(t, ToolEraser, got)

	_, err = ParseTool("highlighter")
	assert.Error(t, err)
	assert.Equal(t, "Tool(7)", Tool(7).String())
}

func TestClampWidth(t *testing.T) {
	assert.Equal(t, 1.0, ClampWidth(-3))
	assert.Equal(t, 1.0, ClampWidth(0.5))
	assert.Equal(t, 42.0, ClampWidth(42))
	assert.Equal(t, 100.0, ClampWidth(250))
}

func TestToolStateNormalize(t *testing.T) {
	ts := ToolState{Tool: Tool(9), PenWidth: 0, EraserWidth: 500}
	want := ToolState{Tool: ToolPen, PenWidth: 1, EraserWidth: 100}
	if diff := cmp.Diff(want, ts.Normalize()); diff != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
	}
}

func TestAreaClampInto(t *testing.T) {
	bounds := Area{Width: 100, Height: 100}
	tests := []struct {
		name string
		in   Area
		want Area
	}{
		{"inside", Area{X: 10, Y: 10, Width: 20, Height: 20}, Area{X: 10, Y: 10, Width: 20, Height: 20}},
		{"past right", Area{X: 90, Y: 10, Width: 20, Height: 20}, Area{X: 80, Y: 10, Width: 20, Height: 20}},
		{"past top", Area{X: 10, Y: -5, Width: 20, Height: 20}, Area{X: 10, Y: 0, Width: 20, Height: 20}},
		{"too large", Area{X: 50, Y: 50, Width: 200, Height: 20}, Area{X: 0, Y: 50, Width: 200, Height: 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.ClampInto(bounds))
		})
	}
}

func TestAreaContains(t *testing.T) {
	a := Area{X: 0, Y: 0, Width: 10, Height: 10}
	assert.True(t, a.Contains(Point{X: 10, Y: 0}))
	assert.False(t, a.Contains(Point{X: 10.5, Y: 0}))
}

func TestRenderChrome(t *testing.T) {
	ts := DefaultToolState()
	ts.Tool = ToolEraser

	v := RenderChrome(Chrome{Tools: ts, HeaderVisible: true})
	assert.True(t, v.HeaderVisible)
	assert.Equal(t, "Eraser 20px", v.SizeLabel)
	assert.Equal(t, "#ff0000", v.Color)

	eraser, ok := v.Button(ButtonEraser)
	require.True(t, ok)
	assert.True(t, eraser.Active)
	pen, _ := v.Button(ButtonPen)
	assert.False(t, pen.Active)
	commit, _ := v.Button(ButtonCommitText)
	assert.True(t, commit.Disabled)

	ts.Enabled = false
	v = RenderChrome(Chrome{Tools: ts, PendingText: true})
	for _, id := range []string{ButtonPen, ButtonEraser, ButtonText, ButtonSizeUp, ButtonSizeDown} {
		b, ok := v.Button(id)
		require.True(t, ok, id)
		assert.True(t, b.Disabled, id)
		assert.False(t, b.Active, id)
	}
	toggle, _ := v.Button(ButtonToggle)
	assert.Equal(t, "Annotate: off", toggle.Label)
	commit, _ = v.Button(ButtonCommitText)
	assert.False(t, commit.Disabled)

	_, ok = v.Button("nope")
	assert.False(t, ok)
}
