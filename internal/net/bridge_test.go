package net

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ScoreScribble/internal/overlay"
	"ScoreScribble/internal/state"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startBridge(t *testing.T) (*Bridge, *websocket.Conn) {
	t.Helper()
	b := NewBridge(context.Background(), overlay.New())
	srv := httptest.NewServer(b)
	t.Cleanup(func() {
		b.Close()
		srv.Close()
	})
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + BridgePath
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return b, conn
}

func send(t *testing.T, conn *websocket.Conn, msg Message) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(msg))
}

// readRaw reads text frames until one of type typ arrives and returns it
// undecoded.
func readRaw(t *testing.T, conn *websocket.Conn, typ string) []byte {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		kind, data, err := conn.ReadMessage()
		require.NoError(t, err)
		if kind != websocket.TextMessage {
			continue
		}
		var head struct {
			Type string `json:"type"`
		}
		require.NoError(t, json.Unmarshal(data, &head))
		if head.Type == typ {
			return data
		}
	}
}

func readReply(t *testing.T, conn *websocket.Conn, typ string) Reply {
	t.Helper()
	var r Reply
	require.NoError(t, json.Unmarshal(readRaw(t, conn, typ), &r))
	return r
}

func readSnapshot(t *testing.T, conn *websocket.Conn) image.Image {
	t.Helper()
	send(t, conn, Message{Type: MsgSnapshot})
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		kind, data, err := conn.ReadMessage()
		require.NoError(t, err)
		if kind != websocket.BinaryMessage {
			continue
		}
		img, err := png.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		return img
	}
}

func ready(t *testing.T, conn *websocket.Conn) Reply {
	t.Helper()
	send(t, conn, Message{Type: MsgReady, Width: 200, Height: 100, Scale: 1})
	r := readReply(t, conn, ReplyState)
	require.True(t, r.Ready)
	return r
}

func alpha(img image.Image, x, y int) uint32 {
	_, _, _, a := img.At(x, y).RGBA()
	return a
}

func TestBridgeReady(t *testing.T) {
	_, conn := startBridge(t)
	r := ready(t, conn)
	assert.Equal(t, "pen", r.Tool)
	assert.True(t, r.Enabled)
	require.NotNil(t, r.Chrome)
	b, ok := r.Chrome.Button(state.ButtonPen)
	require.True(t, ok)
	assert.True(t, b.Active)

	img := readSnapshot(t, conn)
	assert.Equal(t, image.Rect(0, 0, 200, 100), img.Bounds())
}

func TestBridgeReadyWithoutScale(t *testing.T) {
	_, conn := startBridge(t)
	send(t, conn, Message{Type: MsgReady, Width: 200, Height: 100})
	r := readReply(t, conn, ReplyState)
	assert.True(t, r.Ready)

	img := readSnapshot(t, conn)
	assert.Equal(t, image.Rect(0, 0, 200, 100), img.Bounds())
}

func TestBridgeStateFields(t *testing.T) {
	_, conn := startBridge(t)
	ready(t, conn)

	off := false
	send(t, conn, Message{Type: MsgEnabled, Enabled: &off})
	var fields map[string]any
	require.NoError(t, json.Unmarshal(readRaw(t, conn, ReplyState), &fields))
	assert.Equal(t, false, fields["enabled"])
	assert.Equal(t, true, fields["ready"])

	chrome, ok := fields["chrome"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, chrome["headerVisible"])
	assert.NotContains(t, chrome, "HeaderVisible")
	assert.Equal(t, "Pen 2px", chrome["sizeLabel"])
	buttons, ok := chrome["buttons"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, buttons)
	first, ok := buttons[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, state.ButtonPen, first["id"])
	assert.Equal(t, true, first["disabled"])
}

func TestBridgeSnapshotBeforeReady(t *testing.T) {
	_, conn := startBridge(t)
	send(t, conn, Message{Type: MsgSnapshot})
	r := readReply(t, conn, ReplyError)
	assert.Contains(t, r.Error, "not ready")
}

func TestBridgeDrawing(t *testing.T) {
	_, conn := startBridge(t)
	ready(t, conn)

	send(t, conn, Message{Type: MsgPointerDown, X: 20, Y: 50})
	readReply(t, conn, ReplyDamage)
	send(t, conn, Message{Type: MsgPointerMove, X: 120, Y: 50})
	send(t, conn, Message{Type: MsgPointerUp})

	img := readSnapshot(t, conn)
	assert.NotZero(t, alpha(img, 70, 50))
	assert.Zero(t, alpha(img, 70, 80))
}

func TestBridgeTouch(t *testing.T) {
	_, conn := startBridge(t)
	ready(t, conn)

	send(t, conn, Message{Type: MsgTouchStart, Touches: []state.Point{{X: 30, Y: 20}, {X: 150, Y: 90}}})
	send(t, conn, Message{Type: MsgTouchMove, Touches: []state.Point{{X: 30, Y: 80}}})
	send(t, conn, Message{Type: MsgTouchEnd})

	img := readSnapshot(t, conn)
	assert.NotZero(t, alpha(img, 30, 50))
	assert.Zero(t, alpha(img, 150, 90), "only the first touch draws")
}

func TestBridgeToolState(t *testing.T) {
	_, conn := startBridge(t)
	ready(t, conn)

	send(t, conn, Message{Type: MsgTool, Tool: "eraser"})
	r := readReply(t, conn, ReplyState)
	assert.Equal(t, "eraser", r.Tool)

	off := false
	send(t, conn, Message{Type: MsgEnabled, Enabled: &off})
	r = readReply(t, conn, ReplyState)
	assert.False(t, r.Enabled)
	assert.Equal(t, "pen", r.Tool)

	send(t, conn, Message{Type: MsgSize, Delta: 500})
	r = readReply(t, conn, ReplyState)
	assert.Equal(t, 100.0, r.PenWidth)

	send(t, conn, Message{Type: MsgColor, Color: "#00ff00"})
	r = readReply(t, conn, ReplyState)
	assert.Equal(t, "#00ff00", r.Color)
}

func TestBridgeText(t *testing.T) {
	_, conn := startBridge(t)
	ready(t, conn)

	send(t, conn, Message{Type: MsgTool, Tool: "text"})
	readReply(t, conn, ReplyState)
	send(t, conn, Message{Type: MsgPointerDown, X: 10, Y: 10})
	r := readReply(t, conn, ReplyState)
	require.NotNil(t, r.Pending)
	assert.Equal(t, 10.0, r.Pending.X)

	send(t, conn, Message{Type: MsgText, Text: "Hello"})
	r = readReply(t, conn, ReplyState)
	require.NotNil(t, r.Pending)
	assert.Equal(t, "Hello", r.Pending.Text)
	assert.Equal(t, 10.0, r.Pending.Box.X)

	send(t, conn, Message{Type: MsgKey, Key: "commit"})
	r = readReply(t, conn, ReplyState)
	assert.Nil(t, r.Pending)
}

func TestBridgeResize(t *testing.T) {
	_, conn := startBridge(t)
	ready(t, conn)
	send(t, conn, Message{Type: MsgResize, Width: 300, Height: 100, Scale: 2})
	readReply(t, conn, ReplyState)
	img := readSnapshot(t, conn)
	assert.Equal(t, image.Rect(0, 0, 600, 200), img.Bounds())
}

func TestBridgeRejects(t *testing.T) {
	_, conn := startBridge(t)
	for _, tc := range []struct {
		msg  Message
		want string
	}{
		{Message{Type: "fly"}, "unknown message type"},
		{Message{Type: MsgTool, Tool: "brush"}, "brush"},
		{Message{Type: MsgEnabled}, "missing value"},
		{Message{Type: MsgKey, Key: "tab"}, "unknown key"},
		{Message{Type: MsgPointerDown, Modifiers: []string{"hyper"}}, "unknown modifier"},
		{Message{Type: MsgReady}, "rejected size"},
	} {
		send(t, conn, tc.msg)
		r := readReply(t, conn, ReplyError)
		assert.Contains(t, r.Error, tc.want, tc.msg.Type)
	}

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{")))
	r := readReply(t, conn, ReplyError)
	assert.Contains(t, r.Error, "decode message")
}

func TestServeStopsWithContext(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, ln, NewBridge(ctx, overlay.New())) }()

	url := "ws://" + ln.Addr().String() + BridgePath
	require.Eventually(t, func() bool {
		c, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			return false
		}
		c.Close()
		return true
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return")
	}
}

func TestNewService(t *testing.T) {
	svc, err := newService("Studio", "studio-host", 7878, []net.IP{net.IPv4(192, 168, 1, 20)})
	require.NoError(t, err)
	assert.Equal(t, serviceType, svc.Service)
	assert.Equal(t, 7878, svc.Port)
	assert.Equal(t, "studio-host.", svc.HostName)
	assert.Contains(t, svc.TXT, "path="+BridgePath)
}
