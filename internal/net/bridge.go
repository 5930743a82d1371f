package net

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"net"
	"net/http"
	"sync"
	"time"

	"ScoreScribble/internal/overlay"
	"ScoreScribble/internal/state"

	"github.com/gorilla/websocket"
)

// BridgePath is where the websocket endpoint is mounted.
const BridgePath = "/ws"

// remoteHost is the page on the other end of the bridge. Its size is
// whatever the last ready or resize message said.
type remoteHost struct {
	mu     sync.Mutex
	w, h   int
	scale  float64
	notify func()
}

func (h *remoteHost) LogicalSize() (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.w, h.h
}

func (h *remoteHost) ScaleFactor() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.scale
}

// NotifyResize makes the bridge follow resize messages instead of polling.
func (h *remoteHost) NotifyResize(fn func()) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.notify = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.notify = nil
	}
}

// set records a new page size. Pages that send no scale factor are taken
// to be at scale 1.
func (h *remoteHost) set(w, ht int, scale float64) (notify func()) {
	if scale <= 0 {
		scale = 1
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.w, h.h, h.scale = w, ht, scale
	return h.notify
}

// Bridge lets a browser page drive a Controller over a websocket. Every
// connected client shares the one controller.
type Bridge struct {
	ctx      context.Context
	ctrl     *overlay.Controller
	host     *remoteHost
	peers    *PeerManager
	upgrader websocket.Upgrader
	unsub    func()
}

// NewBridge wires ctrl to a new bridge. ctx bounds the controller's host
// watching.
func NewBridge(ctx context.Context, ctrl *overlay.Controller) *Bridge {
	b := &Bridge{
		ctx:   ctx,
		ctrl:  ctrl,
		host:  &remoteHost{scale: 1},
		peers: NewPeerManager(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Content scripts connect from the annotated page's origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	b.unsub = ctrl.Subscribe(func(s overlay.Snapshot) {
		if f, err := textFrame(stateReply(s)); err == nil {
			b.peers.Broadcast(f)
		}
	})
	ctrl.SetRedraw(b.Invalidate)
	return b
}

// Invalidate tells every client the pixels changed.
func (b *Bridge) Invalidate() {
	f, err := textFrame(Reply{Type: ReplyDamage})
	if err != nil {
		return
	}
	f.droppable = true
	b.peers.Broadcast(f)
}

// Peers returns the number of connected clients.
func (b *Bridge) Peers() int { return b.peers.Len() }

// Close disconnects every client and stops following the host.
func (b *Bridge) Close() {
	b.unsub()
	b.peers.CloseAll()
	b.ctrl.Close()
}

// ServeHTTP upgrades the request and serves one client until it leaves.
func (b *Bridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		state.Logger().Warn("bridge: upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	peer := newPeer(conn)
	b.peers.Add(peer)
	go peer.writePump()
	b.readPump(peer)
}

func (b *Bridge) readPump(p *Peer) {
	defer b.peers.Remove(p)
	p.Conn.SetReadLimit(maxMessage)
	p.Conn.SetReadDeadline(time.Now().Add(pongWait))
	p.Conn.SetPongHandler(func(string) error {
		return p.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, data, err := p.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				state.Logger().Debug("bridge: read failed", "addr", p.Conn.RemoteAddr().String(), "err", err)
			}
			return
		}
		p.Conn.SetReadDeadline(time.Now().Add(pongWait))

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			b.replyError(p, fmt.Errorf("decode message: %w", err))
			continue
		}
		if err := b.handle(p, msg); err != nil {
			b.replyError(p, err)
		}
	}
}

func (b *Bridge) replyError(p *Peer, err error) {
	state.Logger().Debug("bridge: rejected message", "addr", p.Conn.RemoteAddr().String(), "err", err)
	if f, ferr := textFrame(Reply{Type: ReplyError, Error: err.Error()}); ferr == nil {
		p.enqueue(f)
	}
}

var errNotReady = errors.New("overlay not ready")

// handle applies one message to the controller.
func (b *Bridge) handle(p *Peer, msg Message) error {
	c := b.ctrl
	switch msg.Type {
	case MsgReady:
		notify := b.host.set(msg.Width, msg.Height, msg.Scale)
		if c.Snapshot().Ready {
			if notify != nil {
				notify()
			}
			return b.sendState(p)
		}
		if !c.Ready(b.ctx, b.host) {
			return fmt.Errorf("ready: rejected size %dx%d@%g", msg.Width, msg.Height, msg.Scale)
		}
		// The first state reaches every peer through the subscription.
	case MsgResize:
		if notify := b.host.set(msg.Width, msg.Height, msg.Scale); notify != nil {
			notify()
		}
	case MsgPointerDown, MsgTouchStart:
		mods, err := msg.mods()
		if err != nil {
			return err
		}
		c.PointerDown(msg.point(), mods)
	case MsgPointerMove, MsgTouchMove:
		c.PointerMove(msg.point())
	case MsgPointerUp, MsgTouchEnd, MsgTouchCancel:
		c.PointerUp()
	case MsgPointerOut:
		c.PointerLeave()
	case MsgTool:
		t, err := state.ParseTool(msg.Tool)
		if err != nil {
			return err
		}
		c.SetTool(t)
	case MsgEnabled:
		if msg.Enabled == nil {
			return errors.New("enabled: missing value")
		}
		c.SetEnabled(*msg.Enabled)
	case MsgSize:
		c.AdjustActiveSize(msg.Delta)
	case MsgColor:
		rgb, err := state.ParseRGB(msg.Color)
		if err != nil {
			return err
		}
		c.SetColor(rgb)
	case MsgClear:
		c.Clear()
	case MsgText:
		c.SetText(msg.Text)
	case MsgKey:
		k, err := parseKey(msg.Key)
		if err != nil {
			return err
		}
		c.TypeKey(k)
	case MsgCommit:
		c.CommitText()
	case MsgCancel:
		c.CancelText()
	case MsgState:
		return b.sendState(p)
	case MsgSnapshot:
		return b.sendSnapshot(p)
	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
	return nil
}

func (b *Bridge) sendState(p *Peer) error {
	f, err := textFrame(stateReply(b.ctrl.Snapshot()))
	if err != nil {
		return err
	}
	p.enqueue(f)
	return nil
}

// sendSnapshot sends the surface as a PNG binary frame.
func (b *Bridge) sendSnapshot(p *Peer) error {
	img := b.ctrl.Image()
	if img == nil {
		return errNotReady
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	p.enqueue(frame{kind: websocket.BinaryMessage, data: buf.Bytes()})
	return nil
}

func textFrame(r Reply) (frame, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return frame{}, fmt.Errorf("encode reply: %w", err)
	}
	return frame{kind: websocket.TextMessage, data: data}, nil
}

// Serve serves the bridge on ln until ctx is done.
func Serve(ctx context.Context, ln net.Listener, b *Bridge) error {
	mux := http.NewServeMux()
	mux.Handle(BridgePath, b)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	state.Logger().Info("bridge: serving", "addr", ln.Addr().String(), "path", BridgePath)

	select {
	case err := <-errc:
		return fmt.Errorf("bridge server: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	b.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("bridge shutdown: %w", err)
	}
	return nil
}
