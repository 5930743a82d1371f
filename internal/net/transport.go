package net

import (
	"sync"
	"time"

	"ScoreScribble/internal/state"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendQueue  = 64
	maxMessage = 64 << 10
)

// frame is one outgoing websocket message.
type frame struct {
	kind int // websocket.TextMessage or websocket.BinaryMessage
	data []byte
	// droppable frames are skipped when the peer's queue is full.
	droppable bool
}

// Peer is one connected bridge client. All writes go through its queue so
// only the write pump touches the connection for writing.
type Peer struct {
	Conn *websocket.Conn

	mu     sync.Mutex
	send   chan frame
	closed bool
}

func newPeer(conn *websocket.Conn) *Peer {
	return &Peer{Conn: conn, send: make(chan frame, sendQueue)}
}

// enqueue queues f. Droppable frames are discarded when the queue is full;
// any other frame closes a peer that cannot keep up.
func (p *Peer) enqueue(f frame) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	select {
	case p.send <- f:
		return
	default:
	}
	if f.droppable {
		return
	}
	state.Logger().Warn("bridge: peer queue full, closing", "addr", p.Conn.RemoteAddr().String())
	p.closeLocked()
}

func (p *Peer) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
}

func (p *Peer) closeLocked() {
	if !p.closed {
		p.closed = true
		close(p.send)
	}
}

// writePump drains the queue onto the connection and keeps it alive with
// pings.
func (p *Peer) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		p.Conn.Close()
	}()
	for {
		select {
		case f, ok := <-p.send:
			p.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				p.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := p.Conn.WriteMessage(f.kind, f.data); err != nil {
				state.Logger().Debug("bridge: write failed", "addr", p.Conn.RemoteAddr().String(), "err", err)
				return
			}
		case <-ticker.C:
			p.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// PeerManager tracks the connected bridge clients.
type PeerManager struct {
	peers map[*Peer]struct{}
	mu    sync.RWMutex
}

// NewPeerManager creates a new manager.
func NewPeerManager() *PeerManager {
	return &PeerManager{
		peers: make(map[*Peer]struct{}),
	}
}

// Add registers a peer that just connected.
func (pm *PeerManager) Add(peer *Peer) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.peers[peer] = struct{}{}
	state.Logger().Info("bridge: client connected", "addr", peer.Conn.RemoteAddr().String(), "peers", len(pm.peers))
}

// Remove forgets a peer and closes its queue.
func (pm *PeerManager) Remove(peer *Peer) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if _, ok := pm.peers[peer]; !ok {
		return
	}
	delete(pm.peers, peer)
	peer.close()
	state.Logger().Info("bridge: client disconnected", "addr", peer.Conn.RemoteAddr().String(), "peers", len(pm.peers))
}

// Len returns the number of connected peers.
func (pm *PeerManager) Len() int {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return len(pm.peers)
}

// Broadcast queues f for every peer.
func (pm *PeerManager) Broadcast(f frame) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	for p := range pm.peers {
		p.enqueue(f)
	}
}

// CloseAll drops every peer.
func (pm *PeerManager) CloseAll() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	for p := range pm.peers {
		delete(pm.peers, p)
		p.close()
	}
}
