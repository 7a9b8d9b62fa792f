package net

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Path is where the host serves the board socket.
const Path = "/ws"

const writeWait = 5 * time.Second

// Peer is one end of a board connection. Writes are serialised; a
// websocket connection supports one concurrent writer.
type Peer struct {
	conn *websocket.Conn
	addr string
	wmu  sync.Mutex
}

// Addr returns the remote address.
func (p *Peer) Addr() string { return p.addr }

// LocalAddr returns the local side of the connection.
func (p *Peer) LocalAddr() string { return p.conn.LocalAddr().String() }

// Send writes one text frame.
func (p *Peer) Send(data []byte) error {
	p.wmu.Lock()
	defer p.wmu.Unlock()
	_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return p.conn.WriteMessage(websocket.TextMessage, data)
}

// Close closes the connection.
func (p *Peer) Close() error {
	p.wmu.Lock()
	_ = p.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	p.wmu.Unlock()
	return p.conn.Close()
}

// Read calls fn for every frame until the connection ends. A normal close
// returns nil.
func (p *Peer) Read(fn func([]byte)) error {
	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}
		fn(data)
	}
}

// Hub is used by the HOST to manage all connected clients and relay what
// they send.
type Hub struct {
	log      *zap.Logger
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	peers map[*Peer]struct{}

	// OnJoin runs after a client connects, before its first frame is read.
	OnJoin func(p *Peer)
	// OnMessage runs on the client's read goroutine for every frame.
	OnMessage func(p *Peer, data []byte)
}

// NewHub creates a hub. Any origin is accepted; the board is a LAN tool.
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		log:   log,
		peers: make(map[*Peer]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the request and serves the client until it leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("upgrade failed", zap.String("remote", r.RemoteAddr), zap.Error(err))
		return
	}
	p := &Peer{conn: conn, addr: conn.RemoteAddr().String()}
	h.add(p)
	defer h.remove(p)

	if h.OnJoin != nil {
		h.OnJoin(p)
	}
	err = p.Read(func(data []byte) {
		if h.OnMessage != nil {
			h.OnMessage(p, data)
		}
	})
	if err != nil {
		h.log.Info("client disconnected", zap.String("remote", p.addr), zap.Error(err))
	}
}

func (h *Hub) add(p *Peer) {
	h.mu.Lock()
	h.peers[p] = struct{}{}
	n := len(h.peers)
	h.mu.Unlock()
	h.log.Info("client connected", zap.String("remote", p.addr), zap.Int("peers", n))
}

func (h *Hub) remove(p *Peer) {
	h.mu.Lock()
	delete(h.peers, p)
	h.mu.Unlock()
	_ = p.conn.Close()
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}

// Broadcast sends data to every client except exclude, which may be nil.
func (h *Hub) Broadcast(data []byte, exclude *Peer) {
	h.mu.RLock()
	targets := make([]*Peer, 0, len(h.peers))
	for p := range h.peers {
		if p != exclude {
			targets = append(targets, p)
		}
	}
	h.mu.RUnlock()

	for _, p := range targets {
		if err := p.Send(data); err != nil {
			h.log.Warn("send failed", zap.String("remote", p.addr), zap.Error(err))
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	peers := h.peers
	h.peers = make(map[*Peer]struct{})
	h.mu.Unlock()
	for p := range peers {
		_ = p.Close()
	}
}

// ErrBadAddress is returned by Dial for an empty host address.
var ErrBadAddress = errors.New("bad host address")

// Dial connects to the hub at addr (host:port).
func Dial(ctx context.Context, addr string) (*Peer, error) {
	if addr == "" {
		return nil, ErrBadAddress
	}
	url := "ws://" + addr + Path
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &Peer{conn: conn, addr: conn.RemoteAddr().String()}, nil
}
