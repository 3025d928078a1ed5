// Package debugtail implements a read-only live event tap: an
// HTTP+WebSocket server that broadcasts every event delivered to a
// sink out to connected debug clients. It is a supplemented feature
// (not named by the distilled spec) meant for watching a running
// pipeline during development. Unlike a sink, a Tap is mounted
// directly by the topology runtime rather than declared as a graph
// node: it never appears in a graph's inputs, and it never
// participates in graph validation.
package debugtail

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/tinyvector/tinyvector/internal/event"
)

const clientBuffer = 64

// Tap is a configured, not-yet-started debugtail server.
type Tap struct {
	address string
	logger  *slog.Logger
}

// BuildTap decodes {address?}, defaulting to 127.0.0.1:9599.
func BuildTap(raw map[string]any, logger *slog.Logger) (*Tap, error) {
	address := "127.0.0.1:9599"
	if v, ok := raw["address"]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("debugtail: %q must be a string", "address")
		}
		address = s
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Tap{address: address, logger: logger}, nil
}

// Prepare binds the tap's listener and starts serving /tap. The
// returned PreparedTap's Observe method is safe to call concurrently
// from any number of goroutines.
func (t *Tap) Prepare(context.Context) (*PreparedTap, error) {
	listener, err := net.Listen("tcp", t.address)
	if err != nil {
		return nil, fmt.Errorf("debugtail: unable to bind %s: %w", t.address, err)
	}

	p := &PreparedTap{
		addr:     listener.Addr(),
		clients:  make(map[*client]struct{}),
		upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
		logger:   t.logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/tap", p.handleUpgrade)
	p.server = &http.Server{Handler: mux}
	go func() {
		if err := p.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			p.logger.Error("debugtail server failed", "error", err)
		}
	}()

	return p, nil
}

// client is a single connected tap consumer: a buffered outbound
// channel and its own writer goroutine, so one slow reader can never
// block the broadcaster.
type client struct {
	conn *websocket.Conn
	out  chan []byte
}

// PreparedTap is a running debugtail server.
type PreparedTap struct {
	server   *http.Server
	addr     net.Addr
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}

	logger *slog.Logger
}

// Addr returns the tap's bound listen address.
func (p *PreparedTap) Addr() net.Addr {
	return p.addr
}

func (p *PreparedTap) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := p.upgrader.Upgrade(w, r, nil)
	if err != nil {
		p.logger.Error("debugtail: upgrade failed", "error", err)
		return
	}
	c := &client{conn: conn, out: make(chan []byte, clientBuffer)}

	p.mu.Lock()
	p.clients[c] = struct{}{}
	p.mu.Unlock()

	go p.writeLoop(c)
	go p.readUntilClosed(c)
}

// readUntilClosed discards anything the client sends (the tap is
// read-only) and detects disconnects.
func (p *PreparedTap) readUntilClosed(c *client) {
	defer p.disconnect(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (p *PreparedTap) writeLoop(c *client) {
	defer c.conn.Close()
	for msg := range c.out {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

func (p *PreparedTap) disconnect(c *client) {
	p.mu.Lock()
	if _, ok := p.clients[c]; ok {
		delete(p.clients, c)
		close(c.out)
	}
	p.mu.Unlock()
}

// Observe broadcasts e to every connected client. It never blocks on a
// slow client: a full client buffer drops the event for that client
// and logs a warning.
func (p *PreparedTap) Observe(e event.Event) {
	line, err := json.Marshal(e)
	if err != nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for c := range p.clients {
		select {
		case c.out <- line:
		default:
			p.logger.Warn("debugtail: client buffer full, dropping event")
		}
	}
}

// Close shuts down the tap's HTTP server.
func (p *PreparedTap) Close() error {
	return p.server.Close()
}
