package source

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"

	"github.com/google/uuid"

	"github.com/tinyvector/tinyvector/internal/collector"
	"github.com/tinyvector/tinyvector/internal/event"
	"github.com/tinyvector/tinyvector/internal/topology"
)

// TCPServer accepts NDJSON-framed events over TCP: one JSON-encoded
// Event per line. A line that fails to parse is logged and skipped;
// the connection keeps going (it does not abort the listener).
type TCPServer struct {
	address string
	logger  *slog.Logger
}

// BuildTCPServer decodes {address?: "host:port"}, defaulting to
// "127.0.0.1:4000".
func BuildTCPServer(raw map[string]any, logger *slog.Logger) (*TCPServer, error) {
	address, err := stringField(raw, "address", "127.0.0.1:4000")
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TCPServer{address: address, logger: logger}, nil
}

func (t *TCPServer) Prepare(context.Context) (topology.PreparedSource, error) {
	listener, err := net.Listen("tcp", t.address)
	if err != nil {
		return nil, fmt.Errorf("unable to bind %s: %w", t.address, err)
	}
	return &preparedTCPServer{listener: listener, logger: t.logger}, nil
}

type preparedTCPServer struct {
	listener net.Listener
	logger   *slog.Logger
}

func (p *preparedTCPServer) Execute(c *collector.Collector) error {
	p.logger.Info("waiting for connections", "address", p.listener.Addr().String())
	for {
		conn, err := p.listener.Accept()
		if err != nil {
			return err
		}
		go p.handleConnection(conn, c)
	}
}

func (p *preparedTCPServer) handleConnection(conn net.Conn, c *collector.Collector) {
	defer conn.Close()
	connID := uuid.NewString()
	logger := p.logger.With("connection", connID, "client", conn.RemoteAddr().String())

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 4096), 1<<20)
	for scanner.Scan() {
		var e event.Event
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			logger.Error("invalid message received", "error", err)
			continue
		}
		c.SendDefault(e)
	}
	if err := scanner.Err(); err != nil {
		logger.Error("connection failed", "error", err)
	}
}
