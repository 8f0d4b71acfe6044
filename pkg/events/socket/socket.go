// Package socket implements the explicit-message transport: processes
// connect to a unix-domain-socket hub and exchange newline-delimited
// JSON data-update messages. This is the primary cross-process path;
// the watch transport is the redundant one.
package socket

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/avast/retry-go"

	"github.com/pocketpal/pocketpal/pkg/events"
)

// maxFrame bounds a single update message on the wire.
const maxFrame = 1 << 20

// Plugin registers the socket transport under the name "socket".
type Plugin struct{}

// Name implements events.TransportPlugin.
func (Plugin) Name() string { return "socket" }

// Description implements events.TransportPlugin.
func (Plugin) Description() string {
	return "explicit data-update messages relayed through a unix socket hub"
}

type pluginConfig struct {
	SocketPath string `json:"socketPath"`
}

// NewTransport implements events.TransportPlugin.
func (Plugin) NewTransport(config json.RawMessage, logger *slog.Logger) (events.Transport, error) {
	var cfg pluginConfig
	if len(config) > 0 {
		if err := json.Unmarshal(config, &cfg); err != nil {
			return nil, fmt.Errorf("parsing socket transport config: %w", err)
		}
	}
	if cfg.SocketPath == "" {
		return nil, fmt.Errorf("socket transport requires socketPath")
	}
	return New(cfg.SocketPath, logger), nil
}

// Transport is a hub client. It lazily dials the hub, retrying a few
// times, and shares one connection between Broadcast and Listen.
type Transport struct {
	path   string
	logger *slog.Logger

	mu   sync.Mutex
	conn net.Conn
}

// New returns a transport that talks to the hub at path.
func New(path string, logger *slog.Logger) *Transport {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transport{path: path, logger: logger}
}

// connect returns the shared connection, dialing the hub if needed.
func (t *Transport) connect() (net.Conn, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn != nil {
		return t.conn, nil
	}

	var conn net.Conn
	err := retry.Do(
		func() error {
			c, err := net.DialTimeout("unix", t.path, time.Second)
			if err != nil {
				return err
			}
			conn = c
			return nil
		},
		retry.Attempts(3),
		retry.Delay(200*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("dialing hub at %s: %w", t.path, err)
	}

	t.conn = conn
	return conn, nil
}

// drop discards the shared connection after an error so the next call
// redials.
func (t *Transport) drop(conn net.Conn) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == conn {
		t.conn.Close()
		t.conn = nil
	}
}

// Broadcast sends the update to the hub, which relays it to every other
// connected process.
func (t *Transport) Broadcast(u events.Update) error {
	conn, err := t.connect()
	if err != nil {
		return err
	}

	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("serializing update: %w", err)
	}
	data = append(data, '\n')

	t.mu.Lock()
	_, err = conn.Write(data)
	t.mu.Unlock()
	if err != nil {
		t.drop(conn)
		return fmt.Errorf("writing to hub: %w", err)
	}
	return nil
}

// Listen receives updates relayed by the hub and hands each one to
// deliver. It reconnects after connection loss and only returns once
// the context is canceled.
func (t *Transport) Listen(ctx context.Context, deliver func(events.Update)) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		conn, err := t.connect()
		if err != nil {
			t.logger.Warn("hub unavailable, retrying", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
			continue
		}

		// Unblock the read when the context is canceled.
		done := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				conn.Close()
			case <-done:
			}
		}()

		t.read(conn, deliver)
		close(done)
		t.drop(conn)
	}
}

// read consumes update frames until the connection fails.
func (t *Transport) read(conn net.Conn, deliver func(events.Update)) {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), maxFrame)
	for scanner.Scan() {
		var u events.Update
		if err := json.Unmarshal(scanner.Bytes(), &u); err != nil {
			t.logger.Warn("ignoring malformed update frame", "error", err)
			continue
		}
		if u.Type != events.UpdateType {
			continue
		}
		deliver(u)
	}
}

// Hub relays update frames between connected clients. Each frame
// received from one client is forwarded verbatim to every other client;
// the sender already dispatched the update locally.
type Hub struct {
	path   string
	logger *slog.Logger

	mu    sync.Mutex
	conns map[net.Conn]struct{}
}

// NewHub returns a hub that will listen on the given socket path.
func NewHub(path string, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{path: path, logger: logger, conns: make(map[net.Conn]struct{})}
}

// Run listens on the socket and relays frames until the context is
// canceled. A stale socket file from a previous run is removed first.
func (h *Hub) Run(ctx context.Context) error {
	os.Remove(h.path)

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "unix", h.path)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", h.path, err)
	}
	defer ln.Close()

	go func() {
		<-ctx.Done()
		ln.Close()
		h.closeAll()
	}()

	h.logger.Info("hub listening", "socket", h.path)
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("accepting connection: %w", err)
		}
		h.add(conn)
		go h.serve(conn)
	}
}

func (h *Hub) add(conn net.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = struct{}{}
}

func (h *Hub) remove(conn net.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
	conn.Close()
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		conn.Close()
	}
	h.conns = make(map[net.Conn]struct{})
}

// serve reads frames from one client and relays each to the others.
func (h *Hub) serve(conn net.Conn) {
	defer h.remove(conn)

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), maxFrame)
	for scanner.Scan() {
		frame := append([]byte(nil), scanner.Bytes()...)
		frame = append(frame, '\n')
		h.relay(conn, frame)
	}
}

func (h *Hub) relay(from net.Conn, frame []byte) {
	h.mu.Lock()
	conns := make([]net.Conn, 0, len(h.conns))
	for conn := range h.conns {
		if conn != from {
			conns = append(conns, conn)
		}
	}
	h.mu.Unlock()

	for _, conn := range conns {
		if _, err := conn.Write(frame); err != nil {
			h.logger.Warn("dropping unresponsive client", "error", err)
			h.remove(conn)
		}
	}
}
