// Package broadcaster implements the live alert broadcaster (spec §4.13),
// grounded on _examples/original_source's ws.py: a set of accepted WebSocket
// connections, a single tail-read loop over alerts.live, and a per-connection
// watchdog for idle keepalives and oversize frames.
package broadcaster

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"agentstack/pipeline/internal/infrastructure/config"
	"agentstack/pipeline/internal/infrastructure/durablelog"
	"agentstack/pipeline/internal/infrastructure/logger"
)

// Hub tracks every accepted connection and tails alerts.live, fanning out
// each batch to every connection. There is no per-connection outbound
// queue: a send failure drops the connection immediately.
type Hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}

	log   *durablelog.Log
	cfg   config.BroadcasterConfig
	topic string
	lg    logger.Logger
}

func NewHub(log *durablelog.Log, cfg config.BroadcasterConfig, topic string, lg logger.Logger) *Hub {
	return &Hub{
		conns: make(map[*websocket.Conn]struct{}),
		log:   log,
		cfg:   cfg,
		topic: topic,
		lg:    lg,
	}
}

// Register adds an accepted connection to the broadcast set and configures
// its read limits/deadline per spec §4.13 (4 KiB frames, idle_timeout).
func (h *Hub) Register(conn *websocket.Conn) {
	conn.SetReadLimit(int64(h.cfg.MaxFrameSize))
	_ = conn.SetReadDeadline(time.Now().Add(h.cfg.IdleTimeout))

	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes and closes a connection.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.conns[conn]
	delete(h.conns, conn)
	h.mu.Unlock()
	if ok {
		_ = conn.Close()
	}
}

// broadcastEnvelope is the wire shape every connection receives.
type broadcastEnvelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// broadcast serializes data into a {type:"alert", data:...} envelope and
// sends it to every live connection, purging any connection a send fails
// on (spec §4.13: "slow receivers are disconnected, not buffered").
func (h *Hub) broadcast(msgType string, data any) {
	envelope := broadcastEnvelope{Type: msgType, Data: data}
	payload, err := json.Marshal(envelope)
	if err != nil {
		h.lg.Error("broadcaster: marshal envelope failed: " + err.Error())
		return
	}

	h.mu.Lock()
	targets := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		targets = append(targets, c)
	}
	h.mu.Unlock()

	for _, c := range targets {
		if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.Unregister(c)
		}
	}
}

// Run is the single broadcast-loop task: tail alerts.live from end-of-log,
// broadcasting each alert entry as its own envelope (spec §8 scenario 4
// reads data as a single alert object, not a batch array).
func (h *Hub) Run(ctx context.Context) error {
	lastID := "$"
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		entries, next, err := h.log.Tail(ctx, h.topic, lastID, h.cfg.TailCount)
		if err != nil {
			h.lg.Error("broadcaster: tail error: " + err.Error())
			time.Sleep(time.Second)
			continue
		}
		lastID = next
		if len(entries) == 0 {
			continue
		}

		for _, e := range entries {
			h.broadcast("alert", e.Values)
		}
	}
}

// Ping sends a keepalive to every connection; called by the per-connection
// idle watchdog, not the broadcast loop, so one slow connection's keepalive
// cadence never depends on another's.
func (h *Hub) Ping(conn *websocket.Conn) error {
	return conn.WriteMessage(websocket.PingMessage, nil)
}
