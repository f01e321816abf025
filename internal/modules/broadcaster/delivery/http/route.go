// Package http registers the broadcaster's single WebSocket endpoint. Fiber
// runs on fasthttp, so the raw net/http-oriented gorilla/websocket upgrader
// is bridged in through fiber's own middleware/adaptor rather than adding a
// fasthttp-specific websocket dependency the example pack never shows.
package http

import (
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gorilla/websocket"

	"agentstack/pipeline/internal/infrastructure/config"
	"agentstack/pipeline/internal/infrastructure/logger"
	"agentstack/pipeline/internal/modules/broadcaster"
)

const routePath = "/ws/traces"

var upgrader = websocket.Upgrader{
	// CORS is enforced by the HTTP layer in front of this endpoint (spec
	// §4.6); the upgrader itself accepts any origin already admitted there.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type RouteConfig struct {
	Cfg    config.BroadcasterConfig
	Server *fiber.App
	Hub    *broadcaster.Hub
	Log    logger.Logger
}

func (r *RouteConfig) Setup() {
	r.Server.Get(routePath, adaptor.HTTPHandlerFunc(r.upgrade))
}

func (r *RouteConfig) upgrade(w http.ResponseWriter, req *http.Request) {
	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.Log.Error("broadcaster: upgrade failed: " + err.Error())
		return
	}
	r.Hub.Register(conn)
	go r.serve(conn)
}

type clientMessage struct {
	Type string `json:"type"`
}

// serve runs the per-connection read loop: the idle watchdog (send a
// keepalive ping when idle_timeout elapses with no inbound frame),
// ping/pong, and filter/filter_ack. Oversize frames are closed with 1009
// automatically by gorilla once SetReadLimit (set in Hub.Register) is
// exceeded.
func (r *RouteConfig) serve(conn *websocket.Conn) {
	defer r.Hub.Unregister(conn)

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(r.Cfg.IdleTimeout))
	})

	for {
		_ = conn.SetReadDeadline(time.Now().Add(r.Cfg.IdleTimeout))
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				if pingErr := r.Hub.Ping(conn); pingErr != nil {
					return
				}
				continue
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case "ping":
			_ = conn.WriteJSON(fiber.Map{"type": "pong"})
		case "filter":
			_ = conn.WriteJSON(fiber.Map{"type": "filter_ack", "accepted": true})
		}
	}
}
