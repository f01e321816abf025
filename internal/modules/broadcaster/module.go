package broadcaster

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"agentstack/pipeline/internal/infrastructure/config"
	"agentstack/pipeline/internal/infrastructure/durablelog"
	"agentstack/pipeline/internal/infrastructure/logger"
	deliveryhttp "agentstack/pipeline/internal/modules/broadcaster/delivery/http"
)

type HttpModuleConfig struct {
	Config     *config.Config
	Server     *fiber.App
	Log        logger.Logger
	DurableLog *durablelog.Log
}

// RegisterHttpModule wires the WebSocket route and starts the broadcast
// loop as a background goroutine tied to ctx, returning the Hub so callers
// can join on shutdown if needed.
func RegisterHttpModule(ctx context.Context, cfg HttpModuleConfig) *Hub {
	hub := NewHub(cfg.DurableLog, cfg.Config.Broadcaster, cfg.Config.DurableLog.AlertsTopic, cfg.Log)

	routeConfig := deliveryhttp.RouteConfig{
		Cfg:    cfg.Config.Broadcaster,
		Server: cfg.Server,
		Hub:    hub,
		Log:    cfg.Log,
	}
	routeConfig.Setup()

	go func() {
		if err := hub.Run(ctx); err != nil {
			cfg.Log.Error("broadcaster: run loop exited: " + err.Error())
		}
	}()

	return hub
}
