package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"agentstack/pipeline/internal/infrastructure/config"
)

type RouteConfig struct {
	Cfg     *config.GatewayConfig
	Server  *fiber.App
	Handler *Handler
}

const routeGroup = "/v1"

// Setup registers the ingest endpoint behind the per-IP rate limiter (spec
// §5: 100 req/min per IP). Fiber's own middleware/limiter is used rather
// than a hand-rolled Redis counter since fiber is already the framework
// dependency and the limiter needs no cross-process shared state here.
func (r *RouteConfig) Setup() {
	group := r.Server.Group(routeGroup)
	group.Post("/traces", limiter.New(limiter.Config{
		Max:        r.Cfg.RateLimitPerMin,
		Expiration: r.Cfg.RateLimitWindow,
	}), r.Handler.Ingest)
}
