package app

import (
	"context"
	"fmt"
	"time"

	"agentstack/pipeline/internal/infrastructure/config"
	database "agentstack/pipeline/internal/infrastructure/db"
	"agentstack/pipeline/internal/infrastructure/durablelog"
	"agentstack/pipeline/internal/infrastructure/logger"
	"agentstack/pipeline/internal/infrastructure/middleware"
	"agentstack/pipeline/internal/infrastructure/telemetry/metrics"
	"agentstack/pipeline/internal/infrastructure/telemetry/tracer"
	"agentstack/pipeline/internal/infrastructure/validator"
	"agentstack/pipeline/internal/modules/broadcaster"
	"agentstack/pipeline/internal/modules/gateway"

	"github.com/gofiber/fiber/v2"
)

// domains lists the HTTP-facing modules this process hosts: the ingest
// gateway (spec §4.6) and the live alert broadcaster (spec §4.13), both
// "single-process asynchronous servers" per §5, sharing one Fiber app.
var domains = [2]string{
	"gateway",
	"broadcaster",
}

// BootstrapHttpConfig wires the HTTP-facing modules into the shared Fiber
// app, following the teacher's per-domain config/logger/db bundle shape.
type BootstrapHttpConfig struct {
	App     *fiber.App
	Val     validator.Validator
	Log     logger.Logger
	Tracer  tracer.Tracer
	Metrics metrics.Metrics

	ctx    context.Context
	cancel context.CancelFunc

	configs     map[string]*config.Config
	loggers     map[string]logger.Logger
	dbs         map[string]database.Database
	durableLogs map[string]*durablelog.Log
}

func (b *BootstrapHttpConfig) Run() {
	b.ctx, b.cancel = context.WithCancel(context.Background())
	b.setupMiddleware()
	b.setupInfrastructureModules()
	b.setupModules()
	b.setupHealthRoute()
}

func (b *BootstrapHttpConfig) Stop() {
	if b.cancel != nil {
		b.cancel()
	}
	for _, domain := range domains {
		log, okLog := b.loggers[domain]
		if !okLog || log == nil {
			log = b.Log
		}

		db, okDb := b.dbs[domain]
		if !okDb || db == nil {
			continue
		}
		if err := db.Close(); err != nil {
			log.WithFields(map[string]any{
				"domain":       domain,
				"component":    "database",
				"error_detail": err.Error(),
			}).Error("Failed to close database connection")
		} else {
			log.WithFields(map[string]any{
				"domain":    domain,
				"component": "database",
			}).Info("Database connection closed gracefully")
		}
	}
}

func (b *BootstrapHttpConfig) setupMiddleware() {
	t := middleware.NewTelemetrist(b.Log, b.Tracer, b.Metrics)

	b.App.Use(middleware.RequestID())
	b.App.Use(t.HandleMetrics())
	b.App.Use(t.HandleTrace())
	b.App.Use(t.HandleLog())
}

func (b *BootstrapHttpConfig) setupInfrastructureModules() {
	domainCount := len(domains)
	b.configs = make(map[string]*config.Config, domainCount)
	b.loggers = make(map[string]logger.Logger, domainCount)
	b.dbs = make(map[string]database.Database, domainCount)
	b.durableLogs = make(map[string]*durablelog.Log, domainCount)

	for _, domain := range domains {
		path := fmt.Sprintf("config/%s/config.yaml", domain)
		domainCfg := config.LoadDomainConfig(path)

		domainLogger := logger.
			New(domainCfg, b.Tracer).
			WithFields(map[string]any{
				"service": domainCfg.App.Name,
				"version": domainCfg.App.Version,
				"env":     domainCfg.App.Env,
				"port":    domainCfg.Http.Port,
				"domain":  domain,
			})

		db := database.NewDatabase(&domainCfg.Database, domainLogger, b.Tracer)
		redisCache := database.NewRedisCache(&domainCfg.Redis, domainLogger)
		dlog := durablelog.New(redisCache.GetClient(), domainCfg.DurableLog, domainLogger)

		b.configs[domain] = domainCfg
		b.loggers[domain] = domainLogger
		b.dbs[domain] = db
		b.durableLogs[domain] = dlog
	}
}

func (b *BootstrapHttpConfig) setupModules() {
	if cfg, ok := b.configs["gateway"]; ok {
		gateway.RegisterHttpModule(gateway.HttpModuleConfig{
			Config:     cfg,
			Server:     b.App,
			DB:         b.dbs["gateway"],
			Log:        b.loggers["gateway"],
			Val:        b.Val,
			DurableLog: b.durableLogs["gateway"],
		})
	}

	if cfg, ok := b.configs["broadcaster"]; ok {
		broadcaster.RegisterHttpModule(b.ctx, broadcaster.HttpModuleConfig{
			Config:     cfg,
			Server:     b.App,
			Log:        b.loggers["broadcaster"],
			DurableLog: b.durableLogs["broadcaster"],
		})
	}
}

func (b *BootstrapHttpConfig) setupHealthRoute() {
	h := func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "UP",
			"time":   time.Now().Format(time.RFC3339),
		})
	}

	b.App.Get("/", h)
	b.App.Get("/health", h)
}
