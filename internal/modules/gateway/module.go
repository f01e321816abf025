// Package gateway wires the ingest endpoint together (spec §4.6-4.7),
// following the teacher's module.go shape: one RegisterHttpModule
// constructing repositories, usecase-equivalent collaborators (here the
// auth cache), the handler, and the route group.
package gateway

import (
	"github.com/gofiber/fiber/v2"

	"agentstack/pipeline/internal/infrastructure/config"
	database "agentstack/pipeline/internal/infrastructure/db"
	"agentstack/pipeline/internal/infrastructure/durablelog"
	"agentstack/pipeline/internal/infrastructure/logger"
	"agentstack/pipeline/internal/infrastructure/validator"
	"agentstack/pipeline/internal/modules/gateway/authcache"
	deliveryhttp "agentstack/pipeline/internal/modules/gateway/delivery/http"
	"agentstack/pipeline/internal/modules/gateway/repository"
)

type HttpModuleConfig struct {
	Config     *config.Config
	Server     *fiber.App
	DB         database.Database
	Log        logger.Logger
	Val        validator.Validator
	DurableLog *durablelog.Log
}

func RegisterHttpModule(cfg HttpModuleConfig) {
	hdlrLogger := cfg.Log.WithField("component", "handler")

	projectRepo := repository.NewProjectRepository(cfg.DB)
	auth := authcache.New(projectRepo, cfg.Config.Gateway.AuthCacheMaxSize)

	h := deliveryhttp.NewHandler(
		&cfg.Config.Gateway,
		hdlrLogger,
		cfg.Val,
		auth,
		cfg.DurableLog,
		cfg.Config.DurableLog.SpansTopic,
	)

	routeConfig := deliveryhttp.RouteConfig{
		Cfg:     &cfg.Config.Gateway,
		Server:  cfg.Server,
		Handler: h,
	}
	routeConfig.Setup()
}
