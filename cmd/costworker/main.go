// Command costworker runs the cost calculator worker (spec §4.11): an
// independent process that costs out LLM usage on spans.ingest.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"agentstack/pipeline/internal/infrastructure/config"
	database "agentstack/pipeline/internal/infrastructure/db"
	"agentstack/pipeline/internal/infrastructure/durablelog"
	"agentstack/pipeline/internal/infrastructure/logger"
	"agentstack/pipeline/internal/infrastructure/telemetry/tracer"
	"agentstack/pipeline/internal/modules/costworker/repository"
	"agentstack/pipeline/internal/modules/costworker/usecase"
)

const consumerGroup = "costworker-group"

func main() {
	globalCfg := config.InitGlobalConfig("config/config.yaml")
	domainCfg := config.LoadDomainConfig("config/costworker/config.yaml")

	trc, err := tracer.New(&globalCfg.Telemetry, globalCfg.App.Env)
	if err != nil {
		panic(err)
	}
	defer trc.Close()

	log := logger.New(domainCfg, trc).WithFields(map[string]any{
		"service": domainCfg.App.Name,
		"version": domainCfg.App.Version,
		"env":     domainCfg.App.Env,
		"domain":  "costworker",
	})

	db := database.NewDatabase(&domainCfg.Database, log, trc)
	defer db.Close()

	redisCache := database.NewRedisCache(&domainCfg.Redis, log)
	defer redisCache.Close()

	dlog := durablelog.New(redisCache.GetClient(), domainCfg.DurableLog, log)
	repo := repository.NewCostRepository(db)

	consumerName, _ := os.Hostname()
	worker := &usecase.Worker{
		Log:      dlog,
		Topic:    domainCfg.DurableLog.SpansTopic,
		Group:    consumerGroup,
		Consumer: consumerName,
		Repo:     repo,
		Logger:   log,
	}

	ctx, cancel := context.WithCancel(context.Background())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-quit
		log.Info("costworker: shutdown signal received")
		cancel()
	}()

	log.Info(fmt.Sprintf("costworker: starting consumer %s on group %s", consumerName, consumerGroup))
	if err := worker.Run(ctx); err != nil {
		log.WithField("error_detail", err.Error()).Error("costworker: run loop exited with error")
	}
}
