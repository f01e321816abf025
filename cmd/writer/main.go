// Command writer runs the persistent writer worker (spec §4.10): an
// independent process that drains spans.ingest and bulk-inserts into the
// analytical store. Follows cmd/http/main.go's bootstrap shape (load
// config, build logger/tracer, build dependencies, run until signaled).
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
	"agentstack/pipeline/internal/modules/writer/repository"
	"agentstack/pipeline/internal/modules/writer/usecase"
)

const (
	consumerGroup = "writer-group"
)

func main() {
	globalCfg := config.InitGlobalConfig("config/config.yaml")
	domainCfg := config.LoadDomainConfig("config/writer/config.yaml")

	trc, err := tracer.New(&globalCfg.Telemetry, globalCfg.App.Env)
	if err != nil {
		panic(err)
	}
	defer trc.Close()

	log := logger.New(domainCfg, trc).WithFields(map[string]any{
		"service": domainCfg.App.Name,
		"version": domainCfg.App.Version,
		"env":     domainCfg.App.Env,
		"domain":  "writer",
	})

	db := database.NewDatabase(&domainCfg.Database, log, trc)
	defer db.Close()

	redisCache := database.NewRedisCache(&domainCfg.Redis, log)
	defer redisCache.Close()

	dlog := durablelog.New(redisCache.GetClient(), domainCfg.DurableLog, log)
	repo := repository.NewSpanRepository(db)

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
		log.Info("writer: shutdown signal received")
		cancel()
	}()

	log.Info(fmt.Sprintf("writer: starting consumer %s on group %s", consumerName, consumerGroup))
	if err := worker.Run(ctx); err != nil {
		log.WithField("error_detail", err.Error()).Error("writer: run loop exited with error")
	}
}
