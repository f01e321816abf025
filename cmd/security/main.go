// Command security runs the security engine worker (spec §4.12): an
// independent process that scans spans.ingest for injection, PII, and
// anomaly findings and publishes alerts.
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
	"agentstack/pipeline/internal/modules/consumer"
	"agentstack/pipeline/internal/modules/security/repository"
	"agentstack/pipeline/internal/modules/security/usecase"
)

const consumerGroup = "security-group"

func main() {
	globalCfg := config.InitGlobalConfig("config/config.yaml")
	domainCfg := config.LoadDomainConfig("config/security/config.yaml")

	trc, err := tracer.New(&globalCfg.Telemetry, globalCfg.App.Env)
	if err != nil {
		panic(err)
	}
	defer trc.Close()

	log := logger.New(domainCfg, trc).WithFields(map[string]any{
		"service": domainCfg.App.Name,
		"version": domainCfg.App.Version,
		"env":     domainCfg.App.Env,
		"domain":  "security",
	})

	db := database.NewDatabase(&domainCfg.Database, log, trc)
	defer db.Close()

	redisCache := database.NewRedisCache(&domainCfg.Redis, log)
	defer redisCache.Close()

	dlog := durablelog.New(redisCache.GetClient(), domainCfg.DurableLog, log)
	repo := repository.NewAlertRepository(db)

	worker := &usecase.Worker{
		Log:         dlog,
		Repo:        repo,
		Topic:       domainCfg.DurableLog.SpansTopic,
		AlertsTopic: domainCfg.DurableLog.AlertsTopic,
	}

	consumerName, _ := os.Hostname()
	base := &consumer.BaseConsumer{
		Log:      dlog,
		Topic:    domainCfg.DurableLog.SpansTopic,
		Group:    consumerGroup,
		Consumer: consumerName,
		AutoAck:  true,
		Handle:   worker.Handle,
		Logger:   log,
	}

	ctx, cancel := context.WithCancel(context.Background())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-quit
		log.Info("security: shutdown signal received")
		cancel()
	}()

	log.Info(fmt.Sprintf("security: starting consumer %s on group %s", consumerName, consumerGroup))
	if err := base.Run(ctx); err != nil {
		log.WithField("error_detail", err.Error()).Error("security: run loop exited with error")
	}
}
