package main

import (
	"context"
	"errors"
	"os"
	"time"

	"finledger/internal/cache"
	"finledger/internal/cli"
	applog "finledger/internal/log"
	"finledger/internal/services"
	"finledger/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger("info", applog.ComponentRecurring)
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg.LogLevel, applog.ComponentRecurring)

	logger.Info("Starting recurring-worker",
		"data_dir", cfg.DataDir,
		"interval", cfg.RecurringInterval,
		"concurrency", cfg.RecurringConcurrency)

	manager := cache.NewManager()
	store := cli.InitStore(logger, cfg, manager)

	// Materialized records are published so the sync worker can export them.
	events := cli.InitAMQP(logger, cfg)
	var publisher services.EventPublisher
	if events != nil {
		publisher = events
	}

	engine := services.NewRecurrenceEngine(store, publisher)
	recurring := worker.NewRecurringWorker(store, engine, cfg.RecurringConcurrency)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		m := recurring.Metrics()
		logger.Info("Recurring worker totals",
			"batches", m.Total,
			"failed_batches", m.Failed,
			"avg_batch_us", m.AverageDurationUs)
		manager.Stop()
		if events != nil {
			_ = events.Close()
		}
	})
	manager.StartCleanup(ctx, cfg.NamespaceCacheTTL)

	if err := recurring.Run(ctx, cfg.RecurringInterval); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Recurring worker stopped", applog.FieldError, err)
		os.Exit(1)
	}
	cli.WaitForShutdown(ctx, done)
}
