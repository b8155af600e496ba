package main

import (
	"context"
	"errors"
	"os"
	"time"

	"finledger/internal/cache"
	"finledger/internal/cli"
	applog "finledger/internal/log"
	"finledger/internal/sheets"
	gsheet "finledger/internal/sheets/google"
	"finledger/internal/sheets/memory"
	"finledger/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger("info", applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg.LogLevel, applog.ComponentWorker)

	logger.Info("Starting ledger-sync-worker", "data_dir", cfg.DataDir)

	if !cfg.EventsEnabled() {
		logger.Error("AMQP_URL is required: the sync worker consumes ledger events")
		os.Exit(1)
	}

	manager := cache.NewManager()
	store := cli.InitStore(logger, cfg, manager)

	var writer sheets.RecordWriter
	if cfg.SheetsEnabled() {
		client, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
			os.Exit(1)
		}
		logger.WithComponent(applog.ComponentSheets).Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
		writer = client
	} else {
		logger.Info("Google Sheets disabled - records are exported to memory only")
		writer = memory.New()
	}

	events := cli.InitAMQP(logger, cfg)
	if events == nil {
		logger.Error("Cannot consume ledger events without a broker connection")
		os.Exit(1)
	}

	syncer := worker.NewSyncWorker(store, writer)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		m := syncer.Metrics()
		logger.Info("Sync worker totals",
			"events", m.Total,
			"failed_events", m.Failed,
			"avg_event_us", m.AverageDurationUs)
		manager.Stop()
		_ = events.Close()
	})
	manager.StartCleanup(ctx, cfg.NamespaceCacheTTL)

	if err := events.ConsumeLedgerEvents(ctx, syncer.HandleLedgerEvent); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Ledger event consumption failed", applog.FieldError, err)
		os.Exit(1)
	}
	cli.WaitForShutdown(ctx, done)
}
