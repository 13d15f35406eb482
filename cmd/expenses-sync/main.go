package main

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"expenses/internal/amqp"
	"expenses/internal/cli"
	"expenses/internal/config"
	applog "expenses/internal/log"
	"expenses/internal/sheets"
	gsheet "expenses/internal/sheets/google"
	memsheet "expenses/internal/sheets/memory"
	"expenses/internal/storage"
	"expenses/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err == nil {
		err = cfg.ValidateSync()
	}
	if err != nil {
		cli.Fatal(applog.New(applog.DefaultConfig()), "Configuration validation failed", err)
	}
	logger := cli.SetupLogger(cfg.LogLevel, applog.ComponentWorker)
	logger.Info("Starting expenses-sync")

	ctx, stop := cli.GracefulShutdown(logger)
	defer stop()

	mirror, err := newMirror(ctx, logger, cfg)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize mirror", err)
	}

	// The reconciler reads the shared SQLite ledger; the memory backend
	// lives in another process and cannot be read from here.
	var ledger worker.LedgerReader
	if cfg.DataBackend == "sqlite" {
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			cli.Fatal(logger, "Failed to open SQLite ledger", err)
		}
		defer repo.Close()
		ledger = repo
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize AMQP client", err)
	}
	defer client.Close()

	w := worker.NewSyncWorker(mirror, ledger)

	if ledger != nil {
		logger.Info("Performing startup reconcile")
		if err := w.Reconcile(ctx); err != nil {
			logger.Error("Startup reconcile failed", "error", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.ConsumeExpenseEvents(gctx, w.HandleEvent)
	})
	g.Go(func() error {
		return w.RunReconciler(gctx, cfg.SyncInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Sync worker stopped", "error", err)
	}
	logger.Info("Sync worker stopped")
}

func newMirror(ctx context.Context, logger *applog.Logger, cfg *config.Config) (sheets.ExpenseMirror, error) {
	if cfg.GoogleSpreadsheetID == "" {
		logger.Warn("GOOGLE_SPREADSHEET_ID not set, mirroring to memory only")
		return memsheet.New(), nil
	}

	client, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Google Sheets mirror initialized",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName)
	return client, nil
}
