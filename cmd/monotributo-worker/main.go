package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"monotributo/internal/amqp"
	"monotributo/internal/cli"
	"monotributo/internal/config"
	applog "monotributo/internal/log"
	"monotributo/internal/services"
	"monotributo/internal/sheets"
	gsheet "monotributo/internal/sheets/google"
	"monotributo/internal/storage"
	"monotributo/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL")).WithComponent(applog.ComponentWorker).Logger

	logger.Info("Starting monotributo-worker", applog.FieldOperation, applog.OpStartup)

	cfg := config.Load()
	if err := cfg.ValidateWorker(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	backendResult := cli.InitBackend(context.Background(), logger, cfg)
	repo := storage.NewRepository(backendResult.Backend)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}

	// The worker has no report cache of its own; reports it touches expire
	// from the server cache by TTL.
	summaryWorker := worker.NewSummaryWorker(repo, summaryWriter(logger, cfg), services.NewReportService(repo, nil))

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		if err := amqpClient.Close(); err != nil {
			logger.Error("Failed to close AMQP client", "error", err)
		}
		if backendResult.Cleanup != nil {
			if err := backendResult.Cleanup(); err != nil {
				logger.Error("Failed to close storage backend", "error", err)
			}
		}
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeInvoicesImported(gctx, summaryWorker.HandleImported)
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.SummaryInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				written, failed, err := summaryWorker.SummarizeAll(gctx)
				if err != nil {
					logger.Error("Periodic summary pass failed", "error", err)
					continue
				}
				logger.Info("Periodic summary pass complete", "written", written, "failed", failed)
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}

// summaryWriter appends to the reporting spreadsheet when one is configured
// and falls back to logging the summaries.
func summaryWriter(logger *slog.Logger, cfg *config.Config) sheets.SummaryWriter {
	if cfg.GoogleSpreadsheetID == "" {
		logger.Info("Google Sheets disabled - summaries are only logged")
		return sheets.NewLogWriter(logger)
	}
	client, err := gsheet.New(context.Background(), cfg.GoogleSpreadsheetID, cfg.GoogleSummarySheetName)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return client
}
