package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"monotributo/internal/amqp"
	"monotributo/internal/cache"
	"monotributo/internal/cli"
	"monotributo/internal/config"
	apphttp "monotributo/internal/http"
	"monotributo/internal/ledger"
	applog "monotributo/internal/log"
	"monotributo/internal/services"
	"monotributo/internal/sheets"
	gsheet "monotributo/internal/sheets/google"
	"monotributo/internal/storage"
)

func main() {
	cli.LoadEnvFile()

	// Bootstrap logging from the environment; configuration errors are
	// reported through it.
	appLogger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	logger := appLogger.Logger

	cfg := cli.LoadAndValidateConfig(logger)
	logger.Info("Starting monotributo server", "port", cfg.Port, "backend", cfg.DataBackend,
		applog.FieldOperation, applog.OpStartup)

	backendResult := cli.InitBackend(context.Background(), logger, cfg)
	repo := storage.NewRepository(backendResult.Backend)

	cacheManager := cache.NewManager(appLogger.WithComponent(applog.ComponentCache).Logger)
	reportCache := cache.NewLRUCache[ledger.PublicReport](cfg.ReportCacheSize, cfg.ReportCacheTTL)
	cacheManager.Register(reportCache)
	cacheManager.StartCleanup(cfg.ReportCacheTTL)

	var publisher services.Publisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err,
				applog.FieldComponent, applog.ComponentAMQP)
			os.Exit(1)
		}
		publisher = amqpClient
		logger.Info("AMQP publishing enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue,
			applog.FieldComponent, applog.ComponentAMQP)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided", applog.FieldComponent, applog.ComponentAMQP)
	}

	svc := apphttp.Services{
		Clients:  services.NewClientService(repo),
		Invoices: services.NewInvoiceService(repo, backendResult.Backend, publisher),
		Notes:    services.NewNoteService(repo),
		Reports:  services.NewReportService(repo, reportCache),
		Sheets:   googleOpener(logger, cfg),
	}

	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		Logger:             appLogger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cacheManager.Stop()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Error("Failed to close AMQP client", "error", err)
			}
		}
		if backendResult.Cleanup != nil {
			if err := backendResult.Cleanup(); err != nil {
				logger.Error("Failed to close storage backend", "error", err)
			}
		}
	})

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}

// googleOpener enables spreadsheet imports when service account credentials
// are configured. Imports read any spreadsheet shared with that account.
func googleOpener(logger *slog.Logger, cfg *config.Config) apphttp.SheetOpener {
	if cfg.GoogleSpreadsheetID == "" {
		logger.Info("Google Sheets import disabled - no GOOGLE_SPREADSHEET_ID provided")
		return nil
	}
	client, err := gsheet.New(context.Background(), cfg.GoogleSpreadsheetID, cfg.GoogleSummarySheetName)
	if err != nil {
		logger.Warn("Google Sheets import disabled", "error", err)
		return nil
	}
	logger.Info("Google Sheets import enabled")
	return func(ref string) sheets.TableSource { return client.Sheet(ref) }
}
