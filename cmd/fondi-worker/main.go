package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"fondi/internal/amqp"
	"fondi/internal/backend"
	"fondi/internal/config"
	"fondi/internal/export"
	"fondi/internal/log"
	"fondi/internal/services"
	"fondi/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.Config{Level: slog.LevelInfo, Component: log.ComponentWorker})
	log.SetDefault(logger)

	logger.Info("Starting fondi-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	result, err := backend.Open(cfg, logger)
	if err != nil {
		logger.Error("Failed to open data store", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Store cleanup error", "error", err)
			}
		}()
	}
	st := result.Store

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	// Periods run without an event publisher here: the API server owns
	// event publication for its own writes, and the worker consumes.
	periods := services.NewPeriods(st, nil)
	generator := services.NewGenerator(st, nil)
	backfill := services.NewBackfill(st, generator, cfg.GenerationLookAheadMonths)

	var reporter *export.Reporter
	if cfg.ExportEnabled() {
		writer, err := export.NewSheetsWriter(ctx, cfg)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets export", "error", err)
			os.Exit(1)
		}
		reporter = export.NewReporter(st, periods, writer)
		logger.Info("Google Sheets export enabled",
			"spreadsheet_id", cfg.GoogleSpreadsheetID,
			"sheet", cfg.GoogleSheetName)
	} else {
		logger.Info("Google Sheets export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	w := worker.New(st, backfill, periods, reporter, cfg.WorkerInterval)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.Run(ctx)
	})

	// Consume API-side events so a fresh generation or renewal refreshes
	// the exported report without waiting for the next tick.
	if cfg.AMQPURL != "" && reporter != nil {
		events, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without event consumption", "error", err)
		} else {
			defer events.Close()
			g.Go(func() error {
				return events.Consume(ctx, amqp.Handlers{
					TransactionGenerated: func(msg *amqp.TransactionGeneratedMessage) error {
						slog.Info("Transaction generated event received",
							"transaction_id", msg.TransactionID,
							"template_id", msg.TemplateID)
						_, err := reporter.Run(ctx)
						return err
					},
					PeriodRenewed: func(msg *amqp.PeriodRenewedMessage) error {
						slog.Info("Period renewed event received",
							"project_id", msg.ProjectID,
							"new_period_id", msg.NewPeriodID)
						_, err := reporter.Run(ctx)
						return err
					},
				})
			})
		}
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
