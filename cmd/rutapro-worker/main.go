package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"rutapro/internal/amqp"
	"rutapro/internal/cli"
	"rutapro/internal/journal/sheets"
	"rutapro/internal/worker"
)

func main() {
	logger := cli.SetupLogger()
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting rutapro-worker")

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)

	sheetsClient, err := sheets.NewFromEnv(context.Background())
	if err != nil {
		logger.Error("Failed to initialize Sheets client", "error", err)
		os.Exit(1)
	}

	exportWorker := worker.NewExportWorker(repo, sheetsClient, cfg.ExportBatchSize)

	// The worker still reconciles pending days without a broker, only the
	// immediate push path is lost.
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("AMQP unavailable, relying on the reconcile loop", "error", err)
		amqpClient = nil
	}

	ctx, done := cli.GracefulShutdown(logger, 15*time.Second, func() {
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Error("AMQP close failed", "error", err)
			}
		}
		if err := repo.Close(); err != nil {
			logger.Error("Storage close failed", "error", err)
		}
	})

	if err := exportWorker.StartupExportCheck(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Startup export check failed", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	if amqpClient != nil {
		g.Go(func() error {
			return amqpClient.ConsumeDayExport(gctx, func(msg *amqp.DayExportMessage) error {
				return exportWorker.HandleExportMessage(gctx, msg)
			})
		})
	}

	g.Go(func() error {
		ticker := time.NewTicker(cfg.ExportInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				if err := exportWorker.ProcessPendingDays(gctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("Pending day reconcile failed", "error", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
}
