package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"kasa/internal/amqp"
	"kasa/internal/cli"
	applog "kasa/internal/log"
	"kasa/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer func() { _ = repo.Close() }()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect to AMQP", "error", err, "url", cfg.AMQPURL)
		os.Exit(1)
	}
	defer func() { _ = amqpClient.Close() }()

	summaryWorker := worker.NewSummaryWorker(repo)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	// Catch up on anything missed while the worker was down.
	if err := summaryWorker.RebuildAll(ctx); err != nil {
		logger.Error("Initial summary rebuild failed", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeTransactionChanges(gctx, func(msg *amqp.TransactionChangedMessage) error {
			return summaryWorker.HandleChangeMessage(gctx, msg)
		})
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.RebuildInterval)
		defer ticker.Stop()

		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				if err := summaryWorker.RebuildAll(gctx); err != nil {
					logger.Error("Periodic summary rebuild failed", "error", err)
				}
			}
		}
	})

	logger.Info("Worker started",
		"queue", cfg.AMQPQueue,
		"rebuild_interval", cfg.RebuildInterval.String())

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped")
}
