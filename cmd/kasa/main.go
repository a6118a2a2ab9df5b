package main

import (
	"context"
	"net/http"
	"time"

	"kasa/internal/amqp"
	"kasa/internal/cli"
	apphttp "kasa/internal/http"
	applog "kasa/internal/log"
	"kasa/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentHTTP)
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer func() { _ = repo.Close() }()

	// Change events are best effort: the server stays up without a broker.
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("AMQP unavailable, change events disabled", "error", err)
		amqpClient = nil
	}

	tracker := services.NewTrackerService(repo, repo, amqpClient)
	defer func() { _ = tracker.Close() }()
	stats := services.NewStatsService(repo, repo)

	srv := apphttp.NewServer(":"+cfg.Port, tracker, stats, tracker, repo, cfg.StatsCacheTTL)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	logger.Info("Starting server", "port", cfg.Port, "db", cfg.SQLiteDBPath)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server failed to start", "error", err)
		return
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped")
}
