package main

import (
	"context"
	"errors"
	"time"

	"moneyboard/internal/amqp"
	"moneyboard/internal/cli"
	"moneyboard/internal/log"
	"moneyboard/internal/services"
	"moneyboard/internal/worker"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()
	cfg, err := cli.LoadConfig()
	if err != nil {
		cli.Fatal(log.New(log.DefaultConfig()), "Configuration validation failed", err)
	}
	logger := cli.SetupLogger(cfg, log.ComponentWorker)
	logger.Info("Starting moneyboard-worker")

	if cfg.AMQPURL == "" {
		cli.Fatal(logger, "Configuration validation failed", errors.New("AMQP_URL is required by the worker"))
	}
	if cfg.RedisURL == "" {
		logger.Warn("REDIS_URL not set; refreshed summaries stay local to the worker")
	}

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	store, err := cli.OpenStore(ctx, cfg, logger)
	if err != nil {
		cli.Fatal(logger, "Failed to open store", err)
	}
	defer store.Close()

	caches, err := cli.NewSummaryCaches(ctx, cfg, logger)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize summary cache", err)
	}
	defer caches.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize AMQP client", err)
	}
	defer amqpClient.Close()

	dash := services.NewDashboardService(store, caches.Summaries, caches.Trends, logger)
	refresh := worker.NewRefreshWorker(dash, worker.Config{WarmInterval: cfg.WarmInterval}, logger)
	if err := refresh.Start(ctx); err != nil {
		cli.Fatal(logger, "Failed to start refresh worker", err)
	}

	consumeErr := make(chan error, 1)
	go func() {
		consumeErr <- amqpClient.ConsumeTransactionEvents(ctx, refresh.HandleEvent)
	}()

	select {
	case <-ctx.Done():
	case err := <-consumeErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", log.FieldError, err)
		}
		stop()
	}

	if err := cli.Shutdown(logger, shutdownTimeout, refresh.Stop); err != nil {
		logger.Error("Worker shutdown error", log.FieldError, err)
	}
	logger.Info("Worker stopped")
}
