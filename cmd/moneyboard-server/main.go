package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"moneyboard/internal/amqp"
	"moneyboard/internal/cli"
	apphttp "moneyboard/internal/http"
	"moneyboard/internal/log"
	"moneyboard/internal/services"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()
	cfg, err := cli.LoadConfig()
	if err != nil {
		cli.Fatal(log.New(log.DefaultConfig()), "Configuration validation failed", err)
	}
	logger := cli.SetupLogger(cfg, log.ComponentApp)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	store, err := cli.OpenStore(ctx, cfg, logger)
	if err != nil {
		cli.Fatal(logger, "Failed to open store", err)
	}

	caches, err := cli.NewSummaryCaches(ctx, cfg, logger)
	if err != nil {
		store.Close()
		cli.Fatal(logger, "Failed to initialize summary cache", err)
	}

	// Publishing is optional; without a broker only this process's caches
	// are invalidated.
	var (
		publisher  services.Publisher
		amqpClient *amqp.Client
	)
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("AMQP unavailable, continuing without event publishing", log.FieldError, err)
		} else {
			publisher = amqpClient
		}
	}

	dash := services.NewDashboardService(store, caches.Summaries, caches.Trends, logger)
	ledger := services.NewLedgerService(store, publisher, dash, logger)

	srv := apphttp.NewServer(":"+cfg.Port, ledger, dash,
		apphttp.WithLogger(logger),
		apphttp.WithRateLimit(cfg.RateLimitPerMinute),
		apphttp.WithAllowOrigin(cfg.CORSAllowOrigin),
		apphttp.WithTrustedProxies(cfg.TrustedProxies...),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting moneyboard server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return cli.Shutdown(logger, shutdownTimeout,
			srv.Shutdown,
			func(context.Context) error {
				if amqpClient != nil {
					return amqpClient.Close()
				}
				return nil
			},
			func(context.Context) error { return caches.Close() },
			func(context.Context) error { return ledger.Close() },
		)
	})

	if err := g.Wait(); err != nil {
		cli.Fatal(logger, "Server error", err)
	}
	logger.Info("Server stopped gracefully")
}
