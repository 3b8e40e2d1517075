// Package cli provides the start-up plumbing shared by the moneyboard
// binaries: environment loading, logging, storage and cache wiring, and
// signal handling.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"moneyboard/internal/backend"
	"moneyboard/internal/cache"
	"moneyboard/internal/config"
	"moneyboard/internal/core"
	"moneyboard/internal/log"
	"moneyboard/internal/storage"
)

// LoadEnvFile loads a .env file for local development. A missing file is
// not an error.
func LoadEnvFile(paths ...string) {
	_ = godotenv.Load(paths...)
}

// LoadConfig reads and validates the environment configuration.
func LoadConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetupLogger builds the process logger from cfg and installs it as the
// slog default. Invalid settings were already rejected by Validate.
func SetupLogger(cfg *config.Config, component string) *log.Logger {
	level, _ := log.ParseLevel(cfg.LogLevel)
	logger := log.New(log.Config{
		Level:     level,
		Component: component,
		Format:    cfg.LogFormat,
		Output:    os.Stderr,
	})
	log.SetDefault(logger)
	return logger
}

// Fatal logs err and exits.
func Fatal(logger *log.Logger, msg string, err error) {
	logger.Error(msg, log.FieldError, err)
	os.Exit(1)
}

// OpenStore opens the configured backend and seeds it when requested.
func OpenStore(ctx context.Context, cfg *config.Config, logger *log.Logger) (storage.Store, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	return backend.NewFactory(logger).Open(ctx, bcfg)
}

// SummaryCaches bundles the dashboard caches and whatever owns their
// resources.
type SummaryCaches struct {
	Summaries cache.Cache[core.DashboardSummary]
	Trends    cache.Cache[core.MonthlyTrend]

	manager *cache.Manager
	redis   *redis.Client
}

// NewSummaryCaches builds Redis-backed caches when REDIS_URL is set so the
// server and worker share entries; otherwise in-process LRU caches.
func NewSummaryCaches(ctx context.Context, cfg *config.Config, logger *log.Logger) (*SummaryCaches, error) {
	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		logger.Info("Using Redis summary cache", "ttl", cfg.SummaryCacheTTL)
		return &SummaryCaches{
			Summaries: cache.NewRedisCache[core.DashboardSummary](client, "moneyboard:summary:", cfg.SummaryCacheTTL, logger),
			Trends:    cache.NewRedisCache[core.MonthlyTrend](client, "moneyboard:trend:", cfg.SummaryCacheTTL, logger),
			redis:     client,
		}, nil
	}

	summaries := cache.NewLRUCache[core.DashboardSummary](cfg.SummaryCacheSize, cfg.SummaryCacheTTL)
	trends := cache.NewLRUCache[core.MonthlyTrend](1, cfg.SummaryCacheTTL)
	manager := cache.NewManager(logger)
	manager.Register("summary", summaries)
	manager.Register("trend", trends)
	manager.StartCleanup(cfg.SummaryCacheTTL)
	logger.Info("Using in-process summary cache", "size", cfg.SummaryCacheSize, "ttl", cfg.SummaryCacheTTL)
	return &SummaryCaches{Summaries: summaries, Trends: trends, manager: manager}, nil
}

// Close stops cleanup and releases the Redis connection, if any.
func (c *SummaryCaches) Close() error {
	if c.manager != nil {
		c.manager.Stop()
	}
	if c.redis != nil {
		return c.redis.Close()
	}
	return nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// Shutdown runs each step with a shared deadline and joins their errors.
func Shutdown(logger *log.Logger, timeout time.Duration, steps ...func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	for _, step := range steps {
		if err := step(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if ctx.Err() != nil {
		logger.Warn("Shutdown timeout reached")
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("Shutdown complete")
	return nil
}
