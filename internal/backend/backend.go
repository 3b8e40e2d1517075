// Package backend builds the configured store and seeds it.
package backend

import (
	"context"
	"fmt"

	"moneyboard/internal/config"
	"moneyboard/internal/core"
	"moneyboard/internal/log"
	"moneyboard/internal/storage"
	"moneyboard/internal/storage/memory"
)

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// Config holds configuration for backend creation
type Config struct {
	Type         BackendType
	SQLiteDBPath string

	// Seed fills an empty store with SeedFile's categories, or the
	// defaults when SeedFile is empty.
	Seed     bool
	SeedFile string
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type:         backendType,
		SQLiteDBPath: appConfig.SQLiteDBPath,
		Seed:         appConfig.SeedDefaultCategories,
		SeedFile:     appConfig.SeedCategoriesFile,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	if c.Type == SQLiteBackend && c.SQLiteDBPath == "" {
		return fmt.Errorf("SQLite database path is required for sqlite backend")
	}
	return nil
}

// Factory creates stores based on configuration
type Factory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) *Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &Factory{logger: logger.WithComponent(log.ComponentBackend)}
}

// Open creates the store described by cfg and seeds it when asked to. The
// caller closes the returned store.
func (f *Factory) Open(ctx context.Context, cfg Config) (storage.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var store storage.Store
	switch cfg.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath, f.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		store = repo
		f.logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
	case MemoryBackend:
		store = memory.New()
		f.logger.Info("Initialized memory backend")
	}

	if cfg.Seed {
		if err := f.seed(ctx, store, cfg.SeedFile); err != nil {
			store.Close()
			return nil, err
		}
	}
	return store, nil
}

func (f *Factory) seed(ctx context.Context, store storage.Store, file string) error {
	var cats []core.CategoryInput
	if file != "" {
		var err error
		if cats, err = storage.ReadSeedFile(file); err != nil {
			return fmt.Errorf("read seed file: %w", err)
		}
	}
	n, err := storage.Seed(ctx, store, cats)
	if err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	if n > 0 {
		f.logger.Info("Seeded categories", log.FieldCount, n, "source", seedSource(file))
	}
	return nil
}

func seedSource(file string) string {
	if file == "" {
		return "defaults"
	}
	return file
}
