package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SchemaChange reports the ledger schema version before and after a
// migration run. Before is zero for a fresh database.
type SchemaChange struct {
	Before uint
	After  uint
}

// Applied reports whether the run changed the schema.
func (c SchemaChange) Applied() bool { return c.Before != c.After }

// RunMigrations brings the ledger schema behind dsn up to date. It opens its
// own connection because the migrate driver closes the handle it is given.
func RunMigrations(dsn string) (SchemaChange, error) {
	var change SchemaChange

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return change, fmt.Errorf("open migration database: %w", err)
	}
	defer db.Close()

	driver, err := sqlite.WithInstance(db, &sqlite.Config{MigrationsTable: "ledger_schema"})
	if err != nil {
		return change, fmt.Errorf("create sqlite driver: %w", err)
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return change, fmt.Errorf("open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return change, fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if change.Before, err = currentVersion(m); err != nil {
		return change, err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return change, fmt.Errorf("apply migrations from version %d: %w", change.Before, err)
	}
	change.After, err = currentVersion(m)
	return change, err
}

func currentVersion(m *migrate.Migrate) (uint, error) {
	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("read schema version: %w", err)
	case dirty:
		return version, fmt.Errorf("schema version %d is dirty; fix it by hand before restarting", version)
	}
	return version, nil
}
