package sqlite

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationsTable records the applied credential schema version. It is
// namespaced so a database file shared with other tools keeps its own
// migration history.
const MigrationsTable = "panelctl_schema_migrations"

// RunMigrations brings the credential schema up to date and returns the
// schema version now in place. Already-applied migrations are skipped, so it
// runs on every CLI invocation. A database left dirty by an interrupted
// migration is reported rather than migrated further.
func RunMigrations(db *sql.DB) (uint, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return 0, fmt.Errorf("open credential migrations: %w", err)
	}

	target, err := migratesqlite.WithInstance(db, &migratesqlite.Config{MigrationsTable: MigrationsTable})
	if err != nil {
		return 0, fmt.Errorf("prepare credential database for migration: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", target)
	if err != nil {
		return 0, fmt.Errorf("create credential migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("migrate credential schema: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("read credential schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("credential schema version %d is dirty", version)
	}
	return version, nil
}
