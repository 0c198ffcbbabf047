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
var sessionSchema embed.FS

// RunMigrations creates the sessions and scored_comments tables that back
// analysis sessions. The store is in-memory, so every process starts from an
// empty schema and this must run on the writer before a SessionRepo is used.
// It returns nil when the schema is already current.
func RunMigrations(db *sql.DB) error {
	m, err := newSessionMigrator(db)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply session schema: %w", err)
	}
	return nil
}

// SchemaVersion reports the applied session schema version, or 0 when no
// migration has run yet.
func SchemaVersion(db *sql.DB) (uint, error) {
	m, err := newSessionMigrator(db)
	if err != nil {
		return 0, err
	}
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read session schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("session schema version %d is dirty", version)
	}
	return version, nil
}

// newSessionMigrator does not own db; closing the migrator would close it.
func newSessionMigrator(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(sessionSchema, "migrations")
	if err != nil {
		return nil, fmt.Errorf("open session schema source: %w", err)
	}
	drv, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("open session schema driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", drv)
	if err != nil {
		return nil, fmt.Errorf("create session migrator: %w", err)
	}
	return m, nil
}
