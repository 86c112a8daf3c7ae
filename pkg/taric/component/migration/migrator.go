// Package migration applies the importer schema with golang-migrate.
package migration

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/tigerroll/tamato/pkg/taric/support/util/logger"
)

// DefaultMigrationsTable records applied versions.
const DefaultMigrationsTable = "importer_schema_migrations"

//go:embed resources
var resources embed.FS

// Migrator runs the embedded migrations for one dialect.
type Migrator struct {
	db     *sql.DB
	dbType string
	table  string
	fsys   fs.FS
}

// NewMigrator returns a Migrator over db for dbType (sqlite, postgres, mysql).
func NewMigrator(db *sql.DB, dbType string) *Migrator {
	return &Migrator{db: db, dbType: dbType, table: DefaultMigrationsTable, fsys: resources}
}

func (m *Migrator) driver() (database.Driver, error) {
	switch m.dbType {
	case "postgres":
		return postgres.WithInstance(m.db, &postgres.Config{MigrationsTable: m.table})
	case "mysql":
		return mysql.WithInstance(m.db, &mysql.Config{MigrationsTable: m.table})
	case "sqlite":
		return sqlite.WithInstance(m.db, &sqlite.Config{MigrationsTable: m.table})
	}
	return nil, fmt.Errorf("unsupported database type for migration: %s", m.dbType)
}

func (m *Migrator) run(ctx context.Context, command string, step func(*migrate.Migrate) error) error {
	log := logger.For("migration")
	log.Infof("running %s for %s (table %s)", command, m.dbType, m.table)

	drv, err := m.driver()
	if err != nil {
		return err
	}
	src, err := iofs.New(m.fsys, "resources/"+m.dbType)
	if err != nil {
		return fmt.Errorf("open migrations for %s: %w", m.dbType, err)
	}
	// The database driver shares the caller's pool: only the source is closed.
	defer src.Close()

	inst, err := migrate.NewWithInstance("iofs", src, m.dbType, drv)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	done := make(chan error, 1)
	go func() { done <- step(inst) }()
	select {
	case <-ctx.Done():
		inst.GracefulStop <- true
		<-done
		return ctx.Err()
	case err = <-done:
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration %s failed for %s: %w", command, m.dbType, err)
	}
	version, dirty, _ := inst.Version()
	log.Infof("schema at version %d (dirty=%t)", version, dirty)
	return nil
}

// Up applies all pending migrations.
func (m *Migrator) Up(ctx context.Context) error {
	return m.run(ctx, "up", func(inst *migrate.Migrate) error { return inst.Up() })
}

// Down reverts all migrations.
func (m *Migrator) Down(ctx context.Context) error {
	return m.run(ctx, "down", func(inst *migrate.Migrate) error { return inst.Down() })
}
