package repository

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/lukeswitz/wardragon-analytics/pkg/log"
)

//go:embed migrations/*
var migrationFiles embed.FS

func migrateInstance(driverName string, sqlDB *sql.DB) (*migrate.Migrate, error) {
	switch driverName {
	case "postgres":
		driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
		if err != nil {
			return nil, fmt.Errorf("repository: postgres migrate driver: %w", err)
		}
		d, err := iofs.New(migrationFiles, "migrations/postgres")
		if err != nil {
			return nil, err
		}
		return migrate.NewWithInstance("iofs", d, "postgres", driver)
	case "sqlite3":
		driver, err := sqlite3.WithInstance(sqlDB, &sqlite3.Config{})
		if err != nil {
			return nil, fmt.Errorf("repository: sqlite3 migrate driver: %w", err)
		}
		d, err := iofs.New(migrationFiles, "migrations/sqlite3")
		if err != nil {
			return nil, err
		}
		return migrate.NewWithInstance("iofs", d, "sqlite3", driver)
	default:
		return nil, fmt.Errorf("repository: unsupported driver %q", driverName)
	}
}

// MigrateUp applies all pending migrations for db's dialect.
func (db *DB) MigrateUp() error {
	m, err := migrateInstance(db.Driver, db.DB.DB)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("repository: migration failed: %w", err)
	}

	v, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return err
	}
	log.Infof("repository: schema at version %d (dirty=%v)", v, dirty)
	return nil
}
