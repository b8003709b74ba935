// Package repository is the storage layer: schema migrations, upsert-based
// writes with idempotence, and the raw query primitives the pattern engine
// builds on. It targets PostgreSQL/TimescaleDB in production; a sqlite3
// driver is wired for fast local tests against the same query surface
// (see migrations/sqlite3).
package repository

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/qustavo/sqlhooks/v2"

	"github.com/lukeswitz/wardragon-analytics/pkg/log"
)

const (
	maxOpenConns    = 30 // 10 base + 20 overflow, per the resource budget
	maxIdleConns    = 10
	connMaxLifetime = time.Hour
)

var (
	registerOnce sync.Once
)

// DB wraps the connection pool and remembers which SQL dialect it speaks,
// since squirrel needs to know whether to emit "$1" or "?" placeholders.
type DB struct {
	*sqlx.DB
	Driver string
}

func registerDrivers() {
	registerOnce.Do(func() {
		sql.Register("postgresWithHooks", sqlhooks.Wrap(&pq.Driver{}, &Hooks{}))
		sql.Register("sqlite3WithHooks", sqlhooks.Wrap(&sqlite3.SQLiteDriver{}, &Hooks{}))
	})
}

// Connect opens a pool against driver ("postgres" or "sqlite3") and dsn,
// tuned per the resource ceilings: a bounded pool, pre-pinged before use,
// recycled hourly so a long-lived connection never outlives a server-side
// failover.
func Connect(driver, dsn string) (*DB, error) {
	registerDrivers()

	var handle *sqlx.DB
	var err error

	switch driver {
	case "postgres":
		handle, err = sqlx.Open("postgresWithHooks", dsn)
		if err != nil {
			return nil, fmt.Errorf("repository: opening postgres: %w", err)
		}
		handle.SetMaxOpenConns(maxOpenConns)
		handle.SetMaxIdleConns(maxIdleConns)
		handle.SetConnMaxLifetime(connMaxLifetime)
	case "sqlite3":
		handle, err = sqlx.Open("sqlite3WithHooks", fmt.Sprintf("%s?_foreign_keys=on", dsn))
		if err != nil {
			return nil, fmt.Errorf("repository: opening sqlite3: %w", err)
		}
		// sqlite does not multiplex writers; one connection avoids lock
		// contention between goroutines.
		handle.SetMaxOpenConns(1)
	default:
		return nil, fmt.Errorf("repository: unsupported driver %q", driver)
	}

	if err := handle.Ping(); err != nil {
		return nil, fmt.Errorf("repository: pre-ping failed: %w", err)
	}

	log.Infof("repository: connected via %s driver", driver)
	return &DB{DB: handle, Driver: driver}, nil
}

// Placeholder returns the squirrel placeholder format for this dialect, so
// every query builder in this package renders "$1"-style params for
// postgres and "?"-style for the sqlite3 test backend.
func (db *DB) Placeholder() sq.PlaceholderFormat {
	if db.Driver == "postgres" {
		return sq.Dollar
	}
	return sq.Question
}

// StatementBuilder returns a squirrel StatementBuilderType pre-configured
// with this connection's placeholder format and RunWith(db), so callers
// write sq-free of dialect concerns.
func (db *DB) StatementBuilder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(db.Placeholder()).RunWith(db.DB)
}
