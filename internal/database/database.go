package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Driver names a supported SQL backend.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

// DB is a *sql.DB that knows which dialect it speaks. Queries are written with
// "?" placeholders and passed through Rebind.
type DB struct {
	*sql.DB
	driver Driver
}

func New(driver Driver, dsn string) (*DB, error) {
	var (
		db  *sql.DB
		err error
	)

	switch driver {
	case DriverPostgres:
		db, err = sql.Open("pgx", dsn)
	case DriverSQLite:
		if err := ensureDir(dsn); err != nil {
			return nil, err
		}

		db, err = sql.Open("sqlite", dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if driver == DriverSQLite {
		// SQLite allows a single writer; one connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	return &DB{DB: db, driver: driver}, nil
}

func ensureDir(dsn string) error {
	path, _, _ := strings.Cut(strings.TrimPrefix(dsn, "file:"), "?")
	if path == "" || path == ":memory:" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}

	return nil
}

func (db *DB) Driver() Driver { return db.driver }

// Rebind rewrites "?" placeholders into the dialect's bind syntax.
func (db *DB) Rebind(query string) string {
	if db.driver != DriverPostgres {
		return query
	}

	var sb strings.Builder

	n := 0

	for _, r := range query {
		if r != '?' {
			sb.WriteRune(r)
			continue
		}

		n++
		sb.WriteByte('$')
		sb.WriteString(strconv.Itoa(n))
	}

	return sb.String()
}

// ForUpdate returns the row locking clause for a SELECT inside a transaction.
// SQLite locks the whole database on write and has no such clause.
func (db *DB) ForUpdate() string {
	if db.driver == DriverPostgres {
		return " FOR UPDATE"
	}

	return ""
}

// WithTx runs fn inside a database transaction, committing on success.
func (db *DB) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}
