package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrate brings the schema up to date. It opens its own connection because
// the migrate drivers close the handle they are given.
func Migrate(driver Driver, dsn string) error {
	var (
		sqlDriver string
		source    string
	)

	switch driver {
	case DriverPostgres:
		sqlDriver, source = "pgx", "migrations/postgres"
	case DriverSQLite:
		if err := ensureDir(dsn); err != nil {
			return err
		}

		sqlDriver, source = "sqlite", "migrations/sqlite"
	default:
		return fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return fmt.Errorf("opening migration database: %w", err)
	}
	defer db.Close()

	var instance migratedb.Driver

	switch driver {
	case DriverPostgres:
		instance, err = migratepgx.WithInstance(db, &migratepgx.Config{})
	case DriverSQLite:
		instance, err = migratesqlite.WithInstance(db, &migratesqlite.Config{})
	}

	if err != nil {
		return fmt.Errorf("creating %s migration driver: %w", driver, err)
	}

	src, err := iofs.New(migrationsFS, source)
	if err != nil {
		return fmt.Errorf("creating iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, string(driver), instance)
	if err != nil {
		return fmt.Errorf("creating migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}

	return nil
}
