// Package dbtest opens migrated databases for store tests.
package dbtest

import (
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/database"
)

// Opener returns a freshly migrated, empty database that is closed when t ends.
type Opener func(t testing.TB) *database.DB

var backends = map[string]Opener{
	string(database.DriverSQLite): SQLite,
}

// Backends lists the databases available to this build. Postgres joins the
// list when tests are built with the integration tag.
func Backends() map[string]Opener {
	return backends
}

// Names returns the backend names in a stable order.
func Names() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

func SQLite(t testing.TB) *database.DB {
	t.Helper()

	return Open(t, database.DriverSQLite, filepath.Join(t.TempDir(), "tally.db"))
}

// Open migrates dsn and connects to it.
func Open(t testing.TB, driver database.Driver, dsn string) *database.DB {
	t.Helper()

	require.NoError(t, database.Migrate(driver, dsn))

	db, err := database.New(driver, dsn)
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	return db
}
