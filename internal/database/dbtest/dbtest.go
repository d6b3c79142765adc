// Package dbtest provides a migrated in-memory SQLite database for tests.
package dbtest

import (
	"context"
	"database/sql"
	"testing"

	"github.com/iliyamo/rmdb/internal/database"
)

// New opens a private in-memory database with the catalog schema applied.
// The database is closed when the test finishes.
func New(tb testing.TB) *sql.DB {
	tb.Helper()
	db, err := database.OpenSQLite(":memory:")
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	tb.Cleanup(func() { _ = db.Close() })
	if err := database.Migrate(context.Background(), db); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	return db
}
