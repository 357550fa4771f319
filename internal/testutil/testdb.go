package testutil

import (
	"database/sql"
	"testing"

	"github.com/alexanderramin/csrdash/internal/db"
	"github.com/stretchr/testify/require"
)

// NewTestDB opens a migrated in-memory entity store that is closed with the test.
func NewTestDB(t testing.TB) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(db.InMemory)
	require.NoError(t, err, "opening in-memory entity store")
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func NewTestUoW(database *sql.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(database)
}

// CountRows returns the number of rows in table, for asserting cascades.
func CountRows(t testing.TB, database *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, database.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}
