// Package dbtest opens throwaway migrated SQLite databases for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"task-tracker-backend/internal/db"
)

func Open(t testing.TB) *sqlx.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "app.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	dbx, err := db.Connect(context.Background(), db.SQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbx.Close() })

	require.NoError(t, db.MigrateUp(context.Background(), dbx, db.SQLite))
	return dbx
}

// SeedUser inserts a user row directly and returns its id.
func SeedUser(t testing.TB, dbx *sqlx.DB, username string) int {
	t.Helper()

	var id int
	err := dbx.QueryRowx(
		`INSERT INTO users (username, hashed_password) VALUES (?, 'x') RETURNING id`, username,
	).Scan(&id)
	require.NoError(t, err)
	return id
}
