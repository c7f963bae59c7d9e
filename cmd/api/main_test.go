package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestMigrateCommand(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "app.db")
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("db_driver: sqlite\nsqlite_path: "+dbPath+"\n"), 0o600))

	for _, k := range []string{"DB_DRIVER", "SQLITE_PATH", "JWT_SECRET", "TOKEN_TTL_MINUTES"} {
		t.Setenv(k, "")
	}

	cmd := newRootCmd()
	cmd.SetArgs([]string{"migrate", "--config", cfgPath, "--log-level", "warn"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	dbx, err := sqlx.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer dbx.Close()

	var n int
	require.NoError(t, dbx.Get(&n, `SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('users','tasks','analytics_events')`))
	require.Equal(t, 3, n)
}

func TestInvalidLogLevel(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"migrate", "--log-level", "loud"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	require.Error(t, cmd.ExecuteContext(context.Background()))
}
