package db

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationFiles embed.FS

// MigrateUp applies every embedded migration for the dialect in file order.
// All statements are idempotent (IF NOT EXISTS), so it is safe on every start.
func MigrateUp(ctx context.Context, dbx *sqlx.DB, d Dialect) error {
	entries, err := fs.Glob(migrationFiles, "migrations/"+string(d)+"/*.up.sql")
	if err != nil {
		return fmt.Errorf("glob migrations: %w", err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("no migrations for dialect %s", d)
	}
	sort.Strings(entries)

	for _, name := range entries {
		raw, readErr := migrationFiles.ReadFile(name)
		if readErr != nil {
			return fmt.Errorf("read migration %s: %w", name, readErr)
		}
		for _, stmt := range splitStatements(string(raw)) {
			if _, execErr := dbx.ExecContext(ctx, stmt); execErr != nil {
				return fmt.Errorf("apply migration %s: %w", name, execErr)
			}
		}
	}
	return nil
}

func splitStatements(script string) []string {
	parts := strings.Split(script, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
