package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect selects placeholder style and migrations for a driver.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

func ParseDialect(driver string) (Dialect, error) {
	switch driver {
	case string(Postgres):
		return Postgres, nil
	case string(SQLite):
		return SQLite, nil
	}
	return "", fmt.Errorf("db: unsupported driver %q", driver)
}

// Builder returns a squirrel statement builder with the dialect's placeholders.
func (d Dialect) Builder() sq.StatementBuilderType {
	if d == Postgres {
		return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

func Connect(ctx context.Context, d Dialect, connString string) (*sqlx.DB, error) {
	dbx, err := sqlx.Open(string(d), connString)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d, err)
	}

	if err := dbx.PingContext(ctx); err != nil {
		_ = dbx.Close()
		return nil, fmt.Errorf("ping %s: %w", d, err)
	}

	return dbx, nil
}

// Runner is what store queries run against: the pool, a request-scoped
// connection or a transaction.
type Runner interface {
	sqlx.QueryerContext
	sqlx.ExecerContext
}

// Handle is a Runner that can also open a transaction.
type Handle interface {
	Runner
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// InTx runs fn inside a transaction opened on h. The transaction is rolled
// back when fn returns an error.
func InTx(ctx context.Context, h Handle, fn func(tx *sqlx.Tx) error) error {
	tx, err := h.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// IsUniqueViolation reports whether err is a unique-constraint failure from
// either supported driver.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
