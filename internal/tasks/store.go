package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"task-tracker-backend/internal/db"
)

var columns = []string{"id", "content", "is_done", "category", "sort_order", "owner_id"}

const returning = "RETURNING id, content, is_done, category, sort_order, owner_id"

// Store persists tasks. Every statement is scoped by owner_id.
type Store struct {
	pool db.Handle
	qb   sq.StatementBuilderType
}

func NewStore(pool db.Handle, d db.Dialect) *Store {
	return &Store{pool: pool, qb: d.Builder()}
}

func (s *Store) ListForOwner(ctx context.Context, ownerID int) ([]Task, error) {
	q, args, err := s.qb.Select(columns...).
		From("tasks").
		Where(sq.Eq{"owner_id": ownerID}).
		OrderBy("sort_order", "id").
		ToSql()
	if err != nil {
		return nil, err
	}

	out := make([]Task, 0)
	if err := sqlx.SelectContext(ctx, db.From(ctx, s.pool), &out, q, args...); err != nil {
		return nil, fmt.Errorf("select tasks: %w", err)
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, ownerID, id int) (Task, error) {
	q, args, err := s.qb.Select(columns...).
		From("tasks").
		Where(sq.Eq{"id": id, "owner_id": ownerID}).
		ToSql()
	if err != nil {
		return Task{}, err
	}

	var t Task
	if err := sqlx.GetContext(ctx, db.From(ctx, s.pool), &t, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Task{}, ErrNotFoundOrForbidden
		}
		return Task{}, fmt.Errorf("select task: %w", err)
	}
	return t, nil
}

// Create appends a task to the end of the owner's list. Category must
// already be resolved.
func (s *Store) Create(ctx context.Context, ownerID int, content, category string, done bool) (Task, error) {
	return s.insert(ctx, db.From(ctx, s.pool), ownerID, content, category, done)
}

func (s *Store) insert(ctx context.Context, r db.Runner, ownerID int, content, category string, done bool) (Task, error) {
	q, args, err := s.qb.Insert("tasks").
		Columns("content", "is_done", "category", "sort_order", "owner_id").
		Values(
			content, done, category,
			sq.Expr("(SELECT COALESCE(MAX(sort_order), 0) + 1 FROM tasks WHERE owner_id = ?)", ownerID),
			ownerID,
		).
		Suffix(returning).
		ToSql()
	if err != nil {
		return Task{}, err
	}

	var t Task
	if err := r.QueryRowxContext(ctx, q, args...).StructScan(&t); err != nil {
		return Task{}, fmt.Errorf("insert task: %w", err)
	}
	return t, nil
}

// CreateMany inserts all drafts in one transaction. Categories must already
// be resolved.
func (s *Store) CreateMany(ctx context.Context, ownerID int, drafts []Draft) (int, error) {
	err := db.InTx(ctx, db.From(ctx, s.pool), func(tx *sqlx.Tx) error {
		for _, d := range drafts {
			if _, err := s.insert(ctx, tx, ownerID, d.Content, *d.Category, d.IsDone); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(drafts), nil
}

func (s *Store) Update(ctx context.Context, ownerID, id int, p Patch) (Task, error) {
	if p.empty() {
		return s.Get(ctx, ownerID, id)
	}

	ub := s.qb.Update("tasks")
	if p.IsDone != nil {
		ub = ub.Set("is_done", *p.IsDone)
	}
	if p.Content != nil {
		ub = ub.Set("content", *p.Content)
	}
	if p.Category != nil {
		ub = ub.Set("category", *p.Category)
	}

	q, args, err := ub.Where(sq.Eq{"id": id, "owner_id": ownerID}).Suffix(returning).ToSql()
	if err != nil {
		return Task{}, err
	}

	var t Task
	if err := db.From(ctx, s.pool).QueryRowxContext(ctx, q, args...).StructScan(&t); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Task{}, ErrNotFoundOrForbidden
		}
		return Task{}, fmt.Errorf("update task: %w", err)
	}
	return t, nil
}

func (s *Store) Delete(ctx context.Context, ownerID, id int) error {
	q, args, err := s.qb.Delete("tasks").
		Where(sq.Eq{"id": id, "owner_id": ownerID}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := db.From(ctx, s.pool).ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFoundOrForbidden
	}
	return nil
}

// Reorder sets every sort order or none: one foreign id rolls back the batch.
func (s *Store) Reorder(ctx context.Context, ownerID int, items []SortItem) error {
	return db.InTx(ctx, db.From(ctx, s.pool), func(tx *sqlx.Tx) error {
		for _, it := range items {
			q, args, err := s.qb.Update("tasks").
				Set("sort_order", it.SortOrder).
				Where(sq.Eq{"id": it.ID, "owner_id": ownerID}).
				ToSql()
			if err != nil {
				return err
			}

			res, err := tx.ExecContext(ctx, q, args...)
			if err != nil {
				return fmt.Errorf("reorder task %d: %w", it.ID, err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return fmt.Errorf("reorder task %d: %w", it.ID, ErrNotFoundOrForbidden)
			}
		}
		return nil
	})
}

type categoryCount struct {
	Category string `db:"category"`
	Total    int    `db:"total"`
	Done     int    `db:"done"`
}

func (s *Store) countByCategory(ctx context.Context, ownerID int) ([]categoryCount, error) {
	q, args, err := s.qb.Select(
		"category",
		"COUNT(*) AS total",
		"COALESCE(SUM(CASE WHEN is_done THEN 1 ELSE 0 END), 0) AS done",
	).
		From("tasks").
		Where(sq.Eq{"owner_id": ownerID}).
		GroupBy("category").
		OrderBy("category").
		ToSql()
	if err != nil {
		return nil, err
	}

	var out []categoryCount
	if err := sqlx.SelectContext(ctx, db.From(ctx, s.pool), &out, q, args...); err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}
	return out, nil
}
