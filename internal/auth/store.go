package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"task-tracker-backend/internal/db"
)

type User struct {
	ID             int    `db:"id" json:"id"`
	Username       string `db:"username" json:"username"`
	HashedPassword string `db:"hashed_password" json:"-"`
	AvatarURL      string `db:"avatar_url" json:"avatar_url"`
}

// Store persists users. Queries run on the request-scoped handle when one
// is present in the context.
type Store struct {
	pool db.Handle
	qb   sq.StatementBuilderType
}

func NewStore(pool db.Handle, d db.Dialect) *Store {
	return &Store{pool: pool, qb: d.Builder()}
}

func (s *Store) Create(ctx context.Context, username, hashedPassword string) (User, error) {
	q, args, err := s.qb.Insert("users").
		Columns("username", "hashed_password", "avatar_url").
		Values(username, hashedPassword, "").
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return User{}, err
	}

	u := User{Username: username, HashedPassword: hashedPassword}
	if err := db.From(ctx, s.pool).QueryRowxContext(ctx, q, args...).Scan(&u.ID); err != nil {
		if db.IsUniqueViolation(err) {
			return User{}, ErrDuplicateUser
		}
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (s *Store) ByUsername(ctx context.Context, username string) (User, error) {
	q, args, err := s.qb.Select("id", "username", "hashed_password", "avatar_url").
		From("users").
		Where(sq.Eq{"username": username}).
		ToSql()
	if err != nil {
		return User{}, err
	}

	var u User
	if err := sqlx.GetContext(ctx, db.From(ctx, s.pool), &u, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, errUserNotFound
		}
		return User{}, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

func (s *Store) SetAvatarURL(ctx context.Context, userID int, url string) error {
	q, args, err := s.qb.Update("users").
		Set("avatar_url", url).
		Where(sq.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := db.From(ctx, s.pool).ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update avatar: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errUserNotFound
	}
	return nil
}
