package auth

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"task-tracker-backend/internal/db"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return NewStore(sqlx.NewDb(mockDB, "postgres"), db.Postgres), mock
}

func TestStoreCreatePostgres(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		`INSERT INTO users (username,hashed_password,avatar_url) VALUES ($1,$2,$3) RETURNING id`,
	)).WithArgs("ann", "hash", "").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	u, err := s.Create(context.Background(), "ann", "hash")
	require.NoError(t, err)
	require.Equal(t, 42, u.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreCreatePostgresDuplicate(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_username_key"})

	_, err := s.Create(context.Background(), "ann", "hash")
	require.ErrorIs(t, err, ErrDuplicateUser)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreByUsernameNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, username, hashed_password, avatar_url FROM users WHERE username = $1`,
	)).WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "hashed_password", "avatar_url"}))

	_, err := s.ByUsername(context.Background(), "ghost")
	require.ErrorIs(t, err, errUserNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreSetAvatarURL(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET avatar_url = $1 WHERE id = $2`)).
		WithArgs("/static/avatars/avatar_1.png", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.SetAvatarURL(context.Background(), 1, "/static/avatars/avatar_1.png"))
	require.NoError(t, mock.ExpectationsWereMet())
}
