package analytics

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"task-tracker-backend/internal/db"
	"task-tracker-backend/internal/db/dbtest"
	"task-tracker-backend/internal/logger"
)

func TestLogPersistsEvent(t *testing.T) {
	dbx := dbtest.Open(t)
	uid := dbtest.SeedUser(t, dbx, "ann")
	r := NewRecorder(dbx, db.SQLite)
	ctx := context.Background()

	r.Log(ctx, uid, EventTaskCreated, Props{"category": "study", "content_len": 12})
	r.Log(ctx, uid, EventTaskDeleted, nil)

	events, err := r.ForUser(ctx, uid)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, EventTaskCreated, events[0].Name)
	require.JSONEq(t, `{"category":"study","content_len":12}`, events[0].Properties)
	require.JSONEq(t, `{}`, events[1].Properties)
}

func TestLogSkipsAnonymous(t *testing.T) {
	dbx := dbtest.Open(t)
	r := NewRecorder(dbx, db.SQLite)

	r.Log(context.Background(), 0, EventAIAnalyzed, nil)

	var n int
	require.NoError(t, dbx.Get(&n, `SELECT COUNT(*) FROM analytics_events`))
	require.Zero(t, n)
}

func TestLogSwallowsFailures(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })

	mock.ExpectExec("INSERT INTO analytics_events").
		WithArgs(EventTaskCreated, 1, `{"category":"daily"}`).
		WillReturnError(errors.New("relation does not exist"))

	r := NewRecorder(sqlx.NewDb(mockDB, "postgres"), db.Postgres)
	require.NotPanics(t, func() {
		r.Log(context.Background(), 1, EventTaskCreated, Props{"category": "daily"})
	})
	require.NoError(t, mock.ExpectationsWereMet())
	require.Contains(t, buf.String(), "analytics insert failed")
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	require.NotPanics(t, func() { r.Log(context.Background(), 1, EventTaskCreated, nil) })
}
