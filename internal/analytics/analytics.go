package analytics

import (
	"context"
	"encoding/json"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"task-tracker-backend/internal/db"
	"task-tracker-backend/internal/logger"
)

const (
	EventTaskCreated   = "task_created"
	EventTaskCompleted = "task_completed"
	EventTaskDeleted   = "task_deleted"
	EventTasksImported = "tasks_imported"
	EventTasksSorted   = "tasks_sorted"
	EventAIAnalyzed    = "ai_analyzed"
)

// Props holds event properties. Never put raw task text, passwords or
// tokens in here; callers pass lengths, ids and labels only.
type Props map[string]any

type Recorder struct {
	pool db.Handle
	qb   sq.StatementBuilderType
}

func NewRecorder(pool db.Handle, d db.Dialect) *Recorder {
	return &Recorder{pool: pool, qb: d.Builder()}
}

// Log appends one event. Failures are logged and swallowed so analytics can
// never break the calling request.
func (r *Recorder) Log(ctx context.Context, userID int, event string, props Props) {
	if r == nil || event == "" || userID == 0 {
		return
	}
	if props == nil {
		props = Props{}
	}

	b, err := json.Marshal(props)
	if err != nil {
		logger.Warn(ctx, "analytics props not encodable", "event", event, "error", err.Error())
		return
	}

	q, args, err := r.qb.Insert("analytics_events").
		Columns("event_name", "user_id", "properties").
		Values(event, userID, string(b)).
		ToSql()
	if err != nil {
		return
	}

	if _, err := db.From(ctx, r.pool).ExecContext(ctx, q, args...); err != nil {
		logger.Warn(ctx, "analytics insert failed", "event", event, "error", err.Error())
	}
}

type Event struct {
	ID         int64  `db:"id" json:"id"`
	Name       string `db:"event_name" json:"event_name"`
	UserID     int    `db:"user_id" json:"user_id"`
	Properties string `db:"properties" json:"properties"`
}

// ForUser returns a user's events, oldest first.
func (r *Recorder) ForUser(ctx context.Context, userID int) ([]Event, error) {
	q, args, err := r.qb.Select("id", "event_name", "user_id", "properties").
		From("analytics_events").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}

	var out []Event
	if err := sqlx.SelectContext(ctx, db.From(ctx, r.pool), &out, q, args...); err != nil {
		return nil, err
	}
	return out, nil
}
