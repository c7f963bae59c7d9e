package ai

import (
	"encoding/json"
	"errors"
	"net/http"

	"task-tracker-backend/internal/analytics"
	"task-tracker-backend/internal/auth"
	"task-tracker-backend/internal/httpx"
	"task-tracker-backend/internal/logger"
)

func AnalyzeHandler(an Analyzer, events *analytics.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&body); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		d, err := an.Analyze(r.Context(), body.Text)
		switch {
		case err == nil:
		case errors.Is(err, ErrEmptyInput):
			httpx.Error(w, http.StatusBadRequest, err.Error())
			return
		case errors.Is(err, ErrAnalysisFailed):
			httpx.Error(w, http.StatusInternalServerError, ErrAnalysisFailed.Error())
			return
		default:
			logger.Error(r.Context(), err, "ai analyze")
			httpx.Error(w, http.StatusInternalServerError, ErrAnalysisFailed.Error())
			return
		}

		if uid, ok := auth.UserIDFromContext(r.Context()); ok {
			events.Log(r.Context(), uid, analytics.EventAIAnalyzed, analytics.Props{
				"priority":     d.Priority,
				"has_due_date": d.DueDate != nil,
				"unrecognized": d.Title == Unrecognized,
			})
		}
		httpx.JSON(w, http.StatusOK, d)
	}
}
