package tasks

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"task-tracker-backend/internal/auth"
	"task-tracker-backend/internal/httpx"
	"task-tracker-backend/internal/logger"
)

// body size cap for JSON requests, imports included
const maxBodyBytes = 4 << 20

func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFoundOrForbidden):
		httpx.Error(w, http.StatusNotFound, ErrNotFoundOrForbidden.Error())
	case errors.Is(err, ErrInvalidTask):
		httpx.Error(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error(r.Context(), err, op+" failed")
		httpx.Error(w, http.StatusInternalServerError, "internal error")
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

func taskID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		httpx.Error(w, http.StatusBadRequest, "invalid task id")
		return 0, false
	}
	return id, true
}

func currentUserID(w http.ResponseWriter, r *http.Request) (int, bool) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, auth.ErrUnauthorized.Error())
	}
	return uid, ok
}

func ListHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := currentUserID(w, r)
		if !ok {
			return
		}
		list, err := svc.List(r.Context(), uid)
		if err != nil {
			writeError(w, r, "list tasks", err)
			return
		}
		httpx.JSON(w, http.StatusOK, list)
	}
}

func CreateHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := currentUserID(w, r)
		if !ok {
			return
		}
		var body struct {
			Content  string  `json:"content"`
			Category *string `json:"category"`
		}
		if !decode(w, r, &body) {
			return
		}

		t, err := svc.Create(r.Context(), uid, body.Content, body.Category)
		if err != nil {
			writeError(w, r, "create task", err)
			return
		}
		httpx.JSON(w, http.StatusOK, t)
	}
}

func UpdateHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := currentUserID(w, r)
		if !ok {
			return
		}
		id, ok := taskID(w, r)
		if !ok {
			return
		}
		var p Patch
		if !decode(w, r, &p) {
			return
		}

		t, err := svc.Update(r.Context(), uid, id, p)
		if err != nil {
			writeError(w, r, "update task", err)
			return
		}
		httpx.JSON(w, http.StatusOK, t)
	}
}

func DeleteHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := currentUserID(w, r)
		if !ok {
			return
		}
		id, ok := taskID(w, r)
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), uid, id); err != nil {
			writeError(w, r, "delete task", err)
			return
		}
		httpx.Msg(w, "task deleted")
	}
}

func SortHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := currentUserID(w, r)
		if !ok {
			return
		}
		var items []SortItem
		if !decode(w, r, &items) {
			return
		}

		if err := svc.Reorder(r.Context(), uid, items); err != nil {
			writeError(w, r, "reorder tasks", err)
			return
		}
		httpx.Msg(w, "order updated")
	}
}

func ExportHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := currentUserID(w, r)
		if !ok {
			return
		}
		exp, err := svc.Export(r.Context(), uid)
		if err != nil {
			writeError(w, r, "export tasks", err)
			return
		}
		httpx.JSON(w, http.StatusOK, exp)
	}
}

// ImportHandler accepts either a bare array of tasks or an export document
// ({"tasks": [...]}).
func ImportHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := currentUserID(w, r)
		if !ok {
			return
		}
		raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, "request body too large")
			return
		}

		drafts, err := parseImport(raw)
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		n, err := svc.Import(r.Context(), uid, drafts)
		if err != nil {
			writeError(w, r, "import tasks", err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{
			"msg":      "tasks imported",
			"imported": n,
		})
	}
}

func parseImport(raw []byte) ([]Draft, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var drafts []Draft
		if err := json.Unmarshal(trimmed, &drafts); err != nil {
			return nil, err
		}
		return drafts, nil
	}

	var doc struct {
		Tasks []Draft `json:"tasks"`
	}
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, err
	}
	return doc.Tasks, nil
}

func StatsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := currentUserID(w, r)
		if !ok {
			return
		}
		st, err := svc.Stats(r.Context(), uid)
		if err != nil {
			writeError(w, r, "task stats", err)
			return
		}
		httpx.JSON(w, http.StatusOK, st)
	}
}
