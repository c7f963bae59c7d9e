package db

import (
	"context"
	"net/http"

	"github.com/jmoiron/sqlx"

	"task-tracker-backend/internal/httpx"
	"task-tracker-backend/internal/logger"
)

type ctxKey struct{}

// WithHandle stores a request-scoped handle in ctx.
func WithHandle(ctx context.Context, h Handle) context.Context {
	return context.WithValue(ctx, ctxKey{}, h)
}

// From returns the request-scoped handle if one was acquired, else fallback.
func From(ctx context.Context, fallback Handle) Handle {
	if h, ok := ctx.Value(ctxKey{}).(Handle); ok && h != nil {
		return h
	}
	return fallback
}

// Session acquires one connection from the pool for the lifetime of the
// request and releases it once the handler returns.
func Session(dbx *sqlx.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			conn, err := dbx.Connx(r.Context())
			if err != nil {
				logger.Error(r.Context(), err, "acquire db connection")
				httpx.Error(w, http.StatusInternalServerError, "database unavailable")
				return
			}
			defer conn.Close()

			next.ServeHTTP(w, r.WithContext(WithHandle(r.Context(), conn)))
		})
	}
}
