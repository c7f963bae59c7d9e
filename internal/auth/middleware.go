package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"task-tracker-backend/internal/httpx"
	"task-tracker-backend/internal/logger"
)

type ctxKey struct{}

type Middleware struct {
	svc *Service
}

func NewMiddleware(svc *Service) Middleware {
	return Middleware{svc: svc}
}

// Require rejects requests without a valid bearer token and stores the
// authenticated user in the request context.
func (m Middleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := m.svc.Authenticate(r.Context(), bearerToken(r))
		if err != nil {
			if !errors.Is(err, ErrUnauthorized) {
				logger.Error(r.Context(), err, "authenticate")
				httpx.Error(w, http.StatusInternalServerError, "internal error")
				return
			}
			w.Header().Set("WWW-Authenticate", "Bearer")
			httpx.Error(w, http.StatusUnauthorized, ErrUnauthorized.Error())
			return
		}

		ctx := WithUser(r.Context(), u)
		ctx = logger.WithFields(ctx, "user_id", u.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Wrap is Require for a single handler func.
func (m Middleware) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return m.Require(next).ServeHTTP
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

func CurrentUser(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(ctxKey{}).(User)
	return u, ok
}

func UserIDFromContext(ctx context.Context) (int, bool) {
	u, ok := CurrentUser(ctx)
	return u.ID, ok
}
