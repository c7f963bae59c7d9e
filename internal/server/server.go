package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"task-tracker-backend/internal/ai"
	"task-tracker-backend/internal/analytics"
	"task-tracker-backend/internal/auth"
	"task-tracker-backend/internal/avatars"
	"task-tracker-backend/internal/classify"
	"task-tracker-backend/internal/db"
	"task-tracker-backend/internal/tasks"
)

type Deps struct {
	DB      *sqlx.DB
	Dialect db.Dialect

	JWTSecret []byte
	TokenTTL  time.Duration

	// UploadDir backs /static/avatars/.
	UploadDir string

	Analyzer      ai.Analyzer
	AIRequireAuth bool

	// Classifier defaults to the keyword rules.
	Classifier classify.Classifier
}

func NewRouter(d Deps) http.Handler {
	events := analytics.NewRecorder(d.DB, d.Dialect)

	authSvc := auth.NewService(
		auth.NewStore(d.DB, d.Dialect),
		auth.NewIssuer(d.JWTSecret, d.TokenTTL),
		avatars.NewDiskStorage(d.UploadDir),
	)
	requireAuth := auth.NewMiddleware(authSvc)

	classifier := d.Classifier
	if classifier == nil {
		classifier = classify.Default()
	}
	taskSvc := tasks.NewService(tasks.NewStore(d.DB, d.Dialect), classifier, events)

	r := chi.NewRouter()
	r.Use(middleware.StripSlashes)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)
	r.Use(instrument)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/static/avatars/*", http.StripPrefix("/static/avatars/", fileServer(d.UploadDir)))

	// Must not hold a pooled connection across the remote call.
	analyze := ai.AnalyzeHandler(d.Analyzer, events)
	if d.AIRequireAuth {
		analyze = requireAuth.Wrap(analyze)
	}
	r.Post("/ai/analyze", analyze)

	r.Group(func(r chi.Router) {
		r.Use(db.Session(d.DB))

		r.Post("/register", auth.RegisterHandler(authSvc))
		r.Post("/token", auth.TokenHandler(authSvc))

		r.Group(func(r chi.Router) {
			r.Use(requireAuth.Require)

			r.Get("/users/me", auth.MeHandler())
			r.Post("/upload/avatar", auth.UploadAvatarHandler(authSvc))

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", tasks.ListHandler(taskSvc))
				r.Post("/", tasks.CreateHandler(taskSvc))
				r.Put("/sort", tasks.SortHandler(taskSvc))
				r.Get("/export", tasks.ExportHandler(taskSvc))
				r.Post("/import", tasks.ImportHandler(taskSvc))
				r.Get("/stats", tasks.StatsHandler(taskSvc))
				r.Put("/{id}", tasks.UpdateHandler(taskSvc))
				r.Delete("/{id}", tasks.DeleteHandler(taskSvc))
			})
		})
	})

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(r)
}

// fileServer serves files from dir as passive content, without directory
// listings.
func fileServer(dir string) http.Handler {
	fs := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Content-Security-Policy", "default-src 'none'; sandbox")
		h.Set("Content-Disposition", "inline")
		fs.ServeHTTP(w, r)
	})
}
