package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"task-tracker-backend/internal/ai"
	"task-tracker-backend/internal/config"
	"task-tracker-backend/internal/logger"
	"task-tracker-backend/internal/server"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), flags)
		},
	}
}

func runServe(ctx context.Context, flags *globalFlags) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, d, dbx, err := open(ctx, flags)
	if err != nil {
		return err
	}
	defer dbx.Close()

	if cfg.JWTSecret == config.DefaultJWTSecret {
		logger.Warn(ctx, "using the built-in JWT secret; set JWT_SECRET")
	}
	if cfg.OpenAIKey == "" {
		logger.Warn(ctx, "no LLM API key configured; /ai/analyze will fail")
	}

	handler := server.NewRouter(server.Deps{
		DB:        dbx,
		Dialect:   d,
		JWTSecret: []byte(cfg.JWTSecret),
		TokenTTL:  cfg.TokenTTL(),
		UploadDir: cfg.UploadDir,
		Analyzer: ai.New(ai.Options{
			APIKey:  cfg.OpenAIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		}),
		AIRequireAuth: cfg.AIRequireAuth,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "api listening", "addr", cfg.HTTPAddr, "driver", cfg.DBDriver)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
