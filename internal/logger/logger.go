package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
)

type Level = slog.Level

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

var (
	mu    sync.RWMutex
	level = new(slog.LevelVar)
	base  = newLogger(os.Stderr)
)

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func SetLevel(l Level) {
	level.Set(l)
}

// SetOutput redirects all log lines to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	base = newLogger(w)
}

func get() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

type ctxKey struct{}

// WithFields returns a context whose log lines carry the given key/value pairs.
func WithFields(ctx context.Context, kv ...any) context.Context {
	prev, _ := ctx.Value(ctxKey{}).([]any)
	fields := make([]any, 0, len(prev)+len(kv))
	fields = append(fields, prev...)
	fields = append(fields, kv...)
	return context.WithValue(ctx, ctxKey{}, fields)
}

func fieldsFrom(ctx context.Context, kv []any) []any {
	if ctx == nil {
		return kv
	}
	prev, _ := ctx.Value(ctxKey{}).([]any)
	if len(prev) == 0 {
		return kv
	}
	return append(append([]any{}, prev...), kv...)
}

func Debug(ctx context.Context, msg string, kv ...any) {
	get().Log(ctx, LevelDebug, msg, fieldsFrom(ctx, kv)...)
}

func Info(ctx context.Context, msg string, kv ...any) {
	get().Log(ctx, LevelInfo, msg, fieldsFrom(ctx, kv)...)
}

func Warn(ctx context.Context, msg string, kv ...any) {
	get().Log(ctx, LevelWarn, msg, fieldsFrom(ctx, kv)...)
}

// Error logs msg at error level; err may be nil.
func Error(ctx context.Context, err error, msg string, kv ...any) {
	fields := fieldsFrom(ctx, kv)
	if err != nil {
		fields = append(fields, "error", err.Error())
	}
	get().Log(ctx, LevelError, msg, fields...)
}
