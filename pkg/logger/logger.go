// Package logger provides a structured, levelled logger built on log/slog.
//
// WithCtx returns a logger with the outgoing request ID already attached, so
// every line logged while a client call is in flight is correlated:
//
//	log := logger.WithCtx(ctx)
//	log.Debug("shopapi: request", "op", "FindOrderByID")
//	// → time=... level=DEBUG msg="shopapi: request" request_id=2f1c... op=FindOrderByID
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/reqid"
)

var L *slog.Logger

func init() {
	L = New(config.AppEnv(), config.LogLevel())
	slog.SetDefault(L)
}

// New builds a stdout logger for the given environment and level name.
// Production environments get the JSON handler, everything else text.
func New(env, level string) *slog.Logger {
	return NewWriter(os.Stdout, env, level)
}

// NewWriter is New writing to w.
func NewWriter(w io.Writer, env, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	switch env {
	case "production", "prod":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func parseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ctxKey is the unexported key used to store a per-call *slog.Logger.
type ctxKey struct{}

// WithCtx returns the logger stored in ctx, or the base logger tagged with
// the request ID found in ctx. With neither present the base logger is
// returned unchanged.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return L
	}
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	if id := reqid.FromCtx(ctx); id != "" {
		return L.With("request_id", id)
	}
	return L
}

// InjectLogger stores a *slog.Logger into ctx.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// Debug logs at DEBUG level.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs at INFO level.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs at WARN level.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs at ERROR level.
func Error(msg string, args ...any) { L.Error(msg, args...) }
