// Package notification carries the success/failure signal of every storefront
// API call to whatever displays it: logs, a webhook, or a Redis channel a UI
// subscribes to.
//
// The API client only sees a Sink:
//
//	sink := notification.New(
//	    notification.LogHandler{},
//	    notification.NewAsync(notification.NewWebhookHandler(url), 2, 64),
//	)
//	client, _ := shopapi.New(cfg, shopapi.WithSink(sink))
//
// Sinks are fire-and-forget: Success and Failure never return an error and
// never block on slow delivery when the slow handler is wrapped in Async.
package notification

import (
	"context"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/reqid"
)

// Level is the outcome a toast reports.
type Level string

const (
	LevelSuccess Level = "success"
	LevelFailure Level = "failure"
)

// Toast is one user-facing notification.
type Toast struct {
	Level     Level     `json:"level"`
	Operation string    `json:"operation"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id,omitempty"`
	At        time.Time `json:"at"`
}

// Sink receives the outcome of API calls.
type Sink interface {
	Success(ctx context.Context, operation, message string)
	Failure(ctx context.Context, operation, message string)
}

// Handler delivers a toast over one channel.
type Handler interface {
	Handle(ctx context.Context, t Toast) error
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, t Toast) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, t Toast) error { return f(ctx, t) }

// Notifier is the Sink that fans a toast out to every handler.
// A failing or panicking handler is logged and does not stop the others.
type Notifier struct {
	handlers []Handler
	now      func() time.Time
}

// New returns a Notifier dispatching to handlers in order.
func New(handlers ...Handler) *Notifier {
	return &Notifier{handlers: handlers, now: time.Now}
}

// Success emits a success toast.
func (n *Notifier) Success(ctx context.Context, operation, message string) {
	n.emit(ctx, LevelSuccess, operation, message)
}

// Failure emits a failure toast.
func (n *Notifier) Failure(ctx context.Context, operation, message string) {
	n.emit(ctx, LevelFailure, operation, message)
}

func (n *Notifier) emit(ctx context.Context, level Level, operation, message string) {
	t := Toast{
		Level:     level,
		Operation: operation,
		Message:   message,
		RequestID: reqid.FromCtx(ctx),
		At:        n.now(),
	}
	metrics.RecordNotification(string(level))

	for _, h := range n.handlers {
		deliver(ctx, h, t)
	}
}

// deliver runs one handler. Errors and panics are logged and stay here.
func deliver(ctx context.Context, h Handler, t Toast) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithCtx(ctx).Error("notification: handler panicked",
				"operation", t.Operation, "level", t.Level, "panic", r)
		}
	}()
	if err := h.Handle(ctx, t); err != nil {
		logger.WithCtx(ctx).Error("notification: handler failed",
			"operation", t.Operation, "level", t.Level, "error", err)
	}
}

// Discard is a Sink that drops everything.
var Discard Sink = discard{}

type discard struct{}

func (discard) Success(context.Context, string, string) {}
func (discard) Failure(context.Context, string, string) {}

// LogHandler writes toasts to the structured logger: successes at info,
// failures at error.
type LogHandler struct{}

// Handle logs t.
func (LogHandler) Handle(ctx context.Context, t Toast) error {
	log := logger.WithCtx(ctx)
	if t.Level == LevelFailure {
		log.Error("api call failed", "operation", t.Operation, "message", t.Message)
		return nil
	}
	log.Info("api call succeeded", "operation", t.Operation, "message", t.Message)
	return nil
}
