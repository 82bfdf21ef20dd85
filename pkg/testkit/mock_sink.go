package testkit

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/shashiranjanraj/storefront/pkg/notification"
)

// ─── MockSink — testify-backed notification.Sink ─────────────────────────────

// MockSink is a notification.Sink backed by testify/mock, for tests that
// want exact call expectations:
//
//	sink := testkit.NewMockSink()
//	sink.On("Failure", mock.Anything, "Login", "bad password").Once()
//	// ... run test ...
//	sink.AssertExpectations(t)
//
// Calls without a matching expectation panic, as usual for testify mocks.
type MockSink struct {
	mock.Mock
}

// NewMockSink returns a MockSink with no expectations.
func NewMockSink() *MockSink { return &MockSink{} }

func (m *MockSink) Success(ctx context.Context, op, msg string) {
	m.Called(ctx, op, msg)
}

func (m *MockSink) Failure(ctx context.Context, op, msg string) {
	m.Called(ctx, op, msg)
}

// ─── RecordingSink ────────────────────────────────────────────────────────────

// Toast is one recorded notification.
type Toast struct {
	Level     notification.Level
	Operation string
	Message   string
}

// RecordingSink keeps every toast it receives. Safe for concurrent use.
type RecordingSink struct {
	mu     sync.Mutex
	toasts []Toast
}

// NewRecordingSink returns an empty RecordingSink.
func NewRecordingSink() *RecordingSink { return &RecordingSink{} }

func (r *RecordingSink) Success(_ context.Context, op, msg string) {
	r.add(Toast{Level: notification.LevelSuccess, Operation: op, Message: msg})
}

func (r *RecordingSink) Failure(_ context.Context, op, msg string) {
	r.add(Toast{Level: notification.LevelFailure, Operation: op, Message: msg})
}

func (r *RecordingSink) add(t Toast) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, t)
}

// All returns every toast in arrival order.
func (r *RecordingSink) All() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Toast(nil), r.toasts...)
}

// Successes returns the success toasts.
func (r *RecordingSink) Successes() []Toast { return r.filter(notification.LevelSuccess) }

// Failures returns the failure toasts.
func (r *RecordingSink) Failures() []Toast { return r.filter(notification.LevelFailure) }

// Reset forgets everything recorded so far.
func (r *RecordingSink) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = nil
}

func (r *RecordingSink) filter(level notification.Level) []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Toast
	for _, t := range r.toasts {
		if t.Level == level {
			out = append(out, t)
		}
	}
	return out
}
