package notification

import (
	"context"
	"errors"
	"sync"

	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

// ErrQueueFull is returned by Async.Handle when every worker is busy and the
// queue is at capacity. The toast is dropped.
var ErrQueueFull = errors.New("notification: delivery queue is full")

// ErrClosed is returned by Async.Handle after Close.
var ErrClosed = errors.New("notification: async handler is closed")

type delivery struct {
	ctx   context.Context
	toast Toast
}

// Async wraps a slow Handler with a bounded pool of delivery goroutines so
// that API calls never wait on it. Handle never blocks.
type Async struct {
	next   Handler
	queue  chan delivery
	wg     sync.WaitGroup
	once   sync.Once
	mu     sync.RWMutex
	closed bool
}

// NewAsync starts workers goroutines draining a queue of the given size.
func NewAsync(next Handler, workers, size int) *Async {
	if workers <= 0 {
		workers = 1
	}
	if size <= 0 {
		size = workers * 2
	}

	a := &Async{
		next:  next,
		queue: make(chan delivery, size),
	}
	for i := 0; i < workers; i++ {
		a.wg.Add(1)
		go a.worker()
	}
	return a
}

// Handle queues t for delivery.
func (a *Async) Handle(ctx context.Context, t Toast) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return ErrClosed
	}

	select {
	case a.queue <- delivery{ctx: context.WithoutCancel(ctx), toast: t}:
		return nil
	default:
		metrics.NotificationsDropped.Inc()
		return ErrQueueFull
	}
}

// Close stops accepting toasts and waits for queued ones to be delivered.
// Safe to call more than once.
func (a *Async) Close() {
	a.once.Do(func() {
		a.mu.Lock()
		a.closed = true
		close(a.queue)
		a.mu.Unlock()
		a.wg.Wait()
	})
}

func (a *Async) worker() {
	defer a.wg.Done()
	for d := range a.queue {
		a.deliver(d)
	}
}

// deliver runs one delivery, recovering from panics so a bad handler does
// not kill the worker.
func (a *Async) deliver(d delivery) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("notification: async handler panicked", "panic", r)
		}
	}()
	if err := a.next.Handle(d.ctx, d.toast); err != nil {
		logger.WithCtx(d.ctx).Error("notification: async delivery failed",
			"operation", d.toast.Operation, "error", err)
	}
}
