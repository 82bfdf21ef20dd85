package notification_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/pkg/notification"
	"github.com/shashiranjanraj/storefront/pkg/reqid"
)

type collect struct {
	mu     sync.Mutex
	toasts []notification.Toast
}

func (c *collect) Handle(_ context.Context, t notification.Toast) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.toasts = append(c.toasts, t)
	return nil
}

func (c *collect) all() []notification.Toast {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]notification.Toast(nil), c.toasts...)
}

func TestNotifier_FansOutAndSurvivesFailingHandler(t *testing.T) {
	first := &collect{}
	second := &collect{}
	failing := notification.HandlerFunc(func(context.Context, notification.Toast) error {
		return errors.New("boom")
	})

	n := notification.New(first, failing, second)
	ctx := reqid.WithValue(context.Background(), "rid-9")
	n.Success(ctx, "AddOrder", "order added")
	n.Failure(ctx, "DeleteOrder", "gone")

	for _, c := range []*collect{first, second} {
		got := c.all()
		require.Len(t, got, 2)
		assert.Equal(t, notification.LevelSuccess, got[0].Level)
		assert.Equal(t, "AddOrder", got[0].Operation)
		assert.Equal(t, "order added", got[0].Message)
		assert.Equal(t, "rid-9", got[0].RequestID)
		assert.Equal(t, notification.LevelFailure, got[1].Level)
		assert.Equal(t, "gone", got[1].Message)
	}
}

func TestNotifier_SurvivesPanickingHandler(t *testing.T) {
	after := &collect{}
	panicking := notification.HandlerFunc(func(context.Context, notification.Toast) error {
		panic("handler boom")
	})

	n := notification.New(panicking, after)
	assert.NotPanics(t, func() {
		n.Success(context.Background(), "MarkOrderAsShipped", "order shipped")
	})
	require.Len(t, after.all(), 1)
	assert.Equal(t, "order shipped", after.all()[0].Message)
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() {
		notification.Discard.Success(context.Background(), "x", "y")
		notification.Discard.Failure(context.Background(), "x", "y")
	})
}

func TestLogHandler(t *testing.T) {
	h := notification.LogHandler{}
	assert.NoError(t, h.Handle(context.Background(), notification.Toast{Level: notification.LevelFailure, Operation: "Login"}))
	assert.NoError(t, h.Handle(context.Background(), notification.Toast{Level: notification.LevelSuccess, Operation: "Login"}))
}

func TestWebhookHandler(t *testing.T) {
	var got notification.Toast
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "secret", r.Header.Get("X-Token"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	h := notification.NewWebhookHandler(srv.URL)
	h.Headers = map[string]string{"X-Token": "secret"}

	err := h.Handle(context.Background(), notification.Toast{Level: notification.LevelSuccess, Operation: "ToggleProductLike", Message: "liked"})
	require.NoError(t, err)
	assert.Equal(t, "liked", got.Message)
}

func TestWebhookHandler_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := notification.NewWebhookHandler(srv.URL).Handle(context.Background(), notification.Toast{})
	assert.Error(t, err)
	assert.Error(t, notification.NewWebhookHandler("").Handle(context.Background(), notification.Toast{}))
}

type fakePublisher struct {
	channel string
	payload []byte
	err     error
}

func (f *fakePublisher) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	f.channel = channel
	f.payload, _ = message.([]byte)
	cmd := redis.NewIntCmd(ctx, "publish", channel, message)
	if f.err != nil {
		cmd.SetErr(f.err)
	} else {
		cmd.SetVal(1)
	}
	return cmd
}

func TestRedisHandler(t *testing.T) {
	pub := &fakePublisher{}
	h := notification.NewRedisHandler(pub, "storefront:toasts")

	require.NoError(t, h.Handle(context.Background(), notification.Toast{Level: notification.LevelFailure, Operation: "Login", Message: "bad password"}))
	assert.Equal(t, "storefront:toasts", pub.channel)

	var got notification.Toast
	require.NoError(t, json.Unmarshal(pub.payload, &got))
	assert.Equal(t, "bad password", got.Message)

	pub.err = errors.New("connection refused")
	assert.Error(t, h.Handle(context.Background(), notification.Toast{}))
}

func TestAsync_DeliversQueuedToasts(t *testing.T) {
	sink := &collect{}
	a := notification.NewAsync(sink, 2, 16)

	for i := 0; i < 10; i++ {
		require.NoError(t, a.Handle(context.Background(), notification.Toast{Operation: "AddOrder"}))
	}
	a.Close()

	assert.Len(t, sink.all(), 10)
	assert.ErrorIs(t, a.Handle(context.Background(), notification.Toast{}), notification.ErrClosed)
}

func TestAsync_DropsWhenFull(t *testing.T) {
	block := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	var handled atomic.Int32

	slow := notification.HandlerFunc(func(context.Context, notification.Toast) error {
		once.Do(func() { close(started) })
		<-block
		handled.Add(1)
		return nil
	})

	a := notification.NewAsync(slow, 1, 1)
	require.NoError(t, a.Handle(context.Background(), notification.Toast{}))
	<-started

	require.NoError(t, a.Handle(context.Background(), notification.Toast{}))
	assert.ErrorIs(t, a.Handle(context.Background(), notification.Toast{}), notification.ErrQueueFull)

	close(block)
	a.Close()
	assert.Equal(t, int32(2), handled.Load())
}

func TestAsync_SurvivesPanickingHandler(t *testing.T) {
	var calls atomic.Int32
	h := notification.HandlerFunc(func(context.Context, notification.Toast) error {
		if calls.Add(1) == 1 {
			panic("bad handler")
		}
		return nil
	})

	a := notification.NewAsync(h, 1, 4)
	require.NoError(t, a.Handle(context.Background(), notification.Toast{}))
	require.NoError(t, a.Handle(context.Background(), notification.Toast{}))

	done := make(chan struct{})
	go func() { a.Close(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("async handler did not drain after a panic")
	}
	assert.Equal(t, int32(2), calls.Load())
}

func TestAsync_DetachesCallerCancellation(t *testing.T) {
	var sawErr atomic.Value
	h := notification.HandlerFunc(func(ctx context.Context, _ notification.Toast) error {
		sawErr.Store(ctx.Err() == nil)
		return nil
	})

	a := notification.NewAsync(h, 1, 1)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, a.Handle(ctx, notification.Toast{}))
	cancel()
	a.Close()

	assert.Equal(t, true, sawErr.Load())
}
