package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// ------------------- Webhook channel -------------------

// WebhookHandler POSTs each toast as JSON to a URL.
type WebhookHandler struct {
	URL     string
	Headers map[string]string
	Client  *http.Client
}

// NewWebhookHandler returns a WebhookHandler with a 5 second timeout.
func NewWebhookHandler(url string) *WebhookHandler {
	return &WebhookHandler{URL: url, Client: &http.Client{Timeout: 5 * time.Second}}
}

// Handle posts t.
func (h *WebhookHandler) Handle(ctx context.Context, t Toast) error {
	if h.URL == "" {
		return fmt.Errorf("notification: webhook URL is empty")
	}

	raw, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("notification: webhook marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.URL, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("notification: webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range h.Headers {
		req.Header.Set(k, v)
	}

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("notification: webhook send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification: webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}

// ------------------- Redis channel -------------------

// Publisher is the subset of *redis.Client the Redis channel needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisHandler publishes each toast as JSON on a Redis pub/sub channel.
type RedisHandler struct {
	pub     Publisher
	channel string
}

// NewRedisHandler returns a RedisHandler publishing on channel.
func NewRedisHandler(pub Publisher, channel string) *RedisHandler {
	return &RedisHandler{pub: pub, channel: channel}
}

// DialRedis connects to addr and verifies the connection with a ping.
func DialRedis(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("notification: redis ping: %w", err)
	}
	return rdb, nil
}

// Handle publishes t.
func (h *RedisHandler) Handle(ctx context.Context, t Toast) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("notification: redis marshal: %w", err)
	}
	if err := h.pub.Publish(ctx, h.channel, raw).Err(); err != nil {
		return fmt.Errorf("notification: redis publish: %w", err)
	}
	return nil
}
