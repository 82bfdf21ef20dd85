// Package shopapi is the client for the storefront REST backend.
//
// A Client is built once with its base URL, timeout and notification sink,
// and exposes one service per resource group:
//
//	c, err := shopapi.New(shopapi.Config{BaseURL: "http://shop.local", Timeout: 5 * time.Second},
//	    shopapi.WithSink(sink))
//
//	env, err := c.Orders.FindOrderByID(ctx, 42)
//	var order shopapi.Order
//	err = env.Decode(&order)
//
//	_, err = c.Orders.MarkOrderAsShipped(ctx, 42)
//	if shopapi.IsKind(err, shopapi.KindTransport) { ... }
//
// Every operation sends exactly one request. Mutations report success and
// failure to the sink; queries report failures only. Every failure is
// returned as an *Error.
package shopapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	sfhttp "github.com/shashiranjanraj/storefront/pkg/http"
	"github.com/shashiranjanraj/storefront/pkg/notification"
)

// Config is what a Client needs to reach the backend.
type Config struct {
	BaseURL string        `validate:"required,url"`
	Timeout time.Duration `validate:"gte=0"`
}

var validate = validator.New()

// Option customises a Client.
type Option func(*options)

type options struct {
	sink      notification.Sink
	transport http.RoundTripper
	headers   map[string]string
}

// WithSink sets where success and failure toasts go. Default: discarded.
func WithSink(s notification.Sink) Option {
	return func(o *options) { o.sink = s }
}

// WithTransport replaces the HTTP transport, e.g. with a test double.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) Option {
	return func(o *options) {
		if o.headers == nil {
			o.headers = map[string]string{}
		}
		o.headers[key] = value
	}
}

// Client groups the storefront services around one HTTP client.
type Client struct {
	hc   *sfhttp.Client
	sink notification.Sink

	Orders   *OrderService
	Products *ProductService
	Likes    *LikeService
	Users    *UserService
}

// New validates cfg and builds a Client.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("shopapi: invalid config: %w", err)
	}

	o := options{sink: notification.Discard}
	for _, opt := range opts {
		opt(&o)
	}
	if o.sink == nil {
		o.sink = notification.Discard
	}

	hc, err := sfhttp.NewClient(cfg.BaseURL, cfg.Timeout, o.transport)
	if err != nil {
		return nil, fmt.Errorf("shopapi: %w", err)
	}
	for k, v := range o.headers {
		hc.SetHeader(k, v)
	}

	c := &Client{hc: hc, sink: o.sink}
	c.Orders = &OrderService{c: c}
	c.Products = &ProductService{c: c}
	c.Likes = &LikeService{c: c}
	c.Users = &UserService{c: c}
	return c, nil
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string { return c.hc.BaseURL() }

// Timeout returns the per-request timeout.
func (c *Client) Timeout() time.Duration { return c.hc.Timeout() }
