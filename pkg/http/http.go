// Package http provides the fluent HTTP request builder behind the storefront
// API client.
//
// Each Client is constructed explicitly with its base URL, timeout and
// transport; there is no package-level client. A request is built, sent once,
// and its body read in full:
//
//	c, _ := http.NewClient("http://shop.local", 5*time.Second, nil)
//
//	resp, err := c.Get("/api/order/find-byorderid").
//	    Query("order_id", "42").
//	    Send(ctx)
//
//	// PUT with a multipart body
//	resp, err := c.Put("/api/order/update/address").
//	    Multipart([]http.Field{{Key: "order_id", Value: "42"}, {Key: "address", Value: "Main St 1"}}).
//	    Send(ctx)
//
// There is no retry: a failed attempt is returned to the caller as is.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	gohttp "net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/reqid"
)

// ErrBuild marks failures that happened before anything was sent.
var ErrBuild = errors.New("http: build request")

// ErrNoResponse marks failures where the request went out but no response
// came back (network error, timeout, cancellation).
var ErrNoResponse = errors.New("http: no response")

// DefaultTimeout applies when a Client is built with a zero timeout.
const DefaultTimeout = 5 * time.Second

// defaultTransport is the connection-pooled transport used when the caller
// does not supply one.
var defaultTransport = &gohttp.Transport{
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 20,
	IdleConnTimeout:     90 * time.Second,
}

// Client sends requests relative to a fixed base URL.
type Client struct {
	base    *url.URL
	timeout time.Duration
	hc      *gohttp.Client
	headers map[string]string
}

// NewClient builds a Client. transport may be nil.
func NewClient(baseURL string, timeout time.Duration, transport gohttp.RoundTripper) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("http: parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("http: base url %q must be absolute", baseURL)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if transport == nil {
		transport = defaultTransport
	}

	return &Client{
		base:    u,
		timeout: timeout,
		hc:      &gohttp.Client{Transport: transport},
		headers: map[string]string{"Accept": "application/json"},
	}, nil
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string { return c.base.String() }

// Timeout returns the per-request timeout.
func (c *Client) Timeout() time.Duration { return c.timeout }

// SetHeader adds a header sent with every request from this client.
func (c *Client) SetHeader(key, value string) { c.headers[key] = value }

// Get starts a GET request.
func (c *Client) Get(path string) *Request { return c.newRequest(gohttp.MethodGet, path) }

// Post starts a POST request.
func (c *Client) Post(path string) *Request { return c.newRequest(gohttp.MethodPost, path) }

// Put starts a PUT request.
func (c *Client) Put(path string) *Request { return c.newRequest(gohttp.MethodPut, path) }

// Delete starts a DELETE request.
func (c *Client) Delete(path string) *Request { return c.newRequest(gohttp.MethodDelete, path) }

// ------------------- Request -------------------

// Field is one key/value pair of a form or multipart body. Order is kept.
type Field struct {
	Key   string
	Value string
}

// File is one file part of a multipart body.
type File struct {
	Field       string
	Name        string
	ContentType string
	Content     io.Reader
}

type encoder func() (io.Reader, string, error)

// Request is a fluent HTTP request builder.
type Request struct {
	client  *Client
	method  string
	path    string
	query   url.Values
	headers map[string]string
	body    encoder
}

func (c *Client) newRequest(method, path string) *Request {
	headers := make(map[string]string, len(c.headers))
	for k, v := range c.headers {
		headers[k] = v
	}
	return &Request{
		client:  c,
		method:  method,
		path:    path,
		query:   url.Values{},
		headers: headers,
	}
}

// Method returns the HTTP method.
func (r *Request) Method() string { return r.method }

// Path returns the request path relative to the base URL.
func (r *Request) Path() string { return r.path }

// Query adds one query parameter.
func (r *Request) Query(key, value string) *Request {
	r.query.Add(key, value)
	return r
}

// QueryValues merges a set of query parameters.
func (r *Request) QueryValues(v url.Values) *Request {
	for k, vals := range v {
		for _, val := range vals {
			r.query.Add(k, val)
		}
	}
	return r
}

// Header adds a single header to the request.
func (r *Request) Header(key, value string) *Request {
	r.headers[key] = value
	return r
}

// JSON sets v, marshalled to JSON, as the body.
func (r *Request) JSON(v interface{}) *Request {
	r.body = func() (io.Reader, string, error) {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, "", fmt.Errorf("marshal body: %w", err)
		}
		return bytes.NewReader(b), "application/json", nil
	}
	return r
}

// Form sets an application/x-www-form-urlencoded body.
func (r *Request) Form(fields []Field) *Request {
	r.body = func() (io.Reader, string, error) {
		parts := make([]string, 0, len(fields))
		for _, f := range fields {
			parts = append(parts, url.QueryEscape(f.Key)+"="+url.QueryEscape(f.Value))
		}
		return strings.NewReader(strings.Join(parts, "&")), "application/x-www-form-urlencoded", nil
	}
	return r
}

// Multipart sets a multipart/form-data body with the given fields followed
// by the given files.
func (r *Request) Multipart(fields []Field, files ...File) *Request {
	r.body = func() (io.Reader, string, error) {
		buf := &bytes.Buffer{}
		mw := multipart.NewWriter(buf)
		for _, f := range fields {
			if err := mw.WriteField(f.Key, f.Value); err != nil {
				return nil, "", fmt.Errorf("write field %s: %w", f.Key, err)
			}
		}
		for _, f := range files {
			if err := writeFile(mw, f); err != nil {
				return nil, "", err
			}
		}
		if err := mw.Close(); err != nil {
			return nil, "", fmt.Errorf("close multipart: %w", err)
		}
		return buf, mw.FormDataContentType(), nil
	}
	return r
}

func writeFile(mw *multipart.Writer, f File) error {
	if f.Content == nil {
		return fmt.Errorf("file part %s has no content", f.Field)
	}
	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.Name))
	h.Set("Content-Type", ct)
	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create part %s: %w", f.Field, err)
	}
	if _, err := io.Copy(part, f.Content); err != nil {
		return fmt.Errorf("copy part %s: %w", f.Field, err)
	}
	return nil
}

// URL returns the absolute URL the request will be sent to.
func (r *Request) URL() string {
	u := *r.client.base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(r.path, "/")
	u.RawQuery = r.query.Encode()
	return u.String()
}

// ------------------- Send -------------------

// Send executes the request exactly once and returns the Response.
// Errors wrap ErrBuild or ErrNoResponse.
func (r *Request) Send(ctx context.Context) (*Response, error) {
	ctx, id := reqid.Ensure(ctx)
	log := logger.WithCtx(ctx)

	var (
		body io.Reader
		ct   string
	)
	if r.body != nil {
		var err error
		body, ct, err = r.body()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBuild, err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, r.client.timeout)
	defer cancel()

	req, err := gohttp.NewRequestWithContext(ctx, r.method, r.URL(), body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuild, err)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	if ct != "" {
		req.Header.Set("Content-Type", ct)
	}
	req.Header.Set(reqid.Header, id)

	start := time.Now()
	resp, err := r.client.hc.Do(req)
	if err != nil {
		log.Debug("http: no response", "method", r.method, "path", r.path, "error", err)
		return nil, fmt.Errorf("%w: %s %s: %w", ErrNoResponse, r.method, r.path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrNoResponse, err)
	}

	log.Debug("http: response",
		"method", r.method, "path", r.path,
		"status", resp.StatusCode, "duration", time.Since(start).String())

	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Raw:        raw,
	}, nil
}

// ------------------- Response -------------------

// Response wraps the HTTP response with convenience methods.
type Response struct {
	StatusCode int
	Headers    gohttp.Header
	Raw        []byte
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// JSON unmarshals the response body into dest.
func (r *Response) JSON(dest interface{}) error {
	if err := json.Unmarshal(r.Raw, dest); err != nil {
		return fmt.Errorf("http: decode JSON: %w", err)
	}
	return nil
}

// Text returns the response body as a string.
func (r *Response) Text() string {
	return string(r.Raw)
}

// Header returns a single response header value.
func (r *Response) Header(key string) string {
	return r.Headers.Get(key)
}
