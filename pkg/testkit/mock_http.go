package testkit

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

// ─── MockTransport ────────────────────────────────────────────────────────────

// MockTransport implements http.RoundTripper.
// It matches outgoing requests on method and path, returns the configured
// reply and records every call with its decoded body.
//
// Inject it as the client's transport:
//
//	mt := testkit.NewMockTransport()
//	mt.Reply(http.MethodGet, "/api/order/find-all", 200, `{"code":200,"data":[]}`)
//
//	c, _ := shopapi.New(cfg, shopapi.WithTransport(mt))
//	// ... run test ...
//	assert.Empty(t, mt.AssertAllCalled())
type MockTransport struct {
	mu     sync.Mutex
	routes []*route
	calls  []Call
}

type route struct {
	method    string
	path      string
	status    int
	body      string
	err       error
	hang      bool
	callCount int
}

// Call is one request seen by the transport.
type Call struct {
	Method      string
	Path        string
	Query       url.Values
	Header      http.Header
	ContentType string // media type without parameters
	Body        []byte
	Form        url.Values          // url-encoded or multipart fields
	Files       map[string]FilePart // multipart file parts by field name
}

// FilePart is one uploaded file.
type FilePart struct {
	Name        string
	ContentType string
	Content     []byte
}

// NewMockTransport returns an empty transport. Unmatched calls fail.
func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

// Reply answers method+path with status and body. A later Reply for the same
// route replaces the earlier one.
func (mt *MockTransport) Reply(method, path string, status int, body string) *MockTransport {
	mt.set(&route{method: method, path: path, status: status, body: body})
	return mt
}

// Fail makes method+path return err without a response.
func (mt *MockTransport) Fail(method, path string, err error) *MockTransport {
	mt.set(&route{method: method, path: path, err: err})
	return mt
}

// Hang makes method+path block until the request context ends, which lets the
// client's own timeout fire.
func (mt *MockTransport) Hang(method, path string) *MockTransport {
	mt.set(&route{method: method, path: path, hang: true})
	return mt
}

func (mt *MockTransport) set(r *route) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	for i, existing := range mt.routes {
		if existing.method == r.method && existing.path == r.path {
			mt.routes[i] = r
			return
		}
	}
	mt.routes = append(mt.routes, r)
}

// RoundTrip records the request and returns the synthetic response.
func (mt *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	call, err := capture(req)
	if err != nil {
		return nil, err
	}

	mt.mu.Lock()
	mt.calls = append(mt.calls, call)
	var matched *route
	for _, r := range mt.routes {
		if r.method == req.Method && r.path == req.URL.Path {
			r.callCount++
			matched = r
			break
		}
	}
	mt.mu.Unlock()

	if matched == nil {
		return nil, fmt.Errorf("testkit: unexpected call %s %s: no matching route", req.Method, req.URL.Path)
	}
	if matched.hang {
		<-req.Context().Done()
		return nil, req.Context().Err()
	}
	if matched.err != nil {
		return nil, matched.err
	}
	return buildHTTPResponse(req, matched.status, matched.body), nil
}

// Calls returns a copy of every request seen so far.
func (mt *MockTransport) Calls() []Call {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	return append([]Call(nil), mt.calls...)
}

// LastCall returns the most recent request. It panics when there was none.
func (mt *MockTransport) LastCall() Call {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	if len(mt.calls) == 0 {
		panic("testkit: no calls recorded")
	}
	return mt.calls[len(mt.calls)-1]
}

// AssertAllCalled returns one error per route that was never hit.
func (mt *MockTransport) AssertAllCalled() []error {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	var errs []error
	for _, r := range mt.routes {
		if r.callCount == 0 {
			errs = append(errs, fmt.Errorf("testkit: route %s %s was never called", r.method, r.path))
		}
	}
	return errs
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

func capture(req *http.Request) (Call, error) {
	c := Call{
		Method: req.Method,
		Path:   req.URL.Path,
		Query:  req.URL.Query(),
		Header: req.Header.Clone(),
	}
	if req.Body == nil {
		return c, nil
	}
	body, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return c, fmt.Errorf("testkit: read request body: %w", err)
	}
	c.Body = body

	ct := req.Header.Get("Content-Type")
	if ct == "" {
		return c, nil
	}
	mediaType, params, err := mime.ParseMediaType(ct)
	if err != nil {
		return c, fmt.Errorf("testkit: content type %q: %w", ct, err)
	}
	c.ContentType = mediaType

	switch mediaType {
	case "application/x-www-form-urlencoded":
		c.Form, err = url.ParseQuery(string(body))
		if err != nil {
			return c, fmt.Errorf("testkit: parse form: %w", err)
		}
	case "multipart/form-data":
		if err := readMultipart(&c, body, params["boundary"]); err != nil {
			return c, err
		}
	}
	return c, nil
}

func readMultipart(c *Call, body []byte, boundary string) error {
	form, err := multipart.NewReader(bytes.NewReader(body), boundary).ReadForm(10 << 20)
	if err != nil {
		return fmt.Errorf("testkit: parse multipart: %w", err)
	}
	defer form.RemoveAll() //nolint:errcheck

	c.Form = url.Values(form.Value)
	c.Files = map[string]FilePart{}
	for field, headers := range form.File {
		if len(headers) == 0 {
			continue
		}
		fh := headers[0]
		f, err := fh.Open()
		if err != nil {
			return fmt.Errorf("testkit: open part %s: %w", field, err)
		}
		content, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("testkit: read part %s: %w", field, err)
		}
		c.Files[field] = FilePart{Name: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Content: content}
	}
	return nil
}

// buildHTTPResponse creates a synthetic *http.Response. Status 0 means 200.
func buildHTTPResponse(req *http.Request, status int, body string) *http.Response {
	if status == 0 {
		status = http.StatusOK
	}

	header := make(http.Header)
	if strings.HasPrefix(strings.TrimSpace(body), "{") {
		header.Set("Content-Type", "application/json")
	}

	return &http.Response{
		StatusCode: status,
		Status:     fmt.Sprintf("%d %s", status, http.StatusText(status)),
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    req,
	}
}
