// Package testkit provides the test doubles and the JSON-scenario runner used
// across the storefront tests.
//
// Client-side tests inject a MockTransport into shopapi.Client and record
// toasts with a RecordingSink or a MockSink. Backend tests describe requests
// as JSON scenarios and run them against an http.Handler:
//
//	testdata/
//	  storefront.json        ← array of scenarios, run in order
//	  add_order_req.json     ← request body referenced by requestFileName
//	  add_order_res.json     ← expected response, compared as a subset
//
// Example _test.go:
//
//	func TestOrders(t *testing.T) {
//	    testkit.RunSequence(t, mockserver.New(store, mockserver.Options{}).Handler(), "testdata/storefront.json")
//	}
package testkit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// ─── Schema ───────────────────────────────────────────────────────────────────

// Scenario describes one request against a handler and what must come back.
type Scenario struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	// Request
	RequestMethod   string            `json:"requestMethod"`   // GET, POST, PUT, DELETE
	RequestURL      string            `json:"requestUrl"`      // path plus query
	Encoding        string            `json:"encoding"`        // json | form | multipart, empty for no body
	Body            json.RawMessage   `json:"body"`            // inline JSON body
	RequestFileName string            `json:"requestFileName"` // JSON body file, relative to the scenario
	Form            map[string]string `json:"form"`            // form or multipart fields
	Files           map[string]string `json:"files"`           // multipart file field → content
	Headers         map[string]string `json:"headers"`

	// Response assertions
	ExpectedCode     int    `json:"expectedCode"`     // HTTP status
	ExpectedBodyCode int    `json:"expectedBodyCode"` // envelope code, 0 to skip
	ExpectedMessage  string `json:"expectedMessage"`  // envelope message, "" to skip
	ResponseFileName string `json:"responseFileName"` // expected body, compared as a subset

	dir string
}

const (
	EncodingJSON      = "json"
	EncodingForm      = "form"
	EncodingMultipart = "multipart"
)

// ─── Loading ──────────────────────────────────────────────────────────────────

// LoadScenario reads and validates a scenario from a JSON file.
func LoadScenario(path string) (*Scenario, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: resolve path %q: %w", path, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("testkit: read %q: %w", abs, err)
	}

	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("testkit: parse %q: %w", abs, err)
	}

	s.dir = filepath.Dir(abs)
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("testkit: invalid scenario %q: %w", abs, err)
	}
	return &s, nil
}

// LoadScenarioArray reads an array of scenarios from one JSON file. The
// order of the array is the order they run in.
func LoadScenarioArray(path string) ([]*Scenario, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: resolve scenario array path %q: %w", path, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("testkit: read scenario array %q: %w", abs, err)
	}

	var scenarios []*Scenario
	if err := json.Unmarshal(data, &scenarios); err != nil {
		return nil, fmt.Errorf("testkit: parse scenario array %q: %w", abs, err)
	}

	dir := filepath.Dir(abs)
	for i, s := range scenarios {
		s.dir = dir
		if err := s.validate(); err != nil {
			return nil, fmt.Errorf("testkit: invalid scenario %d in %q: %w", i, abs, err)
		}
	}
	return scenarios, nil
}

// LoadAllFromDir loads every *.json file in dir as a Scenario.
// Files that fail to parse are collected as errors.
func LoadAllFromDir(dir string) ([]*Scenario, []error) {
	entries, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil || len(entries) == 0 {
		return nil, []error{fmt.Errorf("testkit: no scenario files found in %q", dir)}
	}
	sort.Strings(entries)

	var (
		scenarios []*Scenario
		errs      []error
	)
	for _, path := range entries {
		s, err := LoadScenario(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, errs
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.RequestURL == "" {
		return fmt.Errorf("requestUrl is required")
	}
	if s.ExpectedCode == 0 {
		s.ExpectedCode = 200
	}
	if s.RequestMethod == "" {
		s.RequestMethod = "GET"
	}
	switch s.Encoding {
	case "", EncodingJSON, EncodingForm, EncodingMultipart:
	default:
		return fmt.Errorf("unknown encoding %q", s.Encoding)
	}
	if len(s.Files) > 0 && s.Encoding != EncodingMultipart {
		return fmt.Errorf("files need multipart encoding")
	}
	return nil
}

// RequestBodyPath returns the absolute path to the request body file, or ""
// when RequestFileName is not set.
func (s *Scenario) RequestBodyPath() string {
	return s.resolve(s.RequestFileName)
}

// ResponseBodyPath returns the absolute path to the expected response file,
// or "" when ResponseFileName is not set.
func (s *Scenario) ResponseBodyPath() string {
	return s.resolve(s.ResponseFileName)
}

func (s *Scenario) resolve(name string) string {
	if name == "" {
		return ""
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dir, name)
}

// sortedKeys returns m's keys in order so encoded bodies are stable.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
