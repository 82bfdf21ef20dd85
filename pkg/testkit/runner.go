// Package testkit — runner.go
//
// Run() executes a single scenario against an http.Handler.
// RunDir() runs every *.json file in a directory as a subtest.
// RunSequence() runs an array file in order against one handler, for
// backends that keep state between requests.
package testkit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// ─── Public API ───────────────────────────────────────────────────────────────

// Run executes a single scenario from a JSON file against handler.
func Run(t *testing.T, handler http.Handler, scenarioPath string) {
	t.Helper()

	s, err := LoadScenario(scenarioPath)
	require.NoError(t, err, "testkit: load scenario %q", scenarioPath)

	t.Run(s.Name, func(t *testing.T) {
		RunScenario(t, handler, s)
	})
}

// RunDir discovers every *.json file in dir and runs each as a subtest, in
// file name order. Files that fail to parse are reported as failures.
func RunDir(t *testing.T, handler http.Handler, dir string) {
	t.Helper()

	scenarios, errs := LoadAllFromDir(dir)
	for _, err := range errs {
		t.Errorf("%v", err)
	}
	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			RunScenario(t, handler, s)
		})
	}
}

// RunSequence runs the array file at path in order. A failing step stops the
// sequence, since later steps depend on its effects.
func RunSequence(t *testing.T, handler http.Handler, path string) {
	t.Helper()

	scenarios, err := LoadScenarioArray(path)
	require.NoError(t, err)

	for _, s := range scenarios {
		if !t.Run(s.Name, func(t *testing.T) { RunScenario(t, handler, s) }) {
			t.Fatalf("testkit: %q failed, stopping sequence", s.Name)
		}
	}
}

// RunScenario fires s against handler and asserts the outcome. It returns
// the recorded response for further checks.
func RunScenario(t *testing.T, handler http.Handler, s *Scenario) *httptest.ResponseRecorder {
	t.Helper()

	body, contentType, err := buildBody(s)
	require.NoError(t, err, "[%s] build request body", s.Name)

	req := httptest.NewRequest(strings.ToUpper(s.RequestMethod), s.RequestURL, body)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range s.Headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	AssertStatusCode(t, s, rec.Code)
	AssertEnvelope(t, s, rec.Body.Bytes())

	if p := s.ResponseBodyPath(); p != "" {
		expected, err := os.ReadFile(p)
		if err != nil {
			t.Errorf("[%s] read response file %q: %v", s.Name, p, err)
		} else {
			AssertJSONBody(t, s, expected, rec.Body.Bytes())
		}
	}
	return rec
}

// ─── Body encoding ────────────────────────────────────────────────────────────

func buildBody(s *Scenario) (io.Reader, string, error) {
	switch s.Encoding {
	case EncodingJSON:
		raw := []byte(s.Body)
		if p := s.RequestBodyPath(); p != "" {
			data, err := os.ReadFile(p)
			if err != nil {
				return nil, "", fmt.Errorf("read request file %q: %w", p, err)
			}
			raw = data
		}
		if !json.Valid(raw) {
			return nil, "", fmt.Errorf("request body is not valid JSON")
		}
		return bytes.NewReader(raw), "application/json", nil

	case EncodingForm:
		v := url.Values{}
		for _, k := range sortedKeys(s.Form) {
			v.Set(k, s.Form[k])
		}
		return strings.NewReader(v.Encode()), "application/x-www-form-urlencoded", nil

	case EncodingMultipart:
		buf := &bytes.Buffer{}
		mw := multipart.NewWriter(buf)
		for _, k := range sortedKeys(s.Form) {
			if err := mw.WriteField(k, s.Form[k]); err != nil {
				return nil, "", err
			}
		}
		for _, k := range sortedKeys(s.Files) {
			part, err := mw.CreateFormFile(k, k+".bin")
			if err != nil {
				return nil, "", err
			}
			if _, err := io.WriteString(part, s.Files[k]); err != nil {
				return nil, "", err
			}
		}
		if err := mw.Close(); err != nil {
			return nil, "", err
		}
		return buf, mw.FormDataContentType(), nil
	}
	return nil, "", nil
}

// ─── Debug helpers ────────────────────────────────────────────────────────────

// DumpScenario prints a human-readable summary of the scenario to stdout.
func DumpScenario(s *Scenario) {
	fmt.Printf("Scenario: %s\n", s.Name)
	fmt.Printf("  %s %s → %d\n", s.RequestMethod, s.RequestURL, s.ExpectedCode)
	fmt.Printf("  encoding: %q  fields: %d  files: %d\n", s.Encoding, len(s.Form), len(s.Files))
	fmt.Printf("  requestFile:  %s\n", s.RequestFileName)
	fmt.Printf("  responseFile: %s\n", s.ResponseFileName)
}
