package testkit

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertStatusCode checks the HTTP status with testify.
func AssertStatusCode(t *testing.T, scenario *Scenario, got int) {
	t.Helper()
	assert.Equal(t, scenario.ExpectedCode, got,
		"[%s] HTTP status code mismatch", scenario.Name)
}

// AssertEnvelope checks the envelope code and message when the scenario
// names them.
func AssertEnvelope(t *testing.T, scenario *Scenario, body []byte) {
	t.Helper()
	if scenario.ExpectedBodyCode == 0 && scenario.ExpectedMessage == "" {
		return
	}

	var env struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if !assert.NoError(t, json.Unmarshal(body, &env),
		"[%s] response is not an envelope\nbody: %s", scenario.Name, string(body)) {
		return
	}
	if scenario.ExpectedBodyCode != 0 {
		assert.Equal(t, scenario.ExpectedBodyCode, env.Code, "[%s] envelope code mismatch", scenario.Name)
	}
	if scenario.ExpectedMessage != "" {
		assert.Equal(t, scenario.ExpectedMessage, env.Message, "[%s] envelope message mismatch", scenario.Name)
	}
}

// AssertJSONBody checks that every key in expected is present in actual with
// the same value. Extra keys in actual (tokens, timestamps) are ignored.
func AssertJSONBody(t *testing.T, scenario *Scenario, expected, actual []byte) {
	t.Helper()
	if len(expected) == 0 {
		return
	}

	var expVal, actVal interface{}

	require.NoError(t,
		json.Unmarshal(expected, &expVal),
		"[%s] expected response file is not valid JSON", scenario.Name,
	)

	if !assert.NoError(t,
		json.Unmarshal(actual, &actVal),
		"[%s] actual response is not valid JSON\nbody: %s", scenario.Name, string(actual),
	) {
		return
	}

	if diffs := DiffJSON("", expVal, actVal); len(diffs) > 0 {
		t.Errorf("[%s] response body mismatch:\n%s\nbody: %s",
			scenario.Name, strings.Join(diffs, "\n"), string(actual))
	}
}

// ─── JSON diff helper ─────────────────────────────────────────────────────────

// DiffJSON returns human-readable differences between two JSON-decoded
// values. Objects are compared as subsets: keys missing from expected are
// not reported.
func DiffJSON(path string, expected, actual interface{}) []string {
	var diffs []string
	switch exp := expected.(type) {
	case map[string]interface{}:
		act, ok := actual.(map[string]interface{})
		if !ok {
			return append(diffs, fmt.Sprintf("  %s: expected object, got %T", keyPath(path), actual))
		}
		for k, ev := range exp {
			p := keyPath(path) + "." + k
			av, exists := act[k]
			if !exists {
				diffs = append(diffs, fmt.Sprintf("  %s: missing in actual", p))
				continue
			}
			diffs = append(diffs, DiffJSON(p, ev, av)...)
		}
	case []interface{}:
		act, ok := actual.([]interface{})
		if !ok {
			return append(diffs, fmt.Sprintf("  %s: expected array, got %T", keyPath(path), actual))
		}
		if len(exp) != len(act) {
			diffs = append(diffs, fmt.Sprintf("  %s: array length expected=%d actual=%d", keyPath(path), len(exp), len(act)))
		}
		for i := 0; i < len(exp) && i < len(act); i++ {
			diffs = append(diffs, DiffJSON(fmt.Sprintf("%s[%d]", keyPath(path), i), exp[i], act[i])...)
		}
	default:
		if fmt.Sprintf("%v", expected) != fmt.Sprintf("%v", actual) {
			diffs = append(diffs, fmt.Sprintf("  %s:\n    - %v\n    + %v", keyPath(path), expected, actual))
		}
	}
	return diffs
}

func keyPath(path string) string {
	if path == "" {
		return "root"
	}
	return strings.TrimPrefix(path, ".")
}
