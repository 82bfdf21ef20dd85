package shopapi

import (
	"encoding/json"
	"errors"
	"fmt"
)

// CodeOK is the only envelope code the backend uses for success.
const CodeOK = 200

// ErrNoPayload is returned by the Envelope decoders when the requested key
// is absent or null.
var ErrNoPayload = errors.New("shopapi: envelope has no payload")

// Envelope is the uniform {code, message, data...} body every endpoint
// returns. Keys other than code and message stay available through Field.
type Envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	List    json.RawMessage `json:"list,omitempty"`

	raw map[string]json.RawMessage
}

// OK reports whether Code is CodeOK.
func (e *Envelope) OK() bool { return e != nil && e.Code == CodeOK }

// Decode unmarshals the data payload into v.
func (e *Envelope) Decode(v interface{}) error {
	return decodeRaw("data", e.Data, v)
}

// DecodeList unmarshals the list payload into v, falling back to data for
// endpoints that return collections under data.
func (e *Envelope) DecodeList(v interface{}) error {
	if isEmpty(e.List) {
		return decodeRaw("data", e.Data, v)
	}
	return decodeRaw("list", e.List, v)
}

// Field unmarshals any top-level key of the body into v.
func (e *Envelope) Field(key string, v interface{}) error {
	return decodeRaw(key, e.raw[key], v)
}

// Has reports whether the body carried key.
func (e *Envelope) Has(key string) bool {
	_, ok := e.raw[key]
	return ok
}

// UnmarshalJSON keeps every top-level key so Field can reach the ones the
// struct does not name.
func (e *Envelope) UnmarshalJSON(b []byte) error {
	type plain Envelope
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*e = Envelope(p)
	e.raw = raw
	return nil
}

// MarshalJSON writes the envelope back with every key it was decoded from.
// The named fields win over the raw copy.
func (e Envelope) MarshalJSON() ([]byte, error) {
	type plain Envelope
	if e.raw == nil {
		return json.Marshal(plain(e))
	}
	named, err := json.Marshal(plain(e))
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(named, &fields); err != nil {
		return nil, err
	}
	out := make(map[string]json.RawMessage, len(e.raw)+len(fields))
	for k, v := range e.raw {
		out[k] = v
	}
	for _, k := range []string{"message", "data", "list"} {
		if _, ok := fields[k]; !ok {
			delete(out, k)
		}
	}
	for k, v := range fields {
		out[k] = v
	}
	return json.Marshal(out)
}

func decodeRaw(key string, raw json.RawMessage, v interface{}) error {
	if isEmpty(raw) {
		return fmt.Errorf("%w: %s", ErrNoPayload, key)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("shopapi: decode %s: %w", key, err)
	}
	return nil
}

func isEmpty(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// parseEnvelope decodes a response body. An empty body yields an empty
// envelope with code 0.
func parseEnvelope(body []byte) (*Envelope, error) {
	env := &Envelope{}
	if len(body) == 0 {
		return env, nil
	}
	if err := json.Unmarshal(body, env); err != nil {
		return env, err
	}
	return env, nil
}
