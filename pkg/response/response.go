// Package response writes the storefront {code, message, data} envelope.
//
// The backend separates two failure channels: Reject answers HTTP 200 with a
// non-200 envelope code (a business rejection), Error answers a non-2xx HTTP
// status with the same code in the body.
package response

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// CodeHeader repeats the envelope code so middleware can see business
// rejections without reading the body.
const CodeHeader = "X-Envelope-Code"

type envelope struct {
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Total   *int        `json:"total,omitempty"`
}

func write(w http.ResponseWriter, status, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(CodeHeader, strconv.Itoa(code))
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// Success sends code 200 with data.
func Success(w http.ResponseWriter, message string, data interface{}) {
	write(w, http.StatusOK, http.StatusOK, envelope{Code: http.StatusOK, Message: message, Data: data})
}

// List sends code 200 with a page of items and the unpaged total.
func List(w http.ResponseWriter, items interface{}, total int) {
	write(w, http.StatusOK, http.StatusOK, envelope{Code: http.StatusOK, Data: items, Total: &total})
}

// With sends code 200 with data and extra top-level keys, e.g. a token.
func With(w http.ResponseWriter, message string, data interface{}, extra map[string]interface{}) {
	body := map[string]interface{}{"code": http.StatusOK}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	for k, v := range extra {
		body[k] = v
	}
	write(w, http.StatusOK, http.StatusOK, body)
}

// Reject sends HTTP 200 with a non-200 envelope code.
func Reject(w http.ResponseWriter, code int, message string) {
	write(w, http.StatusOK, code, envelope{Code: code, Message: message})
}

// Error sends a non-2xx HTTP status with the status as envelope code.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, status, envelope{Code: status, Message: message})
}

// Unauthorized sends a 401.
func Unauthorized(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, "Unauthorized")
}

// Forbidden sends a 403.
func Forbidden(w http.ResponseWriter) {
	Error(w, http.StatusForbidden, "Forbidden")
}

// NotFound sends a 404.
func NotFound(w http.ResponseWriter) {
	Error(w, http.StatusNotFound, "Not found")
}
