package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/reqid"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

// statusWriter records what a handler sent.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	n, err := sw.ResponseWriter.Write(b)
	sw.bytes += n
	return n, err
}

// Logger logs one line per backend request, tagged with the request_id set
// by reqid.Middleware, which must run first. The client's X-Request-ID
// arrives here, so client and backend lines for one call share an ID.
//
// Business rejections answer HTTP 200, so the line also carries the envelope
// code and is logged at warn when that code is not 200.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		reqLog := logger.L.With("request_id", reqid.FromCtx(r.Context()))
		r = r.WithContext(logger.InjectLogger(r.Context(), reqLog))

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"bytes", sw.bytes,
			"duration", time.Since(start).String(),
		}
		code, _ := strconv.Atoi(sw.Header().Get(response.CodeHeader))
		if code != 0 {
			attrs = append(attrs, "code", code)
		}
		reqLog.Log(r.Context(), requestLevel(sw.status, code), "request", attrs...)
	})
}

func requestLevel(status, code int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest, code != 0 && code != http.StatusOK:
		return slog.LevelWarn
	}
	return slog.LevelInfo
}
