package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/reqid"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

// Recovery turns a handler panic into a 500 envelope. The envelope message
// names the request ID, so the failure toast a client shows can be matched
// to the stack logged here. http.ErrAbortHandler is re-raised.
//
// The mock backend mounts it outside reqid.Middleware; the ID is then read
// back from the response header.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			rid := recoveredID(w, r)
			metrics.RecordPanic(r.Method, r.URL.Path)
			logger.L.Error("mock: handler panicked",
				"request_id", rid,
				"method", r.Method,
				"path", r.URL.Path,
				"panic", fmt.Sprint(rec),
				"stack", string(debug.Stack()),
			)

			msg := "Internal Server Error"
			if rid != "" {
				msg += " (request " + rid + ")"
			}
			response.Error(w, http.StatusInternalServerError, msg)
		}()
		next.ServeHTTP(w, r)
	})
}

func recoveredID(w http.ResponseWriter, r *http.Request) string {
	if id := reqid.FromCtx(r.Context()); id != "" {
		return id
	}
	return w.Header().Get(reqid.Header)
}
