// Package reqid provides request ID generation and context propagation.
//
// Every outgoing storefront call carries an ID in the X-Request-ID header.
// Callers that already have one (an inbound request, a CLI invocation) put
// it in the context; otherwise a fresh UUID is minted per call.
//
//	ctx = reqid.WithValue(ctx, reqid.New())
//	client.Orders.FindAllOrders(ctx)
//
// The mock backend mounts Middleware so it honours the same header.
package reqid

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// ctxKey is the unexported key used to store the request ID in context.
type ctxKey struct{}

// Header is the HTTP header name used to propagate the request ID.
const Header = "X-Request-ID"

// New generates a random (version 4) UUID string.
func New() string {
	return uuid.NewString()
}

// WithValue stores id in ctx and returns the new context.
func WithValue(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromCtx extracts the request ID from ctx.
// Returns an empty string if none is present.
func FromCtx(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKey{}).(string); ok {
		return id
	}
	return ""
}

// Ensure returns ctx unchanged if it already carries an ID, otherwise a
// child context with a new one.
func Ensure(ctx context.Context) (context.Context, string) {
	if id := FromCtx(ctx); id != "" {
		return ctx, id
	}
	id := New()
	return WithValue(ctx, id), id
}

// Middleware reuses an inbound X-Request-ID or generates one, echoes it on
// the response and stores it in the request context.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(Header)
			if id == "" {
				id = New()
			}

			w.Header().Set(Header, id)

			ctx := WithValue(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
