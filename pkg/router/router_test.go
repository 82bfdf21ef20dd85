package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func TestGroupMountsWithPrefixAndMiddleware(t *testing.T) {
	r := New()
	var order []string
	tag := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, req)
			})
		}
	}

	api := r.Group("/api/", tag("group"))
	api.Group("order").Put("/deliver", "order.deliver", ok, tag("route"))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/order/deliver", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"group", "route"}, order)

	rec = httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/order/deliver", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRoutesSorted(t *testing.T) {
	r := New()
	r.Delete("/b", "b.delete", ok)
	r.Get("/b", "b.get", ok)
	r.Post("a", "a.post", ok)
	r.Put("/a/", "", ok)

	routes := r.Routes()
	require.Len(t, routes, 4)
	assert.Equal(t, Route{Method: http.MethodPost, Path: "/a", Name: "a.post"}, routes[0])
	assert.Equal(t, Route{Method: http.MethodPut, Path: "/a"}, routes[1])
	assert.Equal(t, http.MethodDelete, routes[2].Method)
	assert.Equal(t, http.MethodGet, routes[3].Method)
}

func TestNotFoundHandler(t *testing.T) {
	r := New()
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestJoinPath(t *testing.T) {
	assert.Equal(t, "/", joinPath())
	assert.Equal(t, "/", joinPath("", "/"))
	assert.Equal(t, "/api/user/find-all", joinPath("/api/", "/user", "find-all"))
}
