// Package mockserver is an in-memory storefront backend. It serves every
// endpoint the shopapi client calls, with the same method and body-encoding
// rules as the real one, and backs the integration tests and the
// `storefront mock serve` command.
package mockserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/bind"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/reqid"
	"github.com/shashiranjanraj/storefront/pkg/response"
	"github.com/shashiranjanraj/storefront/pkg/router"
)

// Options tunes the server.
type Options struct {
	// RateLimit caps each client at this many requests per minute. 0 disables.
	RateLimit int
	// UploadPrefix is prepended to stored picture and avatar paths.
	UploadPrefix string
	// AllowedOrigins lists browser origins allowed to call the server.
	// Empty allows any.
	AllowedOrigins []string
}

// Server routes requests to the store.
type Server struct {
	store  *Store
	opts   Options
	router *router.Router
}

// New builds a Server around store and mounts every route.
func New(store *Store, opts Options) *Server {
	if opts.UploadPrefix == "" {
		opts.UploadPrefix = "/static"
	}
	s := &Server{store: store, opts: opts, router: router.New()}

	// Outermost first: metrics see total latency, recovery catches panics
	// before anything else runs, the request ID is set before anything logs.
	s.router.Use(metrics.Middleware())
	s.router.Use(middleware.Recovery)
	s.router.Use(reqid.Middleware())
	s.router.Use(middleware.Logger)
	cors := middleware.DefaultCORSOptions()
	if len(opts.AllowedOrigins) > 0 {
		cors.AllowedOrigins = opts.AllowedOrigins
	}
	s.router.Use(middleware.CORS(cors))
	if opts.RateLimit > 0 {
		s.router.Use(middleware.NewLimiter(opts.RateLimit, time.Minute).Middleware)
	}

	s.router.NotFound(func(w http.ResponseWriter, _ *http.Request) { response.NotFound(w) })
	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
	s.router.Get("/metrics", "metrics", metrics.Handler())

	api := s.router.Group("/api")
	s.mountOrders(api)
	s.mountProducts(api)
	s.mountLikes(api)
	s.mountUsers(api)
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler { return s.router.Handler() }

// Routes lists every mounted route.
func (s *Server) Routes() []router.Route { return s.router.Routes() }

// ListenAndServe serves on addr until ctx is cancelled, then drains
// in-flight requests for up to five seconds.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("mock backend listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("mock backend stopped")
	return nil
}

// bound writes the response for a failed bind and reports whether the
// handler may go on.
func bound(w http.ResponseWriter, errs bind.FieldErrors, err error) bool {
	switch {
	case errors.Is(err, bind.ErrEncoding):
		response.Error(w, http.StatusUnsupportedMediaType, err.Error())
		return false
	case err != nil:
		response.Error(w, http.StatusBadRequest, err.Error())
		return false
	case len(errs) > 0:
		response.Reject(w, http.StatusUnprocessableEntity, errs.String())
		return false
	}
	return true
}

// reject maps a store error to an envelope. what names the missing entity.
func reject(w http.ResponseWriter, r *http.Request, err error, what string) {
	switch {
	case errors.Is(err, errNotFound):
		response.Reject(w, http.StatusNotFound, what+" not found")
	case errors.Is(err, errWrongPass):
		response.Reject(w, http.StatusForbidden, err.Error())
	case errors.Is(err, errNotPending), errors.Is(err, errUnknownState), errors.Is(err, errDuplicate):
		response.Reject(w, http.StatusConflict, err.Error())
	default:
		logger.WithCtx(r.Context()).Error("store failure", "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal Server Error")
	}
}
