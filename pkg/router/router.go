package router

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"sdg7-dashboard/internal/logging"
	"sdg7-dashboard/internal/metrics"
)

// RequestIDHeader carries the request ID in both directions
const RequestIDHeader = "X-Request-ID"

type HandlerFunc = http.HandlerFunc

// Options configures the middleware stack and the HTTP server
type Options struct {
	CORSOrigins     []string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DefaultOptions returns the options used when none are given
func DefaultOptions() Options {
	return Options{
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

type Router struct {
	mux    chi.Router
	opts   Options
	routes map[string]HandlerFunc // key = METHOD:PATTERN
	paths  map[string]bool        // track registered patterns
}

// New builds a chi router with request IDs, panic recovery, CORS and
// request logging installed.
func New(opts Options) *Router {
	def := DefaultOptions()
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = def.ReadTimeout
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = def.WriteTimeout
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = def.ShutdownTimeout
	}

	mux := chi.NewRouter()
	mux.Use(requestID)
	mux.Use(chimiddleware.Recoverer)
	if len(opts.CORSOrigins) > 0 {
		mux.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
			ExposedHeaders: []string{RequestIDHeader, "Content-Disposition"},
			MaxAge:         300,
		}))
	}
	mux.Use(requestLogger)

	return &Router{
		mux:    mux,
		opts:   opts,
		routes: make(map[string]HandlerFunc),
		paths:  make(map[string]bool),
	}
}

// --- Register paths ---
func (r *Router) register(method, pattern string, handler HandlerFunc) {
	r.routes[method+":"+pattern] = handler
	r.paths[pattern] = true
	r.mux.MethodFunc(method, pattern, handler)
}

func (r *Router) GET(pattern string, handler HandlerFunc)    { r.register(http.MethodGet, pattern, handler) }
func (r *Router) POST(pattern string, handler HandlerFunc)   { r.register(http.MethodPost, pattern, handler) }
func (r *Router) PUT(pattern string, handler HandlerFunc)    { r.register(http.MethodPut, pattern, handler) }
func (r *Router) PATCH(pattern string, handler HandlerFunc)  { r.register(http.MethodPatch, pattern, handler) }
func (r *Router) DELETE(pattern string, handler HandlerFunc) { r.register(http.MethodDelete, pattern, handler) }

// Handle mounts a plain handler for every method, e.g. /metrics or /swagger/*
func (r *Router) Handle(pattern string, h http.Handler) {
	r.paths[pattern] = true
	r.mux.Handle(pattern, h)
}

// NotFound sets the handler for unmatched paths
func (r *Router) NotFound(h HandlerFunc) { r.mux.NotFound(h) }

// MethodNotAllowed sets the handler for a known path with the wrong method
func (r *Router) MethodNotAllowed(h HandlerFunc) { r.mux.MethodNotAllowed(h) }

// Getter methods for testing
func (r *Router) Routes() map[string]HandlerFunc {
	return r.routes
}

func (r *Router) Paths() map[string]bool {
	return r.paths
}

// Handler exposes the router for http.Server and httptest
func (r *Router) Handler() http.Handler {
	return r.mux
}

// --- Start server ---

// Serve listens on addr until ctx is cancelled, then drains in-flight
// requests for at most ShutdownTimeout.
func (r *Router) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           r.mux,
		ReadTimeout:       r.opts.ReadTimeout,
		ReadHeaderTimeout: r.opts.ReadTimeout,
		WriteTimeout:      r.opts.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", addr).Int("routes", len(r.routes)).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Info().Dur("timeout", r.opts.ShutdownTimeout).Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), r.opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// --- Middleware ---

// requestID reuses an incoming X-Request-ID or generates one, echoes it in
// the response and stores it in the request context for logging.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		id := req.Header.Get(RequestIDHeader)
		if id == "" || len(id) > 64 {
			id = logging.GenerateRequestID()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, req.WithContext(logging.ContextWithRequestID(req.Context(), id)))
	})
}

// requestLogger captures the status code, logs one line per request and
// records request metrics against the matched route pattern.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, req.ProtoMajor)

		metrics.TrackActiveRequest(true)
		defer metrics.TrackActiveRequest(false)

		next.ServeHTTP(ww, req)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		duration := time.Since(start)

		pattern := "unmatched"
		if rctx := chi.RouteContext(req.Context()); rctx != nil && rctx.RoutePattern() != "" {
			pattern = rctx.RoutePattern()
		}
		metrics.RecordAPIRequest(req.Method, pattern, status, duration)

		logger := logging.Ctx(req.Context())
		event := logger.Info()
		switch {
		case status >= 500:
			event = logger.Error()
		case status >= 400:
			event = logger.Warn()
		}
		event.
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", duration).
			Msg("request")
	})
}
