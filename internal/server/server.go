// Package server serves directory pages and the live search socket.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/ziadkadry99/dirpage/internal/cache"
	"github.com/ziadkadry99/dirpage/internal/config"
	"github.com/ziadkadry99/dirpage/internal/loader"
	"github.com/ziadkadry99/dirpage/internal/resolver"
	"github.com/ziadkadry99/dirpage/internal/view"
)

// Config holds server configuration.
type Config struct {
	Port     int
	AllowAll bool // allow all CORS origins (dev mode)
}

// PayloadLoader loads directory payloads. *loader.Loader satisfies it.
type PayloadLoader interface {
	Load(ctx context.Context, key string) (loader.Result, error)
}

// DefaultRenderTTL is how long a rendered listing set stays searchable when
// Deps.RenderTTL is unset.
const DefaultRenderTTL = 30 * time.Minute

// Deps are the collaborators of the page pipeline.
type Deps struct {
	Resolver resolver.Resolver
	Loader   PayloadLoader
	// Renders holds the listing set of each rendered page, keyed by render
	// id, for that page's live search session. Defaults to an in-process
	// cache.
	Renders   cache.Cache
	RenderTTL time.Duration
	Site      config.SiteConfig
	Debounce  time.Duration
	Logger    *zap.Logger
	Now       func() time.Time
}

// Server serves directory pages.
type Server struct {
	cfg        Config
	deps       Deps
	logger     *zap.Logger
	router     chi.Router
	httpServer *http.Server

	// newDocument builds the sink for each page render.
	newDocument func() *view.Document
}

// New creates a server with all dependencies.
func New(cfg Config, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Renders == nil {
		deps.Renders = cache.NewMemory()
	}
	if deps.RenderTTL <= 0 {
		deps.RenderTTL = DefaultRenderTTL
	}
	s := &Server{
		cfg:         cfg,
		deps:        deps,
		logger:      deps.Logger,
		newDocument: view.NewDocument,
	}

	s.router = s.buildRouter()
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Live search sessions outlive the request timeout.
	r.Get("/ws/search", s.handleLiveSearch)

	// Everything else is a directory page. Static routes registered later
	// (such as the directory API) take precedence over the catch-all.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Get("/*", s.handlePage)
	})

	return r
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	s.logger.Info("dirpage server listening", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// requestLogger logs one line per request through zap.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("host", r.Host),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
