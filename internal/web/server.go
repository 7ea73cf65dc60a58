// Package web provides the HTTP API for generating import scripts.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/stockimport/internal/config"
	"github.com/JonMunkholm/stockimport/internal/core"
	"github.com/JonMunkholm/stockimport/internal/metrics"
	"github.com/JonMunkholm/stockimport/internal/web/middleware"
)

// Server is the HTTP server for the generation API.
type Server struct {
	cfg     *config.Config
	service *core.Service
	layout  config.Layout
	limiter *Limiter
	metrics *metrics.Recorder
	rate    *rateLimiter
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a Server. rec may be nil to disable metrics.
func NewServer(cfg *config.Config, service *core.Service, layout config.Layout, rec *metrics.Recorder) *Server {
	s := &Server{
		cfg:     cfg,
		service: service,
		layout:  layout,
		limiter: NewLimiter(cfg.Server.MaxConcurrent, cfg.Server.MaxWaitTime),
		metrics: rec,
		router:  chi.NewRouter(),
	}
	if cfg.Server.RequestsPerMinute > 0 {
		s.rate = newRateLimiter(cfg.Server.RequestsPerMinute, time.Minute)
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger(s.observeRequest))
	s.router.Use(chimw.Recoverer)
	s.router.Use(securityHeaders)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler())
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
		r.Use(middleware.APIKeyAuth(s.cfg.Security))
		if s.rate != nil {
			r.Use(s.rate.middleware)
		}

		r.Get("/layout", s.handleLayout)
		r.Post("/plan", s.handlePlan)
		r.Post("/generate", s.handleGenerate)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown waits for in-flight generations, then stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if active := s.limiter.ActiveCount(); active > 0 {
		slog.Info("waiting for generations to complete", "active", active)
		if err := s.limiter.WaitForDrain(ctx); err != nil {
			slog.Warn("generations did not complete in time", "error", err)
		}
	}
	if s.rate != nil {
		s.rate.stop()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Limiter returns the generation limiter.
func (s *Server) Limiter() *Limiter {
	return s.limiter
}

func (s *Server) observeRequest(route string, status int, _ time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
