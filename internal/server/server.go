// Package server exposes the phone parser and country registry over a
// JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/phonekit/phonekit/internal/config"
	"github.com/phonekit/phonekit/internal/country"
	"github.com/phonekit/phonekit/internal/httputil"
	"github.com/phonekit/phonekit/internal/phone"
)

// Server is the phonekit HTTP API server.
type Server struct {
	cfg       *config.Config
	router    *chi.Mux
	http      *http.Server
	logger    *slog.Logger
	registry  *country.Registry
	formatter *phone.Formatter
	validate  *httputil.Validator
	startTime time.Time
}

// New creates a Server with middleware and routes configured. A nil
// registry means the embedded one.
func New(cfg *config.Config, logger *slog.Logger, registry *country.Registry) (*Server, error) {
	formatter, err := cfg.Formatter()
	if err != nil {
		return nil, fmt.Errorf("building formatter: %w", err)
	}
	if registry == nil {
		registry = country.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	s := &Server{
		cfg:       cfg,
		router:    r,
		logger:    logger,
		registry:  registry,
		formatter: formatter,
		validate:  httputil.NewValidator(),
		startTime: time.Now(),
	}

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		if cfg.Server.RateLimit > 0 {
			r.Use(httprate.LimitByIP(cfg.Server.RateLimit, time.Minute))
		}
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			httputil.WriteError(w, http.StatusNotFound, "not found")
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			r.Post("/parse", s.handleParse)
			r.Post("/validate", s.handleValidate)
			r.Post("/format", s.handleFormat)
			r.Post("/batch", s.handleBatch)
		})

		r.Get("/countries", s.handleListCountries)
		r.Get("/countries/{code}", s.handleGetCountry)
		r.Get("/formats", s.handleListFormats)
	})

	return s, nil
}

// Router returns the chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// StartWithReady binds the configured address, closes ready, then serves
// until Shutdown. A bind failure is returned before ready is closed.
func (s *Server) StartWithReady(ready chan<- struct{}) error {
	addr := s.cfg.Address()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.http = &http.Server{Handler: s.router, ReadHeaderTimeout: 10 * time.Second}

	s.logger.Info("server starting", "address", addr, "countries", s.registry.Len())
	close(ready)

	if err := s.http.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving %s: %w", addr, err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	timeout := time.Duration(s.cfg.Server.ShutdownTimeout) * time.Second
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	s.logger.Info("shutting down server", "timeout", timeout)
	return s.http.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"countries":      s.registry.Len(),
		"uptime_seconds": int(time.Since(s.startTime).Seconds()),
	})
}
