// Package core provides the HTTP chassis for the outfit API. It builds a chi
// router that enforces the cross-cutting concerns (panic recovery, request
// IDs, logging, throttling and error envelopes) before requests reach the
// outfit handlers.
package core

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"outfitpicker/internal/config"
)

// Server holds the dependencies shared by every route. Domain handlers are
// attached through V1RouteRegistrars so that core never imports them.
type Server struct {
	Config    *config.Config
	Logger    *slog.Logger
	Validator *Validator

	// HealthProbes are run by GET /health.
	HealthProbes []HealthProbe

	// V1RouteRegistrars mount domain routes under /v1.
	V1RouteRegistrars []func(chi.Router)

	limiter *clientLimiter
	router  *chi.Mux
}

// NewServer validates its inputs and prepares an empty router. Call
// MountRoutes after registering handlers.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config must not be nil")
	}
	if logger == nil {
		return nil, errors.New("logger must not be nil")
	}

	return &Server{
		Config:    cfg,
		Logger:    logger,
		Validator: NewValidator(logger),
		limiter:   newClientLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst),
		router:    chi.NewRouter(),
	}, nil
}

// Handler returns the router for http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router returns the underlying chi.Mux.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Shutdown releases server-owned resources. The listener itself is closed by
// the caller's http.Server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Logger.InfoContext(ctx, "server shutdown initiated")
	if s.limiter != nil {
		s.limiter.reset()
	}
	s.Logger.InfoContext(ctx, "server shutdown complete")
	return nil
}
