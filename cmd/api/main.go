// Package main is the entry point for the outfit HTTP API.
//
// It loads configuration, wires the weather client, metrics recorder and
// outfit handler into the core chassis, and serves until SIGINT or SIGTERM,
// then shuts down gracefully.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"outfitpicker/internal/api/handlers"
	"outfitpicker/internal/app"
	"outfitpicker/internal/config"
	"outfitpicker/internal/core"
	"outfitpicker/internal/metrics"
	"outfitpicker/internal/picker"
	"outfitpicker/internal/weather"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(config.NewSSMProvider(os.Getenv("AWS_REGION")))
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := app.NewLogger(os.Stdout, cfg.LogLevel)
	logger.Info("outfit API starting",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"commit", cfg.Build.Commit,
		"port", cfg.Server.Port,
	)

	ctx := context.Background()
	recorder, err := app.NewRecorder(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("creating metrics recorder: %w", err)
	}

	srv, err := buildServer(cfg, logger, app.NewWeatherClient(cfg, logger, recorder), recorder)
	if err != nil {
		return err
	}
	return runHTTPServer(srv, cfg, logger)
}

// buildServer mounts the outfit routes and the catalog health probe.
func buildServer(cfg *config.Config, logger *slog.Logger, provider weather.Provider, recorder metrics.Recorder) (*core.Server, error) {
	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("creating server: %w", err)
	}

	selector := picker.DefaultSelector()
	outfits := handlers.NewOutfitHandler(provider, selector, recorder, srv.Validator, app.DefaultLocation(cfg), logger)

	srv.HealthProbes = append(srv.HealthProbes, core.CatalogProbe{Selector: selector})
	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars, func(r chi.Router) {
		r.Route("/outfits", outfits.RegisterRoutes)
	})
	srv.MountRoutes()
	return srv, nil
}

func runHTTPServer(srv *core.Server, cfg *config.Config, logger *slog.Logger) error {
	addr := ":" + cfg.Server.Port
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       2 * cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}
