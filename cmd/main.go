// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/lenvers-aubagne/lenvers-web/internal/backend"
	"github.com/lenvers-aubagne/lenvers-web/internal/config"
	"github.com/lenvers-aubagne/lenvers-web/internal/handler"
	"github.com/lenvers-aubagne/lenvers-web/internal/repository"
	"github.com/lenvers-aubagne/lenvers-web/internal/service"
	"github.com/lenvers-aubagne/lenvers-web/internal/session"
	"github.com/lenvers-aubagne/lenvers-web/internal/view"
)

const sweepInterval = time.Minute

func main() {
	// ── 1. Load config and logger ────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("config")
	}
	log := setupLogger(cfg.LogEnv)
	log.Info().Str("env", cfg.LogEnv).Msg("starting L'envers site")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── 2. Reach the backend ─────────────────────────────────────────────
	client := backend.Connect(ctx, backend.Config{BaseURL: cfg.BackendURL, Timeout: cfg.BackendTimeout}, log)
	log.Info().Str("backend", client.BaseURL).Msg("✓ Backend client ready")

	// ── 3. Wire up layers ────────────────────────────────────────────────
	metrics := service.NewMetrics()
	eventRepo := repository.NewEventRepository(client)
	submissionRepo := repository.NewSubmissionRepository(client)
	siteSvc := service.NewSiteService(log, eventRepo, submissionRepo, client, metrics)

	store := session.NewStore(log.With().Str("component", "session").Logger(), cfg.NotificationTTL, cfg.VisitIdleTTL)
	metrics.ObserveVisits(store.Len)
	go store.Run(ctx, sweepInterval)

	renderer, err := view.New()
	if err != nil {
		log.Fatal().Err(err).Msg("templates")
	}
	siteHandler, err := handler.NewSiteHandler(log, siteSvc, renderer, cfg.PublicURL)
	if err != nil {
		log.Fatal().Err(err).Msg("qr code")
	}

	// ── 4. Build the router ───────────────────────────────────────────────
	metricsHandler := promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})
	r := handler.NewRouter(log, siteHandler, store, siteSvc, metricsHandler)

	// ── 5. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Run in background goroutine so we can listen for shutdown signal.
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("✓ Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Block until SIGINT or SIGTERM.
	<-ctx.Done()

	log.Info().Msg("shutting down server…")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}

func setupLogger(env string) zerolog.Logger {
	var log zerolog.Logger

	switch env {
	case config.EnvLocal:
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}).Level(zerolog.DebugLevel)
	case config.EnvDev:
		log = zerolog.New(os.Stdout).Level(zerolog.DebugLevel)
	case config.EnvProd:
		log = zerolog.New(os.Stdout).Level(zerolog.InfoLevel)
	}

	return log.With().Timestamp().Logger()
}
