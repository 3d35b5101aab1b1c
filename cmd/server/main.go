// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/platewise/internal/api"
	"github.com/tomtom215/platewise/internal/config"
	"github.com/tomtom215/platewise/internal/logging"
	"github.com/tomtom215/platewise/internal/preferences"
	"github.com/tomtom215/platewise/internal/recommend"
	"github.com/tomtom215/platewise/internal/supervisor"
	"github.com/tomtom215/platewise/internal/supervisor/services"
	ws "github.com/tomtom215/platewise/internal/websocket"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Platewise stopped with an error")
	}
}

//nolint:gocyclo // sequential startup steps
func run() error {
	cfg, err := config.Load()
	if err != nil {
		logging.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	logger := logging.Logger()

	logger.Info().
		Str("environment", cfg.Server.Environment).
		Str("catalog_driver", cfg.Catalog.Driver).
		Str("events_backend", cfg.Events.Backend).
		Msg("Starting Platewise with supervisor tree")

	watchConfig(logger)

	if cfg.Security.RateLimitDisabled {
		logger.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}
	if cfg.HasWildcardCORS() {
		logger.Warn().Msg("CORS allows any origin (CORS_ORIGINS=*); set explicit origins in production")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	events, err := initEvents(&cfg.Events, logger)
	if err != nil {
		return err
	}
	defer events.close(logger)

	catalog, err := openCatalog(ctx, &cfg.Catalog, events.bus, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := catalog.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing catalog")
		}
	}()

	prefs, err := preferences.Open(preferences.Config{
		Path:     cfg.Preferences.Path,
		InMemory: cfg.Preferences.InMemory,
	}, events.bus, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := prefs.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing preferences store")
		}
	}()

	engine, err := recommend.NewEngine(recommendConfig(&cfg.Recommend), catalog, catalog, prefs, logger)
	if err != nil {
		return err
	}
	defer engine.Close()
	initExternalScorer(&cfg.AIScorer, engine, logger)

	feeds := recommend.NewHub(engine, logger)
	defer feeds.Close()

	wsHub := ws.NewHub(feeds, logger)

	handler, err := api.NewHandler(api.Dependencies{
		Config:      cfg,
		Catalog:     catalog,
		Preferences: prefs,
		Engine:      engine,
		Feeds:       feeds,
		WSHub:       wsHub,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	handler.AddReadinessCheck("events", func(context.Context) error {
		if events.bus.BreakerState() == "open" {
			return errors.New("event publisher circuit open")
		}
		return nil
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.NewRouter(handler).SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return err
	}

	if events.embedded != nil {
		tree.AddDataService(services.NewEmbeddedNATSService(events.embedded, cfg.Server.ShutdownTimeout))
	}
	tree.AddMessagingService(services.NewFeedService(events.bus, feeds, services.FeedServiceConfig{
		PruneInterval: cfg.Recommend.PruneInterval,
		IdleTTL:       engine.Config().FeedIdleTTL,
	}, logger))
	tree.AddMessagingService(services.NewWebSocketHubService(wsHub))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logger.Info().Str("addr", server.Addr).Msg("Services added to supervisor tree")

	errCh := tree.ServeBackground(ctx)
	select {
	case <-ctx.Done():
		logger.Info().Msg("Shutdown signal received, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("Supervisor tree error")
		}
	}
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logger.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}

	logger.Info().Msg("Platewise stopped gracefully")
	return nil
}

// watchConfig reloads the log level when the config file changes. Other
// settings need a restart.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func watchConfig(logger zerolog.Logger) {
	path := config.ConfigFilePath()
	if path == "" {
		return
	}
	err := config.WatchConfigFile(path, func() {
		next, err := config.Load()
		if err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("Ignoring invalid config file change")
			return
		}
		logging.SetLevelString(next.Logging.Level)
		logger.Info().Str("level", next.Logging.Level).Msg("Log level reloaded")
	})
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("Config file watching unavailable")
	}
}
