// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/platewise/internal/config"
	"github.com/tomtom215/platewise/internal/eventprocessor"
)

// eventComponents is the change-notification bus plus the embedded NATS
// server backing it, if any.
type eventComponents struct {
	bus      *eventprocessor.Bus
	embedded *eventprocessor.EmbeddedServer
}

// close releases the bus. The embedded server is stopped by its supervisor
// service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (c *eventComponents) close(logger zerolog.Logger) {
	if c.bus != nil {
		if err := c.bus.Close(); err != nil {
			logger.Warn().Err(err).Msg("Error closing event bus")
		}
	}
}

// busConfig maps the loaded settings onto eventprocessor.Config.
func busConfig(ec *config.EventsConfig) eventprocessor.Config {
	cfg := eventprocessor.DefaultConfig()
	if ec.BufferSize > 0 {
		cfg.BufferSize = ec.BufferSize
	}
	if ec.NATSURL != "" {
		cfg.NATSURL = ec.NATSURL
	}
	if ec.SubscribersCount > 0 {
		cfg.SubscribersCount = ec.SubscribersCount
	}
	return cfg
}

// initEvents builds the configured event bus. With the NATS backend and an
// embedded server, the server is started first and the bus connects to it.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func initEvents(ec *config.EventsConfig, logger zerolog.Logger) (*eventComponents, error) {
	cfg := busConfig(ec)

	switch ec.Backend {
	case config.EventsBackendChannel, "":
		bus, err := eventprocessor.NewChannelBus(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("create in-process event bus: %w", err)
		}
		logger.Info().Str("backend", config.EventsBackendChannel).Msg("Event bus ready")
		return &eventComponents{bus: bus}, nil

	case config.EventsBackendNATS:
		if !eventprocessor.NATSAvailable {
			return nil, eventprocessor.ErrNATSNotEnabled
		}
		comps := &eventComponents{}
		if ec.EmbeddedServer {
			srv, err := eventprocessor.NewEmbeddedServer(eventprocessor.EmbeddedServerConfig{
				Host:     "127.0.0.1",
				Port:     -1,
				StoreDir: ec.StoreDir,
			})
			if err != nil {
				return nil, fmt.Errorf("start embedded NATS: %w", err)
			}
			comps.embedded = srv
			cfg.NATSURL = srv.ClientURL()
			logger.Info().Str("url", cfg.NATSURL).Msg("Embedded NATS server started")
		}
		bus, err := eventprocessor.NewNATSBus(cfg, logger)
		if err != nil {
			if comps.embedded != nil {
				_ = comps.embedded.Shutdown(context.Background())
			}
			return nil, fmt.Errorf("connect NATS event bus: %w", err)
		}
		comps.bus = bus
		logger.Info().Str("backend", config.EventsBackendNATS).Str("url", cfg.NATSURL).Msg("Event bus ready")
		return comps, nil

	default:
		return nil, fmt.Errorf("unknown events backend %q", ec.Backend)
	}
}
