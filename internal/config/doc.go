// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

/*
Package config provides centralized configuration management for Platewise.

Configuration is layered with Koanf v2: built-in defaults, then an optional
YAML file (CONFIG_PATH or config.yaml / /etc/platewise/config.yaml), then
environment variables. Only environment variables listed in the mapping table
are read.

# Sections

  - server: HTTP listener (HTTP_PORT, HTTP_HOST, HTTP_TIMEOUT, ENVIRONMENT)
  - logging: zerolog level and format (LOG_LEVEL, LOG_FORMAT, LOG_CALLER)
  - catalog: restaurant store, duckdb or postgres (CATALOG_DRIVER, DUCKDB_PATH, POSTGRES_DSN)
  - preferences: BadgerDB preferences store (PREFERENCES_PATH, PREFERENCES_IN_MEMORY)
  - events: change-notification bus, gochannel or nats (EVENTS_BACKEND, NATS_URL)
  - recommend: engine limits, debounce window and score cache (RECOMMEND_*)
  - ai_scorer: optional external ranking service (AI_SCORER_*)
  - security: CORS and rate limiting (CORS_ORIGINS, RATE_LIMIT_REQUESTS)

# Usage

	cfg, err := config.Load()
	if err != nil {
	    return fmt.Errorf("load config: %w", err)
	}
	srv := &http.Server{Addr: cfg.Server.Addr()}

Comma-separated environment values are split for slice fields such as
CORS_ORIGINS. Load validates the result and returns the first violation.
*/
package config
