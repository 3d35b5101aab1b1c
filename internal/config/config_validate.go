// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package config

import (
	"fmt"
	"time"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateLogging,
		c.validateCatalog,
		c.validatePreferences,
		c.validateEvents,
		c.validateRecommend,
		c.validateAIScorer,
		c.validateSecurity,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

// validEnvironments defines the allowed deployment environments
var validEnvironments = map[string]bool{
	"development": true,
	"staging":     true,
	"production":  true,
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %v", c.Server.Timeout)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %v", c.Server.ShutdownTimeout)
	}
	if !validEnvironments[c.Server.Environment] {
		return fmt.Errorf("ENVIRONMENT must be one of: development, staging, production")
	}
	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

func (c *Config) validateCatalog() error {
	switch c.Catalog.Driver {
	case CatalogDriverDuckDB:
		if c.Catalog.Path == "" {
			return fmt.Errorf("DUCKDB_PATH is required when CATALOG_DRIVER=duckdb")
		}
		if c.Catalog.Threads < 0 {
			return fmt.Errorf("DUCKDB_THREADS must be non-negative, got %d", c.Catalog.Threads)
		}
	case CatalogDriverPostgres:
		if c.Catalog.DSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required when CATALOG_DRIVER=postgres")
		}
		if c.Catalog.MaxConns < 1 {
			return fmt.Errorf("POSTGRES_MAX_CONNS must be positive, got %d", c.Catalog.MaxConns)
		}
	default:
		return fmt.Errorf("CATALOG_DRIVER must be one of: duckdb, postgres")
	}
	if c.Catalog.QueryTimeout <= 0 {
		return fmt.Errorf("CATALOG_QUERY_TIMEOUT must be positive, got %v", c.Catalog.QueryTimeout)
	}
	return nil
}

func (c *Config) validatePreferences() error {
	if !c.Preferences.InMemory && c.Preferences.Path == "" {
		return fmt.Errorf("PREFERENCES_PATH is required unless PREFERENCES_IN_MEMORY=true")
	}
	return nil
}

func (c *Config) validateEvents() error {
	switch c.Events.Backend {
	case EventsBackendChannel:
		if c.Events.BufferSize < 0 {
			return fmt.Errorf("EVENTS_BUFFER_SIZE must be non-negative, got %d", c.Events.BufferSize)
		}
		return nil
	case EventsBackendNATS:
		if err := validateNATSURL(c.Events.NATSURL); err != nil {
			return fmt.Errorf("NATS_URL is invalid: %w", err)
		}
		if c.Events.EmbeddedServer && c.Events.StoreDir == "" {
			return fmt.Errorf("NATS_STORE_DIR is required when NATS_EMBEDDED=true")
		}
		if c.Events.SubscribersCount < 1 {
			return fmt.Errorf("NATS_SUBSCRIBERS must be positive, got %d", c.Events.SubscribersCount)
		}
		return nil
	default:
		return fmt.Errorf("EVENTS_BACKEND must be one of: gochannel, nats")
	}
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	if r.DefaultLimit < 1 {
		return fmt.Errorf("RECOMMEND_DEFAULT_LIMIT must be positive, got %d", r.DefaultLimit)
	}
	if r.MaxLimit < r.DefaultLimit {
		return fmt.Errorf("RECOMMEND_MAX_LIMIT must be >= RECOMMEND_DEFAULT_LIMIT, got %d < %d", r.MaxLimit, r.DefaultLimit)
	}
	if r.DebounceWindow < 0 {
		return fmt.Errorf("RECOMMEND_DEBOUNCE_WINDOW must be non-negative, got %v", r.DebounceWindow)
	}
	if r.ScoreCacheEnabled && r.ScoreCacheTTL <= 0 {
		return fmt.Errorf("RECOMMEND_SCORE_CACHE_TTL must be positive when the score cache is enabled")
	}
	if r.ScoringConcurrency < 1 || r.RatingConcurrency < 1 {
		return fmt.Errorf("recommend concurrency limits must be positive, got scoring=%d rating=%d",
			r.ScoringConcurrency, r.RatingConcurrency)
	}
	if r.PassTimeout <= 0 {
		return fmt.Errorf("RECOMMEND_PASS_TIMEOUT must be positive, got %v", r.PassTimeout)
	}
	if r.FeedIdleTTL < 0 || r.PruneInterval < 0 {
		return fmt.Errorf("feed idle TTL and prune interval must be non-negative")
	}
	return nil
}

func (c *Config) validateAIScorer() error {
	a := c.AIScorer
	if !a.Enabled {
		return nil
	}
	if a.URL == "" {
		return fmt.Errorf("AI_SCORER_URL is required when AI_SCORER_ENABLED=true")
	}
	if err := validateHTTPURL(a.URL, "AI_SCORER_URL"); err != nil {
		return err
	}
	if a.Timeout <= 0 {
		return fmt.Errorf("AI_SCORER_TIMEOUT must be positive, got %v", a.Timeout)
	}
	if a.RateLimit <= 0 || a.Burst < 1 {
		return fmt.Errorf("AI_SCORER_RATE_LIMIT and AI_SCORER_BURST must be positive")
	}
	if a.BreakerFailureThreshold == 0 {
		return fmt.Errorf("AI_SCORER_BREAKER_THRESHOLD must be positive")
	}
	return nil
}

// Rate limit constants
const (
	minRateLimitRequests = 1           // Minimum 1 request allowed
	maxRateLimitRequests = 100000      // Maximum 100K requests per window
	minRateLimitWindow   = time.Second // Minimum 1 second window
	maxRateLimitWindow   = time.Hour   // Maximum 1 hour window
)

func (c *Config) validateSecurity() error {
	if c.HasWildcardCORS() && len(c.Security.CORSOrigins) > 1 {
		return fmt.Errorf("CORS_ORIGINS must not mix * with explicit origins")
	}
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// HasWildcardCORS checks if CORS is configured with wildcard origins
func (c *Config) HasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}
