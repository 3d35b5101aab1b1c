// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/platewise/config.yaml",
	"/etc/platewise/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8480,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			Environment:     "development",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Catalog: CatalogConfig{
			Driver:       CatalogDriverDuckDB,
			Path:         "/data/platewise.duckdb",
			MaxMemory:    "1GB",
			Threads:      0,
			DSN:          "",
			MaxConns:     10,
			QueryTimeout: 5 * time.Second,
			SeedDemoData: false,
		},
		Preferences: PreferencesConfig{
			Path:     "/data/preferences",
			InMemory: false,
		},
		Events: EventsConfig{
			Backend:          EventsBackendChannel,
			NATSURL:          "nats://127.0.0.1:4222",
			EmbeddedServer:   true,
			StoreDir:         "/data/nats",
			BufferSize:       256,
			SubscribersCount: 1,
		},
		Recommend: RecommendConfig{
			DefaultLimit:       10,
			MaxLimit:           50,
			DebounceWindow:     300 * time.Millisecond,
			ScoreCacheEnabled:  true,
			ScoreCacheTTL:      10 * time.Minute,
			ScoringConcurrency: 8,
			RatingConcurrency:  8,
			PassTimeout:        10 * time.Second,
			FeedIdleTTL:        30 * time.Minute,
			PruneInterval:      time.Minute,
		},
		AIScorer: AIScorerConfig{
			Enabled:                 false,
			URL:                     "",
			Timeout:                 2 * time.Second,
			RateLimit:               20,
			Burst:                   5,
			BreakerMaxRequests:      3,
			BreakerInterval:         time.Minute,
			BreakerTimeout:          30 * time.Second,
			BreakerFailureThreshold: 5,
		},
		Security: SecurityConfig{
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
			TrustedProxies:    []string{},
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// DUCKDB_PATH -> catalog.path
	// RECOMMEND_DEBOUNCE_WINDOW -> recommend.debounce_window
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// ConfigFilePath returns the config file Load would read, or "" when
// configuration comes only from defaults and the environment.
func ConfigFilePath() string {
	return findConfigFile()
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
	"security.trusted_proxies",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings while the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from YAML file or defaults)
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Unmapped variables are ignored so unrelated environment does not leak
// into the configuration.
var envMappings = map[string]string{
	// Server
	"http_port":        "server.port",
	"http_host":        "server.host",
	"http_timeout":     "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"environment":      "server.environment",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Catalog
	"catalog_driver":        "catalog.driver",
	"duckdb_path":           "catalog.path",
	"duckdb_max_memory":     "catalog.max_memory",
	"duckdb_threads":        "catalog.threads",
	"database_url":          "catalog.dsn",
	"postgres_dsn":          "catalog.dsn",
	"postgres_max_conns":    "catalog.max_conns",
	"catalog_query_timeout": "catalog.query_timeout",
	"seed_demo_data":        "catalog.seed_demo_data",

	// Preferences
	"preferences_path":      "preferences.path",
	"preferences_in_memory": "preferences.in_memory",

	// Events
	"events_backend":     "events.backend",
	"nats_url":           "events.nats_url",
	"nats_embedded":      "events.embedded_server",
	"nats_store_dir":     "events.store_dir",
	"events_buffer_size": "events.buffer_size",
	"nats_subscribers":   "events.subscribers_count",

	// Recommendation engine
	"recommend_default_limit":       "recommend.default_limit",
	"recommend_max_limit":           "recommend.max_limit",
	"recommend_debounce_window":     "recommend.debounce_window",
	"recommend_score_cache_enabled": "recommend.score_cache_enabled",
	"recommend_score_cache_ttl":     "recommend.score_cache_ttl",
	"recommend_scoring_concurrency": "recommend.scoring_concurrency",
	"recommend_rating_concurrency":  "recommend.rating_concurrency",
	"recommend_pass_timeout":        "recommend.pass_timeout",
	"recommend_feed_idle_ttl":       "recommend.feed_idle_ttl",
	"recommend_prune_interval":      "recommend.prune_interval",

	// External scorer
	"ai_scorer_enabled":           "ai_scorer.enabled",
	"ai_scorer_url":               "ai_scorer.url",
	"ai_scorer_api_key":           "ai_scorer.api_key",
	"ai_scorer_timeout":           "ai_scorer.timeout",
	"ai_scorer_rate_limit":        "ai_scorer.rate_limit",
	"ai_scorer_burst":             "ai_scorer.burst",
	"ai_scorer_breaker_max_reqs":  "ai_scorer.breaker_max_requests",
	"ai_scorer_breaker_interval":  "ai_scorer.breaker_interval",
	"ai_scorer_breaker_timeout":   "ai_scorer.breaker_timeout",
	"ai_scorer_breaker_threshold": "ai_scorer.breaker_failure_threshold",

	// Security
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",
	"trusted_proxies":     "security.trusted_proxies",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - DUCKDB_PATH -> catalog.path
//   - AI_SCORER_URL -> ai_scorer.url
//
// Returns an empty string for unmapped keys so koanf skips them.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}

// WatchConfigFile sets up a file watcher for hot-reload capability.
// The caller is responsible for synchronizing access to any configuration
// swapped in by the callback.
func WatchConfigFile(path string, callback func()) error {
	provider := file.Provider(path)
	return provider.Watch(func(event interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}
