// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting via environment variables
//
// Config is immutable after Load() and safe for concurrent read access.
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Logging     LoggingConfig     `koanf:"logging"`
	Catalog     CatalogConfig     `koanf:"catalog"`
	Preferences PreferencesConfig `koanf:"preferences"`
	Events      EventsConfig      `koanf:"events"`
	Recommend   RecommendConfig   `koanf:"recommend"`
	AIScorer    AIScorerConfig    `koanf:"ai_scorer"`
	Security    SecurityConfig    `koanf:"security"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging, production
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// Catalog drivers.
const (
	CatalogDriverDuckDB   = "duckdb"
	CatalogDriverPostgres = "postgres"
)

// CatalogConfig selects and configures the restaurant catalog store.
type CatalogConfig struct {
	// Driver is duckdb or postgres.
	Driver string `koanf:"driver"`

	// Path is the DuckDB file. ":memory:" keeps the catalog in process memory.
	Path string `koanf:"path"`

	// MaxMemory and Threads tune DuckDB. Threads 0 means runtime.NumCPU().
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`

	// DSN is the Postgres connection string.
	DSN      string `koanf:"dsn"`
	MaxConns int32  `koanf:"max_conns"`

	QueryTimeout time.Duration `koanf:"query_timeout"`

	// SeedDemoData loads a small demo catalog on an empty store.
	SeedDemoData bool `koanf:"seed_demo_data"`
}

// PreferencesConfig configures the BadgerDB preferences store.
type PreferencesConfig struct {
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`
}

// Event bus backends.
const (
	EventsBackendChannel = "gochannel"
	EventsBackendNATS    = "nats"
)

// EventsConfig configures the change-notification bus.
type EventsConfig struct {
	// Backend is gochannel (in-process) or nats.
	Backend string `koanf:"backend"`

	NATSURL        string `koanf:"nats_url"`
	EmbeddedServer bool   `koanf:"embedded_server"`
	StoreDir       string `koanf:"store_dir"`

	// BufferSize is the gochannel output buffer per subscriber.
	BufferSize int64 `koanf:"buffer_size"`

	// SubscribersCount is the number of NATS subscribers per topic.
	SubscribersCount int `koanf:"subscribers_count"`
}

// RecommendConfig mirrors recommend.Config for koanf loading.
type RecommendConfig struct {
	DefaultLimit       int           `koanf:"default_limit"`
	MaxLimit           int           `koanf:"max_limit"`
	DebounceWindow     time.Duration `koanf:"debounce_window"`
	ScoreCacheEnabled  bool          `koanf:"score_cache_enabled"`
	ScoreCacheTTL      time.Duration `koanf:"score_cache_ttl"`
	ScoringConcurrency int           `koanf:"scoring_concurrency"`
	RatingConcurrency  int           `koanf:"rating_concurrency"`
	PassTimeout        time.Duration `koanf:"pass_timeout"`
	FeedIdleTTL        time.Duration `koanf:"feed_idle_ttl"`
	PruneInterval      time.Duration `koanf:"prune_interval"`
}

// AIScorerConfig configures the optional external ranking service.
type AIScorerConfig struct {
	Enabled bool          `koanf:"enabled"`
	URL     string        `koanf:"url"`
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout"`

	// RateLimit is requests per second; Burst is the token bucket size.
	RateLimit float64 `koanf:"rate_limit"`
	Burst     int     `koanf:"burst"`

	// Circuit breaker settings.
	BreakerMaxRequests      uint32        `koanf:"breaker_max_requests"`
	BreakerInterval         time.Duration `koanf:"breaker_interval"`
	BreakerTimeout          time.Duration `koanf:"breaker_timeout"`
	BreakerFailureThreshold uint32        `koanf:"breaker_failure_threshold"`
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	TrustedProxies    []string      `koanf:"trusted_proxies"`
}

// Load reads configuration using the layered Koanf loader.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// Addr returns the host:port the HTTP server listens on.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
