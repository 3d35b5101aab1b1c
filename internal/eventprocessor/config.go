// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package eventprocessor

import (
	"fmt"
	"time"
)

// Config configures a Bus.
type Config struct {
	// BufferSize is the gochannel output buffer per subscriber.
	BufferSize int64

	// NATSURL is the server URL for the NATS backend.
	NATSURL string

	// SubscribersCount is the number of NATS subscriber goroutines per topic.
	SubscribersCount int

	// MaxReconnects and ReconnectWait control NATS reconnection.
	MaxReconnects int
	ReconnectWait time.Duration

	// CloseTimeout bounds how long a consumer waits for in-flight handlers.
	CloseTimeout time.Duration

	// Retry settings for consumer handlers.
	RetryMaxRetries      int
	RetryInitialInterval time.Duration

	Breaker CircuitBreakerConfig
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		BufferSize:           256,
		NATSURL:              "nats://127.0.0.1:4222",
		SubscribersCount:     1,
		MaxReconnects:        -1,
		ReconnectWait:        2 * time.Second,
		CloseTimeout:         10 * time.Second,
		RetryMaxRetries:      3,
		RetryInitialInterval: 50 * time.Millisecond,
		Breaker:              DefaultCircuitBreakerConfig("event-publisher"),
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.BufferSize < 0 {
		return fmt.Errorf("buffer size must be non-negative, got %d", c.BufferSize)
	}
	if c.RetryMaxRetries < 0 {
		return fmt.Errorf("retry max retries must be non-negative, got %d", c.RetryMaxRetries)
	}
	if c.CloseTimeout <= 0 {
		return fmt.Errorf("close timeout must be positive, got %v", c.CloseTimeout)
	}
	if c.Breaker.FailureThreshold == 0 {
		return fmt.Errorf("circuit breaker failure threshold must be positive")
	}
	return nil
}

// CircuitBreakerConfig holds circuit breaker settings.
type CircuitBreakerConfig struct {
	Name             string
	MaxRequests      uint32        // Allowed in half-open state
	Interval         time.Duration // Reset interval for counts
	Timeout          time.Duration // Time to stay open
	FailureThreshold uint32        // Consecutive failures before opening
}

// DefaultCircuitBreakerConfig returns production defaults.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          10 * time.Second,
		FailureThreshold: 5,
	}
}

// EmbeddedServerConfig configures the embedded NATS server.
type EmbeddedServerConfig struct {
	Host     string
	Port     int
	StoreDir string
}
