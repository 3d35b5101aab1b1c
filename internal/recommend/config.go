// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package recommend

import (
	"fmt"
	"time"
)

// Rule weights on a 100-point scale. The ordering cuisine > price >
// dietary = allergen > meal time > delivery is what matters; the exact
// numbers are tunable.
const (
	WeightCuisine  = 40.0
	WeightPrice    = 25.0
	WeightDietary  = 20.0
	WeightAllergen = 20.0
	WeightMealTime = 12.0
	WeightDelivery = 5.0
)

// Partial and consolation scores.
const (
	// ScoreNoPreferenceBase is the flat score when the user set nothing.
	ScoreNoPreferenceBase = 50.0

	// ScorePopularityPerStar is added per rounded star on the no-preference path.
	ScorePopularityPerStar = 2.0

	// ScoreCuisineDiscover is the flexible-mode consolation for no cuisine overlap.
	ScoreCuisineDiscover = 8.0

	// ScorePriceAdjacent is awarded for a one-tier price difference.
	ScorePriceAdjacent = 15.0

	// ScorePriceOutOfRange is the flexible-mode token for a two-plus tier gap.
	ScorePriceOutOfRange = 5.0

	// ScoreDietaryMinimal is awarded when no menu fully fits the diet.
	ScoreDietaryMinimal = 4.0

	// ScoreAllergenCaution is awarded when some menu contains a listed allergen.
	ScoreAllergenCaution = 2.0

	// ScoreAllergenUnverified is awarded when there are no menus to check.
	ScoreAllergenUnverified = 4.0

	// ScoreMealTimeSpecialty is the specialty-only meal-time bonus.
	ScoreMealTimeSpecialty = 8.0

	// ScoreMealTimeBracket is the bracket-only meal-time bonus.
	ScoreMealTimeBracket = 5.0

	// ScoreDeliveryPenalty is subtracted when the restaurant cannot reach the user.
	ScoreDeliveryPenalty = 5.0

	// ScoreFlexibleRescue is the post-hoc score for flexible-mode misses.
	ScoreFlexibleRescue = 10.0

	// ScoreFallback is assigned to every entry of the fallback list.
	ScoreFallback = 1.0
)

const (
	// FlexibleThreshold is the preference signal count at which matching
	// relaxes from strict to flexible.
	FlexibleThreshold = 1

	// MaxDisplayReasons caps the reasons kept per ranked entry.
	MaxDisplayReasons = 2
)

// Config contains runtime configuration for the recommendation engine and
// its per-user feeds.
type Config struct {
	// DefaultLimit is used when a request does not set a limit.
	DefaultLimit int `json:"default_limit"`

	// MaxLimit caps the requested limit.
	MaxLimit int `json:"max_limit"`

	// DebounceWindow is how long a feed waits for more triggers before
	// starting a pass.
	DebounceWindow time.Duration `json:"debounce_window"`

	// ScoreCacheEnabled toggles the per-restaurant score cache.
	ScoreCacheEnabled bool `json:"score_cache_enabled"`

	// ScoreCacheTTL bounds how long a cached score survives without invalidation.
	ScoreCacheTTL time.Duration `json:"score_cache_ttl"`

	// ScoringConcurrency bounds concurrent scoring goroutines per pass.
	ScoringConcurrency int `json:"scoring_concurrency"`

	// RatingConcurrency bounds concurrent rating lookups per pass.
	RatingConcurrency int `json:"rating_concurrency"`

	// PassTimeout bounds a single pass including all collaborator calls.
	PassTimeout time.Duration `json:"pass_timeout"`

	// FeedIdleTTL is how long an unused feed is kept before pruning.
	FeedIdleTTL time.Duration `json:"feed_idle_ttl"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DefaultLimit:       10,
		MaxLimit:           50,
		DebounceWindow:     300 * time.Millisecond,
		ScoreCacheEnabled:  true,
		ScoreCacheTTL:      10 * time.Minute,
		ScoringConcurrency: 8,
		RatingConcurrency:  8,
		PassTimeout:        10 * time.Second,
		FeedIdleTTL:        30 * time.Minute,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.DefaultLimit < 1 {
		return fmt.Errorf("default_limit must be positive, got %d", c.DefaultLimit)
	}
	if c.MaxLimit < c.DefaultLimit {
		return fmt.Errorf("max_limit must be >= default_limit, got %d < %d", c.MaxLimit, c.DefaultLimit)
	}
	if c.DebounceWindow < 0 {
		return fmt.Errorf("debounce_window must be non-negative, got %v", c.DebounceWindow)
	}
	if c.ScoreCacheEnabled && c.ScoreCacheTTL <= 0 {
		return fmt.Errorf("score_cache_ttl must be positive when the cache is enabled, got %v", c.ScoreCacheTTL)
	}
	if c.ScoringConcurrency < 1 {
		return fmt.Errorf("scoring_concurrency must be positive, got %d", c.ScoringConcurrency)
	}
	if c.RatingConcurrency < 1 {
		return fmt.Errorf("rating_concurrency must be positive, got %d", c.RatingConcurrency)
	}
	if c.PassTimeout <= 0 {
		return fmt.Errorf("pass_timeout must be positive, got %v", c.PassTimeout)
	}
	if c.FeedIdleTTL < 0 {
		return fmt.Errorf("feed_idle_ttl must be non-negative, got %v", c.FeedIdleTTL)
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	// All fields are value types.
	cp := *c
	return &cp
}

// clampLimit applies the default and maximum to a requested limit.
func (c *Config) clampLimit(limit int) int {
	if limit <= 0 {
		return c.DefaultLimit
	}
	if limit > c.MaxLimit {
		return c.MaxLimit
	}
	return limit
}
