// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package recommend

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v, want nil", err)
	}
	if cfg.DebounceWindow != 300*time.Millisecond {
		t.Errorf("DebounceWindow = %v, want 300ms", cfg.DebounceWindow)
	}
	if !cfg.ScoreCacheEnabled {
		t.Error("ScoreCacheEnabled = false, want true")
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero default limit", func(c *Config) { c.DefaultLimit = 0 }},
		{"max below default", func(c *Config) { c.MaxLimit = c.DefaultLimit - 1 }},
		{"negative debounce", func(c *Config) { c.DebounceWindow = -time.Millisecond }},
		{"cache without ttl", func(c *Config) { c.ScoreCacheTTL = 0 }},
		{"zero scoring concurrency", func(c *Config) { c.ScoringConcurrency = 0 }},
		{"zero rating concurrency", func(c *Config) { c.RatingConcurrency = 0 }},
		{"zero pass timeout", func(c *Config) { c.PassTimeout = 0 }},
		{"negative idle ttl", func(c *Config) { c.FeedIdleTTL = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}

	t.Run("cache disabled without ttl is valid", func(t *testing.T) {
		t.Parallel()
		cfg := DefaultConfig()
		cfg.ScoreCacheEnabled = false
		cfg.ScoreCacheTTL = 0
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() = %v, want nil", err)
		}
	})
}

func TestConfigClampLimit(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	tests := []struct{ in, want int }{
		{0, cfg.DefaultLimit},
		{-3, cfg.DefaultLimit},
		{7, 7},
		{cfg.MaxLimit + 100, cfg.MaxLimit},
	}
	for _, tt := range tests {
		if got := cfg.clampLimit(tt.in); got != tt.want {
			t.Errorf("clampLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestConfigClone(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	clone := cfg.Clone()
	clone.MaxLimit = 999
	if cfg.MaxLimit == 999 {
		t.Error("Clone shares state with original")
	}
}

func TestWeightOrdering(t *testing.T) {
	t.Parallel()

	if !(WeightCuisine > WeightPrice &&
		WeightPrice > WeightDietary &&
		WeightDietary == WeightAllergen &&
		WeightAllergen > WeightMealTime &&
		WeightMealTime > WeightDelivery) {
		t.Error("rule weights must order cuisine > price > dietary = allergen > meal time > delivery")
	}
	if !(ScoreMealTimeSpecialty > ScoreMealTimeBracket && WeightMealTime > ScoreMealTimeSpecialty) {
		t.Error("meal-time bonuses must order both > specialty > bracket")
	}
}
