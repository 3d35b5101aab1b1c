// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package main

import (
	"github.com/rs/zerolog"

	"github.com/tomtom215/platewise/internal/aiscorer"
	"github.com/tomtom215/platewise/internal/config"
	"github.com/tomtom215/platewise/internal/recommend"
)

// recommendConfig maps the loaded settings onto recommend.Config. Zero values
// keep the engine defaults.
func recommendConfig(rc *config.RecommendConfig) *recommend.Config {
	cfg := recommend.DefaultConfig()
	if rc.DefaultLimit > 0 {
		cfg.DefaultLimit = rc.DefaultLimit
	}
	if rc.MaxLimit > 0 {
		cfg.MaxLimit = rc.MaxLimit
	}
	if rc.DebounceWindow > 0 {
		cfg.DebounceWindow = rc.DebounceWindow
	}
	cfg.ScoreCacheEnabled = rc.ScoreCacheEnabled
	if rc.ScoreCacheTTL > 0 {
		cfg.ScoreCacheTTL = rc.ScoreCacheTTL
	}
	if rc.ScoringConcurrency > 0 {
		cfg.ScoringConcurrency = rc.ScoringConcurrency
	}
	if rc.RatingConcurrency > 0 {
		cfg.RatingConcurrency = rc.RatingConcurrency
	}
	if rc.PassTimeout > 0 {
		cfg.PassTimeout = rc.PassTimeout
	}
	if rc.FeedIdleTTL > 0 {
		cfg.FeedIdleTTL = rc.FeedIdleTTL
	}
	return cfg
}

// initExternalScorer installs the AI scorer on engine when enabled. A scorer
// that cannot be built is logged and skipped; rule scoring still serves.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func initExternalScorer(cfg *config.AIScorerConfig, engine *recommend.Engine, logger zerolog.Logger) *aiscorer.Client {
	if !cfg.Enabled {
		logger.Info().Msg("External AI scorer disabled (AI_SCORER_ENABLED=false)")
		return nil
	}

	client, err := aiscorer.New(cfg, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to create external AI scorer, using rule scoring only")
		return nil
	}
	engine.SetExternalScorer(client)
	logger.Info().
		Str("url", cfg.URL).
		Dur("timeout", cfg.Timeout).
		Float64("rate_limit", cfg.RateLimit).
		Msg("External AI scorer enabled")
	return client
}
