// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package recommend

import (
	"time"

	"github.com/tomtom215/platewise/internal/models"
)

// ScoreResult is the scored view of one restaurant for one pass.
type ScoreResult struct {
	Restaurant models.Restaurant `json:"restaurant"`
	Score      float64           `json:"score"`
	Reasons    []string          `json:"reasons"`
	Matched    bool              `json:"matched"`
}

// Outcome is what the scorer returns for a single restaurant.
// Result is meaningful only when Excluded is false.
type Outcome struct {
	Excluded bool
	Result   ScoreResult
}

// Recommendation is a ranked entry with its display rating attached.
type Recommendation struct {
	ScoreResult
	Rating models.RatingSnapshot `json:"rating"`
}

// Status describes the overall state of a pass.
type Status string

// Pass statuses. StatusEmpty means the catalog had no restaurants;
// StatusUnavailable means the catalog could not be read.
const (
	StatusOK          Status = "ok"
	StatusEmpty       Status = "empty"
	StatusUnavailable Status = "unavailable"
)

// Source names where the ranked list came from.
type Source string

// Ranking sources.
const (
	SourceRules    Source = "rules"
	SourceExternal Source = "external"
	SourceFallback Source = "fallback"
)

// Recovery actions offered to the client when a pass produced nothing.
const (
	ActionAdjustPreferences = "adjust_preferences"
	ActionRefresh           = "refresh"
)

// Trigger names why a pass ran.
type Trigger string

// Pass triggers.
const (
	TriggerInitial     Trigger = "initial"
	TriggerPreferences Trigger = "preferences"
	TriggerCatalog     Trigger = "catalog"
	TriggerManual      Trigger = "manual"
)

// Request is the input to Engine.Recommend.
type Request struct {
	UserID string
	Limit  int

	// Preferences overrides the preferences source when non-nil.
	Preferences *models.Preferences

	Trigger Trigger
}

// Result is one published recommendation list.
type Result struct {
	UserID             string           `json:"user_id"`
	Status             Status           `json:"status"`
	Source             Source           `json:"source"`
	Items              []Recommendation `json:"items"`
	Fallback           bool             `json:"fallback"`
	Excluded           int              `json:"excluded"`
	TotalCandidates    int              `json:"total_candidates"`
	PreferencesVersion uint64           `json:"preferences_version"`
	Generation         uint64           `json:"generation"`
	Trigger            Trigger          `json:"trigger,omitempty"`
	RecoveryActions    []string         `json:"recovery_actions,omitempty"`
	GeneratedAt        time.Time        `json:"generated_at"`
	LatencyMS          int64            `json:"latency_ms"`
}

// Stats is a snapshot of engine counters.
type Stats struct {
	Passes          int64   `json:"passes"`
	ExternalPasses  int64   `json:"external_passes"`
	FallbackPasses  int64   `json:"fallback_passes"`
	Unavailable     int64   `json:"unavailable"`
	ExternalErrors  int64   `json:"external_errors"`
	RatingErrors    int64   `json:"rating_errors"`
	CacheHits       int64   `json:"cache_hits"`
	CacheMisses     int64   `json:"cache_misses"`
	CacheHitRate    float64 `json:"cache_hit_rate"`
	CachedScores    int     `json:"cached_scores"`
	ExternalEnabled bool    `json:"external_enabled"`
}
