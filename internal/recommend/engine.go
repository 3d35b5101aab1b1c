// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/platewise/internal/metrics"
	"github.com/tomtom215/platewise/internal/models"
)

// ErrCatalogUnavailable is returned when the restaurant list cannot be read.
var ErrCatalogUnavailable = errors.New("restaurant catalog unavailable")

// Catalog supplies the candidate restaurants and their active menus.
// Both calls return complete snapshots.
type Catalog interface {
	ListActiveRestaurants(ctx context.Context) ([]models.Restaurant, error)
	ListActiveMenus(ctx context.Context) ([]models.Menu, error)
}

// RatingSource returns the non-null star ratings of one restaurant.
type RatingSource interface {
	ListRatings(ctx context.Context, restaurantID string) ([]int, error)
}

// PreferencesSource returns a user's saved preferences, or nil when the
// user has none.
type PreferencesSource interface {
	GetPreferences(ctx context.Context, userID string) (*models.Preferences, error)
}

// ExternalRequest is sent to an external scorer.
type ExternalRequest struct {
	UserID       string              `json:"user_id"`
	Preferences  *models.Preferences `json:"preferences"`
	CandidateIDs []string            `json:"candidate_ids"`
	Limit        int                 `json:"limit"`
}

// ExternalScore is one entry of an externally ranked list.
type ExternalScore struct {
	RestaurantID string   `json:"restaurant_id"`
	Score        float64  `json:"score"`
	Reasons      []string `json:"reasons"`
}

// ExternalScorer ranks candidates outside the rule engine. Any error or an
// empty answer makes the engine fall back to its own rules.
type ExternalScorer interface {
	Rank(ctx context.Context, req ExternalRequest) ([]ExternalScore, error)
}

// Engine produces ranked recommendation lists. It is safe for concurrent use.
type Engine struct {
	config *Config
	logger zerolog.Logger

	catalog Catalog
	ratings RatingSource
	prefs   PreferencesSource

	extMu    sync.RWMutex
	external ExternalScorer

	cache *ScoreCache
	now   func() time.Time

	passes         atomic.Int64
	externalPasses atomic.Int64
	fallbackPasses atomic.Int64
	unavailable    atomic.Int64
	externalErrors atomic.Int64
	ratingErrors   atomic.Int64
}

// NewEngine creates a recommendation engine. ratings and prefs may be nil:
// without a rating source the restaurant's stored analytics are used for
// display, and without a preference source every user is treated as having
// no preferences unless the request carries them.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, catalog Catalog, ratings RatingSource, prefs PreferencesSource, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if catalog == nil {
		return nil, errors.New("catalog is required")
	}

	e := &Engine{
		config:  cfg.Clone(),
		logger:  logger.With().Str("component", "recommend").Logger(),
		catalog: catalog,
		ratings: ratings,
		prefs:   prefs,
		now:     time.Now,
	}
	if cfg.ScoreCacheEnabled {
		e.cache = NewScoreCache(cfg.ScoreCacheTTL)
	}
	return e, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// SetExternalScorer installs or removes (nil) the external scorer.
func (e *Engine) SetExternalScorer(s ExternalScorer) {
	e.extMu.Lock()
	defer e.extMu.Unlock()
	e.external = s
	e.logger.Info().Bool("enabled", s != nil).Msg("external scorer updated")
}

func (e *Engine) externalScorer() ExternalScorer {
	e.extMu.RLock()
	defer e.extMu.RUnlock()
	return e.external
}

// Recommend runs one ranking pass. Collaborator failures never fail the
// pass: an unreadable catalog yields StatusUnavailable, and menu, rating,
// preference or external scorer failures degrade to the rule engine with
// missing data. An error is returned only when ctx ends during the pass.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	e.passes.Add(1)

	passCtx, cancel := context.WithTimeout(ctx, e.config.PassTimeout)
	defer cancel()

	limit := e.config.clampLimit(req.Limit)
	logger := e.logger.With().Str("user_id", req.UserID).Str("trigger", string(req.Trigger)).Logger()

	prefs, version := e.loadPreferences(passCtx, req, logger)

	res := &Result{
		UserID:             req.UserID,
		Source:             SourceRules,
		Items:              []Recommendation{},
		PreferencesVersion: version,
		Trigger:            req.Trigger,
	}

	var epoch uint64
	if e.cache != nil {
		epoch = e.cache.Epoch()
	}

	restaurants, menus, menusOK, err := e.loadCandidates(passCtx, logger)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.unavailable.Add(1)
		logger.Warn().Err(err).Msg("catalog unavailable")
		return e.finish(res, StatusUnavailable, start), nil
	}
	res.TotalCandidates = len(restaurants)
	if len(restaurants) == 0 {
		return e.finish(res, StatusEmpty, start), nil
	}

	scorer := NewScorer(prefs, e.now())
	var ranked []ScoreResult

	if ext := e.externalScorer(); ext != nil {
		if results, ok := e.rankExternal(passCtx, ext, req.UserID, prefs, restaurants, limit, logger); ok {
			ranked = results
			res.Source = SourceExternal
			e.externalPasses.Add(1)
		}
	}

	if ranked == nil {
		ranker := Ranker{
			Concurrency: e.config.ScoringConcurrency,
			Owner:       req.UserID,
			Version:     version,
			Epoch:       epoch,
		}
		// Outcomes scored without menus are only valid for this pass.
		if e.cache != nil && menusOK {
			ranker.Cache = e.cache
		}

		ranking, err := ranker.Rank(passCtx, restaurants, GroupMenusByRestaurant(menus), scorer, limit)
		if err != nil {
			return nil, fmt.Errorf("rank candidates: %w", err)
		}
		ranked = ranking.Results
		res.Excluded = ranking.Excluded
		res.TotalCandidates = ranking.Candidates
		if ranking.Fallback {
			res.Fallback = true
			res.Source = SourceFallback
			e.fallbackPasses.Add(1)
		}
	}

	res.Items = e.attachRatings(passCtx, ranked)

	logger.Debug().
		Int("candidates", res.TotalCandidates).
		Int("excluded", res.Excluded).
		Int("returned", len(res.Items)).
		Str("source", string(res.Source)).
		Int("signals", scorer.SignalCount()).
		Bool("flexible", scorer.Flexible()).
		Msg("recommendation pass complete")

	return e.finish(res, StatusOK, start), nil
}

func (e *Engine) finish(res *Result, status Status, start time.Time) *Result {
	res.Status = status
	if status != StatusOK {
		res.RecoveryActions = []string{ActionAdjustPreferences, ActionRefresh}
	}
	res.GeneratedAt = e.now()
	res.LatencyMS = time.Since(start).Milliseconds()
	metrics.RecordRecommendPass(string(res.Source), string(status), time.Since(start), res.Excluded, res.Fallback)
	return res
}

// loadPreferences returns the request override or the stored preferences.
// Overrides report version 0 so they are never cached.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) loadPreferences(ctx context.Context, req Request, logger zerolog.Logger) (*models.Preferences, uint64) {
	if req.Preferences != nil {
		return req.Preferences.Normalized(), 0
	}
	if e.prefs == nil || req.UserID == "" {
		return &models.Preferences{UserID: req.UserID}, 0
	}

	p, err := e.prefs.GetPreferences(ctx, req.UserID)
	if err != nil {
		logger.Warn().Err(err).Msg("preferences unavailable, scoring without preferences")
		return &models.Preferences{UserID: req.UserID}, 0
	}
	if p == nil {
		return &models.Preferences{UserID: req.UserID}, 0
	}
	return p.Normalized(), p.Version
}

// loadCandidates reads restaurants and menus. A menu failure is logged and
// treated as "no menus" with menusOK false; a restaurant failure wraps
// ErrCatalogUnavailable.
func (e *Engine) loadCandidates(ctx context.Context, logger zerolog.Logger) (restaurants []models.Restaurant, menus []models.Menu, menusOK bool, err error) {
	restaurants, err = e.catalog.ListActiveRestaurants(ctx)
	if err != nil {
		return nil, nil, false, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}

	menus, err = e.catalog.ListActiveMenus(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("menus unavailable, scoring without menus and bypassing the score cache")
		return restaurants, nil, false, nil
	}
	return restaurants, menus, true, nil
}

// rankExternal asks the external scorer for a ranking and maps it onto the
// candidate set. ok is false when the scorer failed or returned nothing
// usable.
func (e *Engine) rankExternal(ctx context.Context, ext ExternalScorer, userID string, prefs *models.Preferences,
	restaurants []models.Restaurant, limit int, logger zerolog.Logger) ([]ScoreResult, bool) {
	candidates := dedupeRestaurants(restaurants)
	byID := make(map[string]models.Restaurant, len(candidates))
	ids := make([]string, 0, len(candidates))
	for i := range candidates {
		byID[candidates[i].ID] = candidates[i]
		ids = append(ids, candidates[i].ID)
	}

	scores, err := ext.Rank(ctx, ExternalRequest{
		UserID:       userID,
		Preferences:  prefs,
		CandidateIDs: ids,
		Limit:        limit,
	})
	if err != nil {
		e.externalErrors.Add(1)
		logger.Warn().Err(err).Msg("external scorer failed, using rule engine")
		return nil, false
	}

	results := make([]ScoreResult, 0, len(scores))
	seen := make(map[string]struct{}, len(scores))
	for _, s := range scores {
		r, known := byID[s.RestaurantID]
		if !known {
			continue
		}
		if _, dup := seen[s.RestaurantID]; dup {
			continue
		}
		seen[s.RestaurantID] = struct{}{}

		score := s.Score
		if math.IsNaN(score) || score < 0 {
			score = 0
		}
		reasons := s.Reasons
		if reasons == nil {
			reasons = []string{}
		}
		results = append(results, ScoreResult{Restaurant: r, Score: score, Reasons: reasons, Matched: true})
	}

	if len(results) == 0 {
		logger.Debug().Int("returned", len(scores)).Msg("external scorer returned no known restaurants, using rule engine")
		return nil, false
	}
	return SelectTop(results, limit), true
}

// attachRatings fetches a rating snapshot for every ranked entry with
// bounded concurrency. A failed lookup yields an unrated snapshot.
func (e *Engine) attachRatings(ctx context.Context, ranked []ScoreResult) []Recommendation {
	out := make([]Recommendation, len(ranked))
	for i := range ranked {
		out[i].ScoreResult = ranked[i]
	}
	if len(ranked) == 0 {
		return out
	}

	if e.ratings == nil {
		for i := range out {
			r := out[i].Restaurant
			if r.RatingCount > 0 && r.AverageRating != nil {
				avg := RoundRating(*r.AverageRating)
				out[i].Rating = models.RatingSnapshot{Average: &avg, Count: r.RatingCount}
			}
		}
		return out
	}

	var g errgroup.Group
	g.SetLimit(e.config.RatingConcurrency)
	for i := range out {
		g.Go(func() error {
			snap, err := e.RatingSnapshot(ctx, out[i].Restaurant.ID)
			if err != nil {
				e.ratingErrors.Add(1)
				metrics.RecordRatingFetchError()
				e.logger.Debug().Err(err).Str("restaurant_id", out[i].Restaurant.ID).Msg("rating lookup failed")
				snap = models.RatingSnapshot{}
			}
			out[i].Rating = snap
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // goroutines never return errors

	return out
}

// RatingSnapshot aggregates the live ratings of one restaurant.
func (e *Engine) RatingSnapshot(ctx context.Context, restaurantID string) (models.RatingSnapshot, error) {
	if e.ratings == nil {
		return models.RatingSnapshot{}, errors.New("no rating source configured")
	}
	values, err := e.ratings.ListRatings(ctx, restaurantID)
	if err != nil {
		return models.RatingSnapshot{}, fmt.Errorf("list ratings: %w", err)
	}
	return AggregateRatings(values), nil
}

// Invalidate drops cached scores affected by a change event.
//
//nolint:gocritic // hugeParam: event passed by value
func (e *Engine) Invalidate(ev models.ChangeEvent) {
	if e.cache == nil {
		return
	}

	var removed int
	switch {
	case ev.Kind == models.ChangePreferences && ev.UserID != "":
		removed = e.cache.InvalidateOwner(ev.UserID)
	case ev.Kind.IsCatalog() && ev.RestaurantID != "":
		removed = e.cache.InvalidateRestaurant(ev.RestaurantID)
	case ev.Kind.IsCatalog():
		removed = e.cache.InvalidateAll()
	default:
		return
	}

	e.logger.Debug().
		Str("kind", string(ev.Kind)).
		Str("restaurant_id", ev.RestaurantID).
		Str("user_id", ev.UserID).
		Int("removed", removed).
		Msg("score cache invalidated")
}

// Stats returns a snapshot of engine counters.
func (e *Engine) Stats() Stats {
	s := Stats{
		Passes:          e.passes.Load(),
		ExternalPasses:  e.externalPasses.Load(),
		FallbackPasses:  e.fallbackPasses.Load(),
		Unavailable:     e.unavailable.Load(),
		ExternalErrors:  e.externalErrors.Load(),
		RatingErrors:    e.ratingErrors.Load(),
		ExternalEnabled: e.externalScorer() != nil,
	}
	if e.cache != nil {
		cs := e.cache.Stats()
		s.CacheHits = cs.Hits
		s.CacheMisses = cs.Misses
		s.CacheHitRate = e.cache.HitRate()
		s.CachedScores = e.cache.Len()
	}
	return s
}

// Close releases background resources.
func (e *Engine) Close() {
	if e.cache != nil {
		e.cache.Close()
	}
}
