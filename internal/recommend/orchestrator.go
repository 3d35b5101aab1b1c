// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package recommend

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/platewise/internal/models"
)

// Ranking is the output of one ranking run before ratings are attached.
type Ranking struct {
	Results    []ScoreResult
	Fallback   bool
	Excluded   int
	Candidates int
}

// Ranker scores candidates and orders them. The zero value scores
// sequentially without a cache.
type Ranker struct {
	// Concurrency bounds scoring goroutines. Values below 1 mean 1.
	Concurrency int

	// Cache is optional. Owner and Version select the cached entries; Epoch
	// is the cache epoch captured before the candidates were read.
	Cache   *ScoreCache
	Owner   string
	Version uint64
	Epoch   uint64
}

// GroupMenusByRestaurant indexes active menus by restaurant ID, keeping the
// input order within each restaurant.
func GroupMenusByRestaurant(menus []models.Menu) map[string][]models.Menu {
	grouped := make(map[string][]models.Menu)
	for i := range menus {
		m := menus[i]
		if !m.IsActive {
			continue
		}
		grouped[m.RestaurantID] = append(grouped[m.RestaurantID], m)
	}
	return grouped
}

// dedupeRestaurants keeps the first occurrence of every ID.
func dedupeRestaurants(restaurants []models.Restaurant) []models.Restaurant {
	seen := make(map[string]struct{}, len(restaurants))
	out := make([]models.Restaurant, 0, len(restaurants))
	for i := range restaurants {
		if _, dup := seen[restaurants[i].ID]; dup {
			continue
		}
		seen[restaurants[i].ID] = struct{}{}
		out = append(out, restaurants[i])
	}
	return out
}

// Rank scores every restaurant, drops exclusions, and returns the top
// limit results. When every candidate is excluded the fallback list is
// returned instead. An error is returned only if ctx ends first.
func (rk Ranker) Rank(ctx context.Context, restaurants []models.Restaurant, menusByRestaurant map[string][]models.Menu, scorer *Scorer, limit int) (Ranking, error) {
	candidates := dedupeRestaurants(restaurants)
	outcomes := make([]Outcome, len(candidates))

	concurrency := rk.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = rk.scoreOne(scorer, candidates[i], menusByRestaurant[candidates[i].ID])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Ranking{}, err
	}

	survivors := make([]ScoreResult, 0, len(outcomes))
	excluded := 0
	for i := range outcomes {
		if outcomes[i].Excluded {
			excluded++
			continue
		}
		survivors = append(survivors, outcomes[i].Result)
	}

	ranking := Ranking{Excluded: excluded, Candidates: len(candidates)}
	if len(survivors) == 0 {
		ranking.Results = FallbackResults(candidates, limit)
		ranking.Fallback = len(ranking.Results) > 0
		return ranking, nil
	}
	ranking.Results = SelectTop(survivors, limit)
	return ranking, nil
}

//nolint:gocritic // hugeParam: restaurant is copied into the result
func (rk Ranker) scoreOne(scorer *Scorer, r models.Restaurant, menus []models.Menu) Outcome {
	if rk.Cache != nil {
		if out, ok := rk.Cache.Get(rk.Owner, r.ID, rk.Version, scorer.Bracket()); ok {
			if !out.Excluded {
				// Analytics may have moved since the entry was stored.
				out.Result.Restaurant = r
			}
			return out
		}
	}

	out := scorer.Score(r, menus)
	if rk.Cache != nil {
		rk.Cache.Put(rk.Owner, r.ID, rk.Version, scorer.Bracket(), rk.Epoch, out)
	}
	return out
}

// SelectTop sorts by score descending, keeping input order for ties, and
// truncates to limit (no truncation when limit <= 0). Reasons are capped to
// MaxDisplayReasons. The input slice is not modified.
func SelectTop(results []ScoreResult, limit int) []ScoreResult {
	sorted := make([]ScoreResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	for i := range sorted {
		sorted[i].Reasons = capReasons(sorted[i].Reasons)
	}
	return sorted
}

// FallbackResults gives every restaurant the same minimal score and a
// generic reason pair, in input order, truncated to limit.
func FallbackResults(restaurants []models.Restaurant, limit int) []ScoreResult {
	n := len(restaurants)
	if limit > 0 && n > limit {
		n = limit
	}
	out := make([]ScoreResult, n)
	for i := 0; i < n; i++ {
		out[i] = ScoreResult{
			Restaurant: restaurants[i],
			Score:      ScoreFallback,
			Reasons:    []string{reasonFallbackAvailable, reasonFallbackExplore},
		}
	}
	return out
}

// Rank is a convenience wrapper that scores restaurants for prefs at now
// with a sequential, uncached Ranker.
func Rank(ctx context.Context, restaurants []models.Restaurant, menus []models.Menu, prefs *models.Preferences, limit int, now time.Time) (Ranking, error) {
	return Ranker{}.Rank(ctx, restaurants, GroupMenusByRestaurant(menus), NewScorer(prefs, now), limit)
}

func capReasons(reasons []string) []string {
	n := len(reasons)
	if n > MaxDisplayReasons {
		n = MaxDisplayReasons
	}
	out := make([]string, n)
	copy(out, reasons[:n])
	return out
}
