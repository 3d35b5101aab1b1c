// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package recommend

import (
	"sync"
	"time"

	"github.com/tomtom215/platewise/internal/cache"
	"github.com/tomtom215/platewise/internal/metrics"
	"github.com/tomtom215/platewise/internal/models"
)

// scoreKey identifies one cached outcome. A preference save bumps Version,
// which makes every older entry for that owner unreachable; the bracket is
// part of the key because meal-time scoring depends on the clock.
type scoreKey struct {
	Owner        string
	RestaurantID string
	Version      uint64
	Bracket      models.MealTime
}

// ScoreCache holds per-restaurant outcomes across passes. Catalog changes
// must be reported through InvalidateRestaurant or InvalidateAll.
//
// Every invalidation advances the epoch. A pass captures Epoch before it
// reads the catalog and hands it to Put, so outcomes computed from a
// snapshot older than the latest invalidation are never stored.
type ScoreCache struct {
	c *cache.Cache[scoreKey, Outcome]

	mu    sync.RWMutex
	epoch uint64
}

// NewScoreCache creates a cache whose entries expire after ttl.
func NewScoreCache(ttl time.Duration) *ScoreCache {
	return &ScoreCache{c: cache.New[scoreKey, Outcome](ttl)}
}

// Get returns a cached outcome. Version 0 means the preferences were never
// saved and is never cached.
func (sc *ScoreCache) Get(owner, restaurantID string, version uint64, bracket models.MealTime) (Outcome, bool) {
	if version == 0 {
		return Outcome{}, false
	}
	out, ok := sc.c.Get(scoreKey{owner, restaurantID, version, bracket})
	metrics.RecordScoreCacheLookup(ok)
	return out, ok
}

// Epoch returns the current invalidation epoch.
func (sc *ScoreCache) Epoch() uint64 {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.epoch
}

// Put stores an outcome computed by a pass that started at epoch. It
// reports false when the write was dropped because the epoch is stale.
//
//nolint:gocritic // hugeParam: Outcome is stored by value
func (sc *ScoreCache) Put(owner, restaurantID string, version uint64, bracket models.MealTime, epoch uint64, out Outcome) bool {
	if version == 0 {
		return false
	}
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	if epoch != sc.epoch {
		return false
	}
	sc.c.Set(scoreKey{owner, restaurantID, version, bracket}, out)
	return true
}

// invalidate advances the epoch and deletes matching entries while no Put
// can interleave.
func (sc *ScoreCache) invalidate(scope string, match func(scoreKey) bool) int {
	sc.mu.Lock()
	sc.epoch++
	var n int
	if match == nil {
		n = sc.c.Len()
		sc.c.Clear()
	} else {
		n = sc.c.DeleteFunc(match)
	}
	sc.mu.Unlock()

	metrics.RecordScoreCacheInvalidation(scope, n)
	return n
}

// InvalidateRestaurant drops every cached outcome for one restaurant.
func (sc *ScoreCache) InvalidateRestaurant(restaurantID string) int {
	return sc.invalidate("restaurant", func(k scoreKey) bool { return k.RestaurantID == restaurantID })
}

// InvalidateOwner drops every cached outcome for one user.
func (sc *ScoreCache) InvalidateOwner(owner string) int {
	return sc.invalidate("owner", func(k scoreKey) bool { return k.Owner == owner })
}

// InvalidateAll empties the cache.
func (sc *ScoreCache) InvalidateAll() int {
	return sc.invalidate("all", nil)
}

// Len returns the number of cached outcomes.
func (sc *ScoreCache) Len() int { return sc.c.Len() }

// Stats returns hit/miss counters.
func (sc *ScoreCache) Stats() cache.Stats { return sc.c.GetStats() }

// HitRate returns the hit percentage.
func (sc *ScoreCache) HitRate() float64 { return sc.c.HitRate() }

// Close stops the background sweeper.
func (sc *ScoreCache) Close() { sc.c.Close() }
