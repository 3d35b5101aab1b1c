// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package recommend

import (
	"testing"
	"time"

	"github.com/tomtom215/platewise/internal/models"
)

func TestScoreCache(t *testing.T) {
	t.Parallel()

	sc := NewScoreCache(time.Minute)
	defer sc.Close()

	out := Outcome{Result: ScoreResult{Score: 42}}
	sc.Put("u1", "r1", 1, models.MealLunch, sc.Epoch(), out)
	sc.Put("u1", "r2", 1, models.MealLunch, sc.Epoch(), out)
	sc.Put("u2", "r1", 4, models.MealLunch, sc.Epoch(), out)

	if got, ok := sc.Get("u1", "r1", 1, models.MealLunch); !ok || got.Result.Score != 42 {
		t.Errorf("Get() = %v, %v, want cached outcome", got, ok)
	}
	if _, ok := sc.Get("u1", "r1", 2, models.MealLunch); ok {
		t.Error("newer version must miss")
	}
	if _, ok := sc.Get("u1", "r1", 1, models.MealDinner); ok {
		t.Error("other bracket must miss")
	}

	if n := sc.InvalidateRestaurant("r1"); n != 2 {
		t.Errorf("InvalidateRestaurant = %d, want 2", n)
	}
	if sc.Len() != 1 {
		t.Errorf("Len = %d, want 1", sc.Len())
	}
	if n := sc.InvalidateOwner("u1"); n != 1 {
		t.Errorf("InvalidateOwner = %d, want 1", n)
	}
	if !sc.Put("u3", "r9", 1, models.MealSnack, sc.Epoch(), out) {
		t.Fatal("Put() with current epoch was dropped")
	}
	if n := sc.InvalidateAll(); n != 1 {
		t.Errorf("InvalidateAll = %d, want 1", n)
	}
	if sc.Len() != 0 {
		t.Errorf("Len = %d, want 0", sc.Len())
	}
}

func TestScoreCache_VersionZeroNotCached(t *testing.T) {
	t.Parallel()

	sc := NewScoreCache(time.Minute)
	defer sc.Close()

	sc.Put("u1", "r1", 0, models.MealLunch, sc.Epoch(), Outcome{Excluded: true})
	if sc.Len() != 0 {
		t.Errorf("Len = %d, want 0", sc.Len())
	}
	if _, ok := sc.Get("u1", "r1", 0, models.MealLunch); ok {
		t.Error("version 0 must never hit")
	}
}

func TestScoreCache_StaleEpochDropped(t *testing.T) {
	t.Parallel()

	sc := NewScoreCache(time.Minute)
	defer sc.Close()

	tests := []struct {
		name       string
		invalidate func()
	}{
		{"restaurant", func() { sc.InvalidateRestaurant("other") }},
		{"owner", func() { sc.InvalidateOwner("someone-else") }},
		{"all", func() { sc.InvalidateAll() }},
	}
	for _, tt := range tests {
		started := sc.Epoch()
		tt.invalidate()
		if sc.Epoch() == started {
			t.Fatalf("%s: Epoch() did not advance", tt.name)
		}
		if sc.Put("u1", "r1", 1, models.MealLunch, started, Outcome{Result: ScoreResult{Score: 1}}) {
			t.Errorf("%s: Put() with a pre-invalidation epoch was stored", tt.name)
		}
		if _, ok := sc.Get("u1", "r1", 1, models.MealLunch); ok {
			t.Errorf("%s: stale outcome is readable", tt.name)
		}
	}
}
