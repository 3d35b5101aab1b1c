// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package recommend

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/platewise/internal/models"
)

// noon is inside the lunch bracket.
var noon = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func atHour(h int) time.Time {
	return time.Date(2026, 3, 10, h, 0, 0, 0, time.UTC)
}

func floatPtr(v float64) *float64 { return &v }

func restaurant(id string, cuisines ...string) models.Restaurant {
	return models.Restaurant{ID: id, Name: "Restaurant " + id, CuisineType: cuisines, IsActive: true}
}

func menu(restaurantID string, cuisine string, dietary, allergens []string) models.Menu {
	return models.Menu{
		ID:                  restaurantID + "-" + cuisine,
		RestaurantID:        restaurantID,
		CuisineType:         cuisine,
		DietaryRestrictions: dietary,
		Allergens:           allergens,
		IsActive:            true,
	}
}

func mustInclude(t *testing.T, out Outcome) ScoreResult {
	t.Helper()
	if out.Excluded {
		t.Fatal("restaurant was excluded, want included")
	}
	return out.Result
}

func TestScorer_Deterministic(t *testing.T) {
	t.Parallel()

	prefs := &models.Preferences{
		CuisinePreferences:  []string{"Thai", "Vietnamese"},
		PriceRange:          "$$",
		DietaryRestrictions: []string{"vegan"},
		Allergens:           []string{"peanuts", "shellfish"},
		FavoriteMealTimes:   []string{"lunch"},
		DeliveryRadius:      floatPtr(3),
	}
	r := restaurant("r1", "Thai")
	r.PriceRange = "$$$"
	r.DeliveryRadius = floatPtr(5)
	r.Specialties = []string{"lunch"}
	menus := []models.Menu{
		menu("r1", "thai", []string{"vegan"}, []string{"peanuts"}),
		menu("r1", "vietnamese", nil, nil),
	}

	first := NewScorer(prefs, noon).Score(r, menus)
	for i := 0; i < 20; i++ {
		again := NewScorer(prefs, noon).Score(r, menus)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs:\n got %+v\nwant %+v", i, again, first)
		}
	}
}

func TestScorer_NoPreferences(t *testing.T) {
	t.Parallel()

	scorer := NewScorer(&models.Preferences{}, noon)
	if scorer.SignalCount() != 0 || scorer.Flexible() {
		t.Fatalf("SignalCount = %d, Flexible = %v, want 0, false", scorer.SignalCount(), scorer.Flexible())
	}

	rated := restaurant("rated", "Italian")
	rated.AverageRating = floatPtr(4.4)
	rated.RatingCount = 12

	tests := []struct {
		name       string
		r          models.Restaurant
		wantScore  float64
		wantReason string
	}{
		{"unrated", restaurant("plain", "Mexican"), ScoreNoPreferenceBase, "Available to order now"},
		{"rated", rated, ScoreNoPreferenceBase + 4*ScorePopularityPerStar, "Popular choice, rated 4.4"},
		{"no cuisine at all", models.Restaurant{ID: "bare"}, ScoreNoPreferenceBase, "Available to order now"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res := mustInclude(t, scorer.Score(tt.r, nil))
			if res.Score != tt.wantScore {
				t.Errorf("Score = %v, want %v", res.Score, tt.wantScore)
			}
			if len(res.Reasons) == 0 || res.Reasons[0] != tt.wantReason {
				t.Errorf("Reasons = %v, want first %q", res.Reasons, tt.wantReason)
			}
			if !res.Matched {
				t.Error("Matched = false, want true")
			}
		})
	}
}

func TestScorer_NilPreferences(t *testing.T) {
	t.Parallel()

	res := mustInclude(t, NewScorer(nil, noon).Score(restaurant("r1", "Thai"), nil))
	if res.Score != ScoreNoPreferenceBase {
		t.Errorf("Score = %v, want %v", res.Score, ScoreNoPreferenceBase)
	}
}

func TestScorer_StrictCuisineExclusion(t *testing.T) {
	t.Parallel()

	prefs := &models.Preferences{CuisinePreferences: []string{"Italian"}, PriceRange: "$$"}
	scorer := NewScorer(prefs, noon)
	if scorer.Flexible() {
		t.Fatal("two signals must be strict")
	}

	r := restaurant("r1", "Mexican")
	r.PriceRange = "$$"
	if out := scorer.Score(r, nil); !out.Excluded {
		t.Errorf("Score() = %+v, want excluded", out.Result)
	}
}

func TestScorer_FlexibleCuisineDiscover(t *testing.T) {
	t.Parallel()

	scorer := NewScorer(&models.Preferences{CuisinePreferences: []string{"Italian"}}, noon)
	if !scorer.Flexible() {
		t.Fatal("one signal must be flexible")
	}

	res := mustInclude(t, scorer.Score(restaurant("r1", "Mexican"), nil))
	if res.Score != ScoreCuisineDiscover {
		t.Errorf("Score = %v, want %v", res.Score, ScoreCuisineDiscover)
	}
	if !reflect.DeepEqual(res.Reasons, []string{"Discover something new"}) {
		t.Errorf("Reasons = %v", res.Reasons)
	}

	match := mustInclude(t, scorer.Score(restaurant("r2", "Italian"), nil))
	if match.Score <= res.Score {
		t.Errorf("matching restaurant scored %v, want more than discover score %v", match.Score, res.Score)
	}
}

func TestScorer_CuisineMatching(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		prefs      []string
		r          models.Restaurant
		menus      []models.Menu
		wantScore  float64
		wantReason string
	}{
		{
			name:       "single full match",
			prefs:      []string{"italian"},
			r:          restaurant("r1", "Italian", "Pizza"),
			wantScore:  WeightCuisine,
			wantReason: "1 cuisine match",
		},
		{
			name:       "half of preferences",
			prefs:      []string{"italian", "thai"},
			r:          restaurant("r1", " ITALIAN "),
			wantScore:  WeightCuisine / 2,
			wantReason: "1 cuisine match",
		},
		{
			name:       "menu cuisine counts",
			prefs:      []string{"italian", "pizza"},
			r:          restaurant("r1", "Italian"),
			menus:      []models.Menu{menu("r1", "Pizza", nil, nil)},
			wantScore:  WeightCuisine,
			wantReason: "2 cuisine matches",
		},
		{
			name:       "duplicates collapse",
			prefs:      []string{"italian", "Italian"},
			r:          restaurant("r1", "italian", "italian"),
			wantScore:  WeightCuisine,
			wantReason: "1 cuisine match",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			// A price signal keeps the scorer strict; the restaurant has no price.
			prefs := &models.Preferences{CuisinePreferences: tt.prefs, PriceRange: "$$"}
			res := mustInclude(t, NewScorer(prefs, noon).Score(tt.r, tt.menus))
			if res.Score != tt.wantScore {
				t.Errorf("Score = %v, want %v", res.Score, tt.wantScore)
			}
			if res.Reasons[0] != tt.wantReason {
				t.Errorf("Reasons[0] = %q, want %q", res.Reasons[0], tt.wantReason)
			}
		})
	}
}

func TestScorer_Price(t *testing.T) {
	t.Parallel()

	prefs := &models.Preferences{CuisinePreferences: []string{"italian"}, PriceRange: "$$"}
	scorer := NewScorer(prefs, noon)

	tests := []struct {
		price        string
		wantExcluded bool
		wantScore    float64
		wantReason   string
	}{
		{"$$", false, WeightCuisine + WeightPrice, "In your budget"},
		{"$", false, WeightCuisine + ScorePriceAdjacent, "More economical than your budget"},
		{"$$$", false, WeightCuisine + ScorePriceAdjacent, "Slightly more expensive"},
		{"$$$$", true, 0, ""},
		{"", false, WeightCuisine, ""},
		{"pricey", false, WeightCuisine, ""},
	}

	for _, tt := range tests {
		t.Run("price "+tt.price, func(t *testing.T) {
			t.Parallel()
			r := restaurant("r1", "Italian")
			r.PriceRange = tt.price

			out := scorer.Score(r, nil)
			if out.Excluded != tt.wantExcluded {
				t.Fatalf("Excluded = %v, want %v", out.Excluded, tt.wantExcluded)
			}
			if tt.wantExcluded {
				return
			}
			if out.Result.Score != tt.wantScore {
				t.Errorf("Score = %v, want %v", out.Result.Score, tt.wantScore)
			}
			if tt.wantReason == "" {
				if len(out.Result.Reasons) != 1 {
					t.Errorf("Reasons = %v, want cuisine reason only", out.Result.Reasons)
				}
				return
			}
			if out.Result.Reasons[1] != tt.wantReason {
				t.Errorf("Reasons[1] = %q, want %q", out.Result.Reasons[1], tt.wantReason)
			}
		})
	}
}

func TestScorer_FlexiblePriceRescue(t *testing.T) {
	t.Parallel()

	scorer := NewScorer(&models.Preferences{PriceRange: "$"}, noon)
	r := restaurant("r1", "French")
	r.PriceRange = "$$$$"

	res := mustInclude(t, scorer.Score(r, nil))
	want := []string{"Outside your usual budget", "Suggested for you"}
	if !reflect.DeepEqual(res.Reasons, want) {
		t.Errorf("Reasons = %v, want %v", res.Reasons, want)
	}
	if res.Score != ScorePriceOutOfRange+ScoreFlexibleRescue {
		t.Errorf("Score = %v, want %v", res.Score, ScorePriceOutOfRange+ScoreFlexibleRescue)
	}
	if res.Matched {
		t.Error("Matched = true, want false for a rescued restaurant")
	}
}

func TestScorer_MalformedPriceIgnored(t *testing.T) {
	t.Parallel()

	prefs := &models.Preferences{CuisinePreferences: []string{"italian"}, PriceRange: "cheap"}
	scorer := NewScorer(prefs, noon)
	if scorer.SignalCount() != 1 {
		t.Fatalf("SignalCount = %d, want 1 (malformed price is not a signal)", scorer.SignalCount())
	}

	r := restaurant("r1", "Mexican")
	r.PriceRange = "$$$$"
	res := mustInclude(t, scorer.Score(r, nil))
	if res.Reasons[0] != "Discover something new" {
		t.Errorf("Reasons = %v", res.Reasons)
	}
}

func TestScorer_Dietary(t *testing.T) {
	t.Parallel()

	prefs := &models.Preferences{
		CuisinePreferences:  []string{"italian"},
		DietaryRestrictions: []string{"Vegan", "gluten-free"},
	}
	scorer := NewScorer(prefs, noon)
	r := restaurant("r1", "Italian")

	tests := []struct {
		name       string
		menus      []models.Menu
		wantScore  float64
		wantReason string
	}{
		{
			name: "half the menus fit",
			menus: []models.Menu{
				menu("r1", "italian", []string{"VEGAN", "Gluten-Free"}, nil),
				menu("r1", "italian", []string{"vegan"}, nil),
			},
			wantScore:  WeightCuisine + WeightDietary/2,
			wantReason: "50% of menus fit your diet",
		},
		{
			name:       "all menus fit",
			menus:      []models.Menu{menu("r1", "italian", []string{"vegan", "gluten-free", "halal"}, nil)},
			wantScore:  WeightCuisine + WeightDietary,
			wantReason: "100% of menus fit your diet",
		},
		{
			name:       "partial containment does not count",
			menus:      []models.Menu{menu("r1", "italian", []string{"vegan"}, nil)},
			wantScore:  WeightCuisine + ScoreDietaryMinimal,
			wantReason: "Check dietary options with the restaurant",
		},
		{
			name:       "no menus",
			wantScore:  WeightCuisine + ScoreDietaryMinimal,
			wantReason: "Check dietary options with the restaurant",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res := mustInclude(t, scorer.Score(r, tt.menus))
			if res.Score != tt.wantScore {
				t.Errorf("Score = %v, want %v", res.Score, tt.wantScore)
			}
			if res.Reasons[1] != tt.wantReason {
				t.Errorf("Reasons[1] = %q, want %q", res.Reasons[1], tt.wantReason)
			}
		})
	}
}

func TestScorer_AllergenNeverExcludes(t *testing.T) {
	t.Parallel()

	prefs := &models.Preferences{CuisinePreferences: []string{"thai"}, Allergens: []string{"Peanuts", "shellfish"}}
	scorer := NewScorer(prefs, noon)

	unsafe := mustInclude(t, scorer.Score(restaurant("unsafe", "Thai"), []models.Menu{
		menu("unsafe", "thai", nil, []string{"peanuts", "Shellfish", "soy"}),
	}))
	safe := mustInclude(t, scorer.Score(restaurant("safe", "Thai"), []models.Menu{
		menu("safe", "thai", nil, []string{"soy"}),
	}))

	if unsafe.Score >= safe.Score {
		t.Errorf("unsafe score %v should be below safe score %v", unsafe.Score, safe.Score)
	}
	if got := unsafe.Reasons[len(unsafe.Reasons)-1]; got != "Caution: some dishes contain peanuts, shellfish" {
		t.Errorf("caution reason = %q", got)
	}
	if got := safe.Reasons[len(safe.Reasons)-1]; got != "All dishes safe for your allergies" {
		t.Errorf("safe reason = %q", got)
	}

	unknown := mustInclude(t, scorer.Score(restaurant("unknown", "Thai"), nil))
	if got := unknown.Reasons[len(unknown.Reasons)-1]; got != "Verify allergens on site" {
		t.Errorf("no-menu reason = %q", got)
	}
	if unknown.Score != WeightCuisine+ScoreAllergenUnverified {
		t.Errorf("no-menu score = %v, want %v", unknown.Score, WeightCuisine+ScoreAllergenUnverified)
	}
}

func TestScorer_MealTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		favorites   []string
		specialties []string
		now         time.Time
		wantBonus   float64
		wantReason  string
	}{
		{"favorite bracket and specialty", []string{"dinner"}, []string{"Dinner"}, atHour(19), WeightMealTime, "Great for dinner right now"},
		{"specialty only", []string{"dinner"}, []string{"dinner"}, atHour(12), ScoreMealTimeSpecialty, "Known for dinner"},
		{"bracket only", []string{"dinner"}, nil, atHour(19), ScoreMealTimeBracket, "Good time for dinner"},
		{"late night wraps midnight", []string{"late night"}, nil, atHour(2), ScoreMealTimeBracket, "Good time for late-night"},
		{"no overlap", []string{"breakfast"}, []string{"dinner"}, atHour(19), 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := restaurant("r1", "Diner")
			r.Specialties = tt.specialties
			prefs := &models.Preferences{FavoriteMealTimes: tt.favorites}

			res := mustInclude(t, NewScorer(prefs, tt.now).Score(r, nil))
			if got := res.Score - ScoreNoPreferenceBase; got != tt.wantBonus {
				t.Errorf("bonus = %v, want %v", got, tt.wantBonus)
			}
			if tt.wantReason == "" {
				if len(res.Reasons) != 1 {
					t.Errorf("Reasons = %v, want no meal-time reason", res.Reasons)
				}
				return
			}
			if len(res.Reasons) < 2 || res.Reasons[1] != tt.wantReason {
				t.Errorf("Reasons = %v, want second %q", res.Reasons, tt.wantReason)
			}
		})
	}
}

func TestScorer_Delivery(t *testing.T) {
	t.Parallel()

	prefs := &models.Preferences{DeliveryRadius: floatPtr(5)}
	scorer := NewScorer(prefs, noon)

	tests := []struct {
		name       string
		radius     *float64
		wantScore  float64
		wantReason string
	}{
		{"reaches user", floatPtr(8), ScoreNoPreferenceBase + WeightDelivery, "Delivery available"},
		{"exactly the radius", floatPtr(5), ScoreNoPreferenceBase + WeightDelivery, "Delivery available"},
		{"too short", floatPtr(2), ScoreNoPreferenceBase - ScoreDeliveryPenalty, "Limited delivery range"},
		{"unknown radius", nil, ScoreNoPreferenceBase, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := restaurant("r1", "Pizza")
			r.DeliveryRadius = tt.radius
			res := mustInclude(t, scorer.Score(r, nil))
			if res.Score != tt.wantScore {
				t.Errorf("Score = %v, want %v", res.Score, tt.wantScore)
			}
			if tt.wantReason != "" && res.Reasons[len(res.Reasons)-1] != tt.wantReason {
				t.Errorf("Reasons = %v, want last %q", res.Reasons, tt.wantReason)
			}
		})
	}
}

func TestScorer_ScoreClampedAtZero(t *testing.T) {
	t.Parallel()

	prefs := &models.Preferences{Allergens: []string{"peanuts", "shellfish"}, DeliveryRadius: floatPtr(10)}
	r := restaurant("r1", "Thai")
	r.DeliveryRadius = floatPtr(1)

	res := mustInclude(t, NewScorer(prefs, noon).Score(r, []models.Menu{menu("r1", "thai", nil, []string{"peanuts"})}))
	if res.Score != 0 {
		t.Errorf("Score = %v, want 0", res.Score)
	}
	if len(res.Reasons) != 2 || !strings.HasPrefix(res.Reasons[0], "Caution") {
		t.Errorf("Reasons = %v", res.Reasons)
	}
}

func TestScorer_SignalCount(t *testing.T) {
	t.Parallel()

	prefs := &models.Preferences{
		CuisinePreferences:  []string{"thai", "Thai", "italian"},
		PriceRange:          "$$",
		DietaryRestrictions: []string{"vegan"},
		Allergens:           []string{"soy"},
		FavoriteMealTimes:   []string{"lunch"},
		DeliveryRadius:      floatPtr(4),
		Street:              "Main St",
	}
	if got := NewScorer(prefs, noon).SignalCount(); got != 5 {
		t.Errorf("SignalCount = %d, want 5", got)
	}
}
