// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package recommend

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/tomtom215/platewise/internal/models"
)

// Reason strings shown to users.
const (
	reasonAvailable         = "Available to order now"
	reasonPopularFmt        = "Popular choice, rated %.1f"
	reasonCuisineMatch      = "1 cuisine match"
	reasonCuisineMatchesFmt = "%d cuisine matches"
	reasonDiscover          = "Discover something new"
	reasonInBudget          = "In your budget"
	reasonCheaper           = "More economical than your budget"
	reasonPricier           = "Slightly more expensive"
	reasonOutOfBudget       = "Outside your usual budget"
	reasonDietFitFmt        = "%d%% of menus fit your diet"
	reasonDietCheck         = "Check dietary options with the restaurant"
	reasonAllergenSafe      = "All dishes safe for your allergies"
	reasonAllergenCaution   = "Caution: some dishes contain "
	reasonAllergenVerify    = "Verify allergens on site"
	reasonMealNowFmt        = "Great for %s right now"
	reasonMealSpecialtyFmt  = "Known for %s"
	reasonMealBracketFmt    = "Good time for %s"
	reasonDelivery          = "Delivery available"
	reasonLimitedDelivery   = "Limited delivery range"
	reasonSuggested         = "Suggested for you"
	reasonFallbackAvailable = "Available now"
	reasonFallbackExplore   = "Explore something different"
)

// Scorer applies the rule set to restaurants for one user at one point in
// time. Build one per pass with NewScorer; it is read-only afterwards and
// safe for concurrent use.
type Scorer struct {
	cuisines  []string
	price     models.PriceTier
	dietary   []string
	allergens map[string]struct{}
	favorites map[models.MealTime]struct{}
	favOrder  []models.MealTime
	bracket   models.MealTime
	radius    *float64

	signals  int
	flexible bool
}

// NewScorer normalizes prefs and captures the meal-time bracket for now.
// Nil preferences behave like an empty set.
func NewScorer(prefs *models.Preferences, now time.Time) *Scorer {
	p := prefs.Normalized()

	s := &Scorer{
		cuisines:  p.CuisinePreferences,
		price:     models.ParsePriceRange(p.PriceRange),
		dietary:   p.DietaryRestrictions,
		allergens: models.TagSet(p.Allergens),
		favorites: make(map[models.MealTime]struct{}, len(p.FavoriteMealTimes)),
		bracket:   models.MealTimeAt(now),
		radius:    p.DeliveryRadius,
	}
	for _, raw := range p.FavoriteMealTimes {
		mt := models.MealTime(raw)
		s.favorites[mt] = struct{}{}
		s.favOrder = append(s.favOrder, mt)
	}

	s.signals = len(s.cuisines) + len(s.dietary) + len(s.allergens)
	if s.price.Valid() {
		s.signals++
	}
	s.flexible = s.signals == FlexibleThreshold
	return s
}

// SignalCount returns the number of preference signals that drive matching.
// Meal times, delivery radius and street are not counted.
func (s *Scorer) SignalCount() int { return s.signals }

// Flexible reports whether single-signal relaxed matching is in effect.
func (s *Scorer) Flexible() bool { return s.flexible }

// Bracket returns the meal-time bracket the scorer was built for.
func (s *Scorer) Bracket() models.MealTime { return s.bracket }

// scoreState accumulates one restaurant's score.
type scoreState struct {
	score    float64
	reasons  []string
	hasMatch bool
}

func (st *scoreState) add(points float64, reason string, match bool) {
	st.score += points
	st.reasons = append(st.reasons, reason)
	if match {
		st.hasMatch = true
	}
}

// Score evaluates one restaurant against the preferences. menus must be the
// restaurant's active menus. The returned reasons are in rule order and are
// not truncated.
//
//nolint:gocritic // hugeParam: restaurant passed by value, it is copied into the result anyway
func (s *Scorer) Score(r models.Restaurant, menus []models.Menu) Outcome {
	st := &scoreState{reasons: make([]string, 0, 4)}

	if s.signals == 0 {
		s.scoreNoPreference(st, r)
	}

	if !s.scoreCuisine(st, r, menus) {
		return Outcome{Excluded: true}
	}
	if !s.scorePrice(st, r) {
		return Outcome{Excluded: true}
	}
	s.scoreDietary(st, menus)
	s.scoreAllergens(st, menus)
	s.scoreMealTime(st, r)
	s.scoreDelivery(st, r)

	if !st.hasMatch && s.flexible {
		st.add(ScoreFlexibleRescue, reasonSuggested, false)
	}

	score := math.Max(0, st.score)
	return Outcome{Result: ScoreResult{
		Restaurant: r,
		Score:      math.Round(score*100) / 100,
		Reasons:    st.reasons,
		Matched:    st.hasMatch,
	}}
}

func (s *Scorer) scoreNoPreference(st *scoreState, r models.Restaurant) { //nolint:gocritic // hugeParam
	if r.RatingCount > 0 && r.AverageRating != nil {
		avg := RoundRating(*r.AverageRating)
		st.add(ScoreNoPreferenceBase+math.Round(avg)*ScorePopularityPerStar, fmt.Sprintf(reasonPopularFmt, avg), true)
		return
	}
	st.add(ScoreNoPreferenceBase, reasonAvailable, true)
}

// scoreCuisine returns false when the restaurant must be excluded.
func (s *Scorer) scoreCuisine(st *scoreState, r models.Restaurant, menus []models.Menu) bool { //nolint:gocritic // hugeParam
	if len(s.cuisines) == 0 {
		return true
	}

	offered := models.TagSet(r.CuisineType)
	for i := range menus {
		if tag := models.NormalizeTag(menus[i].CuisineType); tag != "" {
			offered[tag] = struct{}{}
		}
	}

	matches := 0
	for _, c := range s.cuisines {
		if _, ok := offered[c]; ok {
			matches++
		}
	}

	switch {
	case matches > 0:
		points := math.Min(WeightCuisine, WeightCuisine*float64(matches)/float64(len(s.cuisines)))
		reason := reasonCuisineMatch
		if matches > 1 {
			reason = fmt.Sprintf(reasonCuisineMatchesFmt, matches)
		}
		st.add(points, reason, true)
	case s.flexible:
		st.add(ScoreCuisineDiscover, reasonDiscover, true)
	default:
		return false
	}
	return true
}

// scorePrice returns false when the restaurant must be excluded.
// A restaurant without a recognizable price neither scores nor is excluded.
func (s *Scorer) scorePrice(st *scoreState, r models.Restaurant) bool { //nolint:gocritic // hugeParam
	if !s.price.Valid() {
		return true
	}
	tier := models.ParsePriceRange(r.PriceRange)
	if !tier.Valid() {
		return true
	}

	switch diff := int(tier) - int(s.price); {
	case diff == 0:
		st.add(WeightPrice, reasonInBudget, true)
	case diff == -1:
		st.add(ScorePriceAdjacent, reasonCheaper, true)
	case diff == 1:
		st.add(ScorePriceAdjacent, reasonPricier, true)
	case s.flexible:
		st.add(ScorePriceOutOfRange, reasonOutOfBudget, false)
	default:
		return false
	}
	return true
}

// scoreDietary never excludes. A menu counts only when it carries every
// requested restriction.
func (s *Scorer) scoreDietary(st *scoreState, menus []models.Menu) {
	if len(s.dietary) == 0 {
		return
	}

	compatible := 0
	for i := range menus {
		tags := models.TagSet(menus[i].DietaryRestrictions)
		if containsAll(tags, s.dietary) {
			compatible++
		}
	}

	if compatible == 0 {
		st.add(ScoreDietaryMinimal, reasonDietCheck, false)
		return
	}

	frac := float64(compatible) / float64(len(menus))
	st.add(WeightDietary*frac, fmt.Sprintf(reasonDietFitFmt, int(math.Round(frac*100))), true)
}

// scoreAllergens never excludes. Unsafe menus are surfaced in the reason.
func (s *Scorer) scoreAllergens(st *scoreState, menus []models.Menu) {
	if len(s.allergens) == 0 {
		return
	}
	if len(menus) == 0 {
		st.add(ScoreAllergenUnverified, reasonAllergenVerify, false)
		return
	}

	found := make(map[string]struct{})
	for i := range menus {
		for _, a := range menus[i].Allergens {
			tag := models.NormalizeTag(a)
			if _, listed := s.allergens[tag]; listed {
				found[tag] = struct{}{}
			}
		}
	}

	if len(found) == 0 {
		st.add(WeightAllergen, reasonAllergenSafe, true)
		return
	}

	names := make([]string, 0, len(found))
	for a := range found {
		names = append(names, a)
	}
	sort.Strings(names)
	st.add(ScoreAllergenCaution, reasonAllergenCaution+strings.Join(names, ", "), false)
}

func (s *Scorer) scoreMealTime(st *scoreState, r models.Restaurant) { //nolint:gocritic // hugeParam
	if len(s.favorites) == 0 {
		return
	}

	specialties := make(map[models.MealTime]struct{}, len(r.Specialties))
	for _, sp := range r.Specialties {
		if mt, ok := models.ParseMealTime(sp); ok {
			specialties[mt] = struct{}{}
		}
	}

	_, nowFavorite := s.favorites[s.bracket]
	_, nowSpecialty := specialties[s.bracket]

	if nowFavorite && nowSpecialty {
		st.add(WeightMealTime, fmt.Sprintf(reasonMealNowFmt, s.bracket), true)
		return
	}
	for _, fav := range s.favOrder {
		if _, ok := specialties[fav]; ok {
			st.add(ScoreMealTimeSpecialty, fmt.Sprintf(reasonMealSpecialtyFmt, fav), true)
			return
		}
	}
	if nowFavorite {
		st.add(ScoreMealTimeBracket, fmt.Sprintf(reasonMealBracketFmt, s.bracket), true)
	}
}

// scoreDelivery applies only when both radii are known.
func (s *Scorer) scoreDelivery(st *scoreState, r models.Restaurant) { //nolint:gocritic // hugeParam
	if s.radius == nil || r.DeliveryRadius == nil {
		return
	}
	if *r.DeliveryRadius >= *s.radius {
		st.add(WeightDelivery, reasonDelivery, true)
		return
	}
	st.add(-ScoreDeliveryPenalty, reasonLimitedDelivery, false)
}

func containsAll(set map[string]struct{}, want []string) bool {
	for _, w := range want {
		if _, ok := set[w]; !ok {
			return false
		}
	}
	return true
}
