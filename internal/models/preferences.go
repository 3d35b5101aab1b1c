// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package models

import (
	"strings"
	"time"
)

// Preferences is one user's stated food preferences. Every field may be empty.
//
// PriceRange and FavoriteMealTimes are kept as raw strings so that malformed
// stored values survive a round trip; Normalized drops what it cannot parse.
type Preferences struct {
	UserID              string    `json:"user_id"`
	CuisinePreferences  []string  `json:"cuisine_preferences" validate:"max=32,dive,max=64"`
	PriceRange          string    `json:"price_range,omitempty"`
	DietaryRestrictions []string  `json:"dietary_restrictions" validate:"max=32,dive,max=64"`
	Allergens           []string  `json:"allergens" validate:"max=32,dive,max=64"`
	FavoriteMealTimes   []string  `json:"favorite_meal_times" validate:"max=5,dive,max=32"`
	DeliveryRadius      *float64  `json:"delivery_radius,omitempty" validate:"omitempty,gte=0,lte=500"`
	Street              string    `json:"street,omitempty" validate:"max=200"`
	Version             uint64    `json:"version"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Clone returns a deep copy. A nil receiver yields nil.
func (p *Preferences) Clone() *Preferences {
	if p == nil {
		return nil
	}

	c := *p
	c.CuisinePreferences = append([]string(nil), p.CuisinePreferences...)
	c.DietaryRestrictions = append([]string(nil), p.DietaryRestrictions...)
	c.Allergens = append([]string(nil), p.Allergens...)
	c.FavoriteMealTimes = append([]string(nil), p.FavoriteMealTimes...)
	if p.DeliveryRadius != nil {
		r := *p.DeliveryRadius
		c.DeliveryRadius = &r
	}
	return &c
}

// Normalized returns a copy with tag sets normalized, an unparseable price
// range cleared, and unknown meal times dropped. A nil receiver yields empty
// preferences.
func (p *Preferences) Normalized() *Preferences {
	if p == nil {
		return &Preferences{}
	}

	n := p.Clone()
	n.CuisinePreferences = NormalizeTags(p.CuisinePreferences)
	n.DietaryRestrictions = NormalizeTags(p.DietaryRestrictions)
	n.Allergens = NormalizeTags(p.Allergens)
	n.Street = strings.TrimSpace(p.Street)

	if tier := ParsePriceRange(p.PriceRange); tier.Valid() {
		n.PriceRange = tier.String()
	} else {
		n.PriceRange = ""
	}

	n.FavoriteMealTimes = n.FavoriteMealTimes[:0]
	seen := make(map[MealTime]struct{}, len(p.FavoriteMealTimes))
	for _, raw := range p.FavoriteMealTimes {
		mt, ok := ParseMealTime(raw)
		if !ok {
			continue
		}
		if _, dup := seen[mt]; dup {
			continue
		}
		seen[mt] = struct{}{}
		n.FavoriteMealTimes = append(n.FavoriteMealTimes, string(mt))
	}

	if n.DeliveryRadius != nil && *n.DeliveryRadius <= 0 {
		n.DeliveryRadius = nil
	}

	return n
}

// PriceTier is a position on the $ < $$ < $$$ < $$$$ scale.
type PriceTier int

// Price tiers. PriceUnknown marks a missing or malformed value.
const (
	PriceUnknown PriceTier = iota
	PriceBudget
	PriceModerate
	PriceUpscale
	PriceLuxury
)

// ParsePriceRange maps "$".."$$$$" to a tier. Anything else is PriceUnknown.
func ParsePriceRange(s string) PriceTier {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 4 || strings.Trim(s, "$") != "" {
		return PriceUnknown
	}
	return PriceTier(len(s))
}

// Valid reports whether t is one of the four known tiers.
func (t PriceTier) Valid() bool {
	return t >= PriceBudget && t <= PriceLuxury
}

// String renders the tier as dollar signs, or "" when unknown.
func (t PriceTier) String() string {
	if !t.Valid() {
		return ""
	}
	return strings.Repeat("$", int(t))
}

// MealTime is a named time-of-day bracket.
type MealTime string

// Meal-time brackets in local time.
const (
	MealBreakfast MealTime = "breakfast"  // 06:00-11:00
	MealLunch     MealTime = "lunch"      // 11:00-15:00
	MealSnack     MealTime = "snack"      // 15:00-17:00
	MealDinner    MealTime = "dinner"     // 17:00-23:00
	MealLateNight MealTime = "late-night" // 23:00-06:00
)

// ParseMealTime accepts the canonical names plus common spellings of
// late-night ("late_night", "latenight", "late night").
func ParseMealTime(s string) (MealTime, bool) {
	switch NormalizeTag(s) {
	case "breakfast":
		return MealBreakfast, true
	case "lunch":
		return MealLunch, true
	case "snack":
		return MealSnack, true
	case "dinner":
		return MealDinner, true
	case "late-night", "late_night", "latenight", "late night":
		return MealLateNight, true
	default:
		return "", false
	}
}

// MealTimeAt returns the bracket that contains t's local hour.
func MealTimeAt(t time.Time) MealTime {
	switch h := t.Hour(); {
	case h >= 6 && h < 11:
		return MealBreakfast
	case h >= 11 && h < 15:
		return MealLunch
	case h >= 15 && h < 17:
		return MealSnack
	case h >= 17 && h < 23:
		return MealDinner
	default:
		return MealLateNight
	}
}
