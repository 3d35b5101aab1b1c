// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package query

import (
	"fmt"
	"time"

	"github.com/tomtom215/platewise/internal/models"
)

// Search limits.
const (
	DefaultSearchLimit = 50
	MaxSearchLimit     = 500
)

// RestaurantFilter selects restaurants for catalog search.
type RestaurantFilter struct {
	// Cuisines matches restaurants carrying any of these tags.
	Cuisines []string
	// PriceRanges matches restaurants in any of these tiers.
	PriceRanges []string
	// IncludeInactive also returns deactivated restaurants.
	IncludeInactive bool
	// UpdatedSince matches restaurants changed at or after this time.
	UpdatedSince *time.Time

	Limit  int
	Offset int
}

// Normalize cleans tags and tiers and clamps pagination. Unknown price tiers
// are an error so that a typo does not silently widen the search.
func (f RestaurantFilter) Normalize() (RestaurantFilter, error) {
	out := f
	out.Cuisines = models.NormalizeTags(f.Cuisines)
	out.PriceRanges = nil
	for _, raw := range f.PriceRanges {
		tier := models.ParsePriceRange(raw)
		if !tier.Valid() {
			return RestaurantFilter{}, fmt.Errorf("invalid price range %q", raw)
		}
		out.PriceRanges = append(out.PriceRanges, tier.String())
	}

	switch {
	case out.Limit <= 0:
		out.Limit = DefaultSearchLimit
	case out.Limit > MaxSearchLimit:
		out.Limit = MaxSearchLimit
	}
	if out.Offset < 0 {
		out.Offset = 0
	}
	return out, nil
}
