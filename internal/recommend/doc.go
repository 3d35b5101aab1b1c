// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

// Package recommend scores and ranks restaurants against a user's food
// preferences.
//
// # Architecture
//
// The package is layered from pure functions up to long-lived state:
//
//   - Scorer: applies the weighted rule set to one restaurant and its menus
//   - Ranker: scores every candidate with bounded fan-out, drops exclusions,
//     sorts, truncates, and falls back to an unfiltered list when nothing
//     survives
//   - AggregateRatings: average and count of star ratings for display
//   - Engine: loads candidates, preferences and ratings from collaborators,
//     optionally delegates ranking to an ExternalScorer, and owns the score
//     cache
//   - Feed and Hub: per-user debounced recomputation with last-result-wins
//     publishing
//
// # Matching Policy
//
// Preferences count as signals: each cuisine, each dietary restriction,
// each allergen, and a price range. With no signals every restaurant is
// included. With exactly FlexibleThreshold signals matching is flexible and
// a miss earns a reduced score instead of exclusion. With more signals a
// cuisine or price mismatch excludes the restaurant. Dietary, allergen,
// meal-time and delivery rules only ever add points or caveats; incomplete
// data never hides a restaurant.
//
// # Usage
//
//	engine, err := recommend.NewEngine(cfg, catalog, ratings, prefs, logger)
//	if err != nil {
//	    return err
//	}
//	res, err := engine.Recommend(ctx, recommend.Request{UserID: "u-1", Limit: 10})
//
// # Thread Safety
//
// Scorer is read-only after construction. Engine, Feed and Hub are safe for
// concurrent use; a Feed publishes results with a single atomic pointer swap.
package recommend
