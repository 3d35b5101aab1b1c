// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

/*
Package models defines the data structures shared across Platewise.

Model Categories:

1. Catalog:
  - Restaurant: read-only snapshot used for scoring, with rating analytics
  - Menu: belongs to one restaurant; inactive menus never leave the store
  - Rating: one review row; only non-null ratings are aggregated
  - RatingSnapshot: {average, count} pair with a nil average when unrated

2. Preferences:
  - Preferences: a user's stated food preferences
  - PriceRange: the $ to $$$$ scale
  - MealTime: breakfast, lunch, snack, dinner and late-night brackets

3. API:
  - APIResponse, APIError, Metadata: the standard response envelope

Tags (cuisines, dietary restrictions, allergens, specialties) are compared
after NormalizeTag, which lowercases and trims them. NormalizeTags also
removes duplicates and empty values while keeping first-seen order.
*/
package models
