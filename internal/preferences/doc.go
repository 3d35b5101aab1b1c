// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

/*
Package preferences stores user food preferences in BadgerDB.

Each user has one record under the key "prefs:<userID>", encoded as JSON.
Saving a record normalizes its tag sets, drops price ranges and meal times
that cannot be parsed, increments the record's Version, and announces the
change on the event bus so that the user's feed recomputes.

The Version counter doubles as the score cache key component: a cached score
computed against version N is never served once version N+1 exists.

Usage:

	store, err := preferences.Open(preferences.Config{Path: "/data/preferences"}, bus, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	saved, err := store.Save(ctx, &models.Preferences{UserID: "u1", CuisinePreferences: []string{"Thai"}})
*/
package preferences
