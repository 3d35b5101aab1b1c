// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

/*
Package aiscorer is the HTTP client for the optional external ranking service.

The client implements recommend.ExternalScorer. Each call posts the user's
preferences and the candidate restaurant IDs to {url}/v1/rank and expects a
ranked list back:

	POST /v1/rank
	{"user_id": "u1", "preferences": {...}, "candidate_ids": ["r1", "r2"], "limit": 10}

	200 OK
	{"items": [{"restaurant_id": "r2", "score": 91.5, "reasons": ["..."]}]}

Calls are rate limited with a token bucket (golang.org/x/time/rate), bounded
by a per-call timeout, and guarded by a circuit breaker (sony/gobreaker).
When the breaker is open calls fail fast with ErrCircuitOpen. Any error,
including ErrEmptyResult, makes the engine fall back to its own rules.
*/
package aiscorer
