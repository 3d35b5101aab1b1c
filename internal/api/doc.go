// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

/*
Package api provides the HTTP surface of Platewise.

Routes are served by a chi router (SetupChi) and grouped by resource:

	/api/v1/users/{userID}/recommendations          GET   latest published list
	/api/v1/users/{userID}/recommendations/refresh  POST  forced pass
	/api/v1/users/{userID}/recommendations/preview  POST  one-off pass with ad hoc preferences
	/api/v1/users/{userID}/recommendations/ws       GET   WebSocket stream
	/api/v1/users/{userID}/preferences              GET PUT DELETE
	/api/v1/restaurants                             GET   search
	/api/v1/restaurants/{restaurantID}              GET PUT DELETE
	/api/v1/restaurants/{restaurantID}/rating       GET   rating snapshot
	/api/v1/restaurants/{restaurantID}/ratings      GET POST
	/api/v1/menus/{menuID}                          GET PUT DELETE
	/api/v1/stats                                   GET   engine and endpoint statistics
	/health/live, /health/ready, /metrics

Every JSON response uses the models.APIResponse envelope:

	{"status": "success", "data": {...}, "metadata": {"timestamp": "..."}}
	{"status": "error", "data": null, "error": {"code": "NOT_FOUND", "message": "..."}}

Writes are rate limited more strictly than reads. Request bodies are decoded
with goccy/go-json and validated with the validation package before they
reach a store.
*/
package api
