// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

/*
Package middleware provides the HTTP middleware shared by the API router.

Key Components:

  - RequestID: honors or generates X-Request-ID and seeds the logging context
  - AccessLog: one structured log line per request
  - PrometheusMetrics: request counters and latency keyed by chi route pattern
  - Compression: gzip for clients that accept it, skipped for WebSocket upgrades
  - PerformanceMonitor: sliding window of request durations with percentiles

All middleware use the func(http.Handler) http.Handler shape so they can be
passed straight to chi's Use:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(logger))
	r.Use(middleware.PrometheusMetrics)

Route labels come from chi's RouteContext after the handler ran, so metrics
and stats are keyed by "/api/v1/users/{userID}/preferences" rather than the
raw path. Requests that match no route are labeled "unmatched".
*/
package middleware
