// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recommendation passes

	RecommendPasses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "platewise_recommend_passes_total",
			Help: "Total number of recommendation passes by source and result status",
		},
		[]string{"source", "status"}, // source: rules, external, fallback; status: ok, empty, unavailable
	)

	RecommendPassDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "platewise_recommend_pass_duration_seconds",
			Help:    "Duration of recommendation passes in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"source"},
	)

	RecommendExcluded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "platewise_recommend_excluded_total",
			Help: "Total number of restaurants excluded by strict matching",
		},
	)

	RecommendFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "platewise_recommend_fallback_total",
			Help: "Total number of passes that served the unfiltered fallback list",
		},
	)

	// Score cache

	ScoreCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "platewise_score_cache_lookups_total",
			Help: "Score cache lookups by result",
		},
		[]string{"result"}, // hit, miss
	)

	ScoreCacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "platewise_score_cache_invalidations_total",
			Help: "Score cache entries removed by invalidation scope",
		},
		[]string{"scope"}, // restaurant, owner, all
	)

	// Feeds (debounced recomputation)

	FeedTriggers = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "platewise_feed_triggers_total",
			Help: "Total number of recomputation triggers received by feeds",
		},
	)

	FeedPasses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "platewise_feed_passes_total",
			Help: "Total number of debounced passes started by feeds",
		},
	)

	FeedCoalescedTriggers = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "platewise_feed_coalesced_triggers_total",
			Help: "Triggers folded into another pass by debouncing",
		},
	)

	FeedStaleResults = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "platewise_feed_stale_results_total",
			Help: "Pass results discarded because a newer result was already published",
		},
	)

	ActiveFeeds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "platewise_feeds_active",
			Help: "Number of per-user feeds currently held in memory",
		},
	)

	// Ratings and external scorer

	RatingFetchErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "platewise_rating_fetch_errors_total",
			Help: "Rating lookups that failed and were served as unrated",
		},
	)

	ExternalScorerCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "platewise_external_scorer_calls_total",
			Help: "External scorer calls by outcome",
		},
		[]string{"outcome"}, // success, empty, error, circuit_open, rate_limited
	)

	ExternalScorerDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "platewise_external_scorer_duration_seconds",
			Help:    "Latency of external scorer calls",
			Buckets: prometheus.DefBuckets,
		},
	)

	ExternalScorerBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "platewise_external_scorer_breaker_state",
			Help: "External scorer circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	// Stores

	CatalogQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "platewise_catalog_query_duration_seconds",
			Help:    "Duration of catalog store queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"store", "operation"},
	)

	CatalogQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "platewise_catalog_query_errors_total",
			Help: "Total number of failed catalog store queries",
		},
		[]string{"store", "operation"},
	)

	PreferenceStoreOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "platewise_preference_store_operations_total",
			Help: "Preference store operations by result",
		},
		[]string{"operation", "result"},
	)

	// Change notifications

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "platewise_events_published_total",
			Help: "Change events published by kind",
		},
		[]string{"kind"},
	)

	EventsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "platewise_events_received_total",
			Help: "Change events consumed by kind",
		},
		[]string{"kind"},
	)

	EventsDecodeFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "platewise_events_decode_failed_total",
			Help: "Change event messages that could not be decoded",
		},
	)

	// HTTP

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "platewise_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "platewise_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "platewise_api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "platewise_websocket_connections_active",
			Help: "Number of active WebSocket connections",
		},
	)

	WebSocketMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "platewise_websocket_messages_sent_total",
			Help: "Total number of WebSocket messages queued for delivery",
		},
	)

	WebSocketMessagesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "platewise_websocket_messages_dropped_total",
			Help: "WebSocket messages dropped because a client send buffer was full",
		},
	)
)

// RecordRecommendPass records one completed recommendation pass.
func RecordRecommendPass(source, status string, duration time.Duration, excluded int, fallback bool) {
	RecommendPasses.WithLabelValues(source, status).Inc()
	RecommendPassDuration.WithLabelValues(source).Observe(duration.Seconds())
	if excluded > 0 {
		RecommendExcluded.Add(float64(excluded))
	}
	if fallback {
		RecommendFallbacks.Inc()
	}
}

// RecordScoreCacheLookup records a score cache hit or miss.
func RecordScoreCacheLookup(hit bool) {
	if hit {
		ScoreCacheLookups.WithLabelValues("hit").Inc()
		return
	}
	ScoreCacheLookups.WithLabelValues("miss").Inc()
}

// RecordScoreCacheInvalidation records entries dropped for one scope.
func RecordScoreCacheInvalidation(scope string, removed int) {
	ScoreCacheInvalidations.WithLabelValues(scope).Add(float64(removed))
}

// RecordFeedTrigger records a trigger received by a feed.
func RecordFeedTrigger() {
	FeedTriggers.Inc()
}

// RecordFeedPass records a debounced pass that folded the given number of triggers.
func RecordFeedPass(triggers int) {
	FeedPasses.Inc()
	if triggers > 1 {
		FeedCoalescedTriggers.Add(float64(triggers - 1))
	}
}

// RecordFeedStaleResult records a discarded out-of-order result.
func RecordFeedStaleResult() {
	FeedStaleResults.Inc()
}

// SetActiveFeeds updates the active feed gauge.
func SetActiveFeeds(n int) {
	ActiveFeeds.Set(float64(n))
}

// RecordRatingFetchError records a failed rating lookup.
func RecordRatingFetchError() {
	RatingFetchErrors.Inc()
}

// RecordExternalScorerCall records the outcome and latency of one external scorer call.
func RecordExternalScorerCall(outcome string, duration time.Duration) {
	ExternalScorerCalls.WithLabelValues(outcome).Inc()
	ExternalScorerDuration.Observe(duration.Seconds())
}

// SetExternalScorerBreakerState records the breaker state as a number.
func SetExternalScorerBreakerState(state int) {
	ExternalScorerBreakerState.Set(float64(state))
}

// RecordCatalogQuery records a catalog store query.
func RecordCatalogQuery(store, operation string, duration time.Duration, err error) {
	CatalogQueryDuration.WithLabelValues(store, operation).Observe(duration.Seconds())
	if err != nil {
		CatalogQueryErrors.WithLabelValues(store, operation).Inc()
	}
}

// RecordPreferenceStoreOp records a preference store operation.
func RecordPreferenceStoreOp(operation string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	PreferenceStoreOps.WithLabelValues(operation, result).Inc()
}

// RecordEventPublished records a published change event.
func RecordEventPublished(kind string) {
	EventsPublished.WithLabelValues(kind).Inc()
}

// RecordEventReceived records a consumed change event.
func RecordEventReceived(kind string) {
	EventsReceived.WithLabelValues(kind).Inc()
}

// RecordEventDecodeFailed records a message that could not be decoded.
func RecordEventDecodeFailed() {
	EventsDecodeFailed.Inc()
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, route string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight request gauge.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
		return
	}
	APIActiveRequests.Dec()
}

// TrackWebSocketConnection increments or decrements the connection gauge.
func TrackWebSocketConnection(connected bool) {
	if connected {
		WebSocketConnections.Inc()
		return
	}
	WebSocketConnections.Dec()
}

// RecordWebSocketMessage records a message queued for a client, or dropped.
func RecordWebSocketMessage(delivered bool) {
	if delivered {
		WebSocketMessagesSent.Inc()
		return
	}
	WebSocketMessagesDropped.Inc()
}
