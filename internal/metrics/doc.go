// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered with the default registry through promauto and
exposed at /metrics by the API router:

	curl http://localhost:8080/metrics

# Available Metrics

Recommendation:
  - platewise_recommend_passes_total{source,status}
  - platewise_recommend_pass_duration_seconds{source}
  - platewise_recommend_excluded_total
  - platewise_recommend_fallback_total
  - platewise_score_cache_lookups_total{result}
  - platewise_score_cache_invalidations_total{scope}

Feeds:
  - platewise_feed_triggers_total, platewise_feed_passes_total
  - platewise_feed_coalesced_triggers_total
  - platewise_feed_stale_results_total
  - platewise_feeds_active

Collaborators:
  - platewise_rating_fetch_errors_total
  - platewise_external_scorer_calls_total{outcome}
  - platewise_catalog_query_duration_seconds{store,operation}
  - platewise_preference_store_operations_total{operation,result}
  - platewise_events_published_total{kind}, platewise_events_received_total{kind}

HTTP and WebSocket:
  - platewise_api_requests_total{method,route,status}
  - platewise_api_request_duration_seconds{method,route}
  - platewise_websocket_connections_active

Callers use the Record* helpers rather than touching collectors directly.
*/
package metrics
