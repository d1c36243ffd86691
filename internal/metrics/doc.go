// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

/*
Package metrics provides Prometheus instrumentation for Recsengine.

All collectors are registered with the default registry through promauto and
exposed by the API at the configured metrics path (default /metrics).

# Metric Families

Recommendation engine:
  - recsengine_recommendation_requests_total{method, algorithm}
  - recsengine_recommendation_duration_seconds{method}
  - recsengine_recommendation_fallbacks_total{method}
  - recsengine_cache_hits_total{kind}, recsengine_cache_misses_total{kind}
  - recsengine_cache_errors_total{operation}
  - recsengine_interactions_tracked_total{type, status}
  - recsengine_similarity_updates_total{status}

Stores and infrastructure:
  - recsengine_store_query_duration_seconds{backend, operation}
  - recsengine_store_query_errors_total{backend, operation}
  - recsengine_retention_purged_total{backend}
  - recsengine_events_published_total{topic}, recsengine_events_consumed_total{topic, status}
  - circuit_breaker_state{name}, circuit_breaker_state_transitions_total{name, from_state, to_state}

HTTP:
  - api_requests_total{method, endpoint, status_code}
  - api_request_duration_seconds{method, endpoint}
  - api_active_requests
  - api_rate_limit_hits_total{endpoint}

# Engine Integration

RecommendRecorder implements recommend.MetricsRecorder:

	engine, err := recommend.NewEngine(cfg, recommend.Dependencies{
	    // ...
	    Metrics: metrics.NewRecommendRecorder(),
	}, logger)
*/
package metrics
