// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

/*
Package middleware provides HTTP middleware shared by the API router.

  - RequestID: X-Request-ID propagation plus request and correlation IDs and
    a request-scoped zerolog logger in the context
  - PrometheusMetrics: request count, latency, in-flight gauge and rate limit
    rejections, labeled by chi route pattern

Both are func(http.Handler) http.Handler and plug into chi's r.Use:

	r.Use(middleware.RequestID(logger))
	r.Use(middleware.PrometheusMetrics)

CORS and rate limiting come from go-chi/cors and go-chi/httprate and are
configured in internal/api.
*/
package middleware
