// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

/*
Package api exposes the recommendation engine over HTTP using the Chi router.

# Routes

All recommendation routes live under /api/v1/recommendations:

	GET  /user/{userId}?limit&algorithm&exclude&category   personalized
	GET  /popular?limit&days                               trending
	GET  /also-bought/{productId}?limit                    co-purchase
	POST /session                                          session based
	GET  /similar/{productId}?limit                        similar products
	POST /track                                            track one interaction
	POST /track/batch                                      track many interactions
	POST /similarities/{productId}                         rebuild similarities
	GET  /history/{userId}?limit&interactionType           user history
	GET  /stats?days                                       interaction stats

The query names excludeProducts and categoryFilter are accepted as aliases of
exclude and category.

GET /health reports store and cache reachability and GET /metrics serves
Prometheus metrics.

# Responses

Every endpoint answers with the models.APIResponse envelope. Errors carry a
code (VALIDATION_ERROR, STORE_UNAVAILABLE, RATE_LIMIT_EXCEEDED,
INTERNAL_ERROR) and a message.

# Middleware

Global: request ID with a request-scoped logger, real IP, panic recovery, CORS
and Prometheus metrics. The recommendation group is rate limited per client IP
(100 requests per 15 minutes by default) and the tracking routes carry a
second, stricter limit (50 per minute).
*/
package api
