// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

// Package main is the entry point for the recsengine server.
//
// Recsengine records user/product interactions and serves product
// recommendations: personalized (collaborative, content-based or hybrid),
// trending, also-bought, similar products and session-based.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered defaults, config file and environment (Koanf v2)
//  2. Store: in-memory, DuckDB or MongoDB interaction and similarity store
//  3. Cache: none, in-memory LRU, Redis or BadgerDB, optionally behind a circuit breaker
//  4. Events (optional): watermill over Go channels, NATS JetStream or an embedded NATS server
//  5. Engine: ranking strategies with popularity fallback
//  6. HTTP Server: REST API under /api/v1/recommendations, /health and /metrics
//  7. Supervisor tree: HTTP server, event router, retention and cache sweeps
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables (RECS_ prefix, e.g. RECS_STORE_BACKEND=duckdb)
//   - Config file (config.yaml, or the path in CONFIG_PATH)
//   - Built-in defaults
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections and drains in-flight requests
//   - Stops the event router
//   - Closes the event transport, the cache and the store
//
// # Example Usage
//
// Development with the in-memory store and cache:
//
//	./recsengine
//
// DuckDB store with Redis cache and NATS JetStream:
//
//	export RECS_STORE_BACKEND=duckdb
//	export RECS_STORE_DUCKDB_PATH=/data/recs.duckdb
//	export RECS_CACHE_BACKEND=redis
//	export RECS_CACHE_REDIS_ADDR=redis:6379
//	export RECS_EVENTS_BACKEND=nats
//	export RECS_NATS_URL=nats://nats:4222
//	./recsengine
package main
