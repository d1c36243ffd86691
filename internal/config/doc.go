// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

/*
Package config provides centralized configuration management for Recsengine.

# Configuration Sources

Configuration is layered with Koanf v2, later sources overriding earlier ones:
  - Built-in defaults (defaultConfig)
  - Optional YAML file: CONFIG_PATH, ./config.yaml or /etc/recsengine/config.yaml
  - Environment variables prefixed with RECS_

# Sections

  - server: HTTP listener, timeouts and CORS origins
  - logging: level, format and caller annotation
  - store: memory, duckdb or mongo backend plus interaction retention
  - cache: none, memory, redis or badger backend, TTL and circuit breaker
  - recommend: limits, windows, hybrid shares and tracking options
  - events: none, channel, nats or embedded event bus
  - ratelimit: per-IP limits for general and tracking endpoints
  - metrics: Prometheus endpoint

# Environment Variables

Selected examples:
  - RECS_SERVER_PORT: Listen port (default: 3000)
  - RECS_LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - RECS_STORE_BACKEND: memory, duckdb, mongo (default: memory)
  - RECS_STORE_MONGO_URI: MongoDB connection string
  - RECS_CACHE_BACKEND: none, memory, redis, badger (default: memory)
  - RECS_CACHE_REDIS_ADDR: Redis address (default: localhost:6379)
  - RECS_CACHE_TTL: Cache entry lifetime (default: 1h)
  - RECS_EVENTS_BACKEND: none, channel, nats, embedded (default: channel)
  - RECS_NATS_URL: NATS server URL for the nats backend

Comma-separated values are accepted for list settings such as
RECS_SERVER_CORS_ORIGINS.

# Validation

Load validates the merged configuration and returns the first problem found,
naming the environment variable that controls the offending setting.
*/
package config
