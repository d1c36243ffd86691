// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

/*
Package cache provides the recommendation cache backends.

Every backend stores opaque byte values under string keys with a
time-to-live and supports deletion by key prefix, which the engine uses to
invalidate all of a user's cached recommendation lists at once.

# Backends

  - Memory: bounded in-process LRU with lazy per-entry expiry
  - Redis: shared cache across replicas (go-redis), prefix deletion via SCAN
  - Badger: embedded persistent cache that survives restarts, native TTL

# Resilience

Redis and Badger are wrapped in a Breaker (sony/gobreaker) when enabled in
configuration. Once ConsecutiveFailures calls fail in a row the circuit
opens and calls fail fast until Timeout elapses. The engine already treats
every cache error as a miss, so an open circuit only costs recomputation.

	backend, err := cache.New(&cfg.Cache, logging.WithComponent("cache"))
	if err != nil {
		return err
	}
	engine, err := recommend.NewEngine(store, sims, backend, ...)

New returns (nil, nil) for the "none" backend, which disables caching.
*/
package cache
