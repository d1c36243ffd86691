// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package cache

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/recsengine/internal/config"
	"github.com/tomtom215/recsengine/internal/recommend"
)

// ErrUnknownBackend is returned by New for an unrecognized backend name.
var ErrUnknownBackend = errors.New("unknown cache backend")

// Backend is a recommendation cache that can report liveness and release
// its resources.
type Backend interface {
	recommend.Cache
	recommend.Pinger
	Close() error
}

// New builds the backend selected by cfg. It returns (nil, nil) when
// caching is disabled. Network and disk backends are wrapped in a circuit
// breaker when cfg.Breaker.Enabled is set.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg *config.CacheConfig, logger zerolog.Logger) (Backend, error) {
	var (
		backend Backend
		err     error
	)

	switch cfg.Backend {
	case config.CacheNone, "":
		return nil, nil
	case config.CacheMemory:
		return NewMemory(cfg.Memory.Capacity), nil
	case config.CacheRedis:
		backend, err = NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	case config.CacheBadger:
		backend, err = NewBadger(cfg.Badger.Path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	if !cfg.Breaker.Enabled {
		return backend, nil
	}
	return NewBreaker(backend, BreakerSettings{
		Name:                "cache-" + cfg.Backend,
		MaxRequests:         cfg.Breaker.MaxRequests,
		Interval:            cfg.Breaker.Interval,
		Timeout:             cfg.Breaker.Timeout,
		ConsecutiveFailures: cfg.Breaker.ConsecutiveFailures,
	}, logger), nil
}
