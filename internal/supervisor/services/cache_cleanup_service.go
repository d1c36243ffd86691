// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// ExpiredCleaner drops expired cache entries. The in-process cache
// implements it; Redis and Badger expire entries themselves.
type ExpiredCleaner interface {
	CleanupExpired() int
}

// CacheCleanupService sweeps expired entries from the in-process cache so
// that entries nobody reads again do not hold capacity until eviction.
type CacheCleanupService struct {
	cache    ExpiredCleaner
	interval time.Duration
	logger   zerolog.Logger
	name     string
}

// NewCacheCleanupService creates a cache sweeper. A non-positive interval
// means one minute.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCacheCleanupService(cache ExpiredCleaner, interval time.Duration, logger zerolog.Logger) *CacheCleanupService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &CacheCleanupService{
		cache:    cache,
		interval: interval,
		logger:   logger.With().Str("service", "cache-cleanup").Logger(),
		name:     "cache-cleanup",
	}
}

// Serve implements the suture.Service interface.
func (s *CacheCleanupService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticker.C:
			if removed := s.cache.CleanupExpired(); removed > 0 {
				s.logger.Debug().Int("removed", removed).Msg("expired cache entries removed")
			}
		}
	}
}

// String returns the service name for logging.
func (s *CacheCleanupService) String() string {
	return s.name
}
