// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package recommend

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

const (
	personalizedKeyPrefix = "recommendations:"
	alsoBoughtKeyPrefix   = "also_bought:"
)

// PersonalizedKey is the cache key of a user's recommendations for an algorithm.
func PersonalizedKey(userID, algorithm string) string {
	return personalizedKeyPrefix + userID + ":" + algorithm
}

// UserKeyPrefix matches every personalized cache key of a user. The match is
// exact only for user IDs without ':', which tracking rejects.
func UserKeyPrefix(userID string) string {
	return personalizedKeyPrefix + userID + ":"
}

// AlsoBoughtKey is the cache key of a product's co-purchase list.
func AlsoBoughtKey(productID string) string {
	return alsoBoughtKeyPrefix + productID
}

// cacheLayer is the read-through wrapper around the optional Cache.
// Every backend failure is logged and treated as a miss or a no-op.
type cacheLayer struct {
	cache   Cache
	ttl     time.Duration
	logger  zerolog.Logger
	metrics MetricsRecorder
}

// newCacheLayer returns a layer that is a no-op when c is nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func newCacheLayer(c Cache, ttl time.Duration, logger zerolog.Logger, metrics MetricsRecorder) *cacheLayer {
	return &cacheLayer{cache: c, ttl: ttl, logger: logger, metrics: metrics}
}

func (c *cacheLayer) enabled() bool {
	return c.cache != nil
}

// load returns the cached list under key. An empty cached list is a hit.
func (c *cacheLayer) load(ctx context.Context, kind, key string) ([]Recommendation, bool) {
	if !c.enabled() {
		return nil, false
	}

	data, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.metrics.CacheError("get")
		c.logger.Warn().Err(err).Str("key", key).Msg("cache get failed")
		return nil, false
	}
	if !ok {
		c.metrics.CacheMiss(kind)
		return nil, false
	}

	var recs []Recommendation
	if err := json.Unmarshal(data, &recs); err != nil {
		c.metrics.CacheError("decode")
		c.logger.Warn().Err(err).Str("key", key).Msg("discarding undecodable cache entry")
		return nil, false
	}
	if recs == nil {
		recs = []Recommendation{}
	}

	c.metrics.CacheHit(kind)
	return recs, true
}

// store writes recs under key with the configured TTL.
func (c *cacheLayer) store(ctx context.Context, key string, recs []Recommendation) {
	if !c.enabled() {
		return
	}
	if recs == nil {
		recs = []Recommendation{}
	}

	data, err := json.Marshal(recs)
	if err != nil {
		c.metrics.CacheError("encode")
		c.logger.Warn().Err(err).Str("key", key).Msg("encode cache entry failed")
		return
	}

	if err := c.cache.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.metrics.CacheError("set")
		c.logger.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
}

// invalidateUser removes every personalized entry of the user.
func (c *cacheLayer) invalidateUser(ctx context.Context, userID string) {
	if !c.enabled() {
		return
	}

	prefix := UserKeyPrefix(userID)
	if err := c.cache.DeleteByPrefix(ctx, prefix); err != nil {
		c.metrics.CacheError("delete")
		c.logger.Warn().Err(err).Str("prefix", prefix).Msg("cache invalidation failed")
	}
}
