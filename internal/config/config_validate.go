// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateLogging,
		c.validateStore,
		c.validateCache,
		c.validateRecommend,
		c.validateEvents,
		c.validateRateLimit,
		c.validateMetrics,
	}

	for _, validator := range validators {
		if err := validator(); err != nil {
			return err
		}
	}
	return nil
}

// validateServer validates HTTP server settings
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("RECS_SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server read and write timeouts must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("RECS_SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	switch c.Server.Environment {
	case "development", "production":
	default:
		return fmt.Errorf("RECS_ENVIRONMENT must be one of: development, production")
	}
	return nil
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("RECS_LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("RECS_LOG_FORMAT must be one of: json, console")
	}
}

// validateStore validates the store backend and its settings
func (c *Config) validateStore() error {
	if c.Store.Retention < 0 {
		return fmt.Errorf("RECS_STORE_RETENTION must not be negative")
	}
	if c.Store.Retention > 0 && c.Store.PurgeInterval <= 0 {
		return fmt.Errorf("RECS_STORE_PURGE_INTERVAL must be positive when retention is set")
	}

	switch c.Store.Backend {
	case StoreMemory, StoreDuckDB:
		return nil
	case StoreMongo:
		if c.Store.Mongo.URI == "" {
			return fmt.Errorf("RECS_STORE_MONGO_URI is required when RECS_STORE_BACKEND=mongo")
		}
		if !strings.HasPrefix(c.Store.Mongo.URI, "mongodb://") && !strings.HasPrefix(c.Store.Mongo.URI, "mongodb+srv://") {
			return fmt.Errorf("RECS_STORE_MONGO_URI must use the mongodb:// or mongodb+srv:// scheme")
		}
		if c.Store.Mongo.Database == "" {
			return fmt.Errorf("RECS_STORE_MONGO_DATABASE is required when RECS_STORE_BACKEND=mongo")
		}
		return nil
	default:
		return fmt.Errorf("RECS_STORE_BACKEND must be one of: memory, duckdb, mongo")
	}
}

// validateCache validates the cache backend and its settings
func (c *Config) validateCache() error {
	switch c.Cache.Backend {
	case CacheNone:
		return nil
	case CacheMemory:
		if c.Cache.Memory.Capacity <= 0 {
			return fmt.Errorf("RECS_CACHE_MEMORY_CAPACITY must be positive")
		}
	case CacheRedis:
		if c.Cache.Redis.Addr == "" {
			return fmt.Errorf("RECS_CACHE_REDIS_ADDR is required when RECS_CACHE_BACKEND=redis")
		}
	case CacheBadger:
	default:
		return fmt.Errorf("RECS_CACHE_BACKEND must be one of: none, memory, redis, badger")
	}

	if c.Cache.TTL <= 0 {
		return fmt.Errorf("RECS_CACHE_TTL must be positive")
	}
	if c.Cache.Breaker.Enabled {
		if c.Cache.Breaker.ConsecutiveFailures == 0 {
			return fmt.Errorf("RECS_CACHE_BREAKER_CONSECUTIVE_FAILURES must be positive")
		}
		if c.Cache.Breaker.Timeout <= 0 {
			return fmt.Errorf("RECS_CACHE_BREAKER_TIMEOUT must be positive")
		}
	}
	return nil
}

// validateRecommend validates the strategy tuning
func (c *Config) validateRecommend() error {
	r := &c.Recommend
	positives := []struct {
		name  string
		value int
	}{
		{"RECS_RECOMMEND_DEFAULT_LIMIT", r.DefaultLimit},
		{"RECS_RECOMMEND_MAX_LIMIT", r.MaxLimit},
		{"RECS_RECOMMEND_POPULARITY_DAYS", r.PopularityDays},
		{"RECS_RECOMMEND_COLLABORATIVE_HISTORY", r.CollaborativeHistory},
		{"RECS_RECOMMEND_SIMILAR_USERS", r.SimilarUsers},
		{"RECS_RECOMMEND_CONTENT_HISTORY", r.ContentHistory},
		{"RECS_RECOMMEND_CONTENT_SEEDS", r.ContentSeeds},
		{"RECS_RECOMMEND_SIMILARITY_CANDIDATES", r.SimilarityCandidates},
		{"RECS_RECOMMEND_BATCH_CONCURRENCY", r.BatchConcurrency},
		{"RECS_RECOMMEND_HISTORY_LIMIT", r.HistoryLimit},
	}
	for _, p := range positives {
		if p.value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", p.name, p.value)
		}
	}

	if r.DefaultLimit > r.MaxLimit {
		return fmt.Errorf("RECS_RECOMMEND_DEFAULT_LIMIT (%d) must not exceed RECS_RECOMMEND_MAX_LIMIT (%d)", r.DefaultLimit, r.MaxLimit)
	}
	if r.CollaborativeShare <= 0 || r.ContentShare <= 0 {
		return fmt.Errorf("hybrid shares must be positive")
	}
	return nil
}

// validateEvents validates the event bus settings
func (c *Config) validateEvents() error {
	e := &c.Events
	switch e.Backend {
	case EventsNone:
		return nil
	case EventsChannel, EventsEmbedded:
	case EventsNATS:
		if err := validateNATSURL(e.NATS.URL); err != nil {
			return fmt.Errorf("RECS_NATS_URL is invalid: %w", err)
		}
	default:
		return fmt.Errorf("RECS_EVENTS_BACKEND must be one of: none, channel, nats, embedded")
	}

	if e.SimilarityTopic == "" || e.InteractionTopic == "" {
		return fmt.Errorf("event topics must not be empty")
	}
	if e.RetryCount < 0 {
		return fmt.Errorf("RECS_EVENTS_RETRY_COUNT must not be negative")
	}
	if e.Backend == EventsEmbedded && (e.Embedded.Port < 1 || e.Embedded.Port > 65535) {
		return fmt.Errorf("RECS_NATS_EMBEDDED_PORT must be between 1 and 65535")
	}
	return nil
}

// validateNATSURL checks the scheme and host of a NATS URL
func validateNATSURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	switch u.Scheme {
	case "nats", "tls", "ws", "wss":
	default:
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

// validateRateLimit validates per-IP limits
func (c *Config) validateRateLimit() error {
	if !c.RateLimit.Enabled {
		return nil
	}
	if c.RateLimit.GeneralRequests <= 0 || c.RateLimit.TrackRequests <= 0 {
		return fmt.Errorf("rate limit request counts must be positive")
	}
	if c.RateLimit.GeneralWindow <= 0 || c.RateLimit.TrackWindow <= 0 {
		return fmt.Errorf("rate limit windows must be positive")
	}
	return nil
}

// validateMetrics validates the metrics endpoint
func (c *Config) validateMetrics() error {
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("RECS_METRICS_PATH must start with /")
	}
	return nil
}
