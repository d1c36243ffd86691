// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration loaded from defaults, an optional
// config file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: RECS_ prefixed overrides
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Store     StoreConfig     `koanf:"store"`
	Cache     CacheConfig     `koanf:"cache"`
	Recommend RecommendConfig `koanf:"recommend"`
	Events    EventsConfig    `koanf:"events"`
	RateLimit RateLimitConfig `koanf:"ratelimit"`
	Metrics   MetricsConfig   `koanf:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	Environment     string        `koanf:"environment"` // development or production
}

// Addr returns the listen address.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`  // trace, debug, info, warn, error
	Format string `koanf:"format"` // json or console
	Caller bool   `koanf:"caller"` // include file:line
}

// Store backends.
const (
	StoreMemory = "memory"
	StoreDuckDB = "duckdb"
	StoreMongo  = "mongo"
)

// StoreConfig selects and configures the interaction and similarity store.
type StoreConfig struct {
	Backend       string        `koanf:"backend"`
	Retention     time.Duration `koanf:"retention"`      // interactions older than this are purged
	PurgeInterval time.Duration `koanf:"purge_interval"` // how often the retention service runs
	DuckDB        DuckDBConfig  `koanf:"duckdb"`
	Mongo         MongoConfig   `koanf:"mongo"`
}

// DuckDBConfig configures the embedded analytical store.
type DuckDBConfig struct {
	Path      string `koanf:"path"` // empty means in-memory
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = DuckDB default
}

// MongoConfig configures the document store.
type MongoConfig struct {
	URI            string        `koanf:"uri"`
	Database       string        `koanf:"database"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
}

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheBadger = "badger"
)

// CacheConfig selects and configures the recommendation cache.
type CacheConfig struct {
	Backend string        `koanf:"backend"`
	TTL     time.Duration `koanf:"ttl"`
	Memory  MemoryCache   `koanf:"memory"`
	Redis   RedisConfig   `koanf:"redis"`
	Badger  BadgerConfig  `koanf:"badger"`
	Breaker BreakerConfig `koanf:"breaker"`
}

// MemoryCache configures the in-process cache.
type MemoryCache struct {
	Capacity int `koanf:"capacity"`
}

// RedisConfig configures the Redis cache.
type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// BadgerConfig configures the embedded persistent cache.
type BadgerConfig struct {
	Path string `koanf:"path"` // empty means in-memory
}

// BreakerConfig configures the circuit breaker in front of remote caches.
type BreakerConfig struct {
	Enabled             bool          `koanf:"enabled"`
	MaxRequests         uint32        `koanf:"max_requests"` // half-open probes
	Interval            time.Duration `koanf:"interval"`     // closed-state counter reset
	Timeout             time.Duration `koanf:"timeout"`      // open-state duration
	ConsecutiveFailures uint32        `koanf:"consecutive_failures"`
}

// RecommendConfig tunes the recommendation strategies.
type RecommendConfig struct {
	DefaultLimit         int     `koanf:"default_limit"`
	MaxLimit             int     `koanf:"max_limit"`
	PopularityDays       int     `koanf:"popularity_days"`
	CollaborativeHistory int     `koanf:"collaborative_history"`
	SimilarUsers         int     `koanf:"similar_users"`
	ContentHistory       int     `koanf:"content_history"`
	ContentSeeds         int     `koanf:"content_seeds"`
	CollaborativeShare   float64 `koanf:"collaborative_share"`
	ContentShare         float64 `koanf:"content_share"`
	SimilarityCandidates int     `koanf:"similarity_candidates"`
	StrictTypes          bool    `koanf:"strict_types"`
	BatchConcurrency     int     `koanf:"batch_concurrency"`
	HistoryLimit         int     `koanf:"history_limit"`
}

// Event backends.
const (
	EventsNone     = "none"
	EventsChannel  = "channel"
	EventsNATS     = "nats"
	EventsEmbedded = "embedded"
)

// EventsConfig configures the event bus used for similarity recomputation and
// tracking notifications.
type EventsConfig struct {
	Backend          string         `koanf:"backend"`
	SimilarityTopic  string         `koanf:"similarity_topic"`
	InteractionTopic string         `koanf:"interaction_topic"`
	PoisonTopic      string         `koanf:"poison_topic"`
	RetryCount       int            `koanf:"retry_count"`
	RetryInterval    time.Duration  `koanf:"retry_interval"`
	CloseTimeout     time.Duration  `koanf:"close_timeout"`
	NATS             NATSConfig     `koanf:"nats"`
	Embedded         EmbeddedConfig `koanf:"embedded"`
}

// NATSConfig configures the NATS JetStream transport.
type NATSConfig struct {
	URL           string        `koanf:"url"`
	DurableName   string        `koanf:"durable_name"`
	QueueGroup    string        `koanf:"queue_group"`
	MaxReconnects int           `koanf:"max_reconnects"`
	ReconnectWait time.Duration `koanf:"reconnect_wait"`
}

// EmbeddedConfig configures the in-process NATS server.
type EmbeddedConfig struct {
	Host      string `koanf:"host"`
	Port      int    `koanf:"port"`
	StoreDir  string `koanf:"store_dir"`
	MaxMemory int64  `koanf:"max_memory"`
	MaxStore  int64  `koanf:"max_store"`
}

// RateLimitConfig holds per-IP request limits.
type RateLimitConfig struct {
	Enabled         bool          `koanf:"enabled"`
	GeneralRequests int           `koanf:"general_requests"`
	GeneralWindow   time.Duration `koanf:"general_window"`
	TrackRequests   int           `koanf:"track_requests"`
	TrackWindow     time.Duration `koanf:"track_window"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}
