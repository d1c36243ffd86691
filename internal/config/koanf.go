// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/recsengine/config.yaml",
	"/etc/recsengine/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "RECS_"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			CORSOrigins:     []string{"*"},
			Environment:     "development",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Store: StoreConfig{
			Backend:       StoreMemory,
			Retention:     90 * 24 * time.Hour,
			PurgeInterval: time.Hour,
			DuckDB: DuckDBConfig{
				Path:      "/data/recsengine.duckdb",
				MaxMemory: "1GB",
				Threads:   0,
			},
			Mongo: MongoConfig{
				URI:            "mongodb://localhost:27017",
				Database:       "recommendations",
				ConnectTimeout: 10 * time.Second,
			},
		},
		Cache: CacheConfig{
			Backend: CacheMemory,
			TTL:     time.Hour,
			Memory:  MemoryCache{Capacity: 10000},
			Redis: RedisConfig{
				Addr: "localhost:6379",
				DB:   0,
			},
			Badger: BadgerConfig{Path: ""},
			Breaker: BreakerConfig{
				Enabled:             true,
				MaxRequests:         1,
				Interval:            time.Minute,
				Timeout:             30 * time.Second,
				ConsecutiveFailures: 5,
			},
		},
		Recommend: RecommendConfig{
			DefaultLimit:         10,
			MaxLimit:             100,
			PopularityDays:       7,
			CollaborativeHistory: 50,
			SimilarUsers:         10,
			ContentHistory:       20,
			ContentSeeds:         5,
			CollaborativeShare:   0.6,
			ContentShare:         0.4,
			SimilarityCandidates: 20,
			StrictTypes:          false,
			BatchConcurrency:     16,
			HistoryLimit:         50,
		},
		Events: EventsConfig{
			Backend:          EventsChannel,
			SimilarityTopic:  "recommend.similarity.recompute",
			InteractionTopic: "recommend.interaction.tracked",
			PoisonTopic:      "recommend.poison",
			RetryCount:       3,
			RetryInterval:    100 * time.Millisecond,
			CloseTimeout:     30 * time.Second,
			NATS: NATSConfig{
				URL:           "nats://127.0.0.1:4222",
				DurableName:   "recsengine",
				QueueGroup:    "recsengine-workers",
				MaxReconnects: -1,
				ReconnectWait: 2 * time.Second,
			},
			Embedded: EmbeddedConfig{
				Host:      "127.0.0.1",
				Port:      4222,
				StoreDir:  "/data/nats/jetstream",
				MaxMemory: 256 << 20, // 256MB
				MaxStore:  1 << 30,   // 1GB
			},
		},
		RateLimit: RateLimitConfig{
			Enabled:         true,
			GeneralRequests: 100,
			GeneralWindow:   15 * time.Minute,
			TrackRequests:   50,
			TrackWindow:     time.Minute,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: RECS_ prefixed overrides
func Load() (*Config, error) {
	return load(findConfigFile())
}

// LoadFile loads configuration from an explicit file path plus the environment.
func LoadFile(path string) (*Config, error) {
	return load(path)
}

func load(configPath string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// RECS_SERVER_PORT -> server.port
	// RECS_CACHE_REDIS_ADDR -> cache.redis.addr
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lower-cased, prefix-stripped environment variable names to
// koanf paths. Section and field names both contain underscores, so the
// mapping is explicit.
var envMappings = map[string]string{
	// Server
	"server_host":             "server.host",
	"server_port":             "server.port",
	"server_read_timeout":     "server.read_timeout",
	"server_write_timeout":    "server.write_timeout",
	"server_shutdown_timeout": "server.shutdown_timeout",
	"server_cors_origins":     "server.cors_origins",
	"environment":             "server.environment",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Store
	"store_backend":               "store.backend",
	"store_retention":             "store.retention",
	"store_purge_interval":        "store.purge_interval",
	"store_duckdb_path":           "store.duckdb.path",
	"store_duckdb_max_memory":     "store.duckdb.max_memory",
	"store_duckdb_threads":        "store.duckdb.threads",
	"store_mongo_uri":             "store.mongo.uri",
	"store_mongo_database":        "store.mongo.database",
	"store_mongo_connect_timeout": "store.mongo.connect_timeout",
	"mongodb_uri":                 "store.mongo.uri",

	// Cache
	"cache_backend":                      "cache.backend",
	"cache_ttl":                          "cache.ttl",
	"cache_memory_capacity":              "cache.memory.capacity",
	"cache_redis_addr":                   "cache.redis.addr",
	"cache_redis_password":               "cache.redis.password",
	"cache_redis_db":                     "cache.redis.db",
	"cache_badger_path":                  "cache.badger.path",
	"cache_breaker_enabled":              "cache.breaker.enabled",
	"cache_breaker_max_requests":         "cache.breaker.max_requests",
	"cache_breaker_interval":             "cache.breaker.interval",
	"cache_breaker_timeout":              "cache.breaker.timeout",
	"cache_breaker_consecutive_failures": "cache.breaker.consecutive_failures",

	// Recommend
	"recommend_default_limit":         "recommend.default_limit",
	"recommend_max_limit":             "recommend.max_limit",
	"recommend_popularity_days":       "recommend.popularity_days",
	"recommend_collaborative_history": "recommend.collaborative_history",
	"recommend_similar_users":         "recommend.similar_users",
	"recommend_content_history":       "recommend.content_history",
	"recommend_content_seeds":         "recommend.content_seeds",
	"recommend_collaborative_share":   "recommend.collaborative_share",
	"recommend_content_share":         "recommend.content_share",
	"recommend_similarity_candidates": "recommend.similarity_candidates",
	"recommend_strict_types":          "recommend.strict_types",
	"recommend_batch_concurrency":     "recommend.batch_concurrency",
	"recommend_history_limit":         "recommend.history_limit",

	// Events
	"events_backend":           "events.backend",
	"events_similarity_topic":  "events.similarity_topic",
	"events_interaction_topic": "events.interaction_topic",
	"events_poison_topic":      "events.poison_topic",
	"events_retry_count":       "events.retry_count",
	"events_retry_interval":    "events.retry_interval",
	"events_close_timeout":     "events.close_timeout",
	"nats_url":                 "events.nats.url",
	"nats_durable_name":        "events.nats.durable_name",
	"nats_queue_group":         "events.nats.queue_group",
	"nats_max_reconnects":      "events.nats.max_reconnects",
	"nats_reconnect_wait":      "events.nats.reconnect_wait",
	"nats_embedded_host":       "events.embedded.host",
	"nats_embedded_port":       "events.embedded.port",
	"nats_embedded_store_dir":  "events.embedded.store_dir",
	"nats_embedded_max_memory": "events.embedded.max_memory",
	"nats_embedded_max_store":  "events.embedded.max_store",

	// Rate limiting
	"ratelimit_enabled":          "ratelimit.enabled",
	"ratelimit_general_requests": "ratelimit.general_requests",
	"ratelimit_general_window":   "ratelimit.general_window",
	"ratelimit_track_requests":   "ratelimit.track_requests",
	"ratelimit_track_window":     "ratelimit.track_window",

	// Metrics
	"metrics_enabled": "metrics.enabled",
	"metrics_path":    "metrics.path",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - RECS_SERVER_PORT -> server.port
//   - RECS_CACHE_REDIS_ADDR -> cache.redis.addr
//   - RECS_LOG_LEVEL -> logging.level
//
// Unknown variables map to the empty string and are skipped.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	return envMappings[key]
}
