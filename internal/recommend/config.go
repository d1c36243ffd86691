// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package recommend

import (
	"fmt"
	"time"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Limits contains request size limits.
	Limits LimitsConfig `json:"limits"`

	// Popularity contains trending window parameters.
	Popularity PopularityConfig `json:"popularity"`

	// Collaborative contains collaborative filtering parameters.
	Collaborative CollaborativeConfig `json:"collaborative"`

	// Content contains content-based filtering parameters.
	Content ContentConfig `json:"content"`

	// Hybrid contains the blend shares of the hybrid combiner.
	Hybrid HybridConfig `json:"hybrid"`

	// Similarity contains similarity rebuild parameters.
	Similarity SimilarityConfig `json:"similarity"`

	// Cache contains caching parameters.
	Cache CacheConfig `json:"cache"`

	// Tracking contains interaction tracking parameters.
	Tracking TrackingConfig `json:"tracking"`
}

// LimitsConfig bounds result sizes.
type LimitsConfig struct {
	// DefaultLimit is used when a request does not specify one.
	DefaultLimit int `json:"default_limit"`

	// MaxLimit caps any requested limit.
	MaxLimit int `json:"max_limit"`
}

// PopularityConfig contains trending parameters.
type PopularityConfig struct {
	// DefaultDays is the trailing window used by fallbacks and requests without days.
	DefaultDays int `json:"default_days"`
}

// CollaborativeConfig contains collaborative filtering parameters.
type CollaborativeConfig struct {
	// HistorySize is how many recent interactions describe the user.
	HistorySize int `json:"history_size"`

	// SimilarUsers is how many neighbors contribute candidates.
	SimilarUsers int `json:"similar_users"`
}

// ContentConfig contains content-based parameters.
type ContentConfig struct {
	// HistorySize is how many recent interactions are scored for seeds.
	HistorySize int `json:"history_size"`

	// Seeds is how many top products seed the similarity lookup.
	Seeds int `json:"seeds"`
}

// HybridConfig contains blend shares. Each branch receives ceil(limit*share).
type HybridConfig struct {
	CollaborativeShare float64 `json:"collaborative_share"`
	ContentShare       float64 `json:"content_share"`
}

// SimilarityConfig contains similarity rebuild parameters.
type SimilarityConfig struct {
	// MaxCandidates is the length of a rebuilt similarity list.
	MaxCandidates int `json:"max_candidates"`
}

// CacheConfig contains caching parameters.
type CacheConfig struct {
	// Enabled toggles result caching.
	Enabled bool `json:"enabled"`

	// TTL is the lifetime of cached recommendation lists.
	TTL time.Duration `json:"ttl"`
}

// TrackingConfig contains interaction tracking parameters.
type TrackingConfig struct {
	// StrictTypes rejects unknown interaction types instead of weighting them 1.
	StrictTypes bool `json:"strict_types"`

	// BatchConcurrency bounds concurrent writes of a batch.
	BatchConcurrency int `json:"batch_concurrency"`

	// HistoryLimit is the default size of a user history listing.
	HistoryLimit int `json:"history_limit"`
}

// DefaultConfig returns production defaults.
func DefaultConfig() *Config {
	return &Config{
		Limits: LimitsConfig{
			DefaultLimit: 10,
			MaxLimit:     100,
		},
		Popularity: PopularityConfig{
			DefaultDays: 7,
		},
		Collaborative: CollaborativeConfig{
			HistorySize:  50,
			SimilarUsers: 10,
		},
		Content: ContentConfig{
			HistorySize: 20,
			Seeds:       5,
		},
		Hybrid: HybridConfig{
			CollaborativeShare: 0.6,
			ContentShare:       0.4,
		},
		Similarity: SimilarityConfig{
			MaxCandidates: 20,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     time.Hour,
		},
		Tracking: TrackingConfig{
			StrictTypes:      false,
			BatchConcurrency: 16,
			HistoryLimit:     50,
		},
	}
}

// Validate checks configuration for errors.
func (c *Config) Validate() error {
	if c.Limits.DefaultLimit < 1 {
		return fmt.Errorf("limits.default_limit must be positive, got %d", c.Limits.DefaultLimit)
	}
	if c.Limits.MaxLimit < c.Limits.DefaultLimit {
		return fmt.Errorf("limits.max_limit must be >= default_limit, got %d", c.Limits.MaxLimit)
	}
	if c.Popularity.DefaultDays < 1 {
		return fmt.Errorf("popularity.default_days must be positive, got %d", c.Popularity.DefaultDays)
	}
	if c.Collaborative.HistorySize < 1 {
		return fmt.Errorf("collaborative.history_size must be positive, got %d", c.Collaborative.HistorySize)
	}
	if c.Collaborative.SimilarUsers < 1 {
		return fmt.Errorf("collaborative.similar_users must be positive, got %d", c.Collaborative.SimilarUsers)
	}
	if c.Content.HistorySize < 1 {
		return fmt.Errorf("content.history_size must be positive, got %d", c.Content.HistorySize)
	}
	if c.Content.Seeds < 1 {
		return fmt.Errorf("content.seeds must be positive, got %d", c.Content.Seeds)
	}
	if c.Hybrid.CollaborativeShare <= 0 || c.Hybrid.CollaborativeShare > 1 {
		return fmt.Errorf("hybrid.collaborative_share must be in (0, 1], got %f", c.Hybrid.CollaborativeShare)
	}
	if c.Hybrid.ContentShare <= 0 || c.Hybrid.ContentShare > 1 {
		return fmt.Errorf("hybrid.content_share must be in (0, 1], got %f", c.Hybrid.ContentShare)
	}
	if c.Similarity.MaxCandidates < 1 {
		return fmt.Errorf("similarity.max_candidates must be positive, got %d", c.Similarity.MaxCandidates)
	}
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive when caching is enabled, got %v", c.Cache.TTL)
	}
	if c.Tracking.BatchConcurrency < 1 {
		return fmt.Errorf("tracking.batch_concurrency must be positive, got %d", c.Tracking.BatchConcurrency)
	}
	if c.Tracking.HistoryLimit < 1 {
		return fmt.Errorf("tracking.history_limit must be positive, got %d", c.Tracking.HistoryLimit)
	}
	return nil
}

// clampLimit applies the default and maximum limits.
func (c *Config) clampLimit(limit int) int {
	if limit <= 0 {
		return c.Limits.DefaultLimit
	}
	if limit > c.Limits.MaxLimit {
		return c.Limits.MaxLimit
	}
	return limit
}

// clampDays applies the default popularity window.
func (c *Config) clampDays(days int) int {
	if days <= 0 {
		return c.Popularity.DefaultDays
	}
	return days
}
