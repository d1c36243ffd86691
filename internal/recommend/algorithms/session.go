// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package algorithms

import (
	"context"

	"github.com/tomtom215/recsengine/internal/recommend"
)

// Session ranks products similar to the products of a browsing session.
// It is the content-based aggregation without the history lookup.
type Session struct {
	similarities recommend.SimilarityStore
	popularity   recommend.PopularityRanker
	defaultDays  int
}

// SessionConfig contains configuration for session-based ranking.
type SessionConfig struct {
	// DefaultDays is the popularity window used for empty sessions.
	DefaultDays int
}

// NewSession creates a new session ranker.
func NewSession(similarities recommend.SimilarityStore, popularity recommend.PopularityRanker, cfg SessionConfig) *Session {
	if cfg.DefaultDays <= 0 {
		cfg.DefaultDays = 7
	}

	return &Session{
		similarities: similarities,
		popularity:   popularity,
		defaultDays:  cfg.DefaultDays,
	}
}

// RankSeeds returns products similar to seeds. An empty session receives
// popular products.
func (s *Session) RankSeeds(ctx context.Context, seeds []string, limit int) ([]recommend.Recommendation, error) {
	if len(seeds) == 0 {
		return s.popularity.Popular(ctx, limit, s.defaultDays)
	}
	return rankBySimilarity(ctx, s.similarities, seeds, limit)
}
