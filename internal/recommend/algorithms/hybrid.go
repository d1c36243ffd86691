// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package algorithms

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/recsengine/internal/recommend"
)

// Hybrid blends collaborative and content-based results.
//
// Both branches run concurrently with ceil(limit*share) each. Collaborative
// results come first, so they win duplicates. The collaborative branch
// absorbs its own store failures and returns an empty list, leaving the
// content results to stand alone. Any error that escapes a branch makes the
// whole call answer with popular products.
type Hybrid struct {
	BaseAlgorithm

	collaborative      recommend.Algorithm
	content            recommend.Algorithm
	popularity         recommend.PopularityRanker
	collaborativeShare float64
	contentShare       float64
	defaultDays        int
	logger             zerolog.Logger
}

// HybridConfig contains the blend shares of the hybrid combiner.
type HybridConfig struct {
	CollaborativeShare float64
	ContentShare       float64

	// DefaultDays is the popularity window of the fallback.
	DefaultDays int
}

// NewHybrid creates a new hybrid combiner.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHybrid(
	collaborative, content recommend.Algorithm,
	popularity recommend.PopularityRanker,
	cfg HybridConfig,
	logger zerolog.Logger,
) *Hybrid {
	if cfg.CollaborativeShare <= 0 {
		cfg.CollaborativeShare = 0.6
	}
	if cfg.ContentShare <= 0 {
		cfg.ContentShare = 0.4
	}
	if cfg.DefaultDays <= 0 {
		cfg.DefaultDays = 7
	}

	return &Hybrid{
		BaseAlgorithm:      NewBaseAlgorithm(recommend.AlgorithmHybrid),
		collaborative:      collaborative,
		content:            content,
		popularity:         popularity,
		collaborativeShare: cfg.CollaborativeShare,
		contentShare:       cfg.ContentShare,
		defaultDays:        cfg.DefaultDays,
		logger:             logger.With().Str("algorithm", recommend.AlgorithmHybrid).Logger(),
	}
}

// Recommend merges both branches into at most limit unique products.
func (h *Hybrid) Recommend(ctx context.Context, userID string, limit int) ([]recommend.Recommendation, error) {
	var (
		g                       errgroup.Group
		collabRecs, contentRecs []recommend.Recommendation
	)

	g.Go(func() (err error) {
		collabRecs, err = h.collaborative.Recommend(ctx, userID, ceilShare(limit, h.collaborativeShare))
		return err
	})
	g.Go(func() (err error) {
		contentRecs, err = h.content.Recommend(ctx, userID, ceilShare(limit, h.contentShare))
		return err
	})

	if err := g.Wait(); err != nil {
		h.logger.Warn().
			Err(err).
			Str("user_id", userID).
			Msg("hybrid branch failed, using popular products")
		return h.popularity.Popular(ctx, limit, h.defaultDays)
	}

	merged := make([]recommend.Recommendation, 0, len(collabRecs)+len(contentRecs))
	merged = append(merged, collabRecs...)
	merged = append(merged, contentRecs...)
	return recommend.FilterRecommendations(recommend.Deduplicate(merged), nil, limit), nil
}
