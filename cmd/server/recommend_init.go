// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/recsengine/internal/config"
	"github.com/tomtom215/recsengine/internal/metrics"
	"github.com/tomtom215/recsengine/internal/recommend"
	"github.com/tomtom215/recsengine/internal/recommend/algorithms"
)

// engineConfig maps the service configuration onto the engine's.
func engineConfig(rc *config.RecommendConfig, cacheEnabled bool, cacheTTL time.Duration) *recommend.Config {
	cfg := recommend.DefaultConfig()

	cfg.Limits.DefaultLimit = rc.DefaultLimit
	cfg.Limits.MaxLimit = rc.MaxLimit
	cfg.Popularity.DefaultDays = rc.PopularityDays
	cfg.Collaborative.HistorySize = rc.CollaborativeHistory
	cfg.Collaborative.SimilarUsers = rc.SimilarUsers
	cfg.Content.HistorySize = rc.ContentHistory
	cfg.Content.Seeds = rc.ContentSeeds
	cfg.Hybrid.CollaborativeShare = rc.CollaborativeShare
	cfg.Hybrid.ContentShare = rc.ContentShare
	cfg.Similarity.MaxCandidates = rc.SimilarityCandidates
	cfg.Tracking.StrictTypes = rc.StrictTypes
	cfg.Tracking.BatchConcurrency = rc.BatchConcurrency
	cfg.Tracking.HistoryLimit = rc.HistoryLimit

	cfg.Cache.Enabled = cacheEnabled
	if cacheTTL > 0 {
		cfg.Cache.TTL = cacheTTL
	}
	return cfg
}

// initRecommendEngine builds the ranking strategies and the engine over the
// given store. cache and listener may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func initRecommendEngine(
	cfg *recommend.Config,
	store *storeComponents,
	cache recommend.Cache,
	listener recommend.TrackListener,
	logger zerolog.Logger,
) (*recommend.Engine, error) {
	days := cfg.Popularity.DefaultDays

	popularity := algorithms.NewPopularity(store.interactions, algorithms.PopularityConfig{
		DefaultDays: days,
	})
	collaborative := algorithms.NewCollaborative(store.interactions, popularity, algorithms.CollaborativeConfig{
		HistorySize:  cfg.Collaborative.HistorySize,
		SimilarUsers: cfg.Collaborative.SimilarUsers,
		DefaultDays:  days,
	}, logger)
	content := algorithms.NewContentBased(store.interactions, store.similarities, popularity, algorithms.ContentConfig{
		HistorySize: cfg.Content.HistorySize,
		Seeds:       cfg.Content.Seeds,
		DefaultDays: days,
	})
	hybrid := algorithms.NewHybrid(collaborative, content, popularity, algorithms.HybridConfig{
		CollaborativeShare: cfg.Hybrid.CollaborativeShare,
		ContentShare:       cfg.Hybrid.ContentShare,
		DefaultDays:        days,
	}, logger)

	deps := recommend.Dependencies{
		Interactions: store.interactions,
		Similarities: store.similarities,
		Popularity:   popularity,
		AlsoBought:   algorithms.NewAlsoBought(store.interactions),
		Session:      algorithms.NewSession(store.similarities, popularity, algorithms.SessionConfig{DefaultDays: days}),
		Calculator: algorithms.NewSimilarityCalculator(store.interactions, store.similarities, algorithms.SimilarityConfig{
			MaxCandidates: cfg.Similarity.MaxCandidates,
		}),
		Cache:    cache,
		Metrics:  metrics.NewRecommendRecorder(),
		Listener: listener,
	}

	engine, err := recommend.NewEngine(cfg, deps, logger)
	if err != nil {
		return nil, fmt.Errorf("create recommendation engine: %w", err)
	}

	engine.RegisterAlgorithm(collaborative)
	engine.RegisterAlgorithm(content)
	engine.RegisterAlgorithm(hybrid)

	logger.Info().
		Strs("algorithms", engine.Algorithms()).
		Bool("cache", cfg.Cache.Enabled).
		Dur("cache_ttl", cfg.Cache.TTL).
		Msg("Recommendation engine initialized")

	return engine, nil
}
