// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package algorithms

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/tomtom215/recsengine/internal/recommend"
)

// collaborativeTypes are the neighbor signals strong enough to recommend from.
var collaborativeTypes = []recommend.InteractionType{
	recommend.InteractionPurchase,
	recommend.InteractionAddToCart,
	recommend.InteractionWishlist,
}

// Collaborative implements user-based collaborative filtering.
//
// Neighbors are users who touched any product of the target user's recent
// history U, scored as
//
//	similarity(v) = common(v, U) / |U|
//
// Candidates are the products the top neighbors purchased, carted or
// wishlisted outside U, scored by summed weight.
//
// Store failures are logged and answered with an empty list; the caller
// decides whether to fall back.
type Collaborative struct {
	BaseAlgorithm

	store        recommend.InteractionStore
	popularity   recommend.PopularityRanker
	historySize  int
	similarUsers int
	defaultDays  int
	logger       zerolog.Logger
}

// CollaborativeConfig contains configuration for collaborative filtering.
type CollaborativeConfig struct {
	// HistorySize is how many recent interactions form the user's product set.
	HistorySize int

	// SimilarUsers is how many neighbors contribute candidates.
	SimilarUsers int

	// DefaultDays is the popularity window used for users without history.
	DefaultDays int
}

// Neighbor is a behaviorally similar user.
type Neighbor struct {
	UserID           string
	Similarity       float64
	InteractionCount int
}

// NewCollaborative creates a new collaborative filter.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCollaborative(
	store recommend.InteractionStore,
	popularity recommend.PopularityRanker,
	cfg CollaborativeConfig,
	logger zerolog.Logger,
) *Collaborative {
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = 50
	}
	if cfg.SimilarUsers <= 0 {
		cfg.SimilarUsers = 10
	}
	if cfg.DefaultDays <= 0 {
		cfg.DefaultDays = 7
	}

	return &Collaborative{
		BaseAlgorithm: NewBaseAlgorithm(recommend.AlgorithmCollaborative),
		store:         store,
		popularity:    popularity,
		historySize:   cfg.HistorySize,
		similarUsers:  cfg.SimilarUsers,
		defaultDays:   cfg.DefaultDays,
		logger:        logger.With().Str("algorithm", recommend.AlgorithmCollaborative).Logger(),
	}
}

// Recommend returns products liked by the user's nearest neighbors.
// Users without history receive popular products. A store failure yields an
// empty list and no error.
func (c *Collaborative) Recommend(ctx context.Context, userID string, limit int) ([]recommend.Recommendation, error) {
	recs, err := c.recommend(ctx, userID, limit)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Warn().
			Err(err).
			Str("user_id", userID).
			Msg("collaborative filtering failed, returning no results")
		return []recommend.Recommendation{}, nil
	}
	return recs, nil
}

func (c *Collaborative) recommend(ctx context.Context, userID string, limit int) ([]recommend.Recommendation, error) {
	history, err := c.store.FindRecent(ctx, recommend.Filter{UserIDs: []string{userID}}, c.historySize)
	if err != nil {
		return nil, fmt.Errorf("user history: %w", err)
	}
	if len(history) == 0 {
		return c.popularity.Popular(ctx, limit, c.defaultDays)
	}

	owned := distinctProducts(history)
	neighbors, err := c.SimilarUsers(ctx, userID, owned)
	if err != nil {
		return nil, err
	}
	if len(neighbors) == 0 {
		return []recommend.Recommendation{}, nil
	}
	if ContextCancelled(ctx) {
		return nil, ctx.Err()
	}

	neighborIDs := make([]string, len(neighbors))
	for i := range neighbors {
		neighborIDs[i] = neighbors[i].UserID
	}

	rows, err := c.store.Aggregate(ctx, recommend.AggregateQuery{
		Match: recommend.Filter{
			UserIDs:           neighborIDs,
			ExcludeProductIDs: owned,
			Types:             collaborativeTypes,
		},
		GroupBy: recommend.FieldProductID,
	})
	if err != nil {
		return nil, fmt.Errorf("aggregate neighbor products: %w", err)
	}

	ranked := topRows(rankRows(rows, bySum), limit)
	recs := make([]recommend.Recommendation, len(ranked))
	for i := range ranked {
		recs[i] = recommend.Recommendation{
			ProductID: ranked[i].Key,
			Score:     ranked[i].Sum,
			Reason:    recommend.ReasonUsersAlsoLiked,
			Category:  ranked[i].Category,
		}
	}
	return recs, nil
}

// SimilarUsers ranks users sharing products with owned by overlap ratio, then
// by interaction count, and keeps the configured number of neighbors.
func (c *Collaborative) SimilarUsers(ctx context.Context, userID string, owned []string) ([]Neighbor, error) {
	if len(owned) == 0 {
		return nil, nil
	}

	rows, err := c.store.Aggregate(ctx, recommend.AggregateQuery{
		Match: recommend.Filter{
			ProductIDs:     owned,
			ExcludeUserIDs: []string{userID},
		},
		GroupBy:    recommend.FieldUserID,
		DistinctOf: recommend.FieldProductID,
	})
	if err != nil {
		return nil, fmt.Errorf("aggregate similar users: %w", err)
	}

	neighbors := make([]Neighbor, len(rows))
	for i := range rows {
		neighbors[i] = Neighbor{
			UserID:           rows[i].Key,
			Similarity:       float64(rows[i].Distinct) / float64(len(owned)),
			InteractionCount: rows[i].Count,
		}
	}

	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Similarity != neighbors[j].Similarity {
			return neighbors[i].Similarity > neighbors[j].Similarity
		}
		if neighbors[i].InteractionCount != neighbors[j].InteractionCount {
			return neighbors[i].InteractionCount > neighbors[j].InteractionCount
		}
		return neighbors[i].UserID < neighbors[j].UserID
	})

	if len(neighbors) > c.similarUsers {
		neighbors = neighbors[:c.similarUsers]
	}
	return neighbors, nil
}

// distinctProducts returns the product IDs of history in first-seen order.
func distinctProducts(history []recommend.Interaction) []string {
	seen := make(map[string]struct{}, len(history))
	out := make([]string, 0, len(history))
	for i := range history {
		id := history[i].ProductID
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
