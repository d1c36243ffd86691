// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package algorithms

import (
	"context"
	"fmt"
	"sort"

	"github.com/tomtom215/recsengine/internal/recommend"
)

// ContentBased recommends products similar to the ones the user engaged with
// most strongly in their recent history.
//
// The heaviest recent products become seeds, and each candidate is scored as
//
//	score(candidate) = sum(similarityScore) across the seeds' similarity lists
type ContentBased struct {
	BaseAlgorithm

	store        recommend.InteractionStore
	similarities recommend.SimilarityStore
	popularity   recommend.PopularityRanker
	historySize  int
	seeds        int
	defaultDays  int
}

// ContentConfig contains configuration for content-based filtering.
type ContentConfig struct {
	// HistorySize is how many recent interactions are scored.
	HistorySize int

	// Seeds is how many top products seed the similarity lookup.
	Seeds int

	// DefaultDays is the popularity window used for users without history.
	DefaultDays int
}

// NewContentBased creates a new content-based filter.
func NewContentBased(
	store recommend.InteractionStore,
	similarities recommend.SimilarityStore,
	popularity recommend.PopularityRanker,
	cfg ContentConfig,
) *ContentBased {
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = 20
	}
	if cfg.Seeds <= 0 {
		cfg.Seeds = 5
	}
	if cfg.DefaultDays <= 0 {
		cfg.DefaultDays = 7
	}

	return &ContentBased{
		BaseAlgorithm: NewBaseAlgorithm(recommend.AlgorithmContent),
		store:         store,
		similarities:  similarities,
		popularity:    popularity,
		historySize:   cfg.HistorySize,
		seeds:         cfg.Seeds,
		defaultDays:   cfg.DefaultDays,
	}
}

// Recommend returns products similar to the user's seed products.
// Users without history receive popular products.
func (c *ContentBased) Recommend(ctx context.Context, userID string, limit int) ([]recommend.Recommendation, error) {
	history, err := c.store.FindRecent(ctx, recommend.Filter{UserIDs: []string{userID}}, c.historySize)
	if err != nil {
		return nil, fmt.Errorf("recent interactions: %w", err)
	}
	if len(history) == 0 {
		return c.popularity.Popular(ctx, limit, c.defaultDays)
	}

	return rankBySimilarity(ctx, c.similarities, Seeds(history, c.seeds), limit)
}

// Seeds ranks the products of history by summed interaction weight and
// returns the top n. Ties keep the order in which products first appear.
func Seeds(history []recommend.Interaction, n int) []string {
	scores := make(map[string]float64, len(history))
	order := make([]string, 0, len(history))
	for i := range history {
		id := history[i].ProductID
		if _, ok := scores[id]; !ok {
			order = append(order, id)
		}
		scores[id] += history[i].EffectiveWeight()
	}

	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})

	if n < 0 {
		n = 0
	}
	if len(order) > n {
		order = order[:n]
	}
	return order
}
