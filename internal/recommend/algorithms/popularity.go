// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package algorithms

import (
	"context"
	"fmt"

	"github.com/tomtom215/recsengine/internal/recommend"
)

// popularTypes are the interaction types that count toward trending.
var popularTypes = []recommend.InteractionType{
	recommend.InteractionView,
	recommend.InteractionPurchase,
	recommend.InteractionAddToCart,
}

// Popularity ranks products by the summed weight of their recent views,
// purchases and cart adds. It is the fallback of every other strategy.
//
// The popularity score is computed as:
//
//	score(product) = sum(weight) over interactions in the trailing window
type Popularity struct {
	clock

	store       recommend.InteractionStore
	defaultDays int
}

// PopularityConfig contains configuration for the popularity ranker.
type PopularityConfig struct {
	// DefaultDays is the window used when a caller passes days <= 0.
	DefaultDays int
}

// NewPopularity creates a new popularity ranker.
func NewPopularity(store recommend.InteractionStore, cfg PopularityConfig) *Popularity {
	if cfg.DefaultDays <= 0 {
		cfg.DefaultDays = 7
	}

	return &Popularity{
		clock:       newClock(),
		store:       store,
		defaultDays: cfg.DefaultDays,
	}
}

// Popular returns at most limit trending products of the trailing days.
func (p *Popularity) Popular(ctx context.Context, limit, days int) ([]recommend.Recommendation, error) {
	if limit <= 0 {
		return []recommend.Recommendation{}, nil
	}
	if days <= 0 {
		days = p.defaultDays
	}

	rows, err := p.store.Aggregate(ctx, recommend.AggregateQuery{
		Match: recommend.Filter{
			Types: popularTypes,
			Since: p.windowStart(days),
		},
		GroupBy: recommend.FieldProductID,
	})
	if err != nil {
		return nil, fmt.Errorf("aggregate popular products: %w", err)
	}

	ranked := topRows(rankRows(rows, bySum), limit)
	recs := make([]recommend.Recommendation, len(ranked))
	for i := range ranked {
		row := &ranked[i]
		recs[i] = recommend.Recommendation{
			ProductID: row.Key,
			Score:     row.Sum,
			Reason:    recommend.ReasonTrending,
			Category:  row.Category,
			Stats: &recommend.PopularityStats{
				Views:     row.SubCounts[recommend.InteractionView],
				Purchases: row.SubCounts[recommend.InteractionPurchase],
				CartAdds:  row.SubCounts[recommend.InteractionAddToCart],
			},
		}
	}
	return recs, nil
}
