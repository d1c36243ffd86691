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

var purchaseOnly = []recommend.InteractionType{recommend.InteractionPurchase}

// AlsoBought ranks the products bought by the buyers of an anchor product.
//
//	score(candidate) = number of purchases of candidate by the anchor's buyers
type AlsoBought struct {
	store recommend.InteractionStore
}

// NewAlsoBought creates a new co-purchase ranker.
func NewAlsoBought(store recommend.InteractionStore) *AlsoBought {
	return &AlsoBought{store: store}
}

// Related returns at most limit products co-purchased with productID.
// The anchor product itself is never returned.
func (a *AlsoBought) Related(ctx context.Context, productID string, limit int) ([]recommend.Recommendation, error) {
	buyers, err := a.store.Distinct(ctx, recommend.FieldUserID, recommend.Filter{
		ProductIDs: []string{productID},
		Types:      purchaseOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("find buyers: %w", err)
	}
	if len(buyers) == 0 {
		return []recommend.Recommendation{}, nil
	}

	rows, err := a.store.Aggregate(ctx, recommend.AggregateQuery{
		Match: recommend.Filter{
			UserIDs:           buyers,
			ExcludeProductIDs: []string{productID},
			Types:             purchaseOnly,
		},
		GroupBy: recommend.FieldProductID,
	})
	if err != nil {
		return nil, fmt.Errorf("aggregate co-purchases: %w", err)
	}

	ranked := topRows(rankRows(rows, byCount), limit)
	recs := make([]recommend.Recommendation, len(ranked))
	for i := range ranked {
		recs[i] = recommend.Recommendation{
			ProductID: ranked[i].Key,
			Score:     float64(ranked[i].Count),
			Reason:    recommend.ReasonFrequentlyBoughtTogether,
			Category:  ranked[i].Category,
		}
	}
	return recs, nil
}
