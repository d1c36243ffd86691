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

// SimilarityCalculator rebuilds a product's similarity list from the
// interaction volume of other products in the same category.
//
// Candidates are the most interacted products of the category, scored as
// normalized co-occurrence:
//
//	score(candidate) = count(candidate) / count(top candidate)
//
// Scores fall in (0, 1] and the list is therefore already descending.
type SimilarityCalculator struct {
	clock

	store         recommend.InteractionStore
	similarities  recommend.SimilarityStore
	maxCandidates int
}

// SimilarityConfig contains configuration for similarity rebuilds.
type SimilarityConfig struct {
	// MaxCandidates is the length of a rebuilt list.
	MaxCandidates int
}

// NewSimilarityCalculator creates a new similarity calculator.
func NewSimilarityCalculator(
	store recommend.InteractionStore,
	similarities recommend.SimilarityStore,
	cfg SimilarityConfig,
) *SimilarityCalculator {
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = 20
	}

	return &SimilarityCalculator{
		clock:         newClock(),
		store:         store,
		similarities:  similarities,
		maxCandidates: cfg.MaxCandidates,
	}
}

// Calculate computes and stores the similarity record of productID, replacing
// any previous record. A product without a category gets an empty list.
func (s *SimilarityCalculator) Calculate(ctx context.Context, productID string, data recommend.ProductData) (recommend.SimilarityRecord, error) {
	if productID == "" {
		return recommend.SimilarityRecord{}, &recommend.ValidationError{Field: "productId", Message: "is required"}
	}

	similar := make([]recommend.SimilarProduct, 0, s.maxCandidates)
	if data.Category != "" {
		rows, err := s.store.Aggregate(ctx, recommend.AggregateQuery{
			Match: recommend.Filter{
				Category:          data.Category,
				ExcludeProductIDs: []string{productID},
			},
			GroupBy: recommend.FieldProductID,
		})
		if err != nil {
			return recommend.SimilarityRecord{}, fmt.Errorf("aggregate category %q: %w", data.Category, err)
		}

		ranked := topRows(rankRows(rows, byCount), s.maxCandidates)
		if len(ranked) > 0 {
			maxCount := float64(ranked[0].Count)
			for i := range ranked {
				similar = append(similar, recommend.SimilarProduct{
					ProductID:       ranked[i].Key,
					SimilarityScore: float64(ranked[i].Count) / maxCount,
					SimilarityType:  recommend.SimilarityContent,
				})
			}
		}
	}

	rec := recommend.SimilarityRecord{
		ProductID:       productID,
		SimilarProducts: similar,
		LastUpdated:     s.now(),
		Metadata: recommend.SimilarityMetadata{
			Category:   data.Category,
			Tags:       data.Tags,
			PriceRange: recommend.PriceRangeFor(data.Price),
		},
	}

	if err := s.similarities.Upsert(ctx, rec); err != nil {
		return recommend.SimilarityRecord{}, fmt.Errorf("upsert similarities: %w", err)
	}
	return rec, nil
}
