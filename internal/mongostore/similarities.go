// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tomtom215/recsengine/internal/recommend"
)

// Get returns the similarity record of a product.
func (s *Store) Get(ctx context.Context, productID string) (recommend.SimilarityRecord, bool, error) {
	start := time.Now()

	var rec recommend.SimilarityRecord
	err := s.similarities.FindOne(ctx, bson.D{{Key: "productId", Value: productID}}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		_ = observe("get_similarity", start, nil)
		return recommend.SimilarityRecord{}, false, nil
	}
	if err := observe("get_similarity", start, err); err != nil {
		return recommend.SimilarityRecord{}, false, err
	}
	normalize(&rec)
	return rec, true, nil
}

// GetMany returns the existing records of the given products in request order.
func (s *Store) GetMany(ctx context.Context, productIDs []string) ([]recommend.SimilarityRecord, error) {
	if len(productIDs) == 0 {
		return []recommend.SimilarityRecord{}, nil
	}
	start := time.Now()

	byID, err := s.findSimilarities(ctx, productIDs)
	if err := observe("get_similarities", start, err); err != nil {
		return nil, err
	}

	out := make([]recommend.SimilarityRecord, 0, len(byID))
	for _, id := range productIDs {
		if rec, ok := byID[id]; ok {
			out = append(out, rec)
			delete(byID, id)
		}
	}
	return out, nil
}

func (s *Store) findSimilarities(ctx context.Context, productIDs []string) (map[string]recommend.SimilarityRecord, error) {
	cur, err := s.similarities.Find(ctx, bson.D{{Key: "productId", Value: bson.D{{Key: "$in", Value: productIDs}}}})
	if err != nil {
		return nil, fmt.Errorf("find similarities: %w", err)
	}
	var recs []recommend.SimilarityRecord
	if err := cur.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("decode similarities: %w", err)
	}

	byID := make(map[string]recommend.SimilarityRecord, len(recs))
	for i := range recs {
		normalize(&recs[i])
		byID[recs[i].ProductID] = recs[i]
	}
	return byID, nil
}

// Upsert replaces the record of rec.ProductID, creating it when absent.
func (s *Store) Upsert(ctx context.Context, rec recommend.SimilarityRecord) error {
	if rec.ProductID == "" {
		return &recommend.ValidationError{Field: "productId", Message: "is required"}
	}
	start := time.Now()

	if rec.SimilarProducts == nil {
		rec.SimilarProducts = []recommend.SimilarProduct{}
	}
	if rec.LastUpdated.IsZero() {
		rec.LastUpdated = s.now()
	}
	rec.LastUpdated = rec.LastUpdated.UTC()

	_, err := s.similarities.ReplaceOne(ctx,
		bson.D{{Key: "productId", Value: rec.ProductID}},
		rec,
		options.Replace().SetUpsert(true),
	)
	return observe("upsert_similarity", start, err)
}

func normalize(rec *recommend.SimilarityRecord) {
	if rec.SimilarProducts == nil {
		rec.SimilarProducts = []recommend.SimilarProduct{}
	}
}
