// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package algorithms

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/recsengine/internal/recommend"
	"github.com/tomtom215/recsengine/internal/recommend/storage"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

var errStoreDown = errors.New("connection refused")

// fixture wraps a memory store with helpers for seeding interactions.
type fixture struct {
	t     *testing.T
	store *storage.Memory
	seq   int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := storage.NewMemory(0)
	store.SetClock(func() time.Time { return testNow })
	return &fixture{t: t, store: store}
}

// add records an interaction created age before testNow.
func (f *fixture) add(userID, productID string, typ recommend.InteractionType, age time.Duration, category string) {
	f.t.Helper()
	f.seq++
	_, err := f.store.Append(context.Background(), recommend.Interaction{
		UserID:    userID,
		ProductID: productID,
		Type:      typ,
		Weight:    typ.Weight(),
		Metadata:  recommend.InteractionMetadata{Category: category},
		// Later additions are newer when ages are equal.
		CreatedAt: testNow.Add(-age).Add(time.Duration(f.seq) * time.Millisecond),
	})
	if err != nil {
		f.t.Fatalf("Append() error = %v", err)
	}
}

func (f *fixture) similar(productID string, scores map[string]float64) {
	f.t.Helper()
	rec := recommend.SimilarityRecord{ProductID: productID}
	for id, score := range scores {
		rec.SimilarProducts = append(rec.SimilarProducts, recommend.SimilarProduct{
			ProductID:       id,
			SimilarityScore: score,
			SimilarityType:  recommend.SimilarityContent,
		})
	}
	if err := f.store.Upsert(context.Background(), rec); err != nil {
		f.t.Fatalf("Upsert() error = %v", err)
	}
}

func (f *fixture) popularity() *Popularity {
	p := NewPopularity(f.store, PopularityConfig{DefaultDays: 7})
	p.SetClock(func() time.Time { return testNow })
	return p
}

// failingStore fails every call.
type failingStore struct{}

func (failingStore) Append(context.Context, recommend.Interaction) (recommend.Interaction, error) {
	return recommend.Interaction{}, recommend.StoreError("append", errStoreDown)
}

func (failingStore) FindRecent(context.Context, recommend.Filter, int) ([]recommend.Interaction, error) {
	return nil, recommend.StoreError("find recent", errStoreDown)
}

func (failingStore) Distinct(context.Context, recommend.Field, recommend.Filter) ([]string, error) {
	return nil, recommend.StoreError("distinct", errStoreDown)
}

func (failingStore) Aggregate(context.Context, recommend.AggregateQuery) ([]recommend.AggregateRow, error) {
	return nil, recommend.StoreError("aggregate", errStoreDown)
}

func (failingStore) Get(context.Context, string) (recommend.SimilarityRecord, bool, error) {
	return recommend.SimilarityRecord{}, false, recommend.StoreError("get", errStoreDown)
}

func (failingStore) GetMany(context.Context, []string) ([]recommend.SimilarityRecord, error) {
	return nil, recommend.StoreError("get many", errStoreDown)
}

func (failingStore) Upsert(context.Context, recommend.SimilarityRecord) error {
	return recommend.StoreError("upsert", errStoreDown)
}

// stubAlgorithm returns fixed results and records the requested limit.
type stubAlgorithm struct {
	name      string
	recs      []recommend.Recommendation
	err       error
	lastLimit int
}

func (s *stubAlgorithm) Name() string { return s.name }

func (s *stubAlgorithm) Recommend(_ context.Context, _ string, limit int) ([]recommend.Recommendation, error) {
	s.lastLimit = limit
	if s.err != nil {
		return nil, s.err
	}
	return s.recs, nil
}

// stubPopularity returns fixed trending products.
type stubPopularity struct {
	recs  []recommend.Recommendation
	calls int
}

func (s *stubPopularity) Popular(_ context.Context, limit, _ int) ([]recommend.Recommendation, error) {
	s.calls++
	return recommend.FilterRecommendations(s.recs, nil, limit), nil
}

func ids(recs []recommend.Recommendation) []string {
	out := make([]string, len(recs))
	for i := range recs {
		out[i] = recs[i].ProductID
	}
	return out
}

func recs(reason recommend.Reason, productIDs ...string) []recommend.Recommendation {
	out := make([]recommend.Recommendation, len(productIDs))
	for i, id := range productIDs {
		out[i] = recommend.Recommendation{ProductID: id, Score: float64(len(productIDs) - i), Reason: reason}
	}
	return out
}
