// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

//go:build integration

package mongostore

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/recsengine/internal/config"
	"github.com/tomtom215/recsengine/internal/recommend"
	"github.com/tomtom215/recsengine/internal/testinfra"
)

func TestStore_Integration(t *testing.T) {
	testinfra.SkipIfNoDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	container, err := testinfra.NewMongoContainer(ctx)
	if err != nil {
		t.Fatalf("start mongo: %v", err)
	}
	defer testinfra.CleanupContainer(t, ctx, container.Container)

	store, err := Connect(ctx, &config.MongoConfig{
		URI:      "mongodb://" + container.Endpoint,
		Database: "recommendations_test",
	}, 24*time.Hour, zerolog.Nop())
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer store.Close(context.Background())

	base := time.Now().UTC().Truncate(time.Millisecond)
	store.SetClock(func() time.Time { return base })

	for _, in := range []recommend.Interaction{
		{UserID: "u1", ProductID: "tv", Type: recommend.InteractionView, CreatedAt: base.Add(-3 * time.Hour), Metadata: recommend.InteractionMetadata{Category: "electronics"}},
		{UserID: "u1", ProductID: "tv", Type: recommend.InteractionPurchase, CreatedAt: base.Add(-2 * time.Hour)},
		{UserID: "u2", ProductID: "tv", Type: recommend.InteractionAddToCart, CreatedAt: base.Add(-time.Hour)},
		{UserID: "u2", ProductID: "lamp", Type: recommend.InteractionView, CreatedAt: base},
		{UserID: "u3", ProductID: "stale", Type: recommend.InteractionView, CreatedAt: base.Add(-48 * time.Hour)},
	} {
		if _, err := store.Append(ctx, in); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	t.Run("FindRecent", func(t *testing.T) {
		got, err := store.FindRecent(ctx, recommend.Filter{}, 3)
		if err != nil {
			t.Fatalf("FindRecent: %v", err)
		}
		ids := make([]string, len(got))
		for i := range got {
			ids[i] = got[i].ProductID + "/" + string(got[i].Type)
		}
		want := []string{"lamp/view", "tv/add_to_cart", "tv/purchase"}
		if !slices.Equal(ids, want) {
			t.Errorf("FindRecent = %v, want %v", ids, want)
		}
	})

	t.Run("Distinct", func(t *testing.T) {
		got, err := store.Distinct(ctx, recommend.FieldUserID, recommend.Filter{ProductIDs: []string{"tv"}})
		if err != nil || !slices.Equal(got, []string{"u1", "u2"}) {
			t.Errorf("Distinct = %v, %v", got, err)
		}
	})

	t.Run("Aggregate", func(t *testing.T) {
		rows, err := store.Aggregate(ctx, recommend.AggregateQuery{
			GroupBy:    recommend.FieldProductID,
			DistinctOf: recommend.FieldUserID,
		})
		if err != nil {
			t.Fatalf("Aggregate: %v", err)
		}
		var tv recommend.AggregateRow
		for _, r := range rows {
			if r.Key == "tv" {
				tv = r
			}
			if r.Key == "stale" {
				t.Error("expired interaction was aggregated")
			}
		}
		if tv.Sum != 16 || tv.Count != 3 || tv.Distinct != 2 || tv.Category != "electronics" {
			t.Errorf("tv = %+v", tv)
		}
		if tv.SubCounts[recommend.InteractionPurchase] != 1 {
			t.Errorf("sub counts = %v", tv.SubCounts)
		}
	})

	t.Run("Similarities", func(t *testing.T) {
		rec := recommend.SimilarityRecord{
			ProductID:       "tv",
			SimilarProducts: []recommend.SimilarProduct{{ProductID: "soundbar", SimilarityScore: 1, SimilarityType: recommend.SimilarityContent}},
			Metadata:        recommend.SimilarityMetadata{Category: "electronics", PriceRange: recommend.PricePremium},
		}
		if err := store.Upsert(ctx, rec); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
		rec.SimilarProducts = nil
		if err := store.Upsert(ctx, rec); err != nil {
			t.Fatalf("second Upsert: %v", err)
		}
		got, ok, err := store.Get(ctx, "tv")
		if err != nil || !ok || len(got.SimilarProducts) != 0 || got.Metadata.PriceRange != recommend.PricePremium {
			t.Errorf("Get = %+v, %v, %v", got, ok, err)
		}
		many, err := store.GetMany(ctx, []string{"nope", "tv"})
		if err != nil || len(many) != 1 {
			t.Errorf("GetMany = %v, %v", many, err)
		}
	})

	t.Run("Purge", func(t *testing.T) {
		// The server's TTL monitor may already have removed the stale record.
		removed, err := store.Purge(ctx)
		if err != nil || removed > 1 {
			t.Errorf("Purge = %d, %v, want at most 1", removed, err)
		}
	})
}
