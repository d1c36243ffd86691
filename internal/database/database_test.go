// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package database

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/recsengine/internal/config"
	"github.com/tomtom215/recsengine/internal/recommend"
	"github.com/tomtom215/recsengine/internal/recommend/algorithms"
)

// testDBSemaphore serializes DuckDB-backed tests. Concurrent CGO calls from
// many parallel tests can stall under CI resource pressure.
var testDBSemaphore = make(chan struct{}, 1)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// setupTestDB creates an in-memory database that lives for the test.
func setupTestDB(t *testing.T, retention time.Duration) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	db, err := New(&config.DuckDBConfig{MaxMemory: "256MB", Threads: 1}, retention, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	db.SetClock(func() time.Time { return base })
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seed(t *testing.T, db *DB, items ...recommend.Interaction) {
	t.Helper()
	for _, in := range items {
		if _, err := db.Append(context.Background(), in); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}
}

func interaction(user, product string, typ recommend.InteractionType, age time.Duration) recommend.Interaction {
	return recommend.Interaction{
		UserID:    user,
		ProductID: product,
		Type:      typ,
		Weight:    typ.Weight(),
		CreatedAt: base.Add(-age),
	}
}

func TestNew_AppliesMigrations(t *testing.T) {
	db := setupTestDB(t, 0)
	ctx := context.Background()

	version, err := db.GetCurrentSchemaVersion(ctx)
	if err != nil {
		t.Fatalf("GetCurrentSchemaVersion() error = %v", err)
	}
	if want := len(migrations()); version != want {
		t.Errorf("version = %d, want %d", version, want)
	}

	history, err := db.GetMigrationHistory(ctx)
	if err != nil {
		t.Fatalf("GetMigrationHistory() error = %v", err)
	}
	if len(history) != len(migrations()) || history[0].Name != "create_user_interactions" {
		t.Errorf("history = %+v", history)
	}
}

func TestNew_FileDatabaseReopens(t *testing.T) {
	testDBSemaphore <- struct{}{}
	defer func() { <-testDBSemaphore }()

	path := filepath.Join(t.TempDir(), "nested", "recs.duckdb")
	cfg := &config.DuckDBConfig{Path: path, MaxMemory: "256MB", Threads: 1}

	db, err := New(cfg, 0, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := db.Append(context.Background(), interaction("u1", "p1", recommend.InteractionView, 0)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// Migrations are not re-applied and data survives
	db, err = New(cfg, 0, zerolog.Nop())
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer db.Close()

	n, err := db.Count(context.Background())
	if err != nil || n != 1 {
		t.Errorf("Count() = %d, %v, want 1", n, err)
	}
}

func TestAppend_RoundTripsAllFields(t *testing.T) {
	db := setupTestDB(t, 0)
	ctx := context.Background()

	in := recommend.Interaction{
		UserID:    "u1",
		ProductID: "p1",
		Type:      recommend.InteractionSearch,
		Metadata: recommend.InteractionMetadata{
			SessionID:   "s1",
			Duration:    12.5,
			SearchQuery: "red shoes",
			Rating:      4,
			Category:    "shoes",
			Price:       79.99,
			Timestamp:   base.Add(-time.Minute),
		},
		DeviceInfo: recommend.DeviceInfo{UserAgent: "ua", Platform: "ios", Browser: "safari"},
		Context:    recommend.InteractionContext{Referrer: "ref", PageURL: "/p1", RecommendationSource: "hybrid"},
		CreatedAt:  base,
	}

	stored, err := db.Append(ctx, in)
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if stored.ID == "" {
		t.Fatal("Append() did not assign an ID")
	}
	if stored.Weight != 1.5 {
		t.Errorf("Weight = %v, want type weight 1.5", stored.Weight)
	}

	got, err := db.FindRecent(ctx, recommend.Filter{UserIDs: []string{"u1"}}, 1)
	if err != nil || len(got) != 1 {
		t.Fatalf("FindRecent() = %v, %v", got, err)
	}
	g := got[0]
	if g.ID != stored.ID || g.Type != recommend.InteractionSearch || g.Metadata.SearchQuery != "red shoes" ||
		g.Metadata.Category != "shoes" || g.DeviceInfo.Platform != "ios" || g.Context.RecommendationSource != "hybrid" {
		t.Errorf("round trip mismatch: %+v", g)
	}
	if !g.CreatedAt.Equal(base) || !g.Metadata.Timestamp.Equal(base.Add(-time.Minute)) {
		t.Errorf("timestamps = %v, %v", g.CreatedAt, g.Metadata.Timestamp)
	}
}

func TestFindRecent(t *testing.T) {
	db := setupTestDB(t, 0)
	seed(t, db,
		interaction("u1", "old", recommend.InteractionView, 3*time.Hour),
		interaction("u1", "new", recommend.InteractionPurchase, time.Hour),
		interaction("u2", "other", recommend.InteractionView, 0),
		interaction("u1", "mid", recommend.InteractionView, 2*time.Hour),
	)

	tests := []struct {
		name   string
		filter recommend.Filter
		limit  int
		want   []string
	}{
		{name: "newest first", filter: recommend.Filter{UserIDs: []string{"u1"}}, want: []string{"new", "mid", "old"}},
		{name: "limit", filter: recommend.Filter{UserIDs: []string{"u1"}}, limit: 2, want: []string{"new", "mid"}},
		{name: "type", filter: recommend.Filter{Types: []recommend.InteractionType{recommend.InteractionView}}, want: []string{"other", "mid", "old"}},
		{name: "since", filter: recommend.Filter{Since: base.Add(-90 * time.Minute)}, want: []string{"other", "new"}},
		{name: "exclude products", filter: recommend.Filter{ExcludeProductIDs: []string{"new", "other"}}, want: []string{"mid", "old"}},
		{name: "exclude users", filter: recommend.Filter{ExcludeUserIDs: []string{"u1"}}, want: []string{"other"}},
		{name: "no match", filter: recommend.Filter{UserIDs: []string{"nobody"}}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.FindRecent(context.Background(), tt.filter, tt.limit)
			if err != nil {
				t.Fatalf("FindRecent() error = %v", err)
			}
			ids := make([]string, len(got))
			for i := range got {
				ids[i] = got[i].ProductID
			}
			if !slices.Equal(ids, tt.want) {
				t.Errorf("FindRecent() = %v, want %v", ids, tt.want)
			}
		})
	}
}

func TestDistinct(t *testing.T) {
	db := setupTestDB(t, 0)
	seed(t, db,
		interaction("u2", "p1", recommend.InteractionPurchase, 0),
		interaction("u1", "p1", recommend.InteractionPurchase, 0),
		interaction("u1", "p1", recommend.InteractionPurchase, time.Minute),
		interaction("u3", "p1", recommend.InteractionView, 0),
	)

	got, err := db.Distinct(context.Background(), recommend.FieldUserID, recommend.Filter{
		ProductIDs: []string{"p1"},
		Types:      []recommend.InteractionType{recommend.InteractionPurchase},
	})
	if err != nil {
		t.Fatalf("Distinct() error = %v", err)
	}
	if !slices.Equal(got, []string{"u1", "u2"}) {
		t.Errorf("Distinct() = %v, want [u1 u2]", got)
	}

	_, err = db.Distinct(context.Background(), recommend.Field("price"), recommend.Filter{})
	if !errors.Is(err, recommend.ErrStoreUnavailable) {
		t.Errorf("unknown field error = %v, want ErrStoreUnavailable", err)
	}
}

func TestAggregate(t *testing.T) {
	db := setupTestDB(t, 0)

	tv := func(user string, typ recommend.InteractionType) recommend.Interaction {
		in := interaction(user, "tv", typ, 0)
		in.Metadata.Category = "electronics"
		return in
	}
	seed(t, db,
		tv("u1", recommend.InteractionView),
		tv("u1", recommend.InteractionPurchase),
		tv("u2", recommend.InteractionAddToCart),
		interaction("u1", "lamp", recommend.InteractionView, 0),
	)

	rows, err := db.Aggregate(context.Background(), recommend.AggregateQuery{
		GroupBy:    recommend.FieldProductID,
		DistinctOf: recommend.FieldUserID,
	})
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	byKey := make(map[string]recommend.AggregateRow)
	for _, r := range rows {
		byKey[r.Key] = r
	}
	if len(byKey) != 2 {
		t.Fatalf("groups = %d, want 2", len(byKey))
	}

	got := byKey["tv"]
	if got.Sum != 16 || got.Count != 3 || got.Distinct != 2 || got.Category != "electronics" {
		t.Errorf("tv row = %+v, want sum 16, count 3, distinct 2, electronics", got)
	}
	if got.SubCounts[recommend.InteractionPurchase] != 1 || got.SubCounts[recommend.InteractionAddToCart] != 1 {
		t.Errorf("tv sub counts = %v", got.SubCounts)
	}
	if lamp := byKey["lamp"]; lamp.Category != "" || lamp.Distinct != 1 {
		t.Errorf("lamp row = %+v", lamp)
	}
}

func TestRetention(t *testing.T) {
	db := setupTestDB(t, 24*time.Hour)
	ctx := context.Background()
	seed(t, db,
		interaction("u1", "fresh", recommend.InteractionView, time.Hour),
		interaction("u1", "stale", recommend.InteractionView, 48*time.Hour),
	)

	got, err := db.FindRecent(ctx, recommend.Filter{}, 0)
	if err != nil || len(got) != 1 || got[0].ProductID != "fresh" {
		t.Fatalf("FindRecent() = %v, %v, want only fresh", got, err)
	}

	removed, err := db.Purge(ctx)
	if err != nil || removed != 1 {
		t.Errorf("Purge() = %d, %v, want 1", removed, err)
	}
	if n, _ := db.Count(ctx); n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
}

func TestSimilarities(t *testing.T) {
	db := setupTestDB(t, 0)
	ctx := context.Background()

	if _, ok, err := db.Get(ctx, "missing"); ok || err != nil {
		t.Fatalf("Get(missing) = %v, %v", ok, err)
	}

	rec := recommend.SimilarityRecord{
		ProductID: "p1",
		SimilarProducts: []recommend.SimilarProduct{
			{ProductID: "p2", SimilarityScore: 1, SimilarityType: recommend.SimilarityContent},
			{ProductID: "p3", SimilarityScore: 0.5, SimilarityType: recommend.SimilarityContent},
		},
		LastUpdated: base,
		Metadata:    recommend.SimilarityMetadata{Category: "tv", Tags: []string{"4k"}, PriceRange: recommend.PriceMid},
	}
	if err := db.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, ok, err := db.Get(ctx, "p1")
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v", ok, err)
	}
	if len(got.SimilarProducts) != 2 || got.SimilarProducts[0].ProductID != "p2" ||
		got.Metadata.PriceRange != recommend.PriceMid || !slices.Equal(got.Metadata.Tags, []string{"4k"}) {
		t.Errorf("Get() = %+v", got)
	}

	// Upsert replaces the whole list
	rec.SimilarProducts = nil
	if err := db.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	got, _, _ = db.Get(ctx, "p1")
	if got.SimilarProducts == nil || len(got.SimilarProducts) != 0 {
		t.Errorf("SimilarProducts = %v, want empty", got.SimilarProducts)
	}

	_ = db.Upsert(ctx, recommend.SimilarityRecord{ProductID: "p0", LastUpdated: base})
	many, err := db.GetMany(ctx, []string{"p1", "nope", "p0"})
	if err != nil {
		t.Fatalf("GetMany() error = %v", err)
	}
	if len(many) != 2 || many[0].ProductID != "p1" || many[1].ProductID != "p0" {
		t.Errorf("GetMany() order = %+v", many)
	}

	err = db.Upsert(ctx, recommend.SimilarityRecord{})
	if !errors.Is(err, recommend.ErrValidation) {
		t.Errorf("empty product error = %v, want ErrValidation", err)
	}
}

// The rankers run unchanged on DuckDB.
func TestAlgorithmsOnDuckDB(t *testing.T) {
	db := setupTestDB(t, 0)
	ctx := context.Background()

	now := time.Now().UTC()
	at := func(user, product string, typ recommend.InteractionType) recommend.Interaction {
		return recommend.Interaction{UserID: user, ProductID: product, Type: typ, CreatedAt: now.Add(-time.Hour)}
	}
	seed(t, db,
		at("u1", "camera", recommend.InteractionPurchase),
		at("u1", "tripod", recommend.InteractionPurchase),
		at("u2", "camera", recommend.InteractionPurchase),
		at("u2", "tripod", recommend.InteractionPurchase),
		at("u2", "bag", recommend.InteractionPurchase),
		at("u3", "bag", recommend.InteractionView),
	)

	related, err := algorithms.NewAlsoBought(db).Related(ctx, "camera", 5)
	if err != nil {
		t.Fatalf("Related() error = %v", err)
	}
	ids := make([]string, len(related))
	for i := range related {
		ids[i] = related[i].ProductID
	}
	if !slices.Equal(ids, []string{"tripod", "bag"}) {
		t.Errorf("Related() = %v, want [tripod bag]", ids)
	}

	popular, err := algorithms.NewPopularity(db, algorithms.PopularityConfig{}).Popular(ctx, 2, 7)
	if err != nil {
		t.Fatalf("Popular() error = %v", err)
	}
	if len(popular) != 2 || popular[0].ProductID != "camera" {
		t.Errorf("Popular() = %+v", popular)
	}
}
