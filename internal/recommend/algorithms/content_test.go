// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package algorithms

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/tomtom215/recsengine/internal/recommend"
)

func TestSeeds(t *testing.T) {
	t.Parallel()

	interaction := func(productID string, typ recommend.InteractionType) recommend.Interaction {
		return recommend.Interaction{ProductID: productID, Type: typ, Weight: typ.Weight()}
	}

	tests := []struct {
		name    string
		history []recommend.Interaction
		n       int
		want    []string
	}{
		{
			name: "orders by summed weight",
			history: []recommend.Interaction{
				interaction("P1", recommend.InteractionView),
				interaction("P2", recommend.InteractionPurchase),
				interaction("P3", recommend.InteractionAddToCart),
			},
			n:    5,
			want: []string{"P2", "P3", "P1"},
		},
		{
			name: "repeated views accumulate",
			history: []recommend.Interaction{
				interaction("P1", recommend.InteractionClick),
				interaction("P1", recommend.InteractionClick),
				interaction("P1", recommend.InteractionClick),
				interaction("P2", recommend.InteractionAddToCart),
			},
			n:    5,
			want: []string{"P1", "P2"},
		},
		{
			name: "ties keep first appearance",
			history: []recommend.Interaction{
				interaction("B", recommend.InteractionView),
				interaction("A", recommend.InteractionView),
				interaction("C", recommend.InteractionView),
			},
			n:    2,
			want: []string{"B", "A"},
		},
		{
			name: "missing weight uses type weight",
			history: []recommend.Interaction{
				{ProductID: "P1", Type: recommend.InteractionView},
				{ProductID: "P2", Type: recommend.InteractionReview},
			},
			n:    5,
			want: []string{"P2", "P1"},
		},
		{
			name:    "empty history",
			history: nil,
			n:       5,
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Seeds(tt.history, tt.n)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Seeds() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContentBased_Recommend(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.add("u1", "P1", recommend.InteractionView, 3*time.Hour, "")
	f.add("u1", "P2", recommend.InteractionPurchase, 2*time.Hour, "")
	f.add("u1", "P3", recommend.InteractionAddToCart, time.Hour, "")

	f.similar("P2", map[string]float64{"X": 0.9, "Y": 0.4, "P3": 0.8})
	f.similar("P3", map[string]float64{"Y": 0.7, "Z": 0.2, "P2": 0.6})
	f.similar("P1", map[string]float64{"Z": 0.1})

	c := NewContentBased(f.store, f.store, f.popularity(), ContentConfig{})
	if c.Name() != recommend.AlgorithmContent {
		t.Errorf("Name() = %q, want %q", c.Name(), recommend.AlgorithmContent)
	}

	got, err := c.Recommend(context.Background(), "u1", 10)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	// Y = 0.4 + 0.7, X = 0.9, Z = 0.2 + 0.1; seeds never appear.
	want := []string{"Y", "X", "Z"}
	if !slices.Equal(ids(got), want) {
		t.Fatalf("Recommend() = %v, want %v", ids(got), want)
	}
	for _, rec := range got {
		if rec.Reason != recommend.ReasonSimilarProducts {
			t.Errorf("Reason = %q, want %q", rec.Reason, recommend.ReasonSimilarProducts)
		}
	}

	one, err := c.Recommend(context.Background(), "u1", 1)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if !slices.Equal(ids(one), []string{"Y"}) {
		t.Errorf("Recommend(limit=1) = %v, want [Y]", ids(one))
	}
}

func TestContentBased_SeedLimit(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.add("u1", "P1", recommend.InteractionView, 2*time.Hour, "")
	f.add("u1", "P2", recommend.InteractionPurchase, time.Hour, "")
	f.similar("P1", map[string]float64{"FROM_P1": 1})
	f.similar("P2", map[string]float64{"FROM_P2": 1})

	c := NewContentBased(f.store, f.store, f.popularity(), ContentConfig{Seeds: 1})
	got, err := c.Recommend(context.Background(), "u1", 10)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if !slices.Equal(ids(got), []string{"FROM_P2"}) {
		t.Errorf("Recommend() = %v, want only the heaviest seed's neighbors", ids(got))
	}
}

func TestContentBased_NoHistoryUsesPopularity(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	pop := &stubPopularity{recs: recs(recommend.ReasonTrending, "T1")}
	c := NewContentBased(f.store, f.store, pop, ContentConfig{})

	got, err := c.Recommend(context.Background(), "nobody", 3)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if pop.calls != 1 || !slices.Equal(ids(got), []string{"T1"}) {
		t.Errorf("Recommend() = %v after %d popularity calls, want [T1] after 1", ids(got), pop.calls)
	}
}

func TestContentBased_SimilarityStoreError(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.add("u1", "P1", recommend.InteractionView, time.Hour, "")
	c := NewContentBased(f.store, failingStore{}, f.popularity(), ContentConfig{})

	_, err := c.Recommend(context.Background(), "u1", 3)
	if !errors.Is(err, recommend.ErrStoreUnavailable) {
		t.Errorf("Recommend() error = %v, want ErrStoreUnavailable", err)
	}
}
