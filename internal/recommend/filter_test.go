// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package recommend

import (
	"slices"
	"testing"
	"time"
)

func list(ids ...string) []Recommendation {
	out := make([]Recommendation, len(ids))
	for i, id := range ids {
		out[i] = Recommendation{ProductID: id, Score: float64(len(ids) - i)}
	}
	return out
}

func productIDs(recs []Recommendation) []string {
	out := make([]string, len(recs))
	for i := range recs {
		out[i] = recs[i].ProductID
	}
	return out
}

func TestFilterRecommendations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   []Recommendation
		exclude []string
		limit   int
		want    []string
	}{
		{name: "no exclusions", input: list("A", "B", "C"), limit: 10, want: []string{"A", "B", "C"}},
		{name: "excludes ids", input: list("A", "B", "C", "D"), exclude: []string{"B", "D"}, limit: 10, want: []string{"A", "C"}},
		{name: "truncates after excluding", input: list("A", "B", "C", "D"), exclude: []string{"A"}, limit: 2, want: []string{"B", "C"}},
		{name: "exclude unknown id", input: list("A"), exclude: []string{"Z"}, limit: 1, want: []string{"A"}},
		{name: "zero limit", input: list("A", "B"), limit: 0, want: []string{}},
		{name: "nil input", input: nil, limit: 5, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterRecommendations(tt.input, tt.exclude, tt.limit)
			if !slices.Equal(productIDs(got), tt.want) {
				t.Errorf("FilterRecommendations() = %v, want %v", productIDs(got), tt.want)
			}
			if len(got) > tt.limit && tt.limit >= 0 {
				t.Errorf("len = %d exceeds limit %d", len(got), tt.limit)
			}
			for _, rec := range got {
				if slices.Contains(tt.exclude, rec.ProductID) {
					t.Errorf("excluded %s present", rec.ProductID)
				}
			}
		})
	}
}

func TestFilterRecommendations_DoesNotModifyInput(t *testing.T) {
	t.Parallel()

	input := list("A", "B", "C")
	_ = FilterRecommendations(input, []string{"A"}, 1)
	if !slices.Equal(productIDs(input), []string{"A", "B", "C"}) {
		t.Errorf("input modified: %v", productIDs(input))
	}
}

func TestDeduplicate(t *testing.T) {
	t.Parallel()

	input := []Recommendation{
		{ProductID: "A", Reason: ReasonUsersAlsoLiked},
		{ProductID: "B", Reason: ReasonUsersAlsoLiked},
		{ProductID: "A", Reason: ReasonSimilarProducts},
		{ProductID: "C", Reason: ReasonSimilarProducts},
		{ProductID: "B", Reason: ReasonSimilarProducts},
	}

	got := Deduplicate(input)
	if !slices.Equal(productIDs(got), []string{"A", "B", "C"}) {
		t.Fatalf("Deduplicate() = %v, want [A B C]", productIDs(got))
	}
	if got[0].Reason != ReasonUsersAlsoLiked || got[1].Reason != ReasonUsersAlsoLiked {
		t.Error("Deduplicate() did not keep first occurrences")
	}
	if len(Deduplicate(nil)) != 0 {
		t.Error("Deduplicate(nil) not empty")
	}
}

func TestFilter_Matches(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	in := &Interaction{
		UserID:    "u1",
		ProductID: "p1",
		Type:      InteractionPurchase,
		Metadata:  InteractionMetadata{Category: "books"},
		CreatedAt: now,
	}

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{name: "empty filter", filter: Filter{}, want: true},
		{name: "user match", filter: Filter{UserIDs: []string{"u2", "u1"}}, want: true},
		{name: "user miss", filter: Filter{UserIDs: []string{"u2"}}, want: false},
		{name: "user excluded", filter: Filter{ExcludeUserIDs: []string{"u1"}}, want: false},
		{name: "product match", filter: Filter{ProductIDs: []string{"p1"}}, want: true},
		{name: "product excluded", filter: Filter{ExcludeProductIDs: []string{"p1"}}, want: false},
		{name: "type match", filter: Filter{Types: []InteractionType{InteractionPurchase}}, want: true},
		{name: "type miss", filter: Filter{Types: []InteractionType{InteractionView}}, want: false},
		{name: "category match", filter: Filter{Category: "books"}, want: true},
		{name: "category miss", filter: Filter{Category: "toys"}, want: false},
		{name: "since inclusive", filter: Filter{Since: now}, want: true},
		{name: "too old", filter: Filter{Since: now.Add(time.Second)}, want: false},
	}

	for _, tt := range tests {
		if got := tt.filter.Matches(in); got != tt.want {
			t.Errorf("%s: Matches() = %v, want %v", tt.name, got, tt.want)
		}
	}
}
