// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package algorithms

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/tomtom215/recsengine/internal/recommend"
)

// BaseAlgorithm provides the name shared by every personalized algorithm.
type BaseAlgorithm struct {
	name string
}

// NewBaseAlgorithm creates a new base algorithm with the given name.
func NewBaseAlgorithm(name string) BaseAlgorithm {
	return BaseAlgorithm{name: name}
}

// Name returns the algorithm identifier.
func (b *BaseAlgorithm) Name() string {
	return b.name
}

// clock is embedded by strategies that evaluate trailing windows.
type clock struct {
	now func() time.Time
}

func newClock() clock {
	return clock{now: time.Now}
}

// SetClock replaces the time source.
func (c *clock) SetClock(now func() time.Time) {
	c.now = now
}

// windowStart returns the beginning of a trailing window of days.
func (c *clock) windowStart(days int) time.Time {
	return c.now().Add(-time.Duration(days) * 24 * time.Hour)
}

// rankRows sorts a copy of rows by score descending, then by interaction
// count descending, then by key ascending.
func rankRows(rows []recommend.AggregateRow, score func(*recommend.AggregateRow) float64) []recommend.AggregateRow {
	ranked := make([]recommend.AggregateRow, len(rows))
	copy(ranked, rows)

	sort.SliceStable(ranked, func(i, j int) bool {
		si, sj := score(&ranked[i]), score(&ranked[j])
		if si != sj {
			return si > sj
		}
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Key < ranked[j].Key
	})
	return ranked
}

func bySum(r *recommend.AggregateRow) float64 { return r.Sum }

func byCount(r *recommend.AggregateRow) float64 { return float64(r.Count) }

// topRows truncates ranked rows to n.
func topRows(rows []recommend.AggregateRow, n int) []recommend.AggregateRow {
	if n < 0 {
		n = 0
	}
	if len(rows) > n {
		return rows[:n]
	}
	return rows
}

// ceilShare returns ceil(limit*share).
func ceilShare(limit int, share float64) int {
	return int(math.Ceil(float64(limit) * share))
}

// rankBySimilarity sums the similarity scores of every candidate listed by the
// seeds' similarity records. Seeds themselves are never candidates.
func rankBySimilarity(ctx context.Context, similarities recommend.SimilarityStore, seeds []string, limit int) ([]recommend.Recommendation, error) {
	records, err := similarities.GetMany(ctx, seeds)
	if err != nil {
		return nil, fmt.Errorf("get similarity records: %w", err)
	}
	return aggregateSimilar(records, seeds, limit), nil
}

// aggregateSimilar scores candidates by their summed similarity across records.
func aggregateSimilar(records []recommend.SimilarityRecord, seeds []string, limit int) []recommend.Recommendation {
	seedSet := make(map[string]struct{}, len(seeds))
	for _, id := range seeds {
		seedSet[id] = struct{}{}
	}

	scores := make(map[string]float64)
	for i := range records {
		for _, sp := range records[i].SimilarProducts {
			if _, isSeed := seedSet[sp.ProductID]; isSeed {
				continue
			}
			scores[sp.ProductID] += sp.SimilarityScore
		}
	}

	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if scores[ids[i]] != scores[ids[j]] {
			return scores[ids[i]] > scores[ids[j]]
		}
		return ids[i] < ids[j]
	})

	if limit < 0 {
		limit = 0
	}
	if len(ids) > limit {
		ids = ids[:limit]
	}

	recs := make([]recommend.Recommendation, len(ids))
	for i, id := range ids {
		recs[i] = recommend.Recommendation{
			ProductID: id,
			Score:     scores[id],
			Reason:    recommend.ReasonSimilarProducts,
		}
	}
	return recs
}

// ContextCancelled checks if the context has been canceled.
func ContextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
