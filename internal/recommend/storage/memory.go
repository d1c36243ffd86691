// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/recsengine/internal/recommend"
)

// Memory is an in-process InteractionStore and SimilarityStore.
type Memory struct {
	mu           sync.RWMutex
	interactions []recommend.Interaction
	similarities map[string]recommend.SimilarityRecord
	retention    time.Duration
	now          func() time.Time
}

// NewMemory creates an empty store. A zero retention keeps records forever.
func NewMemory(retention time.Duration) *Memory {
	return &Memory{
		similarities: make(map[string]recommend.SimilarityRecord),
		retention:    retention,
		now:          time.Now,
	}
}

// SetClock replaces the time source used for retention.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Ping always succeeds.
func (m *Memory) Ping(context.Context) error {
	return nil
}

// Append stores a copy of in, assigning an ID when it has none.
func (m *Memory) Append(ctx context.Context, in recommend.Interaction) (recommend.Interaction, error) {
	if err := ctx.Err(); err != nil {
		return recommend.Interaction{}, recommend.StoreError("append", err)
	}
	if in.ID == "" {
		in.ID = uuid.NewString()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.interactions = append(m.interactions, in)
	return in, nil
}

// FindRecent returns matching interactions, newest first.
func (m *Memory) FindRecent(ctx context.Context, f recommend.Filter, limit int) ([]recommend.Interaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, recommend.StoreError("find recent", err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	cutoff := m.cutoff()
	out := make([]recommend.Interaction, 0)
	// Walk backwards so that equal timestamps keep the latest append first.
	for i := len(m.interactions) - 1; i >= 0; i-- {
		in := &m.interactions[i]
		if m.expired(in, cutoff) || !f.Matches(in) {
			continue
		}
		out = append(out, *in)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Distinct returns the sorted distinct values of field.
func (m *Memory) Distinct(ctx context.Context, field recommend.Field, f recommend.Filter) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, recommend.StoreError("distinct", err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	cutoff := m.cutoff()
	seen := make(map[string]struct{})
	for i := range m.interactions {
		in := &m.interactions[i]
		if m.expired(in, cutoff) || !f.Matches(in) {
			continue
		}
		v, err := fieldValue(in, field)
		if err != nil {
			return nil, recommend.StoreError("distinct", err)
		}
		seen[v] = struct{}{}
	}

	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}

// Aggregate groups matching interactions by q.GroupBy.
func (m *Memory) Aggregate(ctx context.Context, q recommend.AggregateQuery) ([]recommend.AggregateRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, recommend.StoreError("aggregate", err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	type group struct {
		row      recommend.AggregateRow
		distinct map[string]struct{}
	}

	cutoff := m.cutoff()
	groups := make(map[string]*group)
	order := make([]string, 0)
	for i := range m.interactions {
		in := &m.interactions[i]
		if m.expired(in, cutoff) || !q.Match.Matches(in) {
			continue
		}

		key, err := fieldValue(in, q.GroupBy)
		if err != nil {
			return nil, recommend.StoreError("aggregate", err)
		}

		g, ok := groups[key]
		if !ok {
			g = &group{
				row: recommend.AggregateRow{
					Key:       key,
					SubCounts: make(map[recommend.InteractionType]int),
				},
				distinct: make(map[string]struct{}),
			}
			groups[key] = g
			order = append(order, key)
		}

		g.row.Sum += in.EffectiveWeight()
		g.row.Count++
		g.row.SubCounts[in.Type]++
		if g.row.Category == "" {
			g.row.Category = in.Metadata.Category
		}
		if q.DistinctOf != "" {
			v, err := fieldValue(in, q.DistinctOf)
			if err != nil {
				return nil, recommend.StoreError("aggregate", err)
			}
			g.distinct[v] = struct{}{}
		}
	}

	rows := make([]recommend.AggregateRow, 0, len(order))
	for _, key := range order {
		g := groups[key]
		g.row.Distinct = len(g.distinct)
		rows = append(rows, g.row)
	}
	return rows, nil
}

// Purge deletes interactions older than the retention window and returns
// how many were removed.
func (m *Memory) Purge(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.retention <= 0 {
		return 0, nil
	}

	cutoff := m.cutoff()
	kept := m.interactions[:0]
	for i := range m.interactions {
		if !m.expired(&m.interactions[i], cutoff) {
			kept = append(kept, m.interactions[i])
		}
	}
	removed := len(m.interactions) - len(kept)
	m.interactions = kept
	return removed, nil
}

// Len returns the number of stored interactions, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.interactions)
}

// Get returns the similarity record of a product.
func (m *Memory) Get(ctx context.Context, productID string) (recommend.SimilarityRecord, bool, error) {
	if err := ctx.Err(); err != nil {
		return recommend.SimilarityRecord{}, false, recommend.StoreError("get similarity", err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.similarities[productID]
	if !ok {
		return recommend.SimilarityRecord{}, false, nil
	}
	return cloneRecord(rec), true, nil
}

// GetMany returns the existing records of the given products in request order.
func (m *Memory) GetMany(ctx context.Context, productIDs []string) ([]recommend.SimilarityRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, recommend.StoreError("get similarities", err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]recommend.SimilarityRecord, 0, len(productIDs))
	for _, id := range productIDs {
		if rec, ok := m.similarities[id]; ok {
			out = append(out, cloneRecord(rec))
		}
	}
	return out, nil
}

// Upsert replaces the record of rec.ProductID.
func (m *Memory) Upsert(ctx context.Context, rec recommend.SimilarityRecord) error {
	if err := ctx.Err(); err != nil {
		return recommend.StoreError("upsert similarity", err)
	}
	if rec.ProductID == "" {
		return &recommend.ValidationError{Field: "productId", Message: "is required"}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.similarities[rec.ProductID] = cloneRecord(rec)
	return nil
}

// cutoff must be called with the lock held.
func (m *Memory) cutoff() time.Time {
	if m.retention <= 0 {
		return time.Time{}
	}
	return m.now().Add(-m.retention)
}

func (m *Memory) expired(in *recommend.Interaction, cutoff time.Time) bool {
	return !cutoff.IsZero() && in.CreatedAt.Before(cutoff)
}

func fieldValue(in *recommend.Interaction, field recommend.Field) (string, error) {
	switch field {
	case recommend.FieldUserID:
		return in.UserID, nil
	case recommend.FieldProductID:
		return in.ProductID, nil
	case recommend.FieldType:
		return string(in.Type), nil
	default:
		return "", fmt.Errorf("unsupported field %q", field)
	}
}

func cloneRecord(rec recommend.SimilarityRecord) recommend.SimilarityRecord {
	rec.SimilarProducts = append([]recommend.SimilarProduct(nil), rec.SimilarProducts...)
	rec.Metadata.Tags = append([]string(nil), rec.Metadata.Tags...)
	return rec
}
