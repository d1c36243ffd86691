// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package recommend

import (
	"context"
	"slices"
	"time"
)

// Field names an interaction attribute used for grouping and distinct queries.
type Field string

const (
	FieldUserID    Field = "userId"
	FieldProductID Field = "productId"
	FieldType      Field = "interactionType"
)

// Filter selects interactions. Zero-valued fields do not constrain the match.
type Filter struct {
	UserIDs           []string
	ExcludeUserIDs    []string
	ProductIDs        []string
	ExcludeProductIDs []string
	Types             []InteractionType
	Category          string
	Since             time.Time
}

// Matches reports whether the interaction satisfies the filter.
// Store backends that cannot push a filter down use it directly.
func (f *Filter) Matches(in *Interaction) bool {
	if len(f.UserIDs) > 0 && !slices.Contains(f.UserIDs, in.UserID) {
		return false
	}
	if slices.Contains(f.ExcludeUserIDs, in.UserID) {
		return false
	}
	if len(f.ProductIDs) > 0 && !slices.Contains(f.ProductIDs, in.ProductID) {
		return false
	}
	if slices.Contains(f.ExcludeProductIDs, in.ProductID) {
		return false
	}
	if len(f.Types) > 0 && !slices.Contains(f.Types, in.Type) {
		return false
	}
	if f.Category != "" && in.Metadata.Category != f.Category {
		return false
	}
	if !f.Since.IsZero() && in.CreatedAt.Before(f.Since) {
		return false
	}
	return true
}

// AggregateQuery groups the interactions matched by Match.
type AggregateQuery struct {
	Match Filter

	// GroupBy is the grouping key.
	GroupBy Field

	// DistinctOf, when set, counts distinct values of this field per group.
	DistinctOf Field
}

// AggregateRow is one group of an aggregate query.
type AggregateRow struct {
	// Key is the value of the GroupBy field.
	Key string

	// Sum is the total interaction weight of the group.
	Sum float64

	// Count is the number of interactions in the group.
	Count int

	// Distinct is the number of distinct DistinctOf values in the group.
	Distinct int

	// SubCounts counts the group's interactions per type.
	SubCounts map[InteractionType]int

	// Category is any non-empty metadata category seen in the group.
	Category string
}

// InteractionStore is the append-only interaction log.
// Expiry of old records is the store's responsibility.
type InteractionStore interface {
	// Append persists an interaction and returns it with its ID.
	Append(ctx context.Context, in Interaction) (Interaction, error)

	// FindRecent returns matching interactions ordered by CreatedAt descending.
	FindRecent(ctx context.Context, f Filter, limit int) ([]Interaction, error)

	// Distinct returns the distinct values of field among matching interactions.
	Distinct(ctx context.Context, field Field, f Filter) ([]string, error)

	// Aggregate groups matching interactions. Row order is unspecified.
	Aggregate(ctx context.Context, q AggregateQuery) ([]AggregateRow, error)
}

// SimilarityStore holds precomputed similarity lists keyed by product.
type SimilarityStore interface {
	// Get returns the record of a product, reporting whether it exists.
	Get(ctx context.Context, productID string) (SimilarityRecord, bool, error)

	// GetMany returns the records that exist for the given products.
	GetMany(ctx context.Context, productIDs []string) ([]SimilarityRecord, error)

	// Upsert replaces the record of rec.ProductID.
	Upsert(ctx context.Context, rec SimilarityRecord) error
}

// Cache is an optional key-value store with TTL and prefix deletion.
type Cache interface {
	// Get returns the value of key, reporting whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// SetWithTTL stores value under key for ttl.
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// DeleteByPrefix removes every key starting with prefix.
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// Pinger is implemented by stores and caches that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}
