// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package mongostore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tomtom215/recsengine/internal/recommend"
)

// Append inserts an interaction, assigning an ID when it has none.
func (s *Store) Append(ctx context.Context, in recommend.Interaction) (recommend.Interaction, error) {
	start := time.Now()
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if in.CreatedAt.IsZero() {
		in.CreatedAt = s.now()
	}
	in.CreatedAt = in.CreatedAt.UTC()
	in.Weight = in.EffectiveWeight()

	_, err := s.interactions.InsertOne(ctx, in)
	if err := observe("append", start, err); err != nil {
		return recommend.Interaction{}, err
	}
	return in, nil
}

// FindRecent returns matching interactions, newest first.
func (s *Store) FindRecent(ctx context.Context, f recommend.Filter, limit int) ([]recommend.Interaction, error) {
	start := time.Now()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	out, err := s.findInteractions(ctx, buildFilter(&f, s.cutoff()), opts)
	if err := observe("find_recent", start, err); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) findInteractions(ctx context.Context, filter bson.D, opts *options.FindOptions) ([]recommend.Interaction, error) {
	cur, err := s.interactions.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find interactions: %w", err)
	}
	out := make([]recommend.Interaction, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode interactions: %w", err)
	}
	return out, nil
}

// Distinct returns the sorted distinct values of field among matching interactions.
func (s *Store) Distinct(ctx context.Context, field recommend.Field, f recommend.Filter) ([]string, error) {
	start := time.Now()
	path, err := fieldPath(field)
	if err != nil {
		return nil, recommend.StoreError("distinct", err)
	}

	values, err := s.interactions.Distinct(ctx, path, buildFilter(&f, s.cutoff()))
	if err := observe("distinct", start, err); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(values))
	for _, v := range values {
		if str, ok := v.(string); ok {
			out = append(out, str)
		}
	}
	sort.Strings(out)
	return out, nil
}

type typeCount struct {
	Type  string `bson:"t"`
	Count int    `bson:"c"`
}

type aggregateResult struct {
	Key      string      `bson:"_id"`
	Sum      float64     `bson:"sum"`
	Count    int         `bson:"count"`
	Category string      `bson:"category"`
	Distinct int         `bson:"distinct"`
	Types    []typeCount `bson:"types"`
}

// Aggregate groups matching interactions with a server-side pipeline.
func (s *Store) Aggregate(ctx context.Context, q recommend.AggregateQuery) ([]recommend.AggregateRow, error) {
	start := time.Now()
	groupPath, err := fieldPath(q.GroupBy)
	if err != nil {
		return nil, recommend.StoreError("aggregate", err)
	}
	var distinctPath string
	if q.DistinctOf != "" {
		if distinctPath, err = fieldPath(q.DistinctOf); err != nil {
			return nil, recommend.StoreError("aggregate", err)
		}
	}

	pipeline := aggregatePipeline(buildFilter(&q.Match, s.cutoff()), groupPath, distinctPath)
	rows, err := s.runAggregate(ctx, pipeline)
	if err := observe("aggregate", start, err); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store) runAggregate(ctx context.Context, pipeline []bson.D) ([]recommend.AggregateRow, error) {
	cur, err := s.interactions.Aggregate(ctx, mongo.Pipeline(pipeline))
	if err != nil {
		return nil, fmt.Errorf("aggregate interactions: %w", err)
	}

	var results []aggregateResult
	if err := cur.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("decode aggregate: %w", err)
	}

	rows := make([]recommend.AggregateRow, len(results))
	for i := range results {
		r := &results[i]
		sub := make(map[recommend.InteractionType]int, len(r.Types))
		for _, tc := range r.Types {
			sub[recommend.InteractionType(tc.Type)] += tc.Count
		}
		rows[i] = recommend.AggregateRow{
			Key:       r.Key,
			Sum:       r.Sum,
			Count:     r.Count,
			Distinct:  r.Distinct,
			SubCounts: sub,
			Category:  r.Category,
		}
	}
	return rows, nil
}

// Purge deletes interactions older than the retention window. The TTL
// index does the same asynchronously on the server.
func (s *Store) Purge(ctx context.Context) (int, error) {
	start := time.Now()
	res, err := s.interactions.DeleteMany(ctx, bson.D{{Key: "createdAt", Value: bson.D{{Key: "$lt", Value: s.cutoff()}}}})
	if err := observe("purge", start, err); err != nil {
		return 0, err
	}
	return int(res.DeletedCount), nil
}
