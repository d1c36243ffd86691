// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tomtom215/recsengine/internal/config"
	"github.com/tomtom215/recsengine/internal/metrics"
	"github.com/tomtom215/recsengine/internal/recommend"
)

const (
	backendName = "mongo"

	interactionsCollection = "user_interactions"
	similaritiesCollection = "product_similarities"

	// defaultRetention matches the 90-day TTL of the interaction log.
	defaultRetention = 90 * 24 * time.Hour
)

// Store is a MongoDB-backed InteractionStore and SimilarityStore.
type Store struct {
	client       *mongo.Client
	interactions *mongo.Collection
	similarities *mongo.Collection
	retention    time.Duration
	logger       zerolog.Logger

	now func() time.Time
}

var (
	_ recommend.InteractionStore = (*Store)(nil)
	_ recommend.SimilarityStore  = (*Store)(nil)
	_ recommend.Pinger           = (*Store)(nil)
)

// Connect dials the server, verifies it with a ping and ensures indexes.
// A zero retention uses the 90-day default; the TTL index always follows
// the effective retention.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Connect(ctx context.Context, cfg *config.MongoConfig, retention time.Duration, logger zerolog.Logger) (*Store, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := New(client.Database(cfg.Database), retention, logger)
	s.client = client
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// New wraps an existing database handle. It does not create indexes.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(db *mongo.Database, retention time.Duration, logger zerolog.Logger) *Store {
	if retention <= 0 {
		retention = defaultRetention
	}
	return &Store{
		client:       db.Client(),
		interactions: db.Collection(interactionsCollection),
		similarities: db.Collection(similaritiesCollection),
		retention:    retention,
		logger:       logger.With().Str("backend", "mongodb").Logger(),
		now:          time.Now,
	}
}

// SetClock replaces the time source used for retention.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// EnsureIndexes creates the query and TTL indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.interactions.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "productId", Value: 1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "interactionType", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "productId", Value: 1}, {Key: "interactionType", Value: 1}, {Key: "createdAt", Value: -1}}},
		{
			Keys:    bson.D{{Key: "createdAt", Value: 1}},
			Options: options.Index().SetName("createdAt_ttl").SetExpireAfterSeconds(int32(s.retention / time.Second)),
		},
	})
	if err != nil {
		return fmt.Errorf("create interaction indexes: %w", err)
	}

	_, err = s.similarities.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "productId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "similarProducts.productId", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create similarity indexes: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) cutoff() time.Time {
	return s.now().Add(-s.retention).UTC()
}

// observe records a store query and wraps err for the engine.
func observe(op string, start time.Time, err error) error {
	metrics.RecordStoreQuery(backendName, op, time.Since(start), err)
	return recommend.StoreError(op, err)
}
