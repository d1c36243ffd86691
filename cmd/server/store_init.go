// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/recsengine/internal/config"
	"github.com/tomtom215/recsengine/internal/database"
	"github.com/tomtom215/recsengine/internal/mongostore"
	"github.com/tomtom215/recsengine/internal/recommend"
	"github.com/tomtom215/recsengine/internal/recommend/storage"
	"github.com/tomtom215/recsengine/internal/supervisor/services"
)

// storeComponents holds the store selected by configuration.
type storeComponents struct {
	interactions recommend.InteractionStore
	similarities recommend.SimilarityStore
	health       recommend.Pinger

	// purger is nil when the backend expires interactions itself (MongoDB TTL index).
	purger services.Purger
	close  func(context.Context) error
}

// initStore opens the interaction and similarity store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func initStore(ctx context.Context, cfg *config.StoreConfig, logger zerolog.Logger) (*storeComponents, error) {
	switch cfg.Backend {
	case config.StoreMemory, "":
		mem := storage.NewMemory(cfg.Retention)
		return &storeComponents{
			interactions: mem,
			similarities: mem,
			health:       mem,
			purger:       mem,
			close:        func(context.Context) error { return nil },
		}, nil

	case config.StoreDuckDB:
		db, err := database.New(&cfg.DuckDB, cfg.Retention, logger)
		if err != nil {
			return nil, fmt.Errorf("open duckdb store: %w", err)
		}
		return &storeComponents{
			interactions: db,
			similarities: db,
			health:       db,
			purger:       db,
			close:        func(context.Context) error { return db.Close() },
		}, nil

	case config.StoreMongo:
		store, err := mongostore.Connect(ctx, &cfg.Mongo, cfg.Retention, logger)
		if err != nil {
			return nil, fmt.Errorf("open mongo store: %w", err)
		}
		return &storeComponents{
			interactions: store,
			similarities: store,
			health:       store,
			close:        store.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
