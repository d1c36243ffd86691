// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/recsengine/internal/metrics"
)

// Purger removes interactions older than the store's retention window.
// The DuckDB, MongoDB and in-memory stores implement it.
type Purger interface {
	Purge(ctx context.Context) (int, error)
}

// RetentionServiceConfig holds configuration for the retention service.
type RetentionServiceConfig struct {
	// Backend labels the purge metric (duckdb, mongo, memory).
	Backend string

	// Interval is how often the purge runs. Default: 1h
	Interval time.Duration

	// PurgeOnStartup runs a purge as soon as the service starts.
	PurgeOnStartup bool

	// Timeout bounds a single purge. Default: 5m
	Timeout time.Duration
}

// RetentionService periodically purges expired interactions.
type RetentionService struct {
	store  Purger
	config RetentionServiceConfig
	logger zerolog.Logger
	name   string
}

// NewRetentionService creates a new retention service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRetentionService(store Purger, cfg RetentionServiceConfig, logger zerolog.Logger) *RetentionService {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	return &RetentionService{
		store:  store,
		config: cfg,
		logger: logger.With().Str("service", "retention").Str("backend", cfg.Backend).Logger(),
		name:   "retention",
	}
}

// Serve implements the suture.Service interface.
func (s *RetentionService) Serve(ctx context.Context) error {
	s.logger.Info().
		Dur("interval", s.config.Interval).
		Bool("purge_on_startup", s.config.PurgeOnStartup).
		Msg("retention service starting")

	if s.config.PurgeOnStartup {
		s.purge(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("retention service shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.purge(ctx)
		}
	}
}

// purge runs one purge. Failures are logged and retried on the next tick.
func (s *RetentionService) purge(ctx context.Context) {
	purgeCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	removed, err := s.store.Purge(purgeCtx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn().Err(err).Msg("retention purge failed")
		}
		return
	}

	metrics.RecordRetentionPurge(s.config.Backend, removed)
	s.logger.Info().
		Int("removed", removed).
		Dur("duration", time.Since(start)).
		Msg("retention purge complete")
}

// String returns the service name for logging.
func (s *RetentionService) String() string {
	return s.name
}
