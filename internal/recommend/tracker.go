// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package recommend

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

// TrackInteraction weights and persists one interaction, then invalidates the
// user's cached recommendations. Persistence failures are returned; cache
// failures are not.
func (e *Engine) TrackInteraction(ctx context.Context, in Interaction) (Interaction, error) {
	if err := e.validateInteraction(&in); err != nil {
		e.trackFailures.Add(1)
		e.metrics.Tracked(in.Type, false)
		return Interaction{}, err
	}

	now := e.now()
	in.Weight = in.Type.Weight()
	if in.CreatedAt.IsZero() {
		in.CreatedAt = now
	}
	if in.Metadata.Timestamp.IsZero() {
		in.Metadata.Timestamp = now
	}

	stored, err := e.interactions.Append(ctx, in)
	if err != nil {
		e.trackFailures.Add(1)
		e.metrics.Tracked(in.Type, false)
		e.logger.Error().
			Err(err).
			Str("user_id", in.UserID).
			Str("product_id", in.ProductID).
			Str("interaction_type", string(in.Type)).
			Msg("track interaction failed")
		return Interaction{}, fmt.Errorf("append interaction: %w", err)
	}

	e.cache.invalidateUser(ctx, in.UserID)

	e.trackedCount.Add(1)
	e.metrics.Tracked(stored.Type, true)
	e.logger.Debug().
		Str("user_id", stored.UserID).
		Str("product_id", stored.ProductID).
		Str("interaction_type", string(stored.Type)).
		Float64("weight", stored.Weight).
		Msg("interaction tracked")

	if e.listener != nil {
		e.listener.InteractionTracked(ctx, stored)
	}

	return stored, nil
}

// BatchTrackInteractions tracks every item independently. One item's failure
// never prevents the others; the result reports the tally.
func (e *Engine) BatchTrackInteractions(ctx context.Context, items []Interaction) BatchResult {
	errs := make([]error, len(items))

	var g errgroup.Group
	g.SetLimit(e.config.Tracking.BatchConcurrency)
	for i := range items {
		g.Go(func() error {
			_, errs[i] = e.TrackInteraction(ctx, items[i])
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // workers record their own errors

	result := BatchResult{Total: len(items)}
	for i, err := range errs {
		if err != nil {
			result.Failed++
			result.Failures = append(result.Failures, BatchFailure{Index: i, Error: err.Error()})
			continue
		}
		result.Successful++
	}

	e.logger.Info().
		Int("total", result.Total).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Msg("batch tracked")

	return result
}

func (e *Engine) validateInteraction(in *Interaction) error {
	if in.UserID == "" {
		return &ValidationError{Field: "userId", Message: "is required"}
	}
	// ':' separates cache key segments; see UserKeyPrefix.
	if strings.Contains(in.UserID, ":") {
		return &ValidationError{Field: "userId", Message: "must not contain ':'"}
	}
	if in.ProductID == "" {
		return &ValidationError{Field: "productId", Message: "is required"}
	}
	if e.config.Tracking.StrictTypes && !in.Type.Valid() {
		return &ValidationError{Field: "interactionType", Message: fmt.Sprintf("unknown type %q", in.Type)}
	}
	return nil
}
