// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package eventprocessor

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/recsengine/internal/recommend"
)

// SchemaVersion is the current event schema version.
// Increment this when making breaking changes to an event payload.
const SchemaVersion = 1

// Event types carried in the "event_type" message metadata.
const (
	EventTypeSimilarityRecompute = "similarity_recompute"
	EventTypeInteractionTracked  = "interaction_tracked"
)

// ErrInvalidEvent marks an event that fails validation. Handlers return it
// wrapped so that the message goes straight to the poison queue.
var ErrInvalidEvent = errors.New("invalid event")

// SimilarityRecompute asks a consumer to recompute the similarity record of
// one product.
type SimilarityRecompute struct {
	SchemaVersion int                   `json:"schema_version,omitempty"`
	EventID       string                `json:"event_id"`
	ProductID     string                `json:"productId"`
	ProductData   recommend.ProductData `json:"productData"`
	RequestedAt   time.Time             `json:"requested_at"`
}

// NewSimilarityRecompute creates an event with a fresh ID.
func NewSimilarityRecompute(productID string, data recommend.ProductData) *SimilarityRecompute {
	return &SimilarityRecompute{
		SchemaVersion: SchemaVersion,
		EventID:       uuid.NewString(),
		ProductID:     productID,
		ProductData:   data,
		RequestedAt:   time.Now().UTC(),
	}
}

// Validate checks the required fields.
func (e *SimilarityRecompute) Validate() error {
	if e.EventID == "" {
		return errors.Join(ErrInvalidEvent, errors.New("event_id is required"))
	}
	if e.ProductID == "" {
		return errors.Join(ErrInvalidEvent, errors.New("productId is required"))
	}
	return nil
}

// InteractionTracked is published after an interaction has been persisted.
type InteractionTracked struct {
	SchemaVersion int                   `json:"schema_version,omitempty"`
	EventID       string                `json:"event_id"`
	Interaction   recommend.Interaction `json:"interaction"`
}

// NewInteractionTracked creates an event with a fresh ID.
func NewInteractionTracked(in recommend.Interaction) *InteractionTracked {
	return &InteractionTracked{
		SchemaVersion: SchemaVersion,
		EventID:       uuid.NewString(),
		Interaction:   in,
	}
}

// Validate checks the required fields.
func (e *InteractionTracked) Validate() error {
	if e.EventID == "" {
		return errors.Join(ErrInvalidEvent, errors.New("event_id is required"))
	}
	if e.Interaction.UserID == "" || e.Interaction.ProductID == "" {
		return errors.Join(ErrInvalidEvent, errors.New("interaction userId and productId are required"))
	}
	return nil
}
