// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package eventprocessor

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/recsengine/internal/logging"
	"github.com/tomtom215/recsengine/internal/recommend"
)

// Handler names registered on the router.
const (
	SimilarityHandlerName  = "similarity-recompute"
	InteractionHandlerName = "interaction-audit"
)

// SimilarityCalculator recomputes the similarity record of a product.
// *recommend.Engine satisfies it.
type SimilarityCalculator interface {
	CalculateProductSimilarities(ctx context.Context, productID string, data recommend.ProductData) error
}

// SimilarityHandler consumes SimilarityRecompute events.
type SimilarityHandler struct {
	calculator SimilarityCalculator
	logger     zerolog.Logger
}

// NewSimilarityHandler creates a handler backed by calculator.
func NewSimilarityHandler(calculator SimilarityCalculator, logger zerolog.Logger) (*SimilarityHandler, error) {
	if calculator == nil {
		return nil, fmt.Errorf("similarity calculator required")
	}
	return &SimilarityHandler{
		calculator: calculator,
		logger:     logger.With().Str("handler", SimilarityHandlerName).Logger(),
	}, nil
}

// Handle decodes the event and runs the calculation. A returned error nacks
// the message so the retry middleware can redeliver it.
func (h *SimilarityHandler) Handle(msg *message.Message) error {
	event, err := DecodeSimilarityRecompute(msg)
	if err != nil {
		h.logger.Warn().Err(err).Str("message_id", msg.UUID).Msg("invalid similarity event")
		return err
	}

	ctx := msg.Context()
	if id := msg.Metadata.Get("correlation_id"); id != "" {
		ctx = logging.ContextWithCorrelationID(ctx, id)
	}

	if err := h.calculator.CalculateProductSimilarities(ctx, event.ProductID, event.ProductData); err != nil {
		return fmt.Errorf("recompute similarities of %s: %w", event.ProductID, err)
	}
	return nil
}

// InteractionHandler logs InteractionTracked events. It is the in-process
// subscriber of the audit topic; external consumers subscribe to the same
// subject.
type InteractionHandler struct {
	logger zerolog.Logger
	seen   func(recommend.Interaction)
}

// NewInteractionHandler creates an audit handler. seen, when non-nil, is
// called for every decoded interaction.
func NewInteractionHandler(logger zerolog.Logger, seen func(recommend.Interaction)) *InteractionHandler {
	return &InteractionHandler{
		logger: logger.With().Str("handler", InteractionHandlerName).Logger(),
		seen:   seen,
	}
}

// Handle decodes and logs the event.
func (h *InteractionHandler) Handle(msg *message.Message) error {
	event, err := DecodeInteractionTracked(msg)
	if err != nil {
		return err
	}

	h.logger.Debug().
		Str("event_id", event.EventID).
		Str("user_id", event.Interaction.UserID).
		Str("product_id", event.Interaction.ProductID).
		Str("interaction_type", string(event.Interaction.Type)).
		Msg("interaction event")

	if h.seen != nil {
		h.seen(event.Interaction)
	}
	return nil
}

// RegisterHandlers wires the consumers onto router. The interaction audit
// handler is registered only when audit is non-nil.
func RegisterHandlers(
	router *Router,
	sub message.Subscriber,
	topics Topics,
	similarity *SimilarityHandler,
	audit *InteractionHandler,
) {
	if similarity != nil && topics.Similarity != "" {
		router.AddConsumerHandler(SimilarityHandlerName, topics.Similarity, sub, similarity.Handle)
	}
	if audit != nil && topics.Interaction != "" {
		router.AddConsumerHandler(InteractionHandlerName, topics.Interaction, sub, audit.Handle)
	}
}
