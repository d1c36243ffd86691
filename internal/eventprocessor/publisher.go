// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/recsengine/internal/logging"
	"github.com/tomtom215/recsengine/internal/metrics"
	"github.com/tomtom215/recsengine/internal/recommend"
)

// ErrPublisherClosed is returned by Publish after Close.
var ErrPublisherClosed = errors.New("publisher is closed")

// Publisher wraps a watermill publisher with circuit breaker protection and
// typed helpers for the engine's events.
type Publisher struct {
	publisher      message.Publisher
	topics         Topics
	circuitBreaker *gobreaker.CircuitBreaker[interface{}]
	mu             sync.RWMutex
	closed         bool
	logger         zerolog.Logger
}

// NewPublisher creates a Publisher over pub.
func NewPublisher(pub message.Publisher, topics Topics, logger zerolog.Logger) *Publisher {
	return &Publisher{
		publisher: pub,
		topics:    topics,
		logger:    logger.With().Str("role", "publisher").Logger(),
	}
}

// SetCircuitBreaker configures the circuit breaker for publish operations.
func (p *Publisher) SetCircuitBreaker(cb *gobreaker.CircuitBreaker[interface{}]) {
	p.circuitBreaker = cb
}

// Publish sends a message to the specified topic with circuit breaker protection.
// The message UUID is used as Nats-Msg-Id for deduplication if not already set.
func (p *Publisher) Publish(ctx context.Context, topic string, msg *message.Message) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return ErrPublisherClosed
	}
	p.mu.RUnlock()

	if msg.Metadata.Get(natsgo.MsgIdHdr) == "" {
		msg.Metadata.Set(natsgo.MsgIdHdr, msg.UUID)
	}
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		msg.Metadata.Set("correlation_id", id)
	}
	msg.SetContext(ctx)

	var err error
	if p.circuitBreaker != nil {
		_, err = p.circuitBreaker.Execute(func() (interface{}, error) {
			return nil, p.publisher.Publish(topic, msg)
		})
	} else {
		err = p.publisher.Publish(topic, msg)
	}

	if err == nil {
		metrics.RecordEventPublished(topic)
	}
	return err
}

// PublishSimilarityRecompute publishes a recompute request for a product.
func (p *Publisher) PublishSimilarityRecompute(ctx context.Context, productID string, data recommend.ProductData) error {
	event := NewSimilarityRecompute(productID, data)
	msg, err := newMessage(event.EventID, EventTypeSimilarityRecompute, event)
	if err != nil {
		return err
	}
	msg.Metadata.Set("product_id", productID)

	if err := p.Publish(ctx, p.topics.Similarity, msg); err != nil {
		return fmt.Errorf("publish %s: %w", EventTypeSimilarityRecompute, err)
	}
	return nil
}

// InteractionTracked publishes a tracking notification. Failures are logged
// and never reach the tracking caller.
func (p *Publisher) InteractionTracked(ctx context.Context, in recommend.Interaction) {
	if p.topics.Interaction == "" {
		return
	}

	event := NewInteractionTracked(in)
	msg, err := newMessage(event.EventID, EventTypeInteractionTracked, event)
	if err == nil {
		msg.Metadata.Set("user_id", in.UserID)
		msg.Metadata.Set("interaction_type", string(in.Type))
		err = p.Publish(ctx, p.topics.Interaction, msg)
	}
	if err != nil {
		p.logger.Warn().
			Err(err).
			Str("user_id", in.UserID).
			Str("product_id", in.ProductID).
			Msg("publish interaction event failed")
	}
}

// Close marks the publisher closed. The underlying publisher is owned by the
// Transport and closed there.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
