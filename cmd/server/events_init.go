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
	"github.com/tomtom215/recsengine/internal/eventprocessor"
)

// eventComponents holds the event transport and its publisher. Both are nil
// when events are disabled.
type eventComponents struct {
	transport *eventprocessor.Transport
	publisher *eventprocessor.Publisher
	topics    eventprocessor.Topics
}

// enabled reports whether an event transport is running.
func (e *eventComponents) enabled() bool {
	return e != nil && e.transport != nil
}

// initEvents connects the configured transport and builds the publisher.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func initEvents(ctx context.Context, cfg *config.EventsConfig, logger zerolog.Logger) (*eventComponents, error) {
	transport, err := eventprocessor.NewTransport(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create event transport: %w", err)
	}
	if transport == nil {
		logger.Info().Msg("Event processing disabled")
		return &eventComponents{}, nil
	}

	topics := eventprocessor.TopicsFromConfig(cfg)
	publisher := eventprocessor.NewPublisher(transport.Publisher, topics, logger)
	publisher.SetCircuitBreaker(eventprocessor.NewCircuitBreaker(
		eventprocessor.DefaultCircuitBreakerConfig("event-publisher-"+transport.Backend), logger))

	logger.Info().
		Str("backend", transport.Backend).
		Str("similarity_topic", topics.Similarity).
		Str("interaction_topic", topics.Interaction).
		Msg("Event transport initialized")

	return &eventComponents{
		transport: transport,
		publisher: publisher,
		topics:    topics,
	}, nil
}

// initEventRouter builds the consumer router. The interaction audit consumer
// is only attached to the in-process transport; brokered backends leave
// that topic to external subscribers.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func initEventRouter(
	cfg *config.EventsConfig,
	events *eventComponents,
	calculator eventprocessor.SimilarityCalculator,
	logger zerolog.Logger,
) (*eventprocessor.Router, error) {
	routerCfg := eventprocessor.RouterConfigFromEvents(cfg)
	router, err := eventprocessor.NewRouter(&routerCfg, events.transport.Publisher, events.transport.Logger)
	if err != nil {
		return nil, fmt.Errorf("create event router: %w", err)
	}

	similarity, err := eventprocessor.NewSimilarityHandler(calculator, logger)
	if err != nil {
		return nil, err
	}

	var audit *eventprocessor.InteractionHandler
	if events.transport.Backend == config.EventsChannel {
		audit = eventprocessor.NewInteractionHandler(logger, nil)
	}

	eventprocessor.RegisterHandlers(router, events.transport.Subscriber, events.topics, similarity, audit)

	logger.Info().Strs("handlers", router.Handlers()).Msg("Event router initialized")
	return router, nil
}

// close releases the publisher and then the transport.
func (e *eventComponents) close(ctx context.Context) error {
	if !e.enabled() {
		return nil
	}
	if err := e.publisher.Close(); err != nil {
		return err
	}
	return e.transport.Close(ctx)
}
