// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

/*
Package eventprocessor moves recommendation events over Watermill.

Two events are defined:

  - SimilarityRecompute: asks a worker to rebuild one product's similarity
    record. The HTTP layer publishes it; SimilarityHandler consumes it and
    calls Engine.CalculateProductSimilarities.
  - InteractionTracked: published by Publisher (a recommend.TrackListener)
    after every persisted interaction, for audit consumers.

# Backends

  - channel: in-process gochannel pub/sub. Messages published while nothing
    is subscribed are dropped.
  - nats: NATS JetStream through watermill-nats. All topics live in the
    RECOMMEND_EVENTS stream ("recommend.>"), created by EnsureStream before
    the subscriber binds to it.
  - embedded: starts an in-process nats-server with JetStream and then uses
    the nats backend against it.

# Delivery

The Router applies, outer to inner, a poison queue, consumed-message
metrics, exponential retry and panic recovery. A message whose handler
still fails after the retries is published to the poison topic with the
failure reason in its metadata and then acked.

Publishing can be guarded by a gobreaker circuit breaker (SetCircuitBreaker);
the breaker's state changes are exported as metrics.

# Usage

	transport, err := eventprocessor.NewTransport(ctx, &cfg.Events, logger)
	if err != nil {
		return err
	}
	defer transport.Close(ctx)

	topics := eventprocessor.TopicsFromConfig(&cfg.Events)
	publisher := eventprocessor.NewPublisher(transport.Publisher, topics, logger)

	routerCfg := eventprocessor.RouterConfigFromEvents(&cfg.Events)
	router, err := eventprocessor.NewRouter(&routerCfg, transport.Publisher, transport.Logger)
	handler, err := eventprocessor.NewSimilarityHandler(engine, logger)
	eventprocessor.RegisterHandlers(router, transport.Subscriber, topics, handler, nil)
*/
package eventprocessor
