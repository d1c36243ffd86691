// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/tomtom215/recsengine/internal/config"
	"github.com/tomtom215/recsengine/internal/logging"
)

// ErrUnknownBackend is returned for an events backend that is not supported.
var ErrUnknownBackend = errors.New("unknown events backend")

// Transport bundles the publisher and subscriber of one backend, plus the
// embedded server when the backend runs one.
type Transport struct {
	Backend    string
	Publisher  message.Publisher
	Subscriber message.Subscriber
	Server     *EmbeddedServer
	Logger     watermill.LoggerAdapter

	closers []func() error
}

// NewWatermillLogger adapts a zerolog logger for watermill components.
func NewWatermillLogger(logger zerolog.Logger) watermill.LoggerAdapter {
	return watermill.NewSlogLogger(logging.NewSlogLogger(logger))
}

// NewTransport builds the transport selected by cfg.Backend. The none
// backend returns (nil, nil).
func NewTransport(ctx context.Context, cfg *config.EventsConfig, logger zerolog.Logger) (*Transport, error) {
	wmLogger := NewWatermillLogger(logger)

	switch cfg.Backend {
	case config.EventsNone, "":
		return nil, nil
	case config.EventsChannel:
		return NewChannelTransport(wmLogger), nil
	case config.EventsNATS:
		return newNATSTransport(ctx, cfg.Backend, cfg.NATS.URL, &cfg.NATS, wmLogger, nil)
	case config.EventsEmbedded:
		srv, err := NewEmbeddedServer(&cfg.Embedded)
		if err != nil {
			return nil, err
		}
		t, err := newNATSTransport(ctx, cfg.Backend, srv.ClientURL(), &cfg.NATS, wmLogger, srv)
		if err != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
			return nil, err
		}
		return t, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// NewChannelTransport returns an in-process transport. Messages published
// while nobody is subscribed are dropped.
func NewChannelTransport(logger watermill.LoggerAdapter) *Transport {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	ch := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 256,
	}, logger)

	return &Transport{
		Backend:    config.EventsChannel,
		Publisher:  ch,
		Subscriber: ch,
		Logger:     logger,
		closers:    []func() error{ch.Close},
	}
}

func newNATSTransport(
	ctx context.Context,
	backend, url string,
	cfg *config.NATSConfig,
	logger watermill.LoggerAdapter,
	srv *EmbeddedServer,
) (*Transport, error) {
	streamCfg := DefaultStreamConfig()
	if err := ensureStreamAt(ctx, url, &streamCfg); err != nil {
		return nil, err
	}

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(nc *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{
				"url": nc.ConnectedUrl(),
			})
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: false, // stream is created by EnsureStream
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              url,
		QueueGroupPrefix: cfg.QueueGroup,
		SubscribersCount: 1,
		AckWaitTimeout:   30 * time.Second,
		CloseTimeout:     30 * time.Second,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: false,
			AckAsync:      false,
			SubscribeOptions: []natsgo.SubOpt{
				natsgo.BindStream(streamCfg.Name),
				natsgo.MaxDeliver(5),
				natsgo.AckWait(30 * time.Second),
				natsgo.DeliverNew(),
			},
			DurablePrefix: cfg.DurableName,
		},
	}, logger)
	if err != nil {
		_ = pub.Close()
		return nil, fmt.Errorf("create watermill subscriber: %w", err)
	}

	return &Transport{
		Backend:    backend,
		Publisher:  pub,
		Subscriber: sub,
		Server:     srv,
		Logger:     logger,
		closers:    []func() error{pub.Close, sub.Close},
	}, nil
}

// Close closes the publisher and subscriber, then stops the embedded server.
func (t *Transport) Close(ctx context.Context) error {
	var errs []error
	for _, c := range t.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	t.closers = nil

	if t.Server != nil {
		if err := t.Server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown NATS server: %w", err))
		}
		t.Server = nil
	}
	return errors.Join(errs...)
}
