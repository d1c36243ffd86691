// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

// ErrRouterStopped is reported when the event router exits while the
// context is still live.
var ErrRouterStopped = errors.New("event router stopped unexpectedly")

// EventRouter matches the *eventprocessor.Router lifecycle.
type EventRouter interface {
	Run(ctx context.Context) error
	Close() error
}

// EventRouterService runs the watermill event router under supervision.
//
// A watermill router closes its subscribers when it stops and cannot be
// run again, so an unexpected exit is logged and reported with
// suture.ErrDoNotRestart. The HTTP API keeps serving; similarity requests
// queued after that point wait in the broker until the process restarts.
type EventRouterService struct {
	router          EventRouter
	shutdownTimeout time.Duration
	logger          zerolog.Logger
	name            string
}

// NewEventRouterService wraps router. A non-positive timeout means 30s,
// matching the router's own close timeout.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEventRouterService(router EventRouter, shutdownTimeout time.Duration, logger zerolog.Logger) *EventRouterService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	return &EventRouterService{
		router:          router,
		shutdownTimeout: shutdownTimeout,
		logger:          logger.With().Str("service", "event-router").Logger(),
		name:            "event-router",
	}
}

// Serve implements suture.Service.
func (s *EventRouterService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.router.Run(ctx)
	}()

	select {
	case err := <-errCh:
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err == nil {
			err = ErrRouterStopped
		}
		s.logger.Error().Err(err).Msg("event router exited; event processing disabled until restart")
		if closeErr := s.router.Close(); closeErr != nil {
			s.logger.Debug().Err(closeErr).Msg("close after exit")
		}
		return fmt.Errorf("%w: %w", suture.ErrDoNotRestart, err)

	case <-ctx.Done():
		// Run closes the router on cancellation; wait for in-flight handlers
		select {
		case <-errCh:
		case <-time.After(s.shutdownTimeout):
			s.logger.Warn().Dur("timeout", s.shutdownTimeout).Msg("event router did not stop in time")
		}
		return ctx.Err()
	}
}

// String implements fmt.Stringer for suture logging.
func (s *EventRouterService) String() string {
	return s.name
}
