// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package cache

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/recsengine/internal/metrics"
	"github.com/tomtom215/recsengine/internal/recommend"
)

// BreakerSettings configures a Breaker.
type BreakerSettings struct {
	Name                string
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
}

// Breaker guards a backend with a circuit breaker. While the circuit is
// open every call fails fast with gobreaker.ErrOpenState wrapped so that it
// matches recommend.ErrCache; the recommendation engine treats it as a miss.
type Breaker struct {
	backend Backend
	cb      *gobreaker.CircuitBreaker[interface{}]
}

var _ Backend = (*Breaker)(nil)

type getResult struct {
	value []byte
	found bool
}

// NewBreaker wraps backend.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBreaker(backend Backend, s BreakerSettings, logger zerolog.Logger) *Breaker {
	threshold := s.ConsecutiveFailures
	if threshold == 0 {
		threshold = 5
	}

	settings := gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.RecordBreakerTransition(name, from.String(), to.String(), int(to))
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("cache circuit breaker state changed")
		},
		// A caller giving up is not a backend failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}

	return &Breaker{
		backend: backend,
		cb:      gobreaker.NewCircuitBreaker[interface{}](settings),
	}
}

// State returns the current breaker state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

// Get reads through the breaker.
func (b *Breaker) Get(ctx context.Context, key string) ([]byte, bool, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		v, ok, err := b.backend.Get(ctx, key)
		return getResult{value: v, found: ok}, err
	})
	if err != nil {
		return nil, false, rejected("get", err)
	}
	r, _ := res.(getResult)
	return r.value, r.found, nil
}

// SetWithTTL writes through the breaker.
func (b *Breaker) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.backend.SetWithTTL(ctx, key, value, ttl)
	})
	return rejected("set", err)
}

// DeleteByPrefix deletes through the breaker.
func (b *Breaker) DeleteByPrefix(ctx context.Context, prefix string) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.backend.DeleteByPrefix(ctx, prefix)
	})
	return rejected("delete", err)
}

// Ping bypasses the breaker so health checks see the backend's real state.
func (b *Breaker) Ping(ctx context.Context) error {
	return b.backend.Ping(ctx)
}

// Close closes the wrapped backend.
func (b *Breaker) Close() error {
	return b.backend.Close()
}

// rejected wraps the breaker's own refusals. Backend errors are already
// wrapped by the backend and pass through unchanged.
func rejected(op string, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return recommend.CacheError("cache breaker "+op, err)
	}
	return err
}
