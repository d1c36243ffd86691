// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package eventprocessor

import (
	"time"

	"github.com/tomtom215/recsengine/internal/config"
)

// Topics names the subjects events are published on.
type Topics struct {
	Similarity  string
	Interaction string
	Poison      string
}

// TopicsFromConfig extracts the topic names.
func TopicsFromConfig(cfg *config.EventsConfig) Topics {
	return Topics{
		Similarity:  cfg.SimilarityTopic,
		Interaction: cfg.InteractionTopic,
		Poison:      cfg.PoisonTopic,
	}
}

// RouterConfig holds configuration for the message Router.
type RouterConfig struct {
	CloseTimeout time.Duration

	// Retry configuration
	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	RetryMultiplier      float64

	// Messages that still fail after retries are published here; empty disables
	PoisonQueueTopic string
}

// DefaultRouterConfig returns production defaults for the Router.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		CloseTimeout:         30 * time.Second,
		RetryMaxRetries:      3,
		RetryInitialInterval: 100 * time.Millisecond,
		RetryMaxInterval:     10 * time.Second,
		RetryMultiplier:      2.0,
		PoisonQueueTopic:     "recommend.poison",
	}
}

// RouterConfigFromEvents applies the event settings over the defaults.
func RouterConfigFromEvents(cfg *config.EventsConfig) RouterConfig {
	rc := DefaultRouterConfig()
	if cfg.CloseTimeout > 0 {
		rc.CloseTimeout = cfg.CloseTimeout
	}
	if cfg.RetryCount >= 0 {
		rc.RetryMaxRetries = cfg.RetryCount
	}
	if cfg.RetryInterval > 0 {
		rc.RetryInitialInterval = cfg.RetryInterval
	}
	rc.PoisonQueueTopic = cfg.PoisonTopic
	return rc
}

// StreamConfig defines the JetStream stream that backs every topic.
type StreamConfig struct {
	Name            string
	Subjects        []string
	MaxAge          time.Duration
	DuplicateWindow time.Duration
	Replicas        int
}

// DefaultStreamConfig returns production stream configuration.
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		Name:            "RECOMMEND_EVENTS",
		Subjects:        []string{"recommend.>"},
		MaxAge:          7 * 24 * time.Hour,
		DuplicateWindow: 2 * time.Minute,
		Replicas:        1,
	}
}

// CircuitBreakerConfig holds circuit breaker settings.
type CircuitBreakerConfig struct {
	Name             string
	MaxRequests      uint32        // Allowed in half-open state
	Interval         time.Duration // Reset interval for counts
	Timeout          time.Duration // Time to stay open
	FailureThreshold uint32        // Failures before opening
}

// DefaultCircuitBreakerConfig returns production defaults.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}
