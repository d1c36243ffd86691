// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package api

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/recsengine/internal/recommend"
)

// Engine is the recommendation surface the handlers call.
// *recommend.Engine implements it.
type Engine interface {
	GetPersonalizedRecommendations(ctx context.Context, userID string, opts recommend.Options) []recommend.Recommendation
	GetPopularRecommendations(ctx context.Context, limit, days int) []recommend.Recommendation
	GetAlsoBought(ctx context.Context, productID string, limit int) []recommend.Recommendation
	GetSessionBasedRecommendations(ctx context.Context, sessionProducts []string, limit int) []recommend.Recommendation
	GetSimilarProducts(ctx context.Context, productID string, limit int) []recommend.Recommendation
	CalculateProductSimilarities(ctx context.Context, productID string, data recommend.ProductData) error
	TrackInteraction(ctx context.Context, in recommend.Interaction) (recommend.Interaction, error)
	BatchTrackInteractions(ctx context.Context, items []recommend.Interaction) recommend.BatchResult
	UserHistory(ctx context.Context, userID string, limit int, interactionType recommend.InteractionType) ([]recommend.Interaction, error)
	Stats(ctx context.Context, days int) (recommend.Stats, error)
	Algorithms() []string
	Config() *recommend.Config
}

// SimilarityPublisher queues a similarity rebuild instead of running it inline.
// *eventprocessor.Publisher implements it.
type SimilarityPublisher interface {
	PublishSimilarityRecompute(ctx context.Context, productID string, data recommend.ProductData) error
}

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Handler serves the recommendation API.
type Handler struct {
	engine     Engine
	similarity SimilarityPublisher
	store      HealthChecker
	cache      HealthChecker
	logger     zerolog.Logger
	startTime  time.Time

	healthTimeout time.Duration
}

// HandlerOption configures optional Handler collaborators.
type HandlerOption func(*Handler)

// WithSimilarityPublisher routes similarity rebuilds through the event bus.
func WithSimilarityPublisher(p SimilarityPublisher) HandlerOption {
	return func(h *Handler) { h.similarity = p }
}

// WithStoreCheck adds the interaction store to the health report.
func WithStoreCheck(c HealthChecker) HandlerOption {
	return func(h *Handler) { h.store = c }
}

// WithCacheCheck adds the recommendation cache to the health report.
func WithCacheCheck(c HealthChecker) HandlerOption {
	return func(h *Handler) { h.cache = c }
}

// NewHandler creates the API handler.
func NewHandler(engine Engine, logger zerolog.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{
		engine:        engine,
		logger:        logger,
		startTime:     time.Now(),
		healthTimeout: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}
