// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package recommend

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Note: This package has no dependencies on other internal packages.
// Stores, caches, rankers and metrics are injected through the interfaces
// declared here, which keeps the backends free of import cycles.

// Method labels used for logs and metrics.
const (
	methodPersonalized = "personalized"
	methodPopular      = "popular"
	methodAlsoBought   = "also_bought"
	methodSession      = "session"
	methodSimilar      = "similar"
)

// TrackListener is notified after an interaction has been persisted.
type TrackListener interface {
	InteractionTracked(ctx context.Context, in Interaction)
}

// Dependencies are the collaborators of an Engine.
// Cache, Metrics and Listener are optional.
type Dependencies struct {
	Interactions InteractionStore
	Similarities SimilarityStore
	Cache        Cache
	Popularity   PopularityRanker
	AlsoBought   ProductRanker
	Session      SeedRanker
	Calculator   SimilarityCalculator
	Metrics      MetricsRecorder
	Listener     TrackListener
}

func (d *Dependencies) validate() error {
	switch {
	case d.Interactions == nil:
		return fmt.Errorf("%w: interaction store", ErrMissingDependency)
	case d.Similarities == nil:
		return fmt.Errorf("%w: similarity store", ErrMissingDependency)
	case d.Popularity == nil:
		return fmt.Errorf("%w: popularity ranker", ErrMissingDependency)
	case d.AlsoBought == nil:
		return fmt.Errorf("%w: also-bought ranker", ErrMissingDependency)
	case d.Session == nil:
		return fmt.Errorf("%w: session ranker", ErrMissingDependency)
	case d.Calculator == nil:
		return fmt.Errorf("%w: similarity calculator", ErrMissingDependency)
	}
	return nil
}

// Engine coordinates the ranking strategies, the read-through cache and the
// popularity fallback. It is safe for concurrent use.
type Engine struct {
	// Configuration
	config *Config
	logger zerolog.Logger

	// Collaborators
	interactions InteractionStore
	similarities SimilarityStore
	popularity   PopularityRanker
	alsoBought   ProductRanker
	session      SeedRanker
	calculator   SimilarityCalculator
	listener     TrackListener
	cache        *cacheLayer
	metrics      MetricsRecorder

	// Registered personalized algorithms by name
	algorithms map[string]Algorithm
	algMu      sync.RWMutex

	// Counters
	requestCount      atomic.Int64
	cacheHits         atomic.Int64
	cacheMisses       atomic.Int64
	fallbackCount     atomic.Int64
	trackedCount      atomic.Int64
	trackFailures     atomic.Int64
	similarityUpdates atomic.Int64

	now func() time.Time
}

// NewEngine creates a new recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, deps Dependencies, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := deps.validate(); err != nil {
		return nil, err
	}

	metrics := deps.Metrics
	if metrics == nil {
		metrics = noopRecorder{}
	}

	var c Cache
	if cfg.Cache.Enabled {
		c = deps.Cache
	}

	return &Engine{
		config:       cfg,
		logger:       logger,
		interactions: deps.Interactions,
		similarities: deps.Similarities,
		popularity:   deps.Popularity,
		alsoBought:   deps.AlsoBought,
		session:      deps.Session,
		calculator:   deps.Calculator,
		listener:     deps.Listener,
		cache:        newCacheLayer(c, cfg.Cache.TTL, logger, metrics),
		metrics:      metrics,
		algorithms:   make(map[string]Algorithm),
		now:          time.Now,
	}, nil
}

// RegisterAlgorithm makes alg selectable by its name.
func (e *Engine) RegisterAlgorithm(alg Algorithm) {
	e.algMu.Lock()
	defer e.algMu.Unlock()

	e.algorithms[alg.Name()] = alg
	e.logger.Info().
		Str("algorithm", alg.Name()).
		Msg("registered algorithm")
}

// Algorithms returns the registered algorithm names in sorted order.
func (e *Engine) Algorithms() []string {
	e.algMu.RLock()
	defer e.algMu.RUnlock()

	names := make([]string, 0, len(e.algorithms))
	for name := range e.algorithms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Config returns the engine configuration.
func (e *Engine) Config() *Config {
	return e.config
}

// resolveAlgorithm maps a requested name to a registered algorithm.
// Empty and unknown names select hybrid.
func (e *Engine) resolveAlgorithm(name string) (string, Algorithm) {
	e.algMu.RLock()
	defer e.algMu.RUnlock()

	if alg, ok := e.algorithms[name]; ok {
		return name, alg
	}
	return AlgorithmHybrid, e.algorithms[AlgorithmHybrid]
}

// GetPersonalizedRecommendations returns ranked products for a user.
// It never fails: any error is logged and answered with popular products.
func (e *Engine) GetPersonalizedRecommendations(ctx context.Context, userID string, opts Options) []Recommendation {
	start := time.Now()
	e.requestCount.Add(1)

	limit := e.config.clampLimit(opts.Limit)
	name, alg := e.resolveAlgorithm(opts.Algorithm)
	defer func() { e.metrics.Request(methodPersonalized, name, time.Since(start)) }()

	key := PersonalizedKey(userID, name)
	if cached, ok := e.loadCached(ctx, methodPersonalized, key); ok {
		recs, err := e.finalize(ctx, cached, opts, limit)
		if err != nil {
			return e.fallback(ctx, methodPersonalized, err, opts.ExcludeProducts, limit)
		}
		return recs
	}

	if alg == nil {
		return e.fallback(ctx, methodPersonalized,
			fmt.Errorf("algorithm %q not registered", name), opts.ExcludeProducts, limit)
	}

	recs, err := alg.Recommend(ctx, userID, limit)
	if err != nil {
		return e.fallback(ctx, methodPersonalized, fmt.Errorf("%s: %w", name, err), opts.ExcludeProducts, limit)
	}

	e.cache.store(ctx, key, recs)

	out, err := e.finalize(ctx, recs, opts, limit)
	if err != nil {
		return e.fallback(ctx, methodPersonalized, err, opts.ExcludeProducts, limit)
	}

	e.logger.Debug().
		Str("user_id", userID).
		Str("algorithm", name).
		Int("count", len(out)).
		Dur("elapsed", time.Since(start)).
		Msg("personalized recommendations")

	return out
}

// finalize applies the category filter, the exclusions and the limit.
func (e *Engine) finalize(ctx context.Context, recs []Recommendation, opts Options, limit int) ([]Recommendation, error) {
	if opts.CategoryFilter != "" {
		withCategories, err := e.attachCategories(ctx, recs)
		if err != nil {
			return nil, err
		}
		recs = filterByCategory(withCategories, opts.CategoryFilter)
	}
	return FilterRecommendations(recs, opts.ExcludeProducts, limit), nil
}

// attachCategories fills missing categories from similarity metadata.
func (e *Engine) attachCategories(ctx context.Context, recs []Recommendation) ([]Recommendation, error) {
	missing := make([]string, 0, len(recs))
	for i := range recs {
		if recs[i].Category == "" {
			missing = append(missing, recs[i].ProductID)
		}
	}

	out := make([]Recommendation, len(recs))
	copy(out, recs)
	if len(missing) == 0 {
		return out, nil
	}

	records, err := e.similarities.GetMany(ctx, missing)
	if err != nil {
		return nil, fmt.Errorf("lookup categories: %w", err)
	}

	categories := make(map[string]string, len(records))
	for i := range records {
		categories[records[i].ProductID] = records[i].Metadata.Category
	}
	for i := range out {
		if out[i].Category == "" {
			out[i].Category = categories[out[i].ProductID]
		}
	}
	return out, nil
}

// GetPopularRecommendations returns trending products of the trailing days.
func (e *Engine) GetPopularRecommendations(ctx context.Context, limit, days int) []Recommendation {
	start := time.Now()
	e.requestCount.Add(1)
	defer func() { e.metrics.Request(methodPopular, "", time.Since(start)) }()

	limit = e.config.clampLimit(limit)
	recs, err := e.popularity.Popular(ctx, limit, e.config.clampDays(days))
	if err != nil {
		e.logger.Error().Err(err).Msg("popular recommendations failed")
		return []Recommendation{}
	}
	return FilterRecommendations(recs, nil, limit)
}

// GetAlsoBought returns products purchased by buyers of productID.
// Results are cached per product.
func (e *Engine) GetAlsoBought(ctx context.Context, productID string, limit int) []Recommendation {
	start := time.Now()
	e.requestCount.Add(1)
	defer func() { e.metrics.Request(methodAlsoBought, "", time.Since(start)) }()

	limit = e.config.clampLimit(limit)
	key := AlsoBoughtKey(productID)
	if cached, ok := e.loadCached(ctx, methodAlsoBought, key); ok {
		return FilterRecommendations(cached, nil, limit)
	}

	recs, err := e.alsoBought.Related(ctx, productID, limit)
	if err != nil {
		return e.fallback(ctx, methodAlsoBought, err, nil, limit)
	}

	e.cache.store(ctx, key, recs)
	return FilterRecommendations(recs, nil, limit)
}

// GetSessionBasedRecommendations ranks products similar to the session's products.
func (e *Engine) GetSessionBasedRecommendations(ctx context.Context, sessionProducts []string, limit int) []Recommendation {
	start := time.Now()
	e.requestCount.Add(1)
	defer func() { e.metrics.Request(methodSession, "", time.Since(start)) }()

	limit = e.config.clampLimit(limit)
	recs, err := e.session.RankSeeds(ctx, sessionProducts, limit)
	if err != nil {
		return e.fallback(ctx, methodSession, err, nil, limit)
	}
	return FilterRecommendations(recs, nil, limit)
}

// GetSimilarProducts ranks products similar to a single product.
func (e *Engine) GetSimilarProducts(ctx context.Context, productID string, limit int) []Recommendation {
	start := time.Now()
	e.requestCount.Add(1)
	defer func() { e.metrics.Request(methodSimilar, "", time.Since(start)) }()

	limit = e.config.clampLimit(limit)
	recs, err := e.session.RankSeeds(ctx, []string{productID}, limit)
	if err != nil {
		return e.fallback(ctx, methodSimilar, err, []string{productID}, limit)
	}
	return FilterRecommendations(recs, []string{productID}, limit)
}

// CalculateProductSimilarities rebuilds the similarity list of a product.
// Failures are logged; the error is returned so background callers can retry.
func (e *Engine) CalculateProductSimilarities(ctx context.Context, productID string, data ProductData) error {
	rec, err := e.calculator.Calculate(ctx, productID, data)
	if err != nil {
		e.metrics.SimilarityUpdate(false)
		e.logger.Error().
			Err(err).
			Str("product_id", productID).
			Msg("similarity calculation failed")
		return err
	}

	e.similarityUpdates.Add(1)
	e.metrics.SimilarityUpdate(true)
	e.logger.Info().
		Str("product_id", productID).
		Str("category", rec.Metadata.Category).
		Int("similar_products", len(rec.SimilarProducts)).
		Msg("similarities updated")
	return nil
}

// UserHistory returns the user's most recent interactions, optionally of one type.
func (e *Engine) UserHistory(ctx context.Context, userID string, limit int, interactionType InteractionType) ([]Interaction, error) {
	if userID == "" {
		return nil, &ValidationError{Field: "userId", Message: "is required"}
	}
	if limit <= 0 {
		limit = e.config.Tracking.HistoryLimit
	}

	f := Filter{UserIDs: []string{userID}}
	if interactionType != "" {
		f.Types = []InteractionType{interactionType}
	}

	history, err := e.interactions.FindRecent(ctx, f, limit)
	if err != nil {
		return nil, fmt.Errorf("find history: %w", err)
	}
	return history, nil
}

// Stats summarizes interactions of the trailing days.
func (e *Engine) Stats(ctx context.Context, days int) (Stats, error) {
	days = e.config.clampDays(days)
	since := e.now().Add(-time.Duration(days) * 24 * time.Hour)
	f := Filter{Since: since}

	rows, err := e.interactions.Aggregate(ctx, AggregateQuery{Match: f, GroupBy: FieldType})
	if err != nil {
		return Stats{}, fmt.Errorf("aggregate by type: %w", err)
	}
	users, err := e.interactions.Distinct(ctx, FieldUserID, f)
	if err != nil {
		return Stats{}, fmt.Errorf("distinct users: %w", err)
	}
	products, err := e.interactions.Distinct(ctx, FieldProductID, f)
	if err != nil {
		return Stats{}, fmt.Errorf("distinct products: %w", err)
	}

	stats := Stats{
		Days:           days,
		Since:          since,
		ByType:         make(map[InteractionType]int, len(rows)),
		UniqueUsers:    len(users),
		UniqueProducts: len(products),
	}
	for i := range rows {
		stats.ByType[InteractionType(rows[i].Key)] = rows[i].Count
		stats.Total += rows[i].Count
	}
	return stats, nil
}

// GetMetrics returns a snapshot of the engine counters.
func (e *Engine) GetMetrics() Metrics {
	return Metrics{
		TotalRequests:       e.requestCount.Load(),
		CacheHits:           e.cacheHits.Load(),
		CacheMisses:         e.cacheMisses.Load(),
		Fallbacks:           e.fallbackCount.Load(),
		TrackedInteractions: e.trackedCount.Load(),
		TrackFailures:       e.trackFailures.Load(),
		SimilarityUpdates:   e.similarityUpdates.Load(),
	}
}

func (e *Engine) loadCached(ctx context.Context, kind, key string) ([]Recommendation, bool) {
	if !e.cache.enabled() {
		return nil, false
	}
	recs, ok := e.cache.load(ctx, kind, key)
	if ok {
		e.cacheHits.Add(1)
	} else {
		e.cacheMisses.Add(1)
	}
	return recs, ok
}

// fallback answers a failed request with popular products.
func (e *Engine) fallback(ctx context.Context, method string, cause error, exclude []string, limit int) []Recommendation {
	e.fallbackCount.Add(1)
	e.metrics.Fallback(method)
	e.logger.Warn().
		Err(cause).
		Str("method", method).
		Msg("falling back to popular recommendations")

	// Over-fetch so that exclusions do not shrink the answer below limit.
	recs, err := e.popularity.Popular(ctx, limit+len(exclude), e.config.Popularity.DefaultDays)
	if err != nil {
		e.logger.Error().Err(err).Str("method", method).Msg("popularity fallback failed")
		return []Recommendation{}
	}
	return FilterRecommendations(recs, exclude, limit)
}
