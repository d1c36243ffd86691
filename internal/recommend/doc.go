// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

// Package recommend turns weighted user-product interactions into ranked
// product recommendations.
//
// # Architecture
//
// The Engine coordinates a set of ranking strategies implemented in the
// algorithms subpackage:
//
//   - Popularity: trailing-window weight sums, also the universal fallback
//   - Collaborative: products liked by behaviorally similar users
//   - Content: products similar to the user's heaviest recent products
//   - Hybrid: collaborative and content run concurrently and merged
//   - Also bought: co-purchase cohort of a single product
//   - Session: similarity aggregation seeded by a browsing session
//
// Persistence is reached only through the InteractionStore, SimilarityStore
// and Cache interfaces, so the engine holds no global state and can be tested
// with in-memory fakes (see the storage subpackage).
//
// # Caching
//
// Personalized results are cached under recommendations:{userId}:{algorithm}
// and also-bought results under also_bought:{productId}. A tracked interaction
// invalidates every personalized key of its user. The cache is optional and
// every cache failure is logged and ignored.
//
// # Degradation
//
// Recommendation methods never return errors. Any failure in the pipeline is
// logged and answered with the popularity ranking. Interaction tracking is the
// exception: a persistence failure is returned to the caller.
//
// # Usage
//
//	engine, err := recommend.NewEngine(cfg, recommend.Dependencies{
//	    Interactions: store,
//	    Similarities: store,
//	    Cache:        cache,
//	    Popularity:   popularity,
//	    AlsoBought:   alsoBought,
//	    Session:      session,
//	    Calculator:   calculator,
//	}, logger)
//	engine.RegisterAlgorithm(collaborative)
//	engine.RegisterAlgorithm(content)
//	engine.RegisterAlgorithm(hybrid)
//
//	recs := engine.GetPersonalizedRecommendations(ctx, "user-1", recommend.Options{Limit: 10})
//
// # Thread Safety
//
// The engine is safe for concurrent use.
package recommend
