// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

// Package algorithms implements the ranking strategies used by the
// recommendation engine.
//
// # Strategies
//
//   - Popularity: weight sums of views, purchases and cart adds over a trailing window
//   - Collaborative: neighbors by overlap ratio, candidates from their strong signals
//   - ContentBased: similarity aggregation seeded by the user's heaviest recent products
//   - Hybrid: collaborative and content run concurrently, merged and deduplicated
//   - AlsoBought: co-purchase counts among buyers of an anchor product
//   - Session: similarity aggregation seeded by session products
//   - SimilarityCalculator: rebuilds a product's similarity list from category co-occurrence
//
// Every strategy reads through recommend.InteractionStore and
// recommend.SimilarityStore, so they work unchanged over any backend.
//
// # Determinism
//
// All rankings break ties by interaction count and then by product ID, so the
// same store contents always produce the same ordering.
//
// # Thread Safety
//
// Strategies hold no mutable state and are safe for concurrent use.
package algorithms
