// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package metrics

import (
	"time"

	"github.com/tomtom215/recsengine/internal/recommend"
)

// RecommendRecorder feeds engine observations into the Prometheus collectors.
type RecommendRecorder struct{}

var _ recommend.MetricsRecorder = RecommendRecorder{}

// NewRecommendRecorder returns a recorder backed by the package collectors.
func NewRecommendRecorder() RecommendRecorder {
	return RecommendRecorder{}
}

// Request records one served request.
func (RecommendRecorder) Request(method, algorithm string, elapsed time.Duration) {
	if algorithm == "" {
		algorithm = "none"
	}
	RecommendationRequests.WithLabelValues(method, algorithm).Inc()
	RecommendationDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// Fallback records a popularity fallback.
func (RecommendRecorder) Fallback(method string) {
	RecommendationFallbacks.WithLabelValues(method).Inc()
}

// CacheHit records a cache hit.
func (RecommendRecorder) CacheHit(kind string) {
	CacheHits.WithLabelValues(kind).Inc()
}

// CacheMiss records a cache miss.
func (RecommendRecorder) CacheMiss(kind string) {
	CacheMisses.WithLabelValues(kind).Inc()
}

// CacheError records a swallowed cache failure.
func (RecommendRecorder) CacheError(op string) {
	CacheErrors.WithLabelValues(op).Inc()
}

// Tracked records a tracking attempt.
func (RecommendRecorder) Tracked(t recommend.InteractionType, ok bool) {
	label := string(t)
	if !t.Valid() {
		// Unknown types are accepted by default; keep label cardinality bounded.
		label = "other"
	}
	InteractionsTracked.WithLabelValues(label, status(ok)).Inc()
}

// SimilarityUpdate records a similarity recomputation.
func (RecommendRecorder) SimilarityUpdate(ok bool) {
	SimilarityUpdates.WithLabelValues(status(ok)).Inc()
}
