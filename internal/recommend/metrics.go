// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package recommend

import "time"

// MetricsRecorder receives engine observations. The metrics package provides
// the Prometheus implementation; the engine defaults to a no-op recorder.
type MetricsRecorder interface {
	Request(method, algorithm string, elapsed time.Duration)
	Fallback(method string)
	CacheHit(kind string)
	CacheMiss(kind string)
	CacheError(op string)
	Tracked(t InteractionType, ok bool)
	SimilarityUpdate(ok bool)
}

type noopRecorder struct{}

func (noopRecorder) Request(string, string, time.Duration) {}
func (noopRecorder) Fallback(string)                       {}
func (noopRecorder) CacheHit(string)                       {}
func (noopRecorder) CacheMiss(string)                      {}
func (noopRecorder) CacheError(string)                     {}
func (noopRecorder) Tracked(InteractionType, bool)         {}
func (noopRecorder) SimilarityUpdate(bool)                 {}
