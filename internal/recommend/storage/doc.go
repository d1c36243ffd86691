// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

// Package storage provides an in-process implementation of the interaction
// and similarity stores.
//
// Memory keeps interactions in append order and similarity records in a map.
// Aggregations are evaluated with recommend.Filter.Matches over the live
// records, which makes the store the reference implementation that the DuckDB
// and MongoDB backends are tested against.
//
// # Retention
//
// Records older than the retention window are invisible to reads and are
// removed by Purge. A zero retention keeps everything.
//
// # Thread Safety
//
// All operations are safe for concurrent use.
package storage
