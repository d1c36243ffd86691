// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

// Package services provides suture service wrappers for the long-running
// components of recsengine:
//
//   - HTTPServerService: the API server with graceful shutdown
//   - EventRouterService: the watermill event router
//   - RetentionService: periodic purge of expired interactions
//   - CacheCleanupService: periodic sweep of the in-process cache
//
// Every service implements Serve(ctx) error and String() string.
package services
