// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

// Package testinfra provides test infrastructure for integration testing with containers.
//
// This package uses testcontainers-go to start the real services behind the
// optional backends: Redis for the shared cache, MongoDB for the document
// store and NATS JetStream for the event bus.
//
//	func TestRedisCache(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//
//	    redis, err := testinfra.NewRedisContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, redis.Container)
//
//	    backend, err := cache.NewRedis(redis.Endpoint, "", 0)
//	    // ...
//	}
//
// All files carry the integration build tag:
//
//	go test -tags integration ./...
//
// # CI Considerations
//
// These tests require Docker and network access. Tests are skipped
// gracefully if Docker is unavailable or -short is set.
package testinfra
