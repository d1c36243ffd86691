// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

//go:build integration

package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/tomtom215/recsengine/internal/testinfra"
)

func TestRedis_Integration(t *testing.T) {
	testinfra.SkipIfNoDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testinfra.NewRedisContainer(ctx)
	if err != nil {
		t.Fatalf("start redis: %v", err)
	}
	defer testinfra.CleanupContainer(t, ctx, container.Container)

	r, err := NewRedis(container.Endpoint, "", 0)
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	defer r.Close()

	if err := r.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	if _, ok, err := r.Get(ctx, "missing"); ok || err != nil {
		t.Fatalf("Get(missing) = %v, %v, want clean miss", ok, err)
	}

	// Enough keys to need several SCAN pages
	for i := 0; i < 1200; i++ {
		if err := r.SetWithTTL(ctx, fmt.Sprintf("recommendations:u1:alg%d", i), []byte("[]"), time.Hour); err != nil {
			t.Fatalf("SetWithTTL: %v", err)
		}
	}
	_ = r.SetWithTTL(ctx, "recommendations:u10:hybrid", []byte("[]"), time.Hour)
	_ = r.SetWithTTL(ctx, "also_bought:p[1]", []byte(`[{"productId":"p2"}]`), time.Hour)

	if err := r.DeleteByPrefix(ctx, "recommendations:u1:"); err != nil {
		t.Fatalf("DeleteByPrefix: %v", err)
	}

	if _, ok, _ := r.Get(ctx, "recommendations:u1:alg7"); ok {
		t.Error("expected u1 keys to be deleted")
	}
	if _, ok, _ := r.Get(ctx, "recommendations:u10:hybrid"); !ok {
		t.Error("expected u10 key to survive")
	}

	// Glob metacharacters in the prefix are literal
	if err := r.DeleteByPrefix(ctx, "also_bought:p["); err != nil {
		t.Fatalf("DeleteByPrefix: %v", err)
	}
	if _, ok, _ := r.Get(ctx, "also_bought:p[1]"); ok {
		t.Error("expected bracketed key to be deleted")
	}
}
