// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestMemory_BasicOperations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := NewMemory(3)

	if err := c.SetWithTTL(ctx, "a", []byte("1"), time.Minute); err != nil {
		t.Fatalf("SetWithTTL: %v", err)
	}
	got, ok, err := c.Get(ctx, "a")
	if err != nil || !ok || string(got) != "1" {
		t.Fatalf("Get(a) = %q, %v, %v", got, ok, err)
	}

	if _, ok, _ := c.Get(ctx, "missing"); ok {
		t.Error("expected miss for unknown key")
	}

	hits, misses, size := c.Stats()
	if hits != 1 || misses != 1 || size != 1 {
		t.Errorf("Stats() = %d, %d, %d, want 1, 1, 1", hits, misses, size)
	}
}

func TestMemory_EmptyValueIsHit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := NewMemory(3)

	_ = c.SetWithTTL(ctx, "empty", nil, time.Minute)
	got, ok, _ := c.Get(ctx, "empty")
	if !ok || got == nil || len(got) != 0 {
		t.Errorf("Get(empty) = %v, %v, want non-nil empty hit", got, ok)
	}
}

func TestMemory_ValuesAreCopied(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := NewMemory(3)

	buf := []byte("abc")
	_ = c.SetWithTTL(ctx, "k", buf, time.Minute)
	buf[0] = 'x'

	got, _, _ := c.Get(ctx, "k")
	got[1] = 'y'

	again, _, _ := c.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("stored value mutated: %q", again)
	}
}

func TestMemory_Eviction(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := NewMemory(3)

	for _, k := range []string{"a", "b", "c"} {
		_ = c.SetWithTTL(ctx, k, []byte(k), time.Minute)
	}

	// Touch 'a' so 'b' becomes least recently used
	_, _, _ = c.Get(ctx, "a")
	_ = c.SetWithTTL(ctx, "d", []byte("d"), time.Minute)

	if _, ok, _ := c.Get(ctx, "b"); ok {
		t.Error("expected 'b' to be evicted")
	}
	for _, k := range []string{"a", "c", "d"} {
		if _, ok, _ := c.Get(ctx, k); !ok {
			t.Errorf("expected %q to be present", k)
		}
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
}

func TestMemory_TTL(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemory(10)
	c.SetClock(func() time.Time { return now })

	_ = c.SetWithTTL(ctx, "short", []byte("s"), time.Minute)
	_ = c.SetWithTTL(ctx, "long", []byte("l"), time.Hour)
	_ = c.SetWithTTL(ctx, "forever", []byte("f"), 0)

	now = now.Add(2 * time.Minute)

	if _, ok, _ := c.Get(ctx, "short"); ok {
		t.Error("expected 'short' to be expired")
	}
	if _, ok, _ := c.Get(ctx, "long"); !ok {
		t.Error("expected 'long' to be live")
	}

	now = now.Add(24 * time.Hour)
	if removed := c.CleanupExpired(); removed != 1 {
		t.Errorf("CleanupExpired() = %d, want 1", removed)
	}
	if _, ok, _ := c.Get(ctx, "forever"); !ok {
		t.Error("expected entry without ttl to survive")
	}
}

func TestMemory_DeleteByPrefix(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := NewMemory(10)

	keys := []string{
		"recommendations:u1:hybrid",
		"recommendations:u1:content",
		"recommendations:u10:hybrid",
		"also_bought:p1",
	}
	for _, k := range keys {
		_ = c.SetWithTTL(ctx, k, []byte("[]"), time.Minute)
	}

	if err := c.DeleteByPrefix(ctx, "recommendations:u1:"); err != nil {
		t.Fatalf("DeleteByPrefix: %v", err)
	}

	want := map[string]bool{
		"recommendations:u1:hybrid":  false,
		"recommendations:u1:content": false,
		"recommendations:u10:hybrid": true,
		"also_bought:p1":             true,
	}
	for k, present := range want {
		if _, ok, _ := c.Get(ctx, k); ok != present {
			t.Errorf("Get(%q) present = %v, want %v", k, ok, present)
		}
	}
}

func TestMemory_Concurrent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := NewMemory(50)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", (g*200+i)%100)
				_ = c.SetWithTTL(ctx, key, []byte("v"), time.Minute)
				_, _, _ = c.Get(ctx, key)
				if i%50 == 0 {
					_ = c.DeleteByPrefix(ctx, "k1")
				}
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > 50 {
		t.Errorf("Len() = %d exceeds capacity", c.Len())
	}
}
