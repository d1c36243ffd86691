// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/recsengine/internal/metrics"
)

type fakePurger struct {
	calls   atomic.Int32
	removed int
	err     error
}

func (p *fakePurger) Purge(context.Context) (int, error) {
	p.calls.Add(1)
	return p.removed, p.err
}

type fakeCleaner struct {
	calls atomic.Int32
}

func (c *fakeCleaner) CleanupExpired() int {
	c.calls.Add(1)
	return 2
}

// fakeRouter blocks in Run until ctx is canceled or exit is closed.
type fakeRouter struct {
	runErr error
	exit   chan struct{}
	closed atomic.Bool
}

func (r *fakeRouter) Run(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return nil
	case <-r.exit:
		return r.runErr
	}
}

func (r *fakeRouter) Close() error {
	r.closed.Store(true)
	return nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRetentionService_PurgesOnStartupAndTick(t *testing.T) {
	t.Parallel()

	purger := &fakePurger{removed: 3}
	svc := NewRetentionService(purger, RetentionServiceConfig{
		Backend:        "retention-test",
		Interval:       20 * time.Millisecond,
		PurgeOnStartup: true,
	}, zerolog.Nop())

	before := testutil.ToFloat64(metrics.RetentionPurged.WithLabelValues("retention-test"))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	waitFor(t, func() bool { return purger.calls.Load() >= 2 })
	cancel()

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v", err)
	}
	if got := testutil.ToFloat64(metrics.RetentionPurged.WithLabelValues("retention-test")) - before; got < 6 {
		t.Errorf("purged metric grew by %v, want >= 6", got)
	}
	if svc.String() != "retention" {
		t.Errorf("String() = %q", svc.String())
	}
}

func TestRetentionService_FailureKeepsRunning(t *testing.T) {
	t.Parallel()

	purger := &fakePurger{err: errors.New("database is locked")}
	svc := NewRetentionService(purger, RetentionServiceConfig{Interval: 10 * time.Millisecond}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	waitFor(t, func() bool { return purger.calls.Load() >= 3 })
	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v", err)
	}
}

func TestCacheCleanupService(t *testing.T) {
	t.Parallel()

	cleaner := &fakeCleaner{}
	svc := NewCacheCleanupService(cleaner, 10*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	waitFor(t, func() bool { return cleaner.calls.Load() >= 2 })
	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v", err)
	}

	if NewCacheCleanupService(cleaner, 0, zerolog.Nop()).interval != time.Minute {
		t.Error("default interval should be one minute")
	}
}

func TestEventRouterService(t *testing.T) {
	t.Parallel()

	t.Run("stops with context", func(t *testing.T) {
		t.Parallel()

		router := &fakeRouter{exit: make(chan struct{})}
		svc := NewEventRouterService(router, time.Second, zerolog.Nop())

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- svc.Serve(ctx) }()

		cancel()
		if err := <-errCh; !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v", err)
		}
	})

	t.Run("unexpected exit is not restarted", func(t *testing.T) {
		t.Parallel()

		router := &fakeRouter{exit: make(chan struct{}), runErr: errors.New("subscribe failed")}
		close(router.exit)
		svc := NewEventRouterService(router, time.Second, zerolog.Nop())

		err := svc.Serve(context.Background())
		if !errors.Is(err, suture.ErrDoNotRestart) || !errors.Is(err, router.runErr) {
			t.Errorf("Serve() = %v", err)
		}
		if !router.closed.Load() {
			t.Error("router should be closed after an unexpected exit")
		}
	})

	t.Run("clean exit without cancel", func(t *testing.T) {
		t.Parallel()

		router := &fakeRouter{exit: make(chan struct{})}
		close(router.exit)
		svc := NewEventRouterService(router, time.Second, zerolog.Nop())

		if err := svc.Serve(context.Background()); !errors.Is(err, ErrRouterStopped) {
			t.Errorf("Serve() = %v", err)
		}
	})
}
