// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/recsengine/internal/api"
	"github.com/tomtom215/recsengine/internal/cache"
	"github.com/tomtom215/recsengine/internal/config"
	"github.com/tomtom215/recsengine/internal/logging"
	"github.com/tomtom215/recsengine/internal/metrics"
	"github.com/tomtom215/recsengine/internal/recommend"
	"github.com/tomtom215/recsengine/internal/supervisor"
	"github.com/tomtom215/recsengine/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})
	logger := logging.Logger()

	logging.Info().
		Str("version", version).
		Str("store", cfg.Store.Backend).
		Str("cache", cfg.Cache.Backend).
		Str("events", cfg.Events.Backend).
		Msg("Starting recsengine")
	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := initStore(ctx, &cfg.Store, logging.WithComponent("store"))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize store")
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := store.close(closeCtx); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()
	logging.Info().Str("backend", cfg.Store.Backend).Msg("Store initialized")

	cacheBackend, err := cache.New(&cfg.Cache, logging.WithComponent("cache"))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize cache")
	}
	var recCache recommend.Cache
	if cacheBackend != nil {
		recCache = cacheBackend
		defer func() {
			if err := cacheBackend.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing cache")
			}
		}()
	}

	events, err := initEvents(ctx, &cfg.Events, logging.WithComponent("events"))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize events")
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := events.close(closeCtx); err != nil {
			logging.Error().Err(err).Msg("Error closing event transport")
		}
	}()

	var listener recommend.TrackListener
	if events.enabled() {
		listener = events.publisher
	}

	engine, err := initRecommendEngine(
		engineConfig(&cfg.Recommend, cacheBackend != nil, cfg.Cache.TTL),
		store, recCache, listener, logging.WithComponent("recommend"),
	)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize recommendation engine")
	}

	handlerOpts := []api.HandlerOption{api.WithStoreCheck(store.health)}
	if cacheBackend != nil {
		handlerOpts = append(handlerOpts, api.WithCacheCheck(cacheBackend))
	}
	if events.enabled() {
		handlerOpts = append(handlerOpts, api.WithSimilarityPublisher(events.publisher))
	}
	handler := api.NewHandler(engine, logging.WithComponent("api"), handlerOpts...)

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	router := api.NewRouter(handler,
		api.ChiMiddlewareConfigFrom(&cfg.Server, &cfg.RateLimit),
		logging.WithComponent("router"),
		api.WithMetricsPath(metricsPath),
	)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(logger), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	if err := addServices(tree, cfg, store, cacheBackend, events, engine, server, logger); err != nil {
		logging.Fatal().Err(err).Msg("Failed to register services")
	}

	logging.Info().Str("addr", server.Addr).Msg("Supervisor tree starting")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree stopped with error")
	}

	if report, err := tree.UnstoppedServiceReport(); err == nil {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop in time")
		}
	}
	logging.Info().Msg("Server stopped")
}

// addServices registers the long-running services on their layers.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func addServices(
	tree *supervisor.SupervisorTree,
	cfg *config.Config,
	store *storeComponents,
	cacheBackend cache.Backend,
	events *eventComponents,
	engine *recommend.Engine,
	server *http.Server,
	logger zerolog.Logger,
) error {
	if store.purger != nil {
		tree.AddDataService(services.NewRetentionService(store.purger, services.RetentionServiceConfig{
			Backend:        cfg.Store.Backend,
			Interval:       cfg.Store.PurgeInterval,
			PurgeOnStartup: true,
		}, logger))
	}

	if mem, ok := cacheBackend.(*cache.Memory); ok {
		tree.AddDataService(services.NewCacheCleanupService(mem, time.Minute, logger))
	}

	if events.enabled() {
		router, err := initEventRouter(&cfg.Events, events, engine, logging.WithComponent("event-router"))
		if err != nil {
			return err
		}
		tree.AddMessagingService(services.NewEventRouterService(router, cfg.Events.CloseTimeout, logger))
	}

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logger))
	return nil
}
