// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

/*
Package supervisor provides process supervision for recsengine using suture v4.

Services are organized into three layers for failure isolation:

	RootSupervisor ("recsengine")
	├── DataSupervisor ("data-layer")
	│   ├── RetentionService (duckdb and memory stores)
	│   └── CacheCleanupService (memory cache)
	├── MessagingSupervisor ("messaging-layer")
	│   └── EventRouterService (if events are enabled)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services are restarted with suture's backoff; each layer counts its
own failures. Supervisor events are logged through sutureslog and the slog
adapter in internal/logging.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(logger), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    logger.Error().Err(err).Msg("supervisor tree failed")
	}

When Serve returns, UnstoppedServiceReport lists services that missed the
shutdown timeout.
*/
package supervisor
