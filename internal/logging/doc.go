// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

// Package logging provides centralized zerolog-based structured logging for Recsengine.
//
// # Overview
//
// The package provides:
//   - A global zerolog logger configured once at startup
//   - JSON output for production and console output for development
//   - Context-aware logging with correlation and request ID propagation
//   - An slog adapter so Suture v4 (via sutureslog) logs through zerolog
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Str("store", "duckdb").Msg("Store opened")
//	logging.Ctx(ctx).Warn().Err(err).Msg("Cache unavailable")
//
// # Components
//
// Long-lived components take a zerolog.Logger in their constructor. Build it
// with WithComponent so every line carries a component field:
//
//	engine, err := recommend.NewEngine(cfg, deps, logging.WithComponent("recommend"))
//
// Tests pass zerolog.Nop().
package logging
