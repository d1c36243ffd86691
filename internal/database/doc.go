// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

/*
Package database provides the DuckDB-backed interaction and similarity store.

DuckDB is an embedded analytical database: the engine's hot queries are
group-by aggregations over the interaction log (co-occurrence counts,
trending scores, neighbor overlap), which a columnar engine answers without
a separate server.

# Schema

  - user_interactions: append-only interaction log, one row per event
  - product_similarities: one row per product, similar list stored as JSON text
  - schema_migrations: applied migration versions

Timestamps are stored as UTC TIMESTAMP and JSON as TEXT so that no DuckDB
extension has to be installed at runtime.

# Filters

Every recommend.Filter is pushed down as a parameterized WHERE clause. The
retention window is applied to every read, so expired interactions are
invisible before the retention service deletes them with Purge.

# Usage

	db, err := database.New(&cfg.Store.DuckDB, cfg.Store.Retention, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	engine, err := recommend.NewEngine(recCfg, recommend.Dependencies{
	    Interactions: db,
	    Similarities: db,
	    // ...
	}, logger)

An empty path opens an in-memory database, which tests use.
*/
package database
