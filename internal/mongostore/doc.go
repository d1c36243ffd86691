// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

/*
Package mongostore provides the MongoDB-backed interaction and similarity store.

Collections:

  - user_interactions: one document per interaction. A TTL index on
    createdAt lets the server expire records after the retention window
    (90 days by default).
  - product_similarities: one document per product, unique on productId,
    replaced as a whole on every recomputation.

Aggregations run as server-side pipelines: $match built from the
recommend.Filter, a $group per (key, type) and a second $group per key that
folds the per-type sub counts and unions distinct value sets.

	store, err := mongostore.Connect(ctx, &cfg.Store.Mongo, cfg.Store.Retention, logger)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())
*/
package mongostore
