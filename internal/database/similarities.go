// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/recsengine/internal/recommend"
)

const similarityColumns = `product_id, similar_products, category, tags, price_range, last_updated`

// Get returns the similarity record of a product.
func (db *DB) Get(ctx context.Context, productID string) (recommend.SimilarityRecord, bool, error) {
	start := time.Now()
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+similarityColumns+` FROM product_similarities WHERE product_id = ?`, productID)

	rec, err := scanSimilarity(row)
	if errors.Is(err, sql.ErrNoRows) {
		_ = observe("get_similarity", start, nil)
		return recommend.SimilarityRecord{}, false, nil
	}
	if err := observe("get_similarity", start, err); err != nil {
		return recommend.SimilarityRecord{}, false, err
	}
	return rec, true, nil
}

// GetMany returns the existing records of the given products in request order.
func (db *DB) GetMany(ctx context.Context, productIDs []string) ([]recommend.SimilarityRecord, error) {
	if len(productIDs) == 0 {
		return []recommend.SimilarityRecord{}, nil
	}

	start := time.Now()
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	byID, err := db.querySimilarities(ctx, productIDs)
	if err := observe("get_similarities", start, err); err != nil {
		return nil, err
	}

	out := make([]recommend.SimilarityRecord, 0, len(byID))
	for _, id := range productIDs {
		if rec, ok := byID[id]; ok {
			out = append(out, rec)
			delete(byID, id)
		}
	}
	return out, nil
}

func (db *DB) querySimilarities(ctx context.Context, productIDs []string) (map[string]recommend.SimilarityRecord, error) {
	placeholders, args := buildInClause(productIDs)
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+similarityColumns+` FROM product_similarities WHERE product_id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("query similarities: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]recommend.SimilarityRecord, len(productIDs))
	for rows.Next() {
		rec, err := scanSimilarity(rows)
		if err != nil {
			return nil, err
		}
		byID[rec.ProductID] = rec
	}
	return byID, rows.Err()
}

// Upsert replaces the record of rec.ProductID.
func (db *DB) Upsert(ctx context.Context, rec recommend.SimilarityRecord) error {
	if rec.ProductID == "" {
		return &recommend.ValidationError{Field: "productId", Message: "is required"}
	}

	start := time.Now()
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	similar := rec.SimilarProducts
	if similar == nil {
		similar = []recommend.SimilarProduct{}
	}
	similarJSON, err := json.Marshal(similar)
	if err != nil {
		return fmt.Errorf("encode similar products: %w", err)
	}
	tagsJSON, err := json.Marshal(rec.Metadata.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}

	lastUpdated := rec.LastUpdated
	if lastUpdated.IsZero() {
		lastUpdated = db.now()
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT OR REPLACE INTO product_similarities (`+similarityColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ProductID, string(similarJSON), rec.Metadata.Category, string(tagsJSON),
		string(rec.Metadata.PriceRange), lastUpdated.UTC(),
	)
	return observe("upsert_similarity", start, err)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSimilarity(row rowScanner) (recommend.SimilarityRecord, error) {
	var (
		rec                  recommend.SimilarityRecord
		similarJSON          string
		category, priceRange sql.NullString
		tagsJSON             sql.NullString
	)
	if err := row.Scan(&rec.ProductID, &similarJSON, &category, &tagsJSON, &priceRange, &rec.LastUpdated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, err
		}
		return rec, fmt.Errorf("scan similarity: %w", err)
	}

	if err := json.Unmarshal([]byte(similarJSON), &rec.SimilarProducts); err != nil {
		return rec, fmt.Errorf("decode similar products of %s: %w", rec.ProductID, err)
	}
	if rec.SimilarProducts == nil {
		rec.SimilarProducts = []recommend.SimilarProduct{}
	}
	if tagsJSON.Valid && tagsJSON.String != "" && tagsJSON.String != "null" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &rec.Metadata.Tags); err != nil {
			return rec, fmt.Errorf("decode tags of %s: %w", rec.ProductID, err)
		}
	}
	rec.Metadata.Category = category.String
	rec.Metadata.PriceRange = recommend.PriceRange(priceRange.String)
	return rec, nil
}
