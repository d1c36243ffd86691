// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/recsengine/internal/recommend"
)

const interactionColumns = `id, user_id, product_id, interaction_type, interaction_weight,
	session_id, duration, search_query, rating, category, price, event_timestamp,
	user_agent, platform, browser, referrer, page_url, recommendation_source, created_at`

// Append inserts an interaction, assigning an ID when it has none.
func (db *DB) Append(ctx context.Context, in recommend.Interaction) (recommend.Interaction, error) {
	start := time.Now()
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if in.CreatedAt.IsZero() {
		in.CreatedAt = db.now()
	}
	in.CreatedAt = in.CreatedAt.UTC()
	in.Weight = in.EffectiveWeight()

	var eventTS sql.NullTime
	if !in.Metadata.Timestamp.IsZero() {
		eventTS = sql.NullTime{Time: in.Metadata.Timestamp.UTC(), Valid: true}
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO user_interactions (`+interactionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.UserID, in.ProductID, string(in.Type), in.Weight,
		in.Metadata.SessionID, in.Metadata.Duration, in.Metadata.SearchQuery, in.Metadata.Rating,
		in.Metadata.Category, in.Metadata.Price, eventTS,
		in.DeviceInfo.UserAgent, in.DeviceInfo.Platform, in.DeviceInfo.Browser,
		in.Context.Referrer, in.Context.PageURL, in.Context.RecommendationSource,
		in.CreatedAt,
	)
	if err := observe("append", start, err); err != nil {
		return recommend.Interaction{}, err
	}
	return in, nil
}

// FindRecent returns matching interactions, newest first. Equal timestamps
// keep the latest insert first.
func (db *DB) FindRecent(ctx context.Context, f recommend.Filter, limit int) ([]recommend.Interaction, error) {
	start := time.Now()
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	where, args := buildFilterConditions(&f, db.cutoff())
	query := `SELECT ` + interactionColumns + ` FROM user_interactions` + where +
		` ORDER BY created_at DESC, rowid DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	out, err := db.queryInteractions(ctx, query, args...)
	if err := observe("find_recent", start, err); err != nil {
		return nil, err
	}
	return out, nil
}

func (db *DB) queryInteractions(ctx context.Context, query string, args ...interface{}) ([]recommend.Interaction, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query interactions: %w", err)
	}
	defer rows.Close()

	out := make([]recommend.Interaction, 0)
	for rows.Next() {
		var (
			in      recommend.Interaction
			typ     string
			eventTS sql.NullTime
		)
		if err := rows.Scan(
			&in.ID, &in.UserID, &in.ProductID, &typ, &in.Weight,
			&in.Metadata.SessionID, &in.Metadata.Duration, &in.Metadata.SearchQuery, &in.Metadata.Rating,
			&in.Metadata.Category, &in.Metadata.Price, &eventTS,
			&in.DeviceInfo.UserAgent, &in.DeviceInfo.Platform, &in.DeviceInfo.Browser,
			&in.Context.Referrer, &in.Context.PageURL, &in.Context.RecommendationSource,
			&in.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		in.Type = recommend.InteractionType(typ)
		if eventTS.Valid {
			in.Metadata.Timestamp = eventTS.Time
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

// Distinct returns the sorted distinct values of field among matching interactions.
func (db *DB) Distinct(ctx context.Context, field recommend.Field, f recommend.Filter) ([]string, error) {
	start := time.Now()
	col, err := column(field)
	if err != nil {
		return nil, recommend.StoreError("distinct", err)
	}

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	where, args := buildFilterConditions(&f, db.cutoff())
	query := fmt.Sprintf(`SELECT DISTINCT %s FROM user_interactions%s ORDER BY %s`, col, where, col)

	out, err := db.queryStrings(ctx, query, args...)
	if err := observe("distinct", start, err); err != nil {
		return nil, err
	}
	return out, nil
}

func (db *DB) queryStrings(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Aggregate groups matching interactions by q.GroupBy. Per-type sub counts
// come from grouping by (key, type) and folding the rows in Go; the distinct
// count is computed per key in a separate CTE.
func (db *DB) Aggregate(ctx context.Context, q recommend.AggregateQuery) ([]recommend.AggregateRow, error) {
	start := time.Now()
	groupCol, err := column(q.GroupBy)
	if err != nil {
		return nil, recommend.StoreError("aggregate", err)
	}
	distinctExpr := "0"
	if q.DistinctOf != "" {
		col, err := column(q.DistinctOf)
		if err != nil {
			return nil, recommend.StoreError("aggregate", err)
		}
		distinctExpr = "COUNT(DISTINCT " + col + ")"
	}

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	where, args := buildFilterConditions(&q.Match, db.cutoff())
	query := fmt.Sprintf(`
		WITH matched AS (
			SELECT %[1]s AS grp, user_id, product_id, interaction_type, interaction_weight, category
			FROM user_interactions%[2]s
		),
		distinct_counts AS (
			SELECT grp, %[3]s AS distinct_count FROM matched GROUP BY grp
		)
		SELECT m.grp,
			m.interaction_type,
			SUM(m.interaction_weight),
			COUNT(*),
			COALESCE(MAX(NULLIF(m.category, '')), ''),
			MAX(d.distinct_count)
		FROM matched m
		JOIN distinct_counts d ON d.grp = m.grp
		GROUP BY m.grp, m.interaction_type
		ORDER BY m.grp`, groupCol, where, distinctExpr)

	rows, err := db.foldAggregate(ctx, query, args...)
	if err := observe("aggregate", start, err); err != nil {
		return nil, err
	}
	return rows, nil
}

func (db *DB) foldAggregate(ctx context.Context, query string, args ...interface{}) ([]recommend.AggregateRow, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query aggregate: %w", err)
	}
	defer rows.Close()

	out := make([]recommend.AggregateRow, 0)
	index := make(map[string]int)
	for rows.Next() {
		var (
			key, typ, category string
			sum                float64
			count, distinct    int64
		)
		if err := rows.Scan(&key, &typ, &sum, &count, &category, &distinct); err != nil {
			return nil, fmt.Errorf("scan aggregate: %w", err)
		}

		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, recommend.AggregateRow{
				Key:       key,
				SubCounts: make(map[recommend.InteractionType]int),
				Distinct:  int(distinct),
			})
		}
		row := &out[i]
		row.Sum += sum
		row.Count += int(count)
		row.SubCounts[recommend.InteractionType(typ)] += int(count)
		if row.Category == "" {
			row.Category = category
		}
	}
	return out, rows.Err()
}

// Purge deletes interactions older than the retention window and returns
// how many were removed.
func (db *DB) Purge(ctx context.Context) (int, error) {
	cutoff := db.cutoff()
	if cutoff.IsZero() {
		return 0, nil
	}

	start := time.Now()
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx, `DELETE FROM user_interactions WHERE created_at < ?`, cutoff)
	if err := observe("purge", start, err); err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, recommend.StoreError("purge", err)
	}
	return int(n), nil
}

// Count returns the number of stored interactions, expired ones included.
func (db *DB) Count(ctx context.Context) (int64, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	var n int64
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_interactions`).Scan(&n); err != nil {
		return 0, recommend.StoreError("count", err)
	}
	return n, nil
}
