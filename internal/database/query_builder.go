// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/recsengine/internal/recommend"
)

// columns maps interaction fields to their columns.
var columns = map[recommend.Field]string{
	recommend.FieldUserID:    "user_id",
	recommend.FieldProductID: "product_id",
	recommend.FieldType:      "interaction_type",
}

func column(field recommend.Field) (string, error) {
	col, ok := columns[field]
	if !ok {
		return "", fmt.Errorf("unsupported field %q", field)
	}
	return col, nil
}

// buildInClause creates a parameterized IN clause for SQL queries.
// Returns the placeholder string and the arguments slice.
//
// Example:
//
//	placeholders, args := buildInClause([]string{"user1", "user2", "user3"})
//	// placeholders = "?,?,?"
//	// args = []interface{}{"user1", "user2", "user3"}
func buildInClause(items []string) (string, []interface{}) {
	placeholders := make([]string, len(items))
	args := make([]interface{}, len(items))
	for i, item := range items {
		placeholders[i] = "?"
		args[i] = item
	}
	return strings.Join(placeholders, ","), args
}

// buildFilterConditions turns a filter and the retention cutoff into a
// WHERE clause. The clause is "WHERE 1=1" when nothing constrains the match.
func buildFilterConditions(f *recommend.Filter, cutoff time.Time) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	in := func(col string, values []string, negate bool) {
		if len(values) == 0 {
			return
		}
		placeholders, valueArgs := buildInClause(values)
		op := "IN"
		if negate {
			op = "NOT IN"
		}
		conditions = append(conditions, fmt.Sprintf("%s %s (%s)", col, op, placeholders))
		args = append(args, valueArgs...)
	}

	in("user_id", f.UserIDs, false)
	in("user_id", f.ExcludeUserIDs, true)
	in("product_id", f.ProductIDs, false)
	in("product_id", f.ExcludeProductIDs, true)

	if len(f.Types) > 0 {
		types := make([]string, len(f.Types))
		for i, t := range f.Types {
			types[i] = string(t)
		}
		in("interaction_type", types, false)
	}

	if f.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, f.Category)
	}

	since := f.Since.UTC()
	if cutoff.After(since) {
		since = cutoff
	}
	if !since.IsZero() {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, since)
	}

	if len(conditions) == 0 {
		return " WHERE 1=1", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
