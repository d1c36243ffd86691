// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package mongostore

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/tomtom215/recsengine/internal/recommend"
)

// fieldPath maps interaction fields to document paths.
func fieldPath(field recommend.Field) (string, error) {
	switch field {
	case recommend.FieldUserID, recommend.FieldProductID, recommend.FieldType:
		return string(field), nil
	default:
		return "", fmt.Errorf("unsupported field %q", field)
	}
}

// buildFilter translates a filter and the retention cutoff into a query
// document. Include and exclude lists on the same field share one operator
// document.
func buildFilter(f *recommend.Filter, cutoff time.Time) bson.D {
	doc := bson.D{}

	set := func(path string, include, exclude []string) {
		ops := bson.D{}
		if len(include) > 0 {
			ops = append(ops, bson.E{Key: "$in", Value: include})
		}
		if len(exclude) > 0 {
			ops = append(ops, bson.E{Key: "$nin", Value: exclude})
		}
		if len(ops) > 0 {
			doc = append(doc, bson.E{Key: path, Value: ops})
		}
	}

	set("userId", f.UserIDs, f.ExcludeUserIDs)
	set("productId", f.ProductIDs, f.ExcludeProductIDs)

	if len(f.Types) > 0 {
		types := make([]string, len(f.Types))
		for i, t := range f.Types {
			types[i] = string(t)
		}
		set("interactionType", types, nil)
	}

	if f.Category != "" {
		doc = append(doc, bson.E{Key: "metadata.category", Value: f.Category})
	}

	since := f.Since.UTC()
	if cutoff.After(since) {
		since = cutoff
	}
	if !since.IsZero() {
		doc = append(doc, bson.E{Key: "createdAt", Value: bson.D{{Key: "$gte", Value: since}}})
	}

	return doc
}

// aggregatePipeline groups by (key, type) and then by key, folding the
// per-type counts into an array and unioning the distinct value sets.
func aggregatePipeline(match bson.D, groupPath, distinctPath string) []bson.D {
	first := bson.D{
		{Key: "_id", Value: bson.D{{Key: "k", Value: "$" + groupPath}, {Key: "t", Value: "$interactionType"}}},
		{Key: "sum", Value: bson.D{{Key: "$sum", Value: "$interactionWeight"}}},
		{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		{Key: "category", Value: bson.D{{Key: "$max", Value: "$metadata.category"}}},
	}
	second := bson.D{
		{Key: "_id", Value: "$_id.k"},
		{Key: "sum", Value: bson.D{{Key: "$sum", Value: "$sum"}}},
		{Key: "count", Value: bson.D{{Key: "$sum", Value: "$count"}}},
		{Key: "category", Value: bson.D{{Key: "$max", Value: "$category"}}},
		{Key: "types", Value: bson.D{{Key: "$push", Value: bson.D{{Key: "t", Value: "$_id.t"}, {Key: "c", Value: "$count"}}}}},
	}
	project := bson.D{
		{Key: "sum", Value: 1},
		{Key: "count", Value: 1},
		{Key: "category", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$category", ""}}}},
		{Key: "types", Value: 1},
	}

	if distinctPath != "" {
		first = append(first, bson.E{Key: "vals", Value: bson.D{{Key: "$addToSet", Value: "$" + distinctPath}}})
		second = append(second, bson.E{Key: "vals", Value: bson.D{{Key: "$push", Value: "$vals"}}})
		project = append(project, bson.E{Key: "distinct", Value: bson.D{{Key: "$size", Value: bson.D{{Key: "$reduce", Value: bson.D{
			{Key: "input", Value: "$vals"},
			{Key: "initialValue", Value: bson.A{}},
			{Key: "in", Value: bson.D{{Key: "$setUnion", Value: bson.A{"$$value", "$$this"}}}},
		}}}}}})
	} else {
		project = append(project, bson.E{Key: "distinct", Value: bson.D{{Key: "$literal", Value: 0}}})
	}

	return []bson.D{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: first}},
		{{Key: "$group", Value: second}},
		{{Key: "$project", Value: project}},
	}
}
