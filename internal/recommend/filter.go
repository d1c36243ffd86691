// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package recommend

// FilterRecommendations drops items whose product ID is in exclude and
// truncates the result to limit. A non-positive limit yields an empty list.
// The input slice is not modified.
func FilterRecommendations(list []Recommendation, exclude []string, limit int) []Recommendation {
	if limit <= 0 {
		return []Recommendation{}
	}

	excluded := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		excluded[id] = struct{}{}
	}

	out := make([]Recommendation, 0, min(limit, len(list)))
	for i := range list {
		if _, skip := excluded[list[i].ProductID]; skip {
			continue
		}
		out = append(out, list[i])
		if len(out) == limit {
			break
		}
	}
	return out
}

// Deduplicate keeps the first occurrence of each product ID, preserving order.
func Deduplicate(list []Recommendation) []Recommendation {
	seen := make(map[string]struct{}, len(list))
	out := make([]Recommendation, 0, len(list))
	for i := range list {
		if _, dup := seen[list[i].ProductID]; dup {
			continue
		}
		seen[list[i].ProductID] = struct{}{}
		out = append(out, list[i])
	}
	return out
}

// filterByCategory keeps items whose Category equals category.
func filterByCategory(list []Recommendation, category string) []Recommendation {
	out := make([]Recommendation, 0, len(list))
	for i := range list {
		if list[i].Category == category {
			out = append(out, list[i])
		}
	}
	return out
}
