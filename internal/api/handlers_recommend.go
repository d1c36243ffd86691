// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package api

import (
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/recsengine/internal/models"
	"github.com/tomtom215/recsengine/internal/recommend"
)

// PersonalizedRecommendations handles GET /user/{userId}.
func (h *Handler) PersonalizedRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := r.URL.Query()

	req := models.PersonalizedQuery{
		UserID:    chi.URLParam(r, "userId"),
		Limit:     parseIntParam(q.Get("limit"), 0),
		Algorithm: q.Get("algorithm"),
		Exclude:   parseCommaSeparated(queryValue(q, "exclude", "excludeProducts")),
		Category:  queryValue(q, "category", "categoryFilter"),
	}
	if !validateOrRespond(w, r, &req) {
		return
	}

	recs := h.engine.GetPersonalizedRecommendations(r.Context(), req.UserID, recommend.Options{
		Limit:           req.Limit,
		Algorithm:       req.Algorithm,
		ExcludeProducts: req.Exclude,
		CategoryFilter:  req.Category,
	})

	respondData(w, r, http.StatusOK, start, recommendationsResponse(recs, func(resp *models.RecommendationsResponse) {
		resp.Algorithm = h.resolvedAlgorithm(req.Algorithm)
	}))
}

// PopularRecommendations handles GET /popular.
func (h *Handler) PopularRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := r.URL.Query()

	req := models.WindowQuery{
		Limit: parseIntParam(q.Get("limit"), 0),
		Days:  parseIntParam(q.Get("days"), 0),
	}
	if !validateOrRespond(w, r, &req) {
		return
	}

	days := req.Days
	if days == 0 {
		days = h.engine.Config().Popularity.DefaultDays
	}

	recs := h.engine.GetPopularRecommendations(r.Context(), req.Limit, days)
	respondData(w, r, http.StatusOK, start, recommendationsResponse(recs, func(resp *models.RecommendationsResponse) {
		resp.Period = fmt.Sprintf("%d days", days)
	}))
}

// AlsoBought handles GET /also-bought/{productId}.
func (h *Handler) AlsoBought(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req, ok := productQuery(w, r)
	if !ok {
		return
	}

	recs := h.engine.GetAlsoBought(r.Context(), req.ProductID, req.Limit)
	respondData(w, r, http.StatusOK, start, recommendationsResponse(recs, func(resp *models.RecommendationsResponse) {
		resp.ProductID = req.ProductID
	}))
}

// SimilarProducts handles GET /similar/{productId}.
func (h *Handler) SimilarProducts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req, ok := productQuery(w, r)
	if !ok {
		return
	}

	recs := h.engine.GetSimilarProducts(r.Context(), req.ProductID, req.Limit)
	respondData(w, r, http.StatusOK, start, recommendationsResponse(recs, func(resp *models.RecommendationsResponse) {
		resp.ProductID = req.ProductID
	}))
}

// SessionRecommendations handles POST /session.
func (h *Handler) SessionRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.SessionRequest
	if !decodeOrRespond(w, r, &req) {
		return
	}
	if !validateOrRespond(w, r, &req) {
		return
	}

	recs := h.engine.GetSessionBasedRecommendations(r.Context(), req.SessionProducts, req.Limit)
	respondData(w, r, http.StatusOK, start, recommendationsResponse(recs, nil))
}

func productQuery(w http.ResponseWriter, r *http.Request) (models.ProductQuery, bool) {
	req := models.ProductQuery{
		ProductID: chi.URLParam(r, "productId"),
		Limit:     parseIntParam(r.URL.Query().Get("limit"), 0),
	}
	return req, validateOrRespond(w, r, &req)
}

func recommendationsResponse(recs []recommend.Recommendation, decorate func(*models.RecommendationsResponse)) models.RecommendationsResponse {
	if recs == nil {
		recs = []recommend.Recommendation{}
	}
	resp := models.RecommendationsResponse{
		Count:           len(recs),
		Recommendations: recs,
	}
	if decorate != nil {
		decorate(&resp)
	}
	return resp
}

// resolvedAlgorithm mirrors the engine's choice: unknown names use hybrid.
func (h *Handler) resolvedAlgorithm(name string) string {
	if name != "" && slices.Contains(h.engine.Algorithms(), name) {
		return name
	}
	return recommend.AlgorithmHybrid
}
