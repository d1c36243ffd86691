// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/recsengine/internal/logging"
	"github.com/tomtom215/recsengine/internal/models"
	"github.com/tomtom215/recsengine/internal/recommend"
)

// TrackInteraction handles POST /track.
func (h *Handler) TrackInteraction(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.TrackRequest
	if !decodeOrRespond(w, r, &req) {
		return
	}
	if !validateOrRespond(w, r, &req) {
		return
	}

	stored, err := h.engine.TrackInteraction(r.Context(), req.Interaction())
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	respondData(w, r, http.StatusCreated, start, models.TrackResponse{
		Message:     "Interaction tracked successfully",
		Interaction: stored,
	})
}

// BatchTrackInteractions handles POST /track/batch. Items are tracked
// independently and the tally is returned even when some fail.
func (h *Handler) BatchTrackInteractions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.BatchTrackRequest
	if !decodeOrRespond(w, r, &req) {
		return
	}
	if !validateOrRespond(w, r, &req) {
		return
	}

	result := h.engine.BatchTrackInteractions(r.Context(), req.Interactions)
	if result.Failed > 0 {
		logging.Ctx(r.Context()).Warn().
			Int("total", result.Total).
			Int("failed", result.Failed).
			Msg("batch tracking had failures")
	}

	respondData(w, r, http.StatusCreated, start, result)
}

// CalculateSimilarities handles POST /similarities/{productId}. With an
// event publisher the rebuild is queued and 202 is returned; otherwise it
// runs inline.
func (h *Handler) CalculateSimilarities(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.SimilarityRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidBody, "Invalid JSON request body", nil)
		return
	}
	// the path is authoritative
	req.ProductID = chi.URLParam(r, "productId")
	if !validateOrRespond(w, r, &req) {
		return
	}

	if h.similarity != nil {
		if err := h.similarity.PublishSimilarityRecompute(r.Context(), req.ProductID, req.ProductData); err != nil {
			respondError(w, r, http.StatusServiceUnavailable, ErrCodePublishFailed,
				"Failed to queue similarity calculation", err)
			return
		}
		respondData(w, r, http.StatusAccepted, start, models.SimilarityResponse{
			ProductID: req.ProductID,
			Queued:    true,
			Message:   "Similarity calculation queued",
		})
		return
	}

	if err := h.engine.CalculateProductSimilarities(r.Context(), req.ProductID, req.ProductData); err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, start, models.SimilarityResponse{
		ProductID: req.ProductID,
		Message:   "Product similarities calculated successfully",
	})
}

// UserHistory handles GET /history/{userId}.
func (h *Handler) UserHistory(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := r.URL.Query()

	req := models.HistoryQuery{
		UserID:          chi.URLParam(r, "userId"),
		Limit:           parseIntParam(q.Get("limit"), 0),
		InteractionType: recommend.InteractionType(q.Get("interactionType")),
	}
	if !validateOrRespond(w, r, &req) {
		return
	}

	history, err := h.engine.UserHistory(r.Context(), req.UserID, req.Limit, req.InteractionType)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	if history == nil {
		history = []recommend.Interaction{}
	}

	respondData(w, r, http.StatusOK, start, models.HistoryResponse{
		UserID:  req.UserID,
		Count:   len(history),
		History: history,
	})
}

// Stats handles GET /stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := models.WindowQuery{
		Days: parseIntParam(r.URL.Query().Get("days"), 0),
	}
	if !validateOrRespond(w, r, &req) {
		return
	}

	stats, err := h.engine.Stats(r.Context(), req.Days)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, start, stats)
}
