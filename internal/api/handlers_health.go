// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/recsengine/internal/models"
)

// Health status values.
const (
	HealthHealthy   = "healthy"
	HealthDegraded  = "degraded"
	HealthUnhealthy = "unhealthy"

	checkOK          = "ok"
	checkDisabled    = "disabled"
	checkUnreachable = "unreachable"
)

const serviceName = "recsengine"

// Health handles GET /health. An unreachable store makes the service
// unhealthy (503); an unreachable cache only degrades it, since every
// recommendation path works without the cache.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.healthTimeout)
	defer cancel()

	resp := models.HealthResponse{
		Status:    HealthHealthy,
		Service:   serviceName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    make(map[string]string, 2),
	}
	status := http.StatusOK

	storeStatus := h.check(ctx, "store", h.store)
	resp.Checks["store"] = storeStatus
	if storeStatus == checkUnreachable {
		resp.Status = HealthUnhealthy
		status = http.StatusServiceUnavailable
	}

	cacheStatus := h.check(ctx, "cache", h.cache)
	resp.Checks["cache"] = cacheStatus
	if cacheStatus == checkUnreachable && resp.Status == HealthHealthy {
		resp.Status = HealthDegraded
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error().Err(err).Msg("Failed to write health response")
	}
}

func (h *Handler) check(ctx context.Context, name string, c HealthChecker) string {
	if c == nil {
		return checkDisabled
	}
	if err := c.Ping(ctx); err != nil {
		h.logger.Warn().Err(err).Str("check", name).Msg("health check failed")
		return checkUnreachable
	}
	return checkOK
}
