// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tomtom215/recsengine/internal/middleware"
	"github.com/tomtom215/recsengine/internal/models"
)

// DefaultMetricsPath serves Prometheus metrics when no path is configured.
const DefaultMetricsPath = "/metrics"

// Router wires the handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	logger        zerolog.Logger

	// metricsPath is empty when the metrics endpoint is disabled.
	metricsPath string
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithMetricsPath serves Prometheus metrics at path. An empty path
// disables the endpoint.
func WithMetricsPath(path string) RouterOption {
	return func(r *Router) { r.metricsPath = path }
}

// NewRouter creates a router. A nil middleware configuration uses the defaults.
func NewRouter(handler *Handler, mwConfig *ChiMiddlewareConfig, logger zerolog.Logger, opts ...RouterOption) *Router {
	router := &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(mwConfig),
		logger:        logger,
		metricsPath:   DefaultMetricsPath,
	}
	for _, opt := range opts {
		opt(router)
	}
	return router
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID(router.logger)) // X-Request-ID plus request-scoped logger
	r.Use(chimiddleware.RealIP)                // Extract real IP from X-Forwarded-For
	r.Use(chimiddleware.Recoverer)             // Recover from panics
	r.Use(router.chiMiddleware.CORS())         // CORS must be global to handle OPTIONS preflight
	r.Use(middleware.PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respondAPIError(w, req, http.StatusNotFound, &models.APIError{
			Code:    ErrCodeNotFound,
			Message: "Route not found",
		})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		respondAPIError(w, req, http.StatusMethodNotAllowed, &models.APIError{
			Code:    ErrCodeMethodNotAllowed,
			Message: "Method not allowed",
		})
	})

	// ========================
	// Operational Endpoints
	// ========================
	r.Get("/health", router.handler.Health)
	if router.metricsPath != "" {
		r.Handle(router.metricsPath, promhttp.Handler())
	}

	// ========================
	// Recommendation Endpoints
	// ========================
	r.Route("/api/v1/recommendations", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())

		r.Get("/user/{userId}", router.handler.PersonalizedRecommendations)
		r.Get("/popular", router.handler.PopularRecommendations)
		r.Get("/also-bought/{productId}", router.handler.AlsoBought)
		r.Get("/similar/{productId}", router.handler.SimilarProducts)
		r.Post("/session", router.handler.SessionRecommendations)

		// Tracking is write-heavy and carries its own stricter limit
		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitTracking())
			r.Post("/track", router.handler.TrackInteraction)
			r.Post("/track/batch", router.handler.BatchTrackInteractions)
		})

		r.Post("/similarities/{productId}", router.handler.CalculateSimilarities)
		r.Get("/history/{userId}", router.handler.UserHistory)
		r.Get("/stats", router.handler.Stats)
	})

	return r
}
