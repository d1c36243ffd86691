// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/tomtom215/recsengine/internal/config"
	"github.com/tomtom215/recsengine/internal/models"
)

// ChiMiddlewareConfig holds configuration for Chi middleware factories.
type ChiMiddlewareConfig struct {
	// CORS configuration
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	CORSAllowedHeaders []string
	CORSExposedHeaders []string
	CORSMaxAge         int // seconds

	// General rate limit for all recommendation routes
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Stricter limit for the tracking routes
	TrackRateLimitRequests int
	TrackRateLimitWindow   time.Duration

	RateLimitDisabled bool
	RateLimitKeyFunc  httprate.KeyFunc
}

// DefaultChiMiddlewareConfig returns the default configuration.
// CORS origins default to empty, requiring explicit configuration.
func DefaultChiMiddlewareConfig() *ChiMiddlewareConfig {
	return &ChiMiddlewareConfig{
		CORSAllowedOrigins: []string{},
		CORSAllowedMethods: []string{"GET", "POST", "OPTIONS"},
		CORSAllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		CORSExposedHeaders: []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		CORSMaxAge:         86400,

		RateLimitRequests: 100,
		RateLimitWindow:   15 * time.Minute,

		TrackRateLimitRequests: 50,
		TrackRateLimitWindow:   time.Minute,
	}
}

// ChiMiddlewareConfigFrom builds the middleware configuration from the
// server and rate limit sections.
func ChiMiddlewareConfigFrom(server *config.ServerConfig, rl *config.RateLimitConfig) *ChiMiddlewareConfig {
	cfg := DefaultChiMiddlewareConfig()
	if server != nil {
		cfg.CORSAllowedOrigins = server.CORSOrigins
	}
	if rl != nil {
		cfg.RateLimitDisabled = !rl.Enabled
		if rl.GeneralRequests > 0 {
			cfg.RateLimitRequests = rl.GeneralRequests
		}
		if rl.GeneralWindow > 0 {
			cfg.RateLimitWindow = rl.GeneralWindow
		}
		if rl.TrackRequests > 0 {
			cfg.TrackRateLimitRequests = rl.TrackRequests
		}
		if rl.TrackWindow > 0 {
			cfg.TrackRateLimitWindow = rl.TrackWindow
		}
	}
	return cfg
}

// ChiMiddleware provides Chi-compatible middleware factories.
type ChiMiddleware struct {
	config *ChiMiddlewareConfig
	cors   func(http.Handler) http.Handler
}

// NewChiMiddleware creates a new Chi middleware factory with the given configuration.
func NewChiMiddleware(config *ChiMiddlewareConfig) *ChiMiddleware {
	if config == nil {
		config = DefaultChiMiddlewareConfig()
	}

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins: config.CORSAllowedOrigins,
		AllowedMethods: config.CORSAllowedMethods,
		AllowedHeaders: config.CORSAllowedHeaders,
		ExposedHeaders: config.CORSExposedHeaders,
		MaxAge:         config.CORSMaxAge,
	})

	return &ChiMiddleware{
		config: config,
		cors:   corsHandler,
	}
}

// CORS returns the CORS middleware.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// RateLimit returns the general per-IP limiter.
func (m *ChiMiddleware) RateLimit() func(http.Handler) http.Handler {
	return m.limiter(m.config.RateLimitRequests, m.config.RateLimitWindow,
		"Too many requests from this IP, please try again later.")
}

// RateLimitTracking returns the per-IP limiter of the tracking routes.
func (m *ChiMiddleware) RateLimitTracking() func(http.Handler) http.Handler {
	return m.limiter(m.config.TrackRateLimitRequests, m.config.TrackRateLimitWindow,
		"Too many tracking requests, please slow down.")
}

func (m *ChiMiddleware) limiter(requests int, window time.Duration, message string) func(http.Handler) http.Handler {
	if m.config.RateLimitDisabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	keyFunc := m.config.RateLimitKeyFunc
	if keyFunc == nil {
		keyFunc = httprate.KeyByIP
	}

	return httprate.Limit(
		requests,
		window,
		httprate.WithKeyFuncs(keyFunc),
		httprate.WithLimitHandler(rateLimitedHandler(message)),
	)
}

// rateLimitedHandler answers a rejected request with the error envelope.
// httprate has already set the X-RateLimit headers.
func rateLimitedHandler(message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondAPIError(w, r, http.StatusTooManyRequests, &models.APIError{
			Code:    ErrCodeRateLimited,
			Message: message,
		})
	}
}

// APISecurityHeaders sets conservative headers on JSON API responses.
func APISecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "no-referrer")
			next.ServeHTTP(w, r)
		})
	}
}
