// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package models

import (
	"github.com/tomtom215/recsengine/internal/recommend"
)

// Request bounds shared by query and body validation.
const (
	MaxLimit     = 100
	MaxDays      = 365
	MaxBatchSize = 1000
)

// TrackRequest is the body of POST /track.
type TrackRequest struct {
	UserID          string                        `json:"userId" validate:"required,max=128,excludes=:"`
	ProductID       string                        `json:"productId" validate:"required,max=128"`
	InteractionType recommend.InteractionType     `json:"interactionType" validate:"required,interaction_type"`
	Metadata        recommend.InteractionMetadata `json:"metadata"`
	DeviceInfo      recommend.DeviceInfo          `json:"deviceInfo"`
	Context         recommend.InteractionContext  `json:"context"`
}

// Interaction converts the request to an engine interaction.
func (r *TrackRequest) Interaction() recommend.Interaction {
	return recommend.Interaction{
		UserID:     r.UserID,
		ProductID:  r.ProductID,
		Type:       r.InteractionType,
		Metadata:   r.Metadata,
		DeviceInfo: r.DeviceInfo,
		Context:    r.Context,
	}
}

// BatchTrackRequest is the body of POST /track/batch. Items are validated
// one by one by the engine so that one bad item does not reject the batch.
type BatchTrackRequest struct {
	Interactions []recommend.Interaction `json:"interactions" validate:"required,min=1,max=1000"`
}

// SessionRequest is the body of POST /session.
type SessionRequest struct {
	SessionProducts []string `json:"sessionProducts" validate:"max=100,dive,required"`
	Limit           int      `json:"limit" validate:"omitempty,min=1,max=100"`
}

// SimilarityRequest is the optional body of POST /similarities/{productId}.
type SimilarityRequest struct {
	ProductID   string                `json:"productId" validate:"required,max=128"`
	ProductData recommend.ProductData `json:"productData"`
}

// PersonalizedQuery holds the query parameters of GET /user/{userId}.
type PersonalizedQuery struct {
	UserID    string   `json:"userId" validate:"required,max=128"`
	Limit     int      `json:"limit" validate:"omitempty,min=1,max=100"`
	Algorithm string   `json:"algorithm" validate:"omitempty,max=32"`
	Exclude   []string `json:"exclude" validate:"max=100"`
	Category  string   `json:"category" validate:"omitempty,max=128"`
}

// ProductQuery holds the parameters of the per-product endpoints.
type ProductQuery struct {
	ProductID string `json:"productId" validate:"required,max=128"`
	Limit     int    `json:"limit" validate:"omitempty,min=1,max=100"`
}

// WindowQuery holds the parameters of the popular and stats endpoints.
type WindowQuery struct {
	Limit int `json:"limit" validate:"omitempty,min=1,max=100"`
	Days  int `json:"days" validate:"omitempty,min=1,max=365"`
}

// HistoryQuery holds the parameters of GET /history/{userId}.
type HistoryQuery struct {
	UserID          string                    `json:"userId" validate:"required,max=128"`
	Limit           int                       `json:"limit" validate:"omitempty,min=1,max=500"`
	InteractionType recommend.InteractionType `json:"interactionType" validate:"omitempty,interaction_type"`
}

// RecommendationsResponse is the data of every recommendation listing.
type RecommendationsResponse struct {
	Count           int                        `json:"count"`
	Algorithm       string                     `json:"algorithm,omitempty"`
	ProductID       string                     `json:"productId,omitempty"`
	Period          string                     `json:"period,omitempty"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
}

// TrackResponse is the data of a successful POST /track.
type TrackResponse struct {
	Message     string                `json:"message"`
	Interaction recommend.Interaction `json:"interaction"`
}

// HistoryResponse is the data of GET /history/{userId}.
type HistoryResponse struct {
	UserID  string                  `json:"userId"`
	Count   int                     `json:"count"`
	History []recommend.Interaction `json:"history"`
}

// SimilarityResponse is the data of POST /similarities/{productId}.
type SimilarityResponse struct {
	ProductID string `json:"productId"`
	Queued    bool   `json:"queued"`
	Message   string `json:"message"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string            `json:"status"` // healthy, degraded or unhealthy
	Service   string            `json:"service"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}
