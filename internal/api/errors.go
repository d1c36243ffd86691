// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/recsengine/internal/recommend"
)

// Error codes used in the APIError envelope.
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeInvalidBody      = "INVALID_BODY"
	ErrCodeStoreUnavailable = "STORE_UNAVAILABLE"
	ErrCodeRateLimited      = "RATE_LIMIT_EXCEEDED"
	ErrCodePublishFailed    = "EVENT_PUBLISH_FAILED"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

// classifyError maps an engine error to a status code, an error code and a
// message safe to show to clients.
func classifyError(err error) (status int, code, message string) {
	switch {
	case errors.Is(err, recommend.ErrValidation):
		return http.StatusBadRequest, ErrCodeValidation, validationMessage(err)
	case errors.Is(err, recommend.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, ErrCodeStoreUnavailable, "Interaction store unavailable"
	default:
		return http.StatusInternalServerError, ErrCodeInternal, "Internal server error"
	}
}

// validationMessage prefers the field-level message of a ValidationError.
func validationMessage(err error) string {
	var ve *recommend.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	return err.Error()
}
