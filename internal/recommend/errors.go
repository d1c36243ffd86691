// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package recommend

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed input such as a missing user ID.
	ErrValidation = errors.New("validation failed")

	// ErrStoreUnavailable marks a failure of the interaction or similarity store.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrCache marks a cache failure. The engine never surfaces it.
	ErrCache = errors.New("cache error")

	// ErrMissingDependency is returned by NewEngine when a required collaborator is nil.
	ErrMissingDependency = errors.New("missing dependency")
)

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is matches ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// StoreError wraps a backend failure so that it matches ErrStoreUnavailable.
func StoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, errors.Join(ErrStoreUnavailable, err))
}

// CacheError wraps a cache backend failure so that it matches ErrCache.
func CacheError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, errors.Join(ErrCache, err))
}
