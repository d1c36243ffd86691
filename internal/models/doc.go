// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

/*
Package models defines the HTTP request and response structures.

  - APIResponse, APIError and Metadata: the envelope every endpoint returns
  - *Request and *Query types: decoded bodies and query parameters, carrying
    go-playground/validator tags checked by internal/validation
  - *Response types: endpoint payloads placed in APIResponse.Data

Engine types (recommend.Interaction, recommend.Recommendation) are embedded
directly so that the JSON field names match the tracking API.
*/
package models
