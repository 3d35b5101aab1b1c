// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package models

import (
	"time"
)

// APIResponse is the envelope for every HTTP response.
//
// Status is "success" or "error". Recommendation states that are not errors
// from the caller's point of view (empty catalog, catalog unavailable) are
// still "success" responses whose payload carries its own status and recovery
// actions.
//
// Example - Success:
//
//	{
//	  "status": "success",
//	  "data": {"status": "ok", "items": [...]},
//	  "metadata": {"timestamp": "2026-01-15T10:30:00Z", "query_time_ms": 12}
//	}
//
// Example - Error:
//
//	{
//	  "status": "error",
//	  "data": null,
//	  "metadata": {"timestamp": "2026-01-15T10:30:00Z"},
//	  "error": {"code": "VALIDATION_ERROR", "message": "price_range must be one of $ $$ $$$ $$$$"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError is a machine-readable error code plus a human-readable message.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
