// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

// Package validation validates API request bodies with go-playground/validator v10.
//
// A single validator instance is built once and shared. Field names in error
// messages are the JSON names clients send, not Go field names.
//
// # Custom Tags
//
//   - pricerange: "$" through "$$$$"; empty strings need omitempty
//   - mealtime: breakfast, lunch, dinner, or snack (case-insensitive)
//   - tag: a non-blank tag of at most 64 characters
//
// # Usage
//
//	if verr := validation.ValidateStruct(&restaurant); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
//	    return
//	}
package validation
