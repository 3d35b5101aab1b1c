// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/platewise/internal/models"
)

// GetPreferences handles GET /api/v1/users/{userID}/preferences.
func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID := pathID(r, "userID")
	if userID == "" {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "Invalid user ID", nil)
		return
	}

	prefs, err := h.prefs.GetPreferences(r.Context(), userID)
	if err != nil {
		respondStoreError(w, err, "Preferences not found")
		return
	}
	if prefs == nil {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "Preferences not found", nil)
		return
	}
	respondSuccess(w, http.StatusOK, prefs, start)
}

// PutPreferences handles PUT /api/v1/users/{userID}/preferences. The stored
// copy is normalized and versioned; saving announces a preferences change
// that re-ranks the user's feed.
func (h *Handler) PutPreferences(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID := pathID(r, "userID")
	if userID == "" {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "Invalid user ID", nil)
		return
	}

	var prefs models.Preferences
	if !decodeJSON(w, r, &prefs) {
		return
	}
	if prefs.UserID != "" && prefs.UserID != userID {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "user_id does not match the URL", nil)
		return
	}
	if apiErr := validateRequest(&prefs); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}
	prefs.UserID = userID

	saved, err := h.prefs.Save(r.Context(), &prefs)
	if err != nil {
		respondStoreError(w, err, "Preferences not found")
		return
	}
	respondSuccess(w, http.StatusOK, saved, start)
}

// DeletePreferences handles DELETE /api/v1/users/{userID}/preferences.
func (h *Handler) DeletePreferences(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID := pathID(r, "userID")
	if userID == "" {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "Invalid user ID", nil)
		return
	}

	if err := h.prefs.Delete(r.Context(), userID); err != nil {
		respondStoreError(w, err, "Preferences not found")
		return
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{"user_id": userID, "deleted": true}, start)
}
