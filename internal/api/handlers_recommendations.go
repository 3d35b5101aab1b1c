// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/platewise/internal/logging"
	"github.com/tomtom215/platewise/internal/models"
	"github.com/tomtom215/platewise/internal/recommend"
	ws "github.com/tomtom215/platewise/internal/websocket"
)

// limitQuery is the validated ?limit= parameter. Zero selects the default.
type limitQuery struct {
	Limit int `json:"limit" validate:"gte=0,lte=1000"`
}

func (h *Handler) parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	q := limitQuery{Limit: getIntParam(r, "limit", 0)}
	if apiErr := validateRequest(&q); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return 0, false
	}

	cfg := h.engine.Config()
	switch {
	case q.Limit <= 0:
		return cfg.DefaultLimit, true
	case q.Limit > cfg.MaxLimit:
		return cfg.MaxLimit, true
	}
	return q.Limit, true
}

// truncate returns res with at most limit items. Published results are
// shared, so the original is never modified.
func truncate(res *recommend.Result, limit int) *recommend.Result {
	if res == nil || len(res.Items) <= limit {
		return res
	}
	out := *res
	out.Items = res.Items[:limit:limit]
	return &out
}

func (h *Handler) passContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.engine.Config().PassTimeout+5*time.Second)
}

// GetRecommendations handles GET /api/v1/users/{userID}/recommendations.
// It serves the feed's latest published list, running a pass first when
// nothing has been published yet.
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID := pathID(r, "userID")
	if userID == "" {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "Invalid user ID", nil)
		return
	}
	limit, ok := h.parseLimit(w, r)
	if !ok {
		return
	}

	feed := h.feeds.Feed(userID)
	if feed == nil {
		respondError(w, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Recommendations are shutting down", nil)
		return
	}

	res := feed.Latest()
	cached := res != nil
	if res == nil {
		ctx, cancel := h.passContext(r)
		defer cancel()
		var err error
		if res, err = feed.Refresh(ctx); err != nil {
			h.respondPassError(w, err)
			return
		}
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   truncate(res, limit),
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			Cached:      cached,
		},
	})
}

// RefreshRecommendations handles POST /api/v1/users/{userID}/recommendations/refresh.
// The pass bypasses debouncing and its result is published to subscribers.
func (h *Handler) RefreshRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID := pathID(r, "userID")
	if userID == "" {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "Invalid user ID", nil)
		return
	}
	limit, ok := h.parseLimit(w, r)
	if !ok {
		return
	}

	feed := h.feeds.Feed(userID)
	if feed == nil {
		respondError(w, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Recommendations are shutting down", nil)
		return
	}

	ctx, cancel := h.passContext(r)
	defer cancel()
	res, err := feed.Refresh(ctx)
	if err != nil {
		h.respondPassError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, truncate(res, limit), start)
}

// PreviewRecommendations handles POST /api/v1/users/{userID}/recommendations/preview.
// It ranks with the preferences in the body without saving or publishing.
func (h *Handler) PreviewRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID := pathID(r, "userID")
	if userID == "" {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "Invalid user ID", nil)
		return
	}
	limit, ok := h.parseLimit(w, r)
	if !ok {
		return
	}

	var prefs models.Preferences
	if !decodeJSON(w, r, &prefs) {
		return
	}
	if apiErr := validateRequest(&prefs); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}
	prefs.UserID = userID
	prefs.Version = 0

	ctx, cancel := h.passContext(r)
	defer cancel()
	res, err := h.engine.Recommend(ctx, recommend.Request{
		UserID:      userID,
		Limit:       limit,
		Preferences: prefs.Normalized(),
		Trigger:     recommend.TriggerManual,
	})
	if err != nil {
		h.respondPassError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, res, start)
}

func (h *Handler) respondPassError(w http.ResponseWriter, err error) {
	if errors.Is(err, recommend.ErrFeedClosed) {
		respondError(w, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Recommendations are shutting down", nil)
		return
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		respondError(w, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Recommendation pass timed out", err)
		return
	}
	respondError(w, http.StatusInternalServerError, ErrCodeRecommendation, "Failed to generate recommendations", err)
}

// RecommendationsWebSocket handles GET /api/v1/users/{userID}/recommendations/ws.
func (h *Handler) RecommendationsWebSocket(w http.ResponseWriter, r *http.Request) {
	userID := pathID(r, "userID")
	if userID == "" {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "Invalid user ID", nil)
		return
	}
	if h.wsHub == nil {
		respondError(w, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Live updates are not available", nil)
		return
	}

	ctx := logging.ContextWithUserID(r.Context(), userID)
	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		logging.Ctx(ctx).Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	ws.NewClient(h.wsHub, conn, userID).Start()
}
