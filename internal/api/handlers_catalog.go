// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/platewise/internal/database"
	"github.com/tomtom215/platewise/internal/database/query"
	"github.com/tomtom215/platewise/internal/logging"
	"github.com/tomtom215/platewise/internal/models"
)

const (
	defaultReviewLimit = 20
	maxReviewLimit     = 100
)

// searchQuery is the validated restaurant search query string.
type searchQuery struct {
	Cuisines     []string `json:"cuisine" validate:"max=16,dive,tag"`
	PriceRanges  []string `json:"price" validate:"max=4,dive,pricerange"`
	UpdatedSince string   `json:"updated_since" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Limit        int      `json:"limit" validate:"gte=0,lte=500"`
	Offset       int      `json:"offset" validate:"gte=0"`
}

// SearchRestaurants handles GET /api/v1/restaurants.
//
// Query parameters: cuisine and price (comma separated, any match),
// include_inactive, updated_since (RFC 3339), limit, offset.
func (h *Handler) SearchRestaurants(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := r.URL.Query()
	sq := searchQuery{
		Cuisines:     parseCommaSeparated(q.Get("cuisine")),
		PriceRanges:  parseCommaSeparated(q.Get("price")),
		UpdatedSince: q.Get("updated_since"),
		Limit:        getIntParam(r, "limit", 0),
		Offset:       getIntParam(r, "offset", 0),
	}
	if apiErr := validateRequest(&sq); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	filter := query.RestaurantFilter{
		Cuisines:        sq.Cuisines,
		PriceRanges:     sq.PriceRanges,
		IncludeInactive: q.Get("include_inactive") == "true",
		Limit:           sq.Limit,
		Offset:          sq.Offset,
	}
	if sq.UpdatedSince != "" {
		since, err := time.Parse(time.RFC3339, sq.UpdatedSince)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "updated_since must be RFC 3339", nil)
			return
		}
		filter.UpdatedSince = &since
	}

	restaurants, err := h.catalog.SearchRestaurants(r.Context(), filter)
	if err != nil {
		respondStoreError(w, err, "Restaurant not found")
		return
	}
	if restaurants == nil {
		restaurants = []models.Restaurant{}
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"restaurants": restaurants,
		"count":       len(restaurants),
	}, start)
}

// GetRestaurant handles GET /api/v1/restaurants/{restaurantID} and counts a
// profile view.
func (h *Handler) GetRestaurant(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := pathID(r, "restaurantID")
	if id == "" {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "Invalid restaurant ID", nil)
		return
	}

	restaurant, err := h.catalog.GetRestaurant(r.Context(), id)
	if err != nil {
		respondStoreError(w, err, "Restaurant not found")
		return
	}
	if err := h.catalog.RecordProfileView(r.Context(), id); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Str("restaurant_id", id).Msg("failed to record profile view")
	}
	respondSuccess(w, http.StatusOK, restaurant, start)
}

// PutRestaurant handles PUT /api/v1/restaurants/{restaurantID}.
func (h *Handler) PutRestaurant(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := pathID(r, "restaurantID")
	if id == "" {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "Invalid restaurant ID", nil)
		return
	}

	var restaurant models.Restaurant
	if !decodeJSON(w, r, &restaurant) {
		return
	}
	if restaurant.ID != "" && restaurant.ID != id {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "id does not match the URL", nil)
		return
	}
	restaurant.ID = id
	if apiErr := validateRequest(&restaurant); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	saved, err := h.catalog.UpsertRestaurant(r.Context(), restaurant)
	if err != nil {
		respondStoreError(w, err, "Restaurant not found")
		return
	}
	respondSuccess(w, http.StatusOK, saved, start)
}

// DeleteRestaurant handles DELETE /api/v1/restaurants/{restaurantID}.
// Menus and ratings are removed with the restaurant.
func (h *Handler) DeleteRestaurant(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := pathID(r, "restaurantID")
	if id == "" {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "Invalid restaurant ID", nil)
		return
	}

	if err := h.catalog.DeleteRestaurant(r.Context(), id); err != nil {
		respondStoreError(w, err, "Restaurant not found")
		return
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{"id": id, "deleted": true}, start)
}

// GetRatingSnapshot handles GET /api/v1/restaurants/{restaurantID}/rating.
// A restaurant without ratings reports a null average and a zero count.
func (h *Handler) GetRatingSnapshot(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := pathID(r, "restaurantID")
	if id == "" {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "Invalid restaurant ID", nil)
		return
	}

	snapshot, err := h.engine.RatingSnapshot(r.Context(), id)
	if err != nil {
		respondStoreError(w, err, "Restaurant not found")
		return
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"restaurant_id": id,
		"rating":        snapshot,
	}, start)
}

// ListReviews handles GET /api/v1/restaurants/{restaurantID}/ratings.
func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := pathID(r, "restaurantID")
	if id == "" {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "Invalid restaurant ID", nil)
		return
	}

	limit := getIntParam(r, "limit", defaultReviewLimit)
	if limit <= 0 || limit > maxReviewLimit {
		limit = defaultReviewLimit
	}

	reviews, err := h.catalog.ListReviews(r.Context(), id, limit)
	if err != nil {
		respondStoreError(w, err, "Restaurant not found")
		return
	}
	if reviews == nil {
		reviews = []models.Rating{}
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"ratings": reviews,
		"count":   len(reviews),
	}, start)
}

// ratingRequest is the body of POST .../ratings. Rating may be omitted for
// a comment-only review, which does not affect the average.
type ratingRequest struct {
	UserID  string `json:"user_id" validate:"max=64"`
	Rating  *int   `json:"rating" validate:"omitempty,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

// AddRating handles POST /api/v1/restaurants/{restaurantID}/ratings and
// returns the refreshed rating snapshot.
func (h *Handler) AddRating(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := pathID(r, "restaurantID")
	if id == "" {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "Invalid restaurant ID", nil)
		return
	}

	var req ratingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	snapshot, err := h.catalog.AddRating(r.Context(), models.Rating{
		RestaurantID: id,
		UserID:       req.UserID,
		Rating:       req.Rating,
		Comment:      req.Comment,
	})
	if err != nil {
		respondStoreError(w, err, "Restaurant not found")
		return
	}
	respondSuccess(w, http.StatusCreated, map[string]interface{}{
		"restaurant_id": id,
		"rating":        snapshot,
	}, start)
}

// GetMenu handles GET /api/v1/menus/{menuID} and counts a menu view on the
// owning restaurant.
func (h *Handler) GetMenu(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := pathID(r, "menuID")
	if id == "" {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "Invalid menu ID", nil)
		return
	}

	menu, err := h.catalog.GetMenu(r.Context(), id)
	if err != nil {
		respondStoreError(w, err, "Menu not found")
		return
	}
	if err := h.catalog.RecordMenuView(r.Context(), menu.RestaurantID); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Str("menu_id", id).Msg("failed to record menu view")
	}
	respondSuccess(w, http.StatusOK, menu, start)
}

// PutMenu handles PUT /api/v1/menus/{menuID}. The owning restaurant must exist.
func (h *Handler) PutMenu(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := pathID(r, "menuID")
	if id == "" {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "Invalid menu ID", nil)
		return
	}

	var menu models.Menu
	if !decodeJSON(w, r, &menu) {
		return
	}
	if menu.ID != "" && menu.ID != id {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "id does not match the URL", nil)
		return
	}
	menu.ID = id
	if apiErr := validateRequest(&menu); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	saved, err := h.catalog.UpsertMenu(r.Context(), menu)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusUnprocessableEntity, ErrCodeNotFound, "Owning restaurant does not exist", nil)
			return
		}
		respondStoreError(w, err, "Menu not found")
		return
	}
	respondSuccess(w, http.StatusOK, saved, start)
}

// DeleteMenu handles DELETE /api/v1/menus/{menuID}.
func (h *Handler) DeleteMenu(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := pathID(r, "menuID")
	if id == "" {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "Invalid menu ID", nil)
		return
	}

	if err := h.catalog.DeleteMenu(r.Context(), id); err != nil {
		respondStoreError(w, err, "Menu not found")
		return
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{"id": id, "deleted": true}, start)
}
