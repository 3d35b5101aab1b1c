// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package models

import (
	"time"

	"github.com/google/uuid"
)

// ChangeKind identifies what kind of data a ChangeEvent refers to.
type ChangeKind string

// Change kinds.
const (
	ChangeRestaurant  ChangeKind = "restaurant.changed"
	ChangeMenu        ChangeKind = "menu.changed"
	ChangeRating      ChangeKind = "rating.changed"
	ChangePreferences ChangeKind = "preferences.changed"
)

// Valid reports whether k is a known kind.
func (k ChangeKind) Valid() bool {
	switch k {
	case ChangeRestaurant, ChangeMenu, ChangeRating, ChangePreferences:
		return true
	default:
		return false
	}
}

// IsCatalog reports whether k affects restaurant, menu, or rating data.
func (k ChangeKind) IsCatalog() bool {
	return k == ChangeRestaurant || k == ChangeMenu || k == ChangeRating
}

// ChangeEvent notifies subscribers that data used for scoring has changed.
// RestaurantID is empty when the change is not tied to one restaurant, which
// consumers treat as "everything may have changed".
type ChangeEvent struct {
	ID           string     `json:"id"`
	Kind         ChangeKind `json:"kind"`
	RestaurantID string     `json:"restaurant_id,omitempty"`
	UserID       string     `json:"user_id,omitempty"`
	OccurredAt   time.Time  `json:"occurred_at"`
}

// NewChangeEvent builds an event with a fresh ID stamped with the current time.
func NewChangeEvent(kind ChangeKind, restaurantID, userID string) ChangeEvent {
	return ChangeEvent{
		ID:           uuid.NewString(),
		Kind:         kind,
		RestaurantID: restaurantID,
		UserID:       userID,
		OccurredAt:   time.Now().UTC(),
	}
}
