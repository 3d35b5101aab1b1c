// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package models

import (
	"time"
)

// Restaurant is a catalog entry as seen by the recommendation engine.
// CuisineType keeps its stored order but is matched as a set.
type Restaurant struct {
	ID             string    `json:"id" validate:"required,max=64"`
	Name           string    `json:"name" validate:"required,max=200"`
	CuisineType    []string  `json:"cuisine_type" validate:"max=16,dive,max=64"`
	PriceRange     string    `json:"price_range,omitempty" validate:"omitempty,pricerange"`
	Address        string    `json:"address,omitempty" validate:"max=500"`
	DeliveryRadius *float64  `json:"delivery_radius,omitempty" validate:"omitempty,gte=0,lte=500"`
	Specialties    []string  `json:"specialties,omitempty" validate:"max=32,dive,max=64"`
	ProfileViews   int64     `json:"profile_views"`
	MenuViews      int64     `json:"menu_views"`
	AverageRating  *float64  `json:"average_rating"`
	RatingCount    int       `json:"rating_count"`
	IsActive       bool      `json:"is_active"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Menu belongs to exactly one restaurant.
type Menu struct {
	ID                  string    `json:"id" validate:"required,max=64"`
	RestaurantID        string    `json:"restaurant_id" validate:"required,max=64"`
	Name                string    `json:"name" validate:"max=200"`
	CuisineType         string    `json:"cuisine_type" validate:"max=64"`
	DietaryRestrictions []string  `json:"dietary_restrictions" validate:"max=32,dive,max=64"`
	Allergens           []string  `json:"allergens" validate:"max=32,dive,max=64"`
	IsActive            bool      `json:"is_active"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Rating is one review row. Rating is nil for comment-only reviews.
type Rating struct {
	ID           string    `json:"id"`
	RestaurantID string    `json:"restaurant_id"`
	UserID       string    `json:"user_id,omitempty"`
	Rating       *int      `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Comment      string    `json:"comment,omitempty" validate:"max=2000"`
	CreatedAt    time.Time `json:"created_at"`
}

// RatingSnapshot is the aggregated rating of one restaurant.
// Average is nil when Count is zero so "unrated" never reads as "rated zero".
type RatingSnapshot struct {
	Average *float64 `json:"average"`
	Count   int      `json:"count"`
}
