// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package database

import (
	"context"

	"github.com/tomtom215/platewise/internal/database/query"
	"github.com/tomtom215/platewise/internal/models"
)

// Catalog is the restaurant store behind the API and the recommendation
// engine. Both the DuckDB and the Postgres stores implement it.
type Catalog interface {
	ListActiveRestaurants(ctx context.Context) ([]models.Restaurant, error)
	ListActiveMenus(ctx context.Context) ([]models.Menu, error)
	SearchRestaurants(ctx context.Context, f query.RestaurantFilter) ([]models.Restaurant, error)
	GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error)
	UpsertRestaurant(ctx context.Context, r models.Restaurant) (*models.Restaurant, error)
	DeleteRestaurant(ctx context.Context, id string) error
	RecordProfileView(ctx context.Context, id string) error
	RecordMenuView(ctx context.Context, id string) error

	GetMenu(ctx context.Context, id string) (*models.Menu, error)
	UpsertMenu(ctx context.Context, m models.Menu) (*models.Menu, error)
	DeleteMenu(ctx context.Context, id string) error

	ListRatings(ctx context.Context, restaurantID string) ([]int, error)
	ListReviews(ctx context.Context, restaurantID string, limit int) ([]models.Rating, error)
	AddRating(ctx context.Context, r models.Rating) (models.RatingSnapshot, error)

	GetRecordCounts(ctx context.Context) (RecordCounts, error)
	SeedDemoData(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
	Close() error
}

var _ Catalog = (*DB)(nil)
