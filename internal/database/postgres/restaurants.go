// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tomtom215/platewise/internal/database"
	"github.com/tomtom215/platewise/internal/database/query"
	"github.com/tomtom215/platewise/internal/models"
)

const restaurantColumns = `id, name, cuisine_type, price_range, address, delivery_radius, specialties,
	profile_views, menu_views, average_rating, rating_count, is_active, updated_at`

func scanRestaurant(row pgx.Row) (models.Restaurant, error) {
	var r models.Restaurant
	err := row.Scan(&r.ID, &r.Name, &r.CuisineType, &r.PriceRange, &r.Address, &r.DeliveryRadius,
		&r.Specialties, &r.ProfileViews, &r.MenuViews, &r.AverageRating, &r.RatingCount, &r.IsActive,
		&r.UpdatedAt)
	if err != nil {
		return models.Restaurant{}, err
	}
	if len(r.CuisineType) == 0 {
		r.CuisineType = nil
	}
	if len(r.Specialties) == 0 {
		r.Specialties = nil
	}
	r.UpdatedAt = r.UpdatedAt.UTC()
	return r, nil
}

func (s *Store) queryRestaurants(ctx context.Context, q string, args ...interface{}) ([]models.Restaurant, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Restaurant
	for rows.Next() {
		r, err := scanRestaurant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan restaurant: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListActiveRestaurants returns every active restaurant ordered by name.
func (s *Store) ListActiveRestaurants(ctx context.Context) (_ []models.Restaurant, err error) {
	defer func(start time.Time) { s.observe("list_restaurants", start, err) }(time.Now())
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	out, err := s.queryRestaurants(ctx,
		`SELECT `+restaurantColumns+` FROM restaurants WHERE is_active ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list active restaurants: %w", err)
	}
	return out, nil
}

// SearchRestaurants returns restaurants matching f ordered by name.
func (s *Store) SearchRestaurants(ctx context.Context, f query.RestaurantFilter) (_ []models.Restaurant, err error) {
	defer func(start time.Time) { s.observe("search_restaurants", start, err) }(time.Now())

	f, err = f.Normalize()
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	wb := query.NewWhereBuilder(query.Dollar)
	if !f.IncludeInactive {
		wb.AddEquals("is_active", true)
	}
	wb.AddIn("price_range", f.PriceRanges)
	wb.AddSince("updated_at", f.UpdatedSince)
	if len(f.Cuisines) > 0 {
		wb.AddClause("cuisine_type && ?::text[]", f.Cuisines)
	}
	where, _ := wb.BuildWithPrefix()
	page, args := wb.Paginate(f.Limit, f.Offset)

	out, err := s.queryRestaurants(ctx,
		`SELECT `+restaurantColumns+` FROM restaurants `+where+` ORDER BY name, id `+page, args...)
	if err != nil {
		return nil, fmt.Errorf("search restaurants: %w", err)
	}
	return out, nil
}

// GetRestaurant returns one restaurant, active or not.
func (s *Store) GetRestaurant(ctx context.Context, id string) (_ *models.Restaurant, err error) {
	defer func(start time.Time) { s.observe("get_restaurant", start, err) }(time.Now())
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	r, err := scanRestaurant(s.pool.QueryRow(ctx,
		`SELECT `+restaurantColumns+` FROM restaurants WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get restaurant %s: %w", id, err)
	}
	return &r, nil
}

// UpsertRestaurant creates or replaces a restaurant's catalog fields.
// Analytics columns are left untouched.
func (s *Store) UpsertRestaurant(ctx context.Context, r models.Restaurant) (_ *models.Restaurant, err error) {
	defer func(start time.Time) { s.observe("upsert_restaurant", start, err) }(time.Now())
	if r.ID == "" {
		return nil, fmt.Errorf("restaurant id is required")
	}

	qctx, cancel := s.ensureContext(ctx)
	defer cancel()
	_, err = s.pool.Exec(qctx, `
		INSERT INTO restaurants (id, name, cuisine_type, price_range, address, delivery_radius,
			specialties, is_active, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			cuisine_type = excluded.cuisine_type,
			price_range = excluded.price_range,
			address = excluded.address,
			delivery_radius = excluded.delivery_radius,
			specialties = excluded.specialties,
			is_active = excluded.is_active,
			updated_at = excluded.updated_at`,
		r.ID, r.Name, tags(r.CuisineType), models.ParsePriceRange(r.PriceRange).String(), r.Address,
		r.DeliveryRadius, tags(r.Specialties), r.IsActive, s.now())
	if err != nil {
		return nil, fmt.Errorf("upsert restaurant %s: %w", r.ID, err)
	}

	s.notify(ctx, models.ChangeRestaurant, r.ID)
	return s.GetRestaurant(ctx, r.ID)
}

// DeleteRestaurant removes a restaurant. Menus and ratings cascade.
func (s *Store) DeleteRestaurant(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { s.observe("delete_restaurant", start, err) }(time.Now())
	qctx, cancel := s.ensureContext(ctx)
	defer cancel()

	tag, err := s.pool.Exec(qctx, `DELETE FROM restaurants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete restaurant %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return database.ErrNotFound
	}

	s.notify(ctx, models.ChangeRestaurant, id)
	return nil
}

// RecordProfileView increments a restaurant's profile view counter.
func (s *Store) RecordProfileView(ctx context.Context, id string) error {
	return s.incrementCounter(ctx, "record_profile_view", "profile_views", id)
}

// RecordMenuView increments a restaurant's menu view counter.
func (s *Store) RecordMenuView(ctx context.Context, id string) error {
	return s.incrementCounter(ctx, "record_menu_view", "menu_views", id)
}

// incrementCounter bumps an analytics column without publishing a change.
func (s *Store) incrementCounter(ctx context.Context, op, column, id string) (err error) {
	defer func(start time.Time) { s.observe(op, start, err) }(time.Now())
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	tag, err := s.pool.Exec(ctx, `UPDATE restaurants SET `+column+` = `+column+` + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s %s: %w", op, id, err)
	}
	if tag.RowsAffected() == 0 {
		return database.ErrNotFound
	}
	return nil
}
