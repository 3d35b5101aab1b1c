// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/platewise/internal/database/query"
	"github.com/tomtom215/platewise/internal/models"
)

const restaurantColumns = `id, name, cuisine_type, price_range, address, delivery_radius, specialties,
	profile_views, menu_views, average_rating, rating_count, is_active, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRestaurant(row rowScanner) (models.Restaurant, error) {
	var (
		r                   models.Restaurant
		cuisines, specialty string
		radius, avg         sql.NullFloat64
	)
	if err := row.Scan(&r.ID, &r.Name, &cuisines, &r.PriceRange, &r.Address, &radius, &specialty,
		&r.ProfileViews, &r.MenuViews, &avg, &r.RatingCount, &r.IsActive, &r.UpdatedAt); err != nil {
		return models.Restaurant{}, err
	}

	var err error
	if r.CuisineType, err = decodeTags(cuisines); err != nil {
		return models.Restaurant{}, err
	}
	if r.Specialties, err = decodeTags(specialty); err != nil {
		return models.Restaurant{}, err
	}
	if radius.Valid {
		v := radius.Float64
		r.DeliveryRadius = &v
	}
	if avg.Valid {
		v := avg.Float64
		r.AverageRating = &v
	}
	return r, nil
}

func (db *DB) queryRestaurants(ctx context.Context, q string, args ...interface{}) ([]models.Restaurant, error) {
	rows, err := db.conn.QueryContext(ctx, q, args...)
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
func (db *DB) ListActiveRestaurants(ctx context.Context) (_ []models.Restaurant, err error) {
	defer func(start time.Time) { db.observe("list_restaurants", start, err) }(time.Now())
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	out, err := db.queryRestaurants(ctx,
		`SELECT `+restaurantColumns+` FROM restaurants WHERE is_active ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list active restaurants: %w", err)
	}
	return out, nil
}

// SearchRestaurants returns restaurants matching f ordered by name.
func (db *DB) SearchRestaurants(ctx context.Context, f query.RestaurantFilter) (_ []models.Restaurant, err error) {
	defer func(start time.Time) { db.observe("search_restaurants", start, err) }(time.Now())

	f, err = f.Normalize()
	if err != nil {
		return nil, err
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	wb := query.NewWhereBuilder(query.Question)
	if !f.IncludeInactive {
		wb.AddEquals("is_active", true)
	}
	wb.AddIn("price_range", f.PriceRanges)
	wb.AddSince("updated_at", f.UpdatedSince)
	if len(f.Cuisines) > 0 {
		patterns := make([]interface{}, len(f.Cuisines))
		for i, c := range f.Cuisines {
			patterns[i] = `%"` + c + `"%`
		}
		wb.AddAnyOf("lower(cuisine_type) LIKE ?", patterns)
	}
	where, _ := wb.BuildWithPrefix()
	page, args := wb.Paginate(f.Limit, f.Offset)

	out, err := db.queryRestaurants(ctx,
		`SELECT `+restaurantColumns+` FROM restaurants `+where+` ORDER BY name, id `+page, args...)
	if err != nil {
		return nil, fmt.Errorf("search restaurants: %w", err)
	}
	return out, nil
}

// GetRestaurant returns one restaurant, active or not.
func (db *DB) GetRestaurant(ctx context.Context, id string) (_ *models.Restaurant, err error) {
	defer func(start time.Time) { db.observe("get_restaurant", start, err) }(time.Now())
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	r, err := scanRestaurant(db.conn.QueryRowContext(ctx,
		`SELECT `+restaurantColumns+` FROM restaurants WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get restaurant %s: %w", id, err)
	}
	return &r, nil
}

// UpsertRestaurant creates or replaces a restaurant's catalog fields. Tags
// are normalized; analytics columns are left untouched.
func (db *DB) UpsertRestaurant(ctx context.Context, r models.Restaurant) (_ *models.Restaurant, err error) {
	defer func(start time.Time) { db.observe("upsert_restaurant", start, err) }(time.Now())
	if r.ID == "" {
		return nil, fmt.Errorf("restaurant id is required")
	}

	cuisines, err := encodeTags(models.NormalizeTags(r.CuisineType))
	if err != nil {
		return nil, err
	}
	specialties, err := encodeTags(models.NormalizeTags(r.Specialties))
	if err != nil {
		return nil, err
	}
	var radius interface{}
	if r.DeliveryRadius != nil {
		radius = *r.DeliveryRadius
	}

	qctx, cancel := db.ensureContext(ctx)
	defer cancel()
	err = db.withTx(qctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(qctx, `
			INSERT INTO restaurants (id, name, cuisine_type, price_range, address, delivery_radius,
				specialties, is_active, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				name = excluded.name,
				cuisine_type = excluded.cuisine_type,
				price_range = excluded.price_range,
				address = excluded.address,
				delivery_radius = excluded.delivery_radius,
				specialties = excluded.specialties,
				is_active = excluded.is_active,
				updated_at = excluded.updated_at`,
			r.ID, r.Name, cuisines, models.ParsePriceRange(r.PriceRange).String(), r.Address, radius,
			specialties, r.IsActive, db.now())
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("upsert restaurant %s: %w", r.ID, err)
	}

	db.notify(ctx, models.ChangeRestaurant, r.ID)
	return db.GetRestaurant(ctx, r.ID)
}

// DeleteRestaurant removes a restaurant with its menus and ratings.
func (db *DB) DeleteRestaurant(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { db.observe("delete_restaurant", start, err) }(time.Now())

	qctx, cancel := db.ensureContext(ctx)
	defer cancel()
	err = db.withTx(qctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(qctx, `DELETE FROM restaurants WHERE id = ?`, id)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return ErrNotFound
		}
		if _, err := tx.ExecContext(qctx, `DELETE FROM menus WHERE restaurant_id = ?`, id); err != nil {
			return fmt.Errorf("delete menus: %w", err)
		}
		if _, err := tx.ExecContext(qctx, `DELETE FROM ratings WHERE restaurant_id = ?`, id); err != nil {
			return fmt.Errorf("delete ratings: %w", err)
		}
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete restaurant %s: %w", id, err)
	}

	db.notify(ctx, models.ChangeRestaurant, id)
	return nil
}

// RecordProfileView increments a restaurant's profile view counter.
func (db *DB) RecordProfileView(ctx context.Context, id string) error {
	return db.incrementCounter(ctx, "record_profile_view", "profile_views", id)
}

// RecordMenuView increments a restaurant's menu view counter.
func (db *DB) RecordMenuView(ctx context.Context, id string) error {
	return db.incrementCounter(ctx, "record_menu_view", "menu_views", id)
}

// incrementCounter bumps an analytics column. View counters do not affect
// scoring, so no change event is published.
func (db *DB) incrementCounter(ctx context.Context, op, column, id string) (err error) {
	defer func(start time.Time) { db.observe(op, start, err) }(time.Now())
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	err = db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE restaurants SET `+column+` = `+column+` + 1 WHERE id = ?`, id)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return ErrNotFound
		}
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("%s %s: %w", op, id, err)
	}
	return nil
}
