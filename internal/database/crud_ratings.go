// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/platewise/internal/models"
	"github.com/tomtom215/platewise/internal/recommend"
)

// ListRatings returns the non-null star ratings of one restaurant.
func (db *DB) ListRatings(ctx context.Context, restaurantID string) (_ []int, err error) {
	defer func(start time.Time) { db.observe("list_ratings", start, err) }(time.Now())
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	values, err := listRatingValues(ctx, db.conn, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("list ratings for %s: %w", restaurantID, err)
	}
	return values, nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func listRatingValues(ctx context.Context, q queryer, restaurantID string) ([]int, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT rating FROM ratings WHERE restaurant_id = ? AND rating IS NOT NULL`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// ListReviews returns a restaurant's reviews, newest first.
func (db *DB) ListReviews(ctx context.Context, restaurantID string, limit int) (_ []models.Rating, err error) {
	defer func(start time.Time) { db.observe("list_reviews", start, err) }(time.Now())
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if limit <= 0 {
		limit = 50
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, restaurant_id, user_id, rating, comment, created_at
		FROM ratings WHERE restaurant_id = ?
		ORDER BY created_at DESC, id
		LIMIT ?`, restaurantID, limit)
	if err != nil {
		return nil, fmt.Errorf("list reviews for %s: %w", restaurantID, err)
	}
	defer rows.Close()

	var out []models.Rating
	for rows.Next() {
		var (
			r     models.Rating
			value sql.NullInt64
		)
		if err := rows.Scan(&r.ID, &r.RestaurantID, &r.UserID, &value, &r.Comment, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		if value.Valid {
			v := int(value.Int64)
			r.Rating = &v
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reviews for %s: %w", restaurantID, err)
	}
	return out, nil
}

// AddRating stores a review and refreshes the restaurant's average_rating
// and rating_count in the same transaction. The returned snapshot reflects
// the review just added.
func (db *DB) AddRating(ctx context.Context, r models.Rating) (_ models.RatingSnapshot, err error) {
	defer func(start time.Time) { db.observe("add_rating", start, err) }(time.Now())
	if r.RestaurantID == "" {
		return models.RatingSnapshot{}, fmt.Errorf("restaurant id is required")
	}
	if r.Rating != nil && (*r.Rating < recommend.MinRating || *r.Rating > recommend.MaxRating) {
		return models.RatingSnapshot{}, fmt.Errorf("rating %d out of range %d-%d",
			*r.Rating, recommend.MinRating, recommend.MaxRating)
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}

	var value interface{}
	if r.Rating != nil {
		value = *r.Rating
	}

	var snapshot models.RatingSnapshot
	qctx, cancel := db.ensureContext(ctx)
	defer cancel()
	err = db.withTx(qctx, func(tx *sql.Tx) error {
		var exists bool
		if err := tx.QueryRowContext(qctx,
			`SELECT EXISTS (SELECT 1 FROM restaurants WHERE id = ?)`, r.RestaurantID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("restaurant %s: %w", r.RestaurantID, ErrNotFound)
		}

		if _, err := tx.ExecContext(qctx, `
			INSERT INTO ratings (id, restaurant_id, user_id, rating, comment, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			r.ID, r.RestaurantID, r.UserID, value, r.Comment, db.now()); err != nil {
			return fmt.Errorf("insert rating: %w", err)
		}

		values, err := listRatingValues(qctx, tx, r.RestaurantID)
		if err != nil {
			return fmt.Errorf("aggregate ratings: %w", err)
		}
		snapshot = recommend.AggregateRatings(values)

		var avg interface{}
		if snapshot.Average != nil {
			avg = *snapshot.Average
		}
		_, err = tx.ExecContext(qctx,
			`UPDATE restaurants SET average_rating = ?, rating_count = ? WHERE id = ?`,
			avg, snapshot.Count, r.RestaurantID)
		return err
	})
	if err != nil {
		return models.RatingSnapshot{}, fmt.Errorf("add rating for %s: %w", r.RestaurantID, err)
	}

	db.notify(ctx, models.ChangeRating, r.RestaurantID)
	return snapshot, nil
}
