// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tomtom215/platewise/internal/database"
	"github.com/tomtom215/platewise/internal/models"
	"github.com/tomtom215/platewise/internal/recommend"
)

type querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

func listRatingValues(ctx context.Context, q querier, restaurantID string) ([]int, error) {
	rows, err := q.Query(ctx,
		`SELECT rating FROM ratings WHERE restaurant_id = $1 AND rating IS NOT NULL`, restaurantID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int])
}

// ListRatings returns the non-null star ratings of one restaurant.
func (s *Store) ListRatings(ctx context.Context, restaurantID string) (_ []int, err error) {
	defer func(start time.Time) { s.observe("list_ratings", start, err) }(time.Now())
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	values, err := listRatingValues(ctx, s.pool, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("list ratings for %s: %w", restaurantID, err)
	}
	return values, nil
}

// ListReviews returns a restaurant's reviews, newest first.
func (s *Store) ListReviews(ctx context.Context, restaurantID string, limit int) (_ []models.Rating, err error) {
	defer func(start time.Time) { s.observe("list_reviews", start, err) }(time.Now())
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, restaurant_id, user_id, rating, comment, created_at
		FROM ratings WHERE restaurant_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2`, restaurantID, limit)
	if err != nil {
		return nil, fmt.Errorf("list reviews for %s: %w", restaurantID, err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Rating, error) {
		var r models.Rating
		err := row.Scan(&r.ID, &r.RestaurantID, &r.UserID, &r.Rating, &r.Comment, &r.CreatedAt)
		r.CreatedAt = r.CreatedAt.UTC()
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("list reviews for %s: %w", restaurantID, err)
	}
	return out, nil
}

// AddRating stores a review and refreshes the restaurant's average_rating
// and rating_count in the same transaction. The restaurant row is locked so
// concurrent reviews aggregate in order.
func (s *Store) AddRating(ctx context.Context, r models.Rating) (_ models.RatingSnapshot, err error) {
	defer func(start time.Time) { s.observe("add_rating", start, err) }(time.Now())
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

	var snapshot models.RatingSnapshot
	qctx, cancel := s.ensureContext(ctx)
	defer cancel()
	err = s.withTx(qctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(qctx, `SELECT 1 FROM restaurants WHERE id = $1 FOR UPDATE`, r.RestaurantID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("restaurant %s: %w", r.RestaurantID, database.ErrNotFound)
		}

		if _, err := tx.Exec(qctx, `
			INSERT INTO ratings (id, restaurant_id, user_id, rating, comment, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			r.ID, r.RestaurantID, r.UserID, r.Rating, r.Comment, s.now()); err != nil {
			return fmt.Errorf("insert rating: %w", err)
		}

		values, err := listRatingValues(qctx, tx, r.RestaurantID)
		if err != nil {
			return fmt.Errorf("aggregate ratings: %w", err)
		}
		snapshot = recommend.AggregateRatings(values)

		_, err = tx.Exec(qctx,
			`UPDATE restaurants SET average_rating = $1, rating_count = $2 WHERE id = $3`,
			snapshot.Average, snapshot.Count, r.RestaurantID)
		return err
	})
	if err != nil {
		return models.RatingSnapshot{}, fmt.Errorf("add rating for %s: %w", r.RestaurantID, err)
	}

	s.notify(ctx, models.ChangeRating, r.RestaurantID)
	return snapshot, nil
}
