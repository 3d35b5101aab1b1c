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
	"github.com/tomtom215/platewise/internal/models"
)

const menuColumns = `id, restaurant_id, name, cuisine_type, dietary_restrictions, allergens, is_active, updated_at`

func scanMenu(row pgx.Row) (models.Menu, error) {
	var m models.Menu
	if err := row.Scan(&m.ID, &m.RestaurantID, &m.Name, &m.CuisineType, &m.DietaryRestrictions,
		&m.Allergens, &m.IsActive, &m.UpdatedAt); err != nil {
		return models.Menu{}, err
	}
	if len(m.DietaryRestrictions) == 0 {
		m.DietaryRestrictions = nil
	}
	if len(m.Allergens) == 0 {
		m.Allergens = nil
	}
	m.UpdatedAt = m.UpdatedAt.UTC()
	return m, nil
}

// ListActiveMenus returns every active menu of every restaurant.
func (s *Store) ListActiveMenus(ctx context.Context) (_ []models.Menu, err error) {
	defer func(start time.Time) { s.observe("list_menus", start, err) }(time.Now())
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT `+menuColumns+` FROM menus WHERE is_active ORDER BY restaurant_id, id`)
	if err != nil {
		return nil, fmt.Errorf("list active menus: %w", err)
	}
	defer rows.Close()

	var out []models.Menu
	for rows.Next() {
		m, err := scanMenu(rows)
		if err != nil {
			return nil, fmt.Errorf("scan menu: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list active menus: %w", err)
	}
	return out, nil
}

// GetMenu returns one menu, active or not.
func (s *Store) GetMenu(ctx context.Context, id string) (_ *models.Menu, err error) {
	defer func(start time.Time) { s.observe("get_menu", start, err) }(time.Now())
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	m, err := scanMenu(s.pool.QueryRow(ctx, `SELECT `+menuColumns+` FROM menus WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get menu %s: %w", id, err)
	}
	return &m, nil
}

// UpsertMenu creates or replaces a menu. The owning restaurant must exist.
// Moving a menu to another restaurant announces both restaurants.
func (s *Store) UpsertMenu(ctx context.Context, m models.Menu) (_ *models.Menu, err error) {
	defer func(start time.Time) { s.observe("upsert_menu", start, err) }(time.Now())
	if m.ID == "" || m.RestaurantID == "" {
		return nil, fmt.Errorf("menu id and restaurant id are required")
	}

	var previousOwner string
	qctx, cancel := s.ensureContext(ctx)
	defer cancel()
	err = s.withTx(qctx, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(qctx,
			`SELECT EXISTS (SELECT 1 FROM restaurants WHERE id = $1)`, m.RestaurantID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("restaurant %s: %w", m.RestaurantID, database.ErrNotFound)
		}

		previousOwner = ""
		err := tx.QueryRow(qctx,
			`SELECT restaurant_id FROM menus WHERE id = $1 FOR UPDATE`, m.ID).Scan(&previousOwner)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return err
		}

		_, err = tx.Exec(qctx, `
			INSERT INTO menus (id, restaurant_id, name, cuisine_type, dietary_restrictions, allergens,
				is_active, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO UPDATE SET
				restaurant_id = excluded.restaurant_id,
				name = excluded.name,
				cuisine_type = excluded.cuisine_type,
				dietary_restrictions = excluded.dietary_restrictions,
				allergens = excluded.allergens,
				is_active = excluded.is_active,
				updated_at = excluded.updated_at`,
			m.ID, m.RestaurantID, m.Name, models.NormalizeTag(m.CuisineType), tags(m.DietaryRestrictions),
			tags(m.Allergens), m.IsActive, s.now())
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("upsert menu %s: %w", m.ID, err)
	}

	s.notify(ctx, models.ChangeMenu, m.RestaurantID)
	if previousOwner != "" && previousOwner != m.RestaurantID {
		s.notify(ctx, models.ChangeMenu, previousOwner)
	}
	return s.GetMenu(ctx, m.ID)
}

// DeleteMenu removes a menu.
func (s *Store) DeleteMenu(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { s.observe("delete_menu", start, err) }(time.Now())
	qctx, cancel := s.ensureContext(ctx)
	defer cancel()

	var owner string
	err = s.pool.QueryRow(qctx, `DELETE FROM menus WHERE id = $1 RETURNING restaurant_id`, id).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return database.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete menu %s: %w", id, err)
	}

	s.notify(ctx, models.ChangeMenu, owner)
	return nil
}
