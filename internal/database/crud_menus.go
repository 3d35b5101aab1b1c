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

	"github.com/tomtom215/platewise/internal/models"
)

const menuColumns = `id, restaurant_id, name, cuisine_type, dietary_restrictions, allergens, is_active, updated_at`

func scanMenu(row rowScanner) (models.Menu, error) {
	var (
		m                  models.Menu
		dietary, allergens string
	)
	if err := row.Scan(&m.ID, &m.RestaurantID, &m.Name, &m.CuisineType, &dietary, &allergens,
		&m.IsActive, &m.UpdatedAt); err != nil {
		return models.Menu{}, err
	}

	var err error
	if m.DietaryRestrictions, err = decodeTags(dietary); err != nil {
		return models.Menu{}, err
	}
	if m.Allergens, err = decodeTags(allergens); err != nil {
		return models.Menu{}, err
	}
	return m, nil
}

// ListActiveMenus returns every active menu of every restaurant.
func (db *DB) ListActiveMenus(ctx context.Context) (_ []models.Menu, err error) {
	defer func(start time.Time) { db.observe("list_menus", start, err) }(time.Now())
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
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
func (db *DB) GetMenu(ctx context.Context, id string) (_ *models.Menu, err error) {
	defer func(start time.Time) { db.observe("get_menu", start, err) }(time.Now())
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	m, err := scanMenu(db.conn.QueryRowContext(ctx, `SELECT `+menuColumns+` FROM menus WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get menu %s: %w", id, err)
	}
	return &m, nil
}

// UpsertMenu creates or replaces a menu. The owning restaurant must exist.
// Moving a menu to another restaurant announces both restaurants.
func (db *DB) UpsertMenu(ctx context.Context, m models.Menu) (_ *models.Menu, err error) {
	defer func(start time.Time) { db.observe("upsert_menu", start, err) }(time.Now())
	if m.ID == "" || m.RestaurantID == "" {
		return nil, fmt.Errorf("menu id and restaurant id are required")
	}

	dietary, err := encodeTags(models.NormalizeTags(m.DietaryRestrictions))
	if err != nil {
		return nil, err
	}
	allergens, err := encodeTags(models.NormalizeTags(m.Allergens))
	if err != nil {
		return nil, err
	}

	var previousOwner string
	qctx, cancel := db.ensureContext(ctx)
	defer cancel()
	err = db.withTx(qctx, func(tx *sql.Tx) error {
		var exists bool
		if err := tx.QueryRowContext(qctx,
			`SELECT EXISTS (SELECT 1 FROM restaurants WHERE id = ?)`, m.RestaurantID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("restaurant %s: %w", m.RestaurantID, ErrNotFound)
		}

		previousOwner = ""
		err := tx.QueryRowContext(qctx, `SELECT restaurant_id FROM menus WHERE id = ?`, m.ID).Scan(&previousOwner)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		_, err = tx.ExecContext(qctx, `
			INSERT INTO menus (id, restaurant_id, name, cuisine_type, dietary_restrictions, allergens,
				is_active, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				restaurant_id = excluded.restaurant_id,
				name = excluded.name,
				cuisine_type = excluded.cuisine_type,
				dietary_restrictions = excluded.dietary_restrictions,
				allergens = excluded.allergens,
				is_active = excluded.is_active,
				updated_at = excluded.updated_at`,
			m.ID, m.RestaurantID, m.Name, models.NormalizeTag(m.CuisineType), dietary, allergens,
			m.IsActive, db.now())
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("upsert menu %s: %w", m.ID, err)
	}

	db.notify(ctx, models.ChangeMenu, m.RestaurantID)
	if previousOwner != "" && previousOwner != m.RestaurantID {
		db.notify(ctx, models.ChangeMenu, previousOwner)
	}
	return db.GetMenu(ctx, m.ID)
}

// DeleteMenu removes a menu.
func (db *DB) DeleteMenu(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { db.observe("delete_menu", start, err) }(time.Now())

	var owner string
	qctx, cancel := db.ensureContext(ctx)
	defer cancel()
	err = db.withTx(qctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(qctx, `SELECT restaurant_id FROM menus WHERE id = ?`, id).Scan(&owner)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(qctx, `DELETE FROM menus WHERE id = ?`, id)
		return err
	})
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete menu %s: %w", id, err)
	}

	db.notify(ctx, models.ChangeMenu, owner)
	return nil
}
