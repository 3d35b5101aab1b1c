// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

var tableCreationQueries = []string{
	`CREATE TABLE IF NOT EXISTS restaurants (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		cuisine_type TEXT[] NOT NULL DEFAULT '{}',
		price_range TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		delivery_radius DOUBLE PRECISION,
		specialties TEXT[] NOT NULL DEFAULT '{}',
		profile_views BIGINT NOT NULL DEFAULT 0,
		menu_views BIGINT NOT NULL DEFAULT 0,
		average_rating DOUBLE PRECISION,
		rating_count INTEGER NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS menus (
		id TEXT PRIMARY KEY,
		restaurant_id TEXT NOT NULL REFERENCES restaurants(id) ON DELETE CASCADE,
		name TEXT NOT NULL DEFAULT '',
		cuisine_type TEXT NOT NULL DEFAULT '',
		dietary_restrictions TEXT[] NOT NULL DEFAULT '{}',
		allergens TEXT[] NOT NULL DEFAULT '{}',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ratings (
		id TEXT PRIMARY KEY,
		restaurant_id TEXT NOT NULL REFERENCES restaurants(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL DEFAULT '',
		rating INTEGER CHECK (rating BETWEEN 1 AND 5),
		comment TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		description TEXT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

type migration struct {
	version     int
	description string
	sql         string
}

var migrations = []migration{
	{1, "index menus by restaurant", `CREATE INDEX IF NOT EXISTS idx_menus_restaurant ON menus (restaurant_id)`},
	{2, "index ratings by restaurant", `CREATE INDEX IF NOT EXISTS idx_ratings_restaurant ON ratings (restaurant_id, created_at DESC)`},
	{3, "gin index on cuisine tags", `CREATE INDEX IF NOT EXISTS idx_restaurants_cuisine ON restaurants USING GIN (cuisine_type)`},
}

// migrate creates the tables and applies pending migrations, each in its
// own transaction.
func (s *Store) migrate(ctx context.Context) error {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	for _, q := range tableCreationQueries {
		if _, err := s.pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	for _, m := range migrations {
		err := s.withTx(ctx, func(tx pgx.Tx) error {
			var applied bool
			if err := tx.QueryRow(ctx,
				`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, m.version).Scan(&applied); err != nil {
				return err
			}
			if applied {
				return nil
			}
			if _, err := tx.Exec(ctx, m.sql); err != nil {
				return err
			}
			_, err := tx.Exec(ctx,
				`INSERT INTO schema_migrations (version, description) VALUES ($1, $2)`, m.version, m.description)
			if err == nil {
				s.logger.Info().Int("version", m.version).Str("description", m.description).Msg("Applied migration")
			}
			return err
		})
		if err != nil {
			return fmt.Errorf("migration %d: %w", m.version, err)
		}
	}
	return nil
}

// SchemaVersion returns the highest applied migration version.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	var v int
	err := s.pool.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&v)
	return v, err
}
