// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

/*
database_schema.go - Catalog Schema

Tables:
  - restaurants: catalog entries plus the analytics columns maintained by the
    store (profile_views, menu_views, average_rating, rating_count)
  - menus: one row per menu, owned by exactly one restaurant
  - ratings: review rows; rating is NULL for comment-only reviews

DuckDB foreign keys cannot cascade, so ownership is enforced by the write
methods: DeleteRestaurant removes a restaurant's menus and ratings in the
same transaction, and menu and rating writes check the restaurant exists.

Timestamps use plain TIMESTAMP (UTC) so that no ICU extension is needed.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the catalog tables.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, q := range tableCreationQueries {
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

var tableCreationQueries = []string{
	`CREATE TABLE IF NOT EXISTS restaurants (
		id VARCHAR PRIMARY KEY,
		name VARCHAR NOT NULL,
		cuisine_type VARCHAR NOT NULL DEFAULT '[]',
		price_range VARCHAR NOT NULL DEFAULT '',
		address VARCHAR NOT NULL DEFAULT '',
		delivery_radius DOUBLE,
		specialties VARCHAR NOT NULL DEFAULT '[]',
		profile_views BIGINT NOT NULL DEFAULT 0,
		menu_views BIGINT NOT NULL DEFAULT 0,
		average_rating DOUBLE,
		rating_count INTEGER NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		updated_at TIMESTAMP NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS menus (
		id VARCHAR PRIMARY KEY,
		restaurant_id VARCHAR NOT NULL,
		name VARCHAR NOT NULL DEFAULT '',
		cuisine_type VARCHAR NOT NULL DEFAULT '',
		dietary_restrictions VARCHAR NOT NULL DEFAULT '[]',
		allergens VARCHAR NOT NULL DEFAULT '[]',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		updated_at TIMESTAMP NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS ratings (
		id VARCHAR PRIMARY KEY,
		restaurant_id VARCHAR NOT NULL,
		user_id VARCHAR NOT NULL DEFAULT '',
		rating INTEGER,
		comment VARCHAR NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	);`,
}
