// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

// Package database provides the DuckDB-backed restaurant catalog.
//
// # Overview
//
// The catalog holds three tables: restaurants, menus and ratings. The
// recommendation engine reads complete snapshots of active restaurants and
// menus plus per-restaurant star ratings; the HTTP API maintains the catalog
// through the write methods.
//
// # Files
//
//   - database.go: lifecycle (open, pool configuration, close)
//   - database_schema.go: table creation
//   - migrations.go: versioned migrations tracked in schema_migrations
//   - crud_restaurants.go, crud_menus.go, crud_ratings.go: catalog access
//   - seed.go: optional demo catalog
//
// # Tag Columns
//
// Tag sets (cuisine types, specialties, dietary restrictions, allergens) are
// stored as JSON arrays in VARCHAR columns, which keeps the schema free of
// extension types and lets cuisine search use a LIKE on the quoted tag.
//
// # Change Notification
//
// Every successful write publishes a ChangeEvent through the optional
// ChangeNotifier after the transaction commits. A publish failure is logged
// and does not fail the write.
//
// # Thread Safety
//
// DB is safe for concurrent use. Writes that lose a DuckDB transaction
// conflict are retried a bounded number of times.
package database
