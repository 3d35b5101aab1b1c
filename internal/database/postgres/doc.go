// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

// Package postgres is the PostgreSQL catalog store.
//
// It exposes the same methods as the embedded DuckDB store in the parent
// database package, so either can back the recommendation engine and the
// HTTP API. Tag sets are native text[] columns and cuisine search uses the
// array overlap operator, backed by a GIN index.
//
// Connections come from a pgxpool.Pool built from the catalog DSN. The
// schema is created and migrated on Open.
package postgres
