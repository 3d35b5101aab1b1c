// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

// Package query provides SQL query building utilities for the catalog stores.
//
// The WhereBuilder constructs parameterized WHERE clauses for either
// placeholder dialect in use: DuckDB's "?" and PostgreSQL's "$n".
// Clauses are written with "?" and numbered at Build time, so the same
// filter code serves both stores:
//
//	wb := query.NewWhereBuilder(query.Dollar)
//	wb.AddEquals("is_active", true)
//	wb.AddIn("price_range", []string{"$", "$$"})
//	where, args := wb.BuildWithPrefix()
//	// where: "WHERE is_active = $1 AND price_range IN ($2, $3)"
//
// RestaurantFilter carries the catalog search parameters accepted by the
// HTTP API; each store translates it into clauses for its column types.
package query
