// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

// Package testinfra provides test infrastructure for unit and integration tests.
//
// # Postgres Container
//
// Behind the integration build tag, PostgresContainer starts a real
// PostgreSQL server with testcontainers-go for the Postgres catalog tests:
//
//	func TestCatalog(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    pg, err := testinfra.NewPostgresContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, pg)
//
//	    store, err := postgres.Open(ctx, &config.CatalogConfig{DSN: pg.DSN}, nil, logger)
//	    // ...
//	}
//
// # Mock Scorer Server
//
// MockScorerServer is an httptest server that speaks the external ranking
// protocol. It captures every request and answers with a configurable
// ranking, status code, or custom handler, and needs no build tag.
//
// # CI Considerations
//
// Container tests require Docker and network access on first run. They are
// skipped when Docker is unavailable.
package testinfra
