// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/platewise/internal/config"
	"github.com/tomtom215/platewise/internal/database"
	"github.com/tomtom215/platewise/internal/database/postgres"
)

// openCatalog opens the configured catalog driver and seeds demo data when
// requested.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func openCatalog(ctx context.Context, cfg *config.CatalogConfig, notifier database.ChangeNotifier, logger zerolog.Logger) (database.Catalog, error) {
	var (
		catalog database.Catalog
		err     error
	)
	switch cfg.Driver {
	case config.CatalogDriverPostgres:
		catalog, err = postgres.Open(ctx, cfg, notifier, logger)
	case config.CatalogDriverDuckDB, "":
		catalog, err = database.New(cfg, notifier, logger)
	default:
		return nil, fmt.Errorf("unknown catalog driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s catalog: %w", cfg.Driver, err)
	}

	if cfg.SeedDemoData {
		n, err := catalog.SeedDemoData(ctx)
		if err != nil {
			_ = catalog.Close()
			return nil, fmt.Errorf("seed demo data: %w", err)
		}
		logger.Info().Int("restaurants", n).Msg("Demo catalog seeded")
	}
	return catalog, nil
}
