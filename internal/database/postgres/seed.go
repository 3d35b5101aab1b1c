// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package postgres

import (
	"context"
	"fmt"

	"github.com/tomtom215/platewise/internal/database"
	"github.com/tomtom215/platewise/internal/models"
)

// SeedDemoData loads the demo catalog when no restaurants exist and returns
// the number of restaurants inserted.
func (s *Store) SeedDemoData(ctx context.Context) (int, error) {
	counts, err := s.GetRecordCounts(ctx)
	if err != nil {
		return 0, err
	}
	if counts.Restaurants > 0 {
		s.logger.Debug().Int64("restaurants", counts.Restaurants).Msg("Catalog not empty, skipping demo seed")
		return 0, nil
	}

	s.logger.Info().Msg("Seeding catalog with demo data")
	seeded := 0
	for _, demo := range database.DemoCatalog() {
		if _, err := s.UpsertRestaurant(ctx, demo.Restaurant); err != nil {
			return seeded, fmt.Errorf("seed restaurant %s: %w", demo.Restaurant.ID, err)
		}
		for _, m := range demo.Menus {
			if _, err := s.UpsertMenu(ctx, m); err != nil {
				return seeded, fmt.Errorf("seed menu %s: %w", m.ID, err)
			}
		}
		for _, v := range demo.Ratings {
			v := v
			if _, err := s.AddRating(ctx, models.Rating{RestaurantID: demo.Restaurant.ID, Rating: &v}); err != nil {
				return seeded, fmt.Errorf("seed rating for %s: %w", demo.Restaurant.ID, err)
			}
		}
		seeded++
	}
	return seeded, nil
}
