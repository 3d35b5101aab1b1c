// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package database

import (
	"context"
	"fmt"

	"github.com/tomtom215/platewise/internal/models"
)

// DemoEntry bundles one seeded restaurant with its menus and star ratings.
type DemoEntry struct {
	Restaurant models.Restaurant
	Menus      []models.Menu
	Ratings    []int
}

func radius(km float64) *float64 { return &km }

// DemoCatalog returns the small catalog loaded by the demo seeders.
func DemoCatalog() []DemoEntry {
	return []DemoEntry{
		{
			Restaurant: models.Restaurant{
				ID: "demo-sakura", Name: "Sakura Sushi Bar", CuisineType: []string{"japanese", "sushi"},
				PriceRange: "$$$", Address: "12 Harbor St", DeliveryRadius: radius(5),
				Specialties: []string{"omakase", "dinner"}, IsActive: true,
			},
			Menus: []models.Menu{
				{ID: "demo-sakura-dinner", RestaurantID: "demo-sakura", Name: "Dinner", CuisineType: "japanese",
					DietaryRestrictions: []string{"gluten-free"}, Allergens: []string{"fish", "soy"}, IsActive: true},
			},
			Ratings: []int{5, 4, 5},
		},
		{
			Restaurant: models.Restaurant{
				ID: "demo-trattoria", Name: "Trattoria Nonna", CuisineType: []string{"italian"},
				PriceRange: "$$", Address: "48 Olive Ave", DeliveryRadius: radius(8),
				Specialties: []string{"handmade pasta", "lunch"}, IsActive: true,
			},
			Menus: []models.Menu{
				{ID: "demo-trattoria-main", RestaurantID: "demo-trattoria", Name: "Main", CuisineType: "italian",
					DietaryRestrictions: []string{"vegetarian"}, Allergens: []string{"gluten", "dairy"}, IsActive: true},
			},
			Ratings: []int{4, 4, 3, 5},
		},
		{
			Restaurant: models.Restaurant{
				ID: "demo-baan", Name: "Baan Thai Kitchen", CuisineType: []string{"thai"},
				PriceRange: "$", Address: "7 Market Ln", DeliveryRadius: radius(3),
				Specialties: []string{"late-night", "street food"}, IsActive: true,
			},
			Menus: []models.Menu{
				{ID: "demo-baan-all-day", RestaurantID: "demo-baan", Name: "All Day", CuisineType: "thai",
					DietaryRestrictions: []string{"vegan", "vegetarian"}, Allergens: []string{"peanuts", "shellfish"}, IsActive: true},
			},
			Ratings: []int{4, 5},
		},
		{
			Restaurant: models.Restaurant{
				ID: "demo-greenleaf", Name: "Greenleaf Cafe", CuisineType: []string{"cafe", "vegan"},
				PriceRange: "$$", Address: "201 Park Rd", DeliveryRadius: radius(4),
				Specialties: []string{"breakfast", "smoothies"}, IsActive: true,
			},
			Menus: []models.Menu{
				{ID: "demo-greenleaf-brunch", RestaurantID: "demo-greenleaf", Name: "Brunch", CuisineType: "cafe",
					DietaryRestrictions: []string{"vegan", "gluten-free"}, Allergens: []string{"tree nuts"}, IsActive: true},
			},
		},
		{
			Restaurant: models.Restaurant{
				ID: "demo-ember", Name: "Ember Steakhouse", CuisineType: []string{"american", "steakhouse"},
				PriceRange: "$$$$", Address: "1 Summit Plaza",
				Specialties: []string{"dinner", "dry-aged beef"}, IsActive: true,
			},
			Menus: []models.Menu{
				{ID: "demo-ember-dinner", RestaurantID: "demo-ember", Name: "Dinner", CuisineType: "american",
					Allergens: []string{"dairy"}, IsActive: true},
			},
			Ratings: []int{5, 5, 4, 4, 5},
		},
		{
			Restaurant: models.Restaurant{
				ID: "demo-taqueria", Name: "Taqueria del Sol", CuisineType: []string{"mexican"},
				PriceRange: "$", Address: "90 Sunset Blvd", DeliveryRadius: radius(6),
				Specialties: []string{"tacos", "lunch", "snack"}, IsActive: true,
			},
			Menus: []models.Menu{
				{ID: "demo-taqueria-main", RestaurantID: "demo-taqueria", Name: "Main", CuisineType: "mexican",
					DietaryRestrictions: []string{"gluten-free"}, Allergens: []string{"dairy"}, IsActive: true},
			},
			Ratings: []int{3, 4},
		},
	}
}

// SeedDemoData loads DemoCatalog when the catalog has no restaurants.
// It returns the number of restaurants inserted.
func (db *DB) SeedDemoData(ctx context.Context) (int, error) {
	counts, err := db.GetRecordCounts(ctx)
	if err != nil {
		return 0, err
	}
	if counts.Restaurants > 0 {
		db.logger.Debug().Int64("restaurants", counts.Restaurants).Msg("Catalog not empty, skipping demo seed")
		return 0, nil
	}

	db.logger.Info().Msg("Seeding catalog with demo data")
	seeded := 0
	for _, demo := range DemoCatalog() {
		if _, err := db.UpsertRestaurant(ctx, demo.Restaurant); err != nil {
			return seeded, fmt.Errorf("seed restaurant %s: %w", demo.Restaurant.ID, err)
		}
		for _, m := range demo.Menus {
			if _, err := db.UpsertMenu(ctx, m); err != nil {
				return seeded, fmt.Errorf("seed menu %s: %w", m.ID, err)
			}
		}
		for _, v := range demo.Ratings {
			v := v
			if _, err := db.AddRating(ctx, models.Rating{RestaurantID: demo.Restaurant.ID, Rating: &v}); err != nil {
				return seeded, fmt.Errorf("seed rating for %s: %w", demo.Restaurant.ID, err)
			}
		}
		seeded++
	}
	return seeded, nil
}
