// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package recommend

import (
	"math"

	"github.com/tomtom215/platewise/internal/models"
)

// Valid star range for a single rating.
const (
	MinRating = 1
	MaxRating = 5
)

// AggregateRatings computes the average and count of star ratings. Count is
// the number of values given; the stores reject values outside
// MinRating..MaxRating before they get here. The average is rounded half-up
// to one decimal and is nil for an empty input.
//
// Rounding uses integer arithmetic on the sum so that values such as 4.25
// round to 4.3 regardless of float representation.
func AggregateRatings(values []int) models.RatingSnapshot {
	count := len(values)
	sum := 0
	for _, v := range values {
		sum += v
	}
	if count == 0 {
		return models.RatingSnapshot{}
	}

	tenths := sum * 10 / count
	if rem := sum * 10 % count; 2*rem >= count {
		tenths++
	}
	avg := float64(tenths) / 10
	return models.RatingSnapshot{Average: &avg, Count: count}
}

// RoundRating rounds an already computed average half-up to one decimal.
func RoundRating(avg float64) float64 {
	return math.Floor(avg*10+0.5) / 10
}
