// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package recommend

import (
	"sync"
	"testing"
)

func TestAggregateRatings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		values    []int
		wantAvg   *float64
		wantCount int
	}{
		{"typical", []int{4, 5, 4, 3}, floatPtr(4.0), 4},
		{"empty", nil, nil, 0},
		{"single", []int{5}, floatPtr(5.0), 1},
		{"repeating decimal", []int{4, 4, 5}, floatPtr(4.3), 3},
		{"half rounds up", []int{4, 4, 4, 5}, floatPtr(4.3), 4},
		{"exact half", []int{1, 2}, floatPtr(1.5), 2},
		{"below half rounds down", []int{1, 1, 2}, floatPtr(1.3), 3},
		{"count is input length", []int{5, 5, 4, 4, 3}, floatPtr(4.2), 5},
		{"empty slice", []int{}, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := AggregateRatings(tt.values)
			if got.Count != tt.wantCount {
				t.Errorf("Count = %d, want %d", got.Count, tt.wantCount)
			}
			switch {
			case tt.wantAvg == nil && got.Average != nil:
				t.Errorf("Average = %v, want nil", *got.Average)
			case tt.wantAvg != nil && got.Average == nil:
				t.Errorf("Average = nil, want %v", *tt.wantAvg)
			case tt.wantAvg != nil && *got.Average != *tt.wantAvg:
				t.Errorf("Average = %v, want %v", *got.Average, *tt.wantAvg)
			}
		})
	}
}

func TestAggregateRatings_Idempotent(t *testing.T) {
	t.Parallel()

	values := []int{5, 3, 4, 4, 2, 5}
	want := AggregateRatings(values)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := AggregateRatings(values)
			if got.Count != want.Count || *got.Average != *want.Average {
				t.Errorf("AggregateRatings() = %v/%d, want %v/%d", *got.Average, got.Count, *want.Average, want.Count)
			}
		}()
	}
	wg.Wait()
}

func TestRoundRating(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want float64
	}{
		{4.25, 4.3},
		{4.249, 4.2},
		{3.96, 4.0},
		{0, 0},
	}
	for _, tt := range tests {
		if got := RoundRating(tt.in); got != tt.want {
			t.Errorf("RoundRating(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
