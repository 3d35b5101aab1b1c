// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package query

import (
	"reflect"
	"testing"
	"time"
)

func TestWhereBuilder_Empty(t *testing.T) {
	t.Parallel()

	wb := NewWhereBuilder(Question)
	if !wb.IsEmpty() || wb.Count() != 0 {
		t.Error("new builder should be empty")
	}
	whereClause, args := wb.Build()
	if whereClause != "1=1" {
		t.Errorf("Build() = %q, want 1=1", whereClause)
	}
	if len(args) != 0 {
		t.Errorf("len(args) = %d, want 0", len(args))
	}
}

func TestWhereBuilder_Dialects(t *testing.T) {
	t.Parallel()

	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	build := func(style Placeholder) (string, []interface{}) {
		return NewWhereBuilder(style).
			AddEquals("is_active", true).
			AddIn("price_range", []string{"$", "$$"}).
			AddSince("updated_at", &since).
			AddIn("ignored", nil).
			BuildWithPrefix()
	}

	tests := []struct {
		style Placeholder
		want  string
	}{
		{Question, "WHERE is_active = ? AND price_range IN (?, ?) AND updated_at >= ?"},
		{Dollar, "WHERE is_active = $1 AND price_range IN ($2, $3) AND updated_at >= $4"},
	}
	for _, tt := range tests {
		got, args := build(tt.style)
		if got != tt.want {
			t.Errorf("BuildWithPrefix() = %q, want %q", got, tt.want)
		}
		want := []interface{}{true, "$", "$$", since}
		if !reflect.DeepEqual(args, want) {
			t.Errorf("args = %v, want %v", args, want)
		}
	}
}

func TestWhereBuilder_AddAnyOf(t *testing.T) {
	t.Parallel()

	wb := NewWhereBuilder(Dollar)
	wb.AddEquals("a", 1)
	wb.AddAnyOf("? = ANY(cuisine_type)", []interface{}{"thai", "sushi"})
	wb.AddAnyOf("never", nil)

	got, args := wb.Build()
	if want := "a = $1 AND ($2 = ANY(cuisine_type) OR $3 = ANY(cuisine_type))"; got != want {
		t.Errorf("Build() = %q, want %q", got, want)
	}
	if len(args) != 3 || wb.Count() != 2 {
		t.Errorf("args = %v, count = %d, want 3 args and 2 clauses", args, wb.Count())
	}
}

func TestWhereBuilder_Paginate(t *testing.T) {
	t.Parallel()

	wb := NewWhereBuilder(Dollar).AddEquals("is_active", true)
	suffix, args := wb.Paginate(10, 20)
	if suffix != "LIMIT $2 OFFSET $3" {
		t.Errorf("Paginate() = %q, want LIMIT $2 OFFSET $3", suffix)
	}
	if want := []interface{}{true, 10, 20}; !reflect.DeepEqual(args, want) {
		t.Errorf("args = %v, want %v", args, want)
	}

	q := NewWhereBuilder(Question)
	if suffix, _ := q.Paginate(5, 0); suffix != "LIMIT ? OFFSET ?" {
		t.Errorf("Paginate() = %q, want LIMIT ? OFFSET ?", suffix)
	}
}

func TestRestaurantFilter_Normalize(t *testing.T) {
	t.Parallel()

	f, err := RestaurantFilter{
		Cuisines:    []string{" Thai", "thai", ""},
		PriceRanges: []string{"$$", " $ "},
		Limit:       MaxSearchLimit + 1,
		Offset:      -4,
	}.Normalize()
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if !reflect.DeepEqual(f.Cuisines, []string{"thai"}) {
		t.Errorf("Cuisines = %v, want [thai]", f.Cuisines)
	}
	if !reflect.DeepEqual(f.PriceRanges, []string{"$$", "$"}) {
		t.Errorf("PriceRanges = %v, want [$$ $]", f.PriceRanges)
	}
	if f.Limit != MaxSearchLimit || f.Offset != 0 {
		t.Errorf("Limit/Offset = %d/%d, want %d/0", f.Limit, f.Offset, MaxSearchLimit)
	}

	if f, _ := (RestaurantFilter{}).Normalize(); f.Limit != DefaultSearchLimit {
		t.Errorf("default Limit = %d, want %d", f.Limit, DefaultSearchLimit)
	}
	if _, err := (RestaurantFilter{PriceRanges: []string{"cheap"}}).Normalize(); err == nil {
		t.Error("Normalize() with unknown price range should fail")
	}
}
