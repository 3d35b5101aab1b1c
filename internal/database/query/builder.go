// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Placeholder selects how bind parameters are written.
type Placeholder int

const (
	// Question writes "?" for every parameter (DuckDB).
	Question Placeholder = iota
	// Dollar writes "$1", "$2", ... (PostgreSQL).
	Dollar
)

// WhereBuilder constructs SQL WHERE clauses with parameterized arguments.
// Clauses always use "?" and are rewritten for the builder's dialect, so
// they must not contain a literal question mark.
type WhereBuilder struct {
	style   Placeholder
	clauses []string
	args    []interface{}
}

// NewWhereBuilder creates a builder for the given placeholder style.
func NewWhereBuilder(style Placeholder) *WhereBuilder {
	return &WhereBuilder{
		style:   style,
		clauses: []string{},
		args:    []interface{}{},
	}
}

// AddClause adds a raw condition with its arguments.
func (wb *WhereBuilder) AddClause(clause string, args ...interface{}) *WhereBuilder {
	wb.clauses = append(wb.clauses, clause)
	wb.args = append(wb.args, args...)
	return wb
}

// AddEquals adds "column = ?".
func (wb *WhereBuilder) AddEquals(column string, value interface{}) *WhereBuilder {
	return wb.AddClause(column+" = ?", value)
}

// AddIn adds "column IN (?, ...)". An empty slice is skipped.
func (wb *WhereBuilder) AddIn(column string, values []string) *WhereBuilder {
	if len(values) == 0 {
		return wb
	}
	placeholders := make([]string, len(values))
	for i, v := range values {
		placeholders[i] = "?"
		wb.args = append(wb.args, v)
	}
	wb.clauses = append(wb.clauses, fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ", ")))
	return wb
}

// AddSince adds "column >= ?" when since is non-nil.
func (wb *WhereBuilder) AddSince(column string, since *time.Time) *WhereBuilder {
	if since == nil {
		return wb
	}
	return wb.AddClause(column+" >= ?", *since)
}

// AddAnyOf adds one condition per value, joined with OR and grouped.
// format must contain a single "?".
func (wb *WhereBuilder) AddAnyOf(format string, values []interface{}) *WhereBuilder {
	if len(values) == 0 {
		return wb
	}
	parts := make([]string, len(values))
	for i := range values {
		parts[i] = format
	}
	wb.clauses = append(wb.clauses, "("+strings.Join(parts, " OR ")+")")
	wb.args = append(wb.args, values...)
	return wb
}

// Build joins clauses with AND and returns them with their arguments.
// Returns ("1=1", []) if no clauses were added.
func (wb *WhereBuilder) Build() (string, []interface{}) {
	if len(wb.clauses) == 0 {
		return "1=1", []interface{}{}
	}
	return wb.rebind(strings.Join(wb.clauses, " AND "), 0), wb.args
}

// BuildWithPrefix returns the clause with a "WHERE " prefix.
func (wb *WhereBuilder) BuildWithPrefix() (string, []interface{}) {
	whereClause, args := wb.Build()
	return "WHERE " + whereClause, args
}

// Paginate appends LIMIT and OFFSET parameters after the WHERE arguments and
// returns the suffix to place at the end of the query.
func (wb *WhereBuilder) Paginate(limit, offset int) (string, []interface{}) {
	args := append(append([]interface{}{}, wb.args...), limit, offset)
	return wb.rebind("LIMIT ? OFFSET ?", len(wb.args)), args
}

// Count returns the number of clauses added to the builder.
func (wb *WhereBuilder) Count() int {
	return len(wb.clauses)
}

// IsEmpty returns true if no clauses have been added.
func (wb *WhereBuilder) IsEmpty() bool {
	return len(wb.clauses) == 0
}

// rebind numbers "?" placeholders starting after offset for Dollar style.
func (wb *WhereBuilder) rebind(sql string, offset int) string {
	if wb.style != Dollar {
		return sql
	}
	var b strings.Builder
	b.Grow(len(sql) + 8)
	n := offset
	for i := 0; i < len(sql); i++ {
		if sql[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(sql[i])
	}
	return b.String()
}
