// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package models

import "strings"

// NormalizeTag lowercases a tag and collapses internal whitespace.
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.Join(strings.Fields(tag), " "))
}

// NormalizeTags normalizes every tag, dropping empties and duplicates.
// First-seen order is kept.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}

	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		n := NormalizeTag(t)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// TagSet builds a lookup set from already-normalized or raw tags.
func TagSet(tags ...[]string) map[string]struct{} {
	n := 0
	for _, group := range tags {
		n += len(group)
	}

	set := make(map[string]struct{}, n)
	for _, group := range tags {
		for _, t := range group {
			if norm := NormalizeTag(t); norm != "" {
				set[norm] = struct{}{}
			}
		}
	}
	return set
}
