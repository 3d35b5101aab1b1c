// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

/*
Package cache provides a generic, thread-safe in-memory cache with TTL support.

The recommendation engine uses it to hold per-restaurant score outcomes keyed by
a composite struct (owner, restaurant, preferences version, meal-time bracket).
Invalidation is explicit: callers remove single keys with Delete, a group of
keys with DeleteFunc (for example every entry of one restaurant after a menu
change), or everything with Clear.

# Usage Example

	c := cache.New[string, int](5 * time.Minute)
	defer c.Close()

	c.Set("answer", 42)
	if v, ok := c.Get("answer"); ok {
	    fmt.Println(v)
	}

	removed := c.DeleteFunc(func(k string) bool { return strings.HasPrefix(k, "ans") })

# Thread Safety

All methods are safe for concurrent use. Statistics are tracked under a
separate mutex so readers never block on counter updates.
*/
package cache
