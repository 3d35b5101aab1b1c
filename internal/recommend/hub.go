// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package recommend

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/platewise/internal/metrics"
	"github.com/tomtom215/platewise/internal/models"
)

// Hub owns one Feed per active user and routes change events to them.
type Hub struct {
	engine *Engine
	window time.Duration
	limit  int
	base   zerolog.Logger
	logger zerolog.Logger

	mu     sync.Mutex
	feeds  map[string]*Feed
	closed bool
}

// NewHub creates a hub whose feeds run passes on engine. Feeds request the
// engine's maximum limit so callers can cut the list down per request.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHub(engine *Engine, logger zerolog.Logger) *Hub {
	cfg := engine.Config()
	return &Hub{
		engine: engine,
		window: cfg.DebounceWindow,
		limit:  cfg.MaxLimit,
		base:   logger,
		logger: logger.With().Str("component", "feed_hub").Logger(),
		feeds:  make(map[string]*Feed),
	}
}

// Feed returns the user's feed, creating it and scheduling an initial pass
// when it does not exist yet. It returns nil after Close.
func (h *Hub) Feed(userID string) *Feed {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}

	if f, ok := h.feeds[userID]; ok {
		return f
	}

	f := NewFeed(userID, h.engine, h.window, h.limit, h.base)
	h.feeds[userID] = f
	metrics.SetActiveFeeds(len(h.feeds))
	f.Trigger(TriggerInitial)
	return f
}

// Lookup returns an existing feed without creating one.
func (h *Hub) Lookup(userID string) (*Feed, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	f, ok := h.feeds[userID]
	return f, ok
}

// HandleChange invalidates cached scores for ev and triggers the affected
// feeds: a preference change triggers its owner, a catalog change triggers
// every feed. It returns the number of feeds triggered.
//
//nolint:gocritic // hugeParam: event passed by value
func (h *Hub) HandleChange(ev models.ChangeEvent) int {
	h.engine.Invalidate(ev)

	var targets []*Feed
	reason := TriggerCatalog

	h.mu.Lock()
	switch {
	case ev.Kind == models.ChangePreferences:
		reason = TriggerPreferences
		if f, ok := h.feeds[ev.UserID]; ok {
			targets = append(targets, f)
		}
	case ev.Kind.IsCatalog():
		targets = make([]*Feed, 0, len(h.feeds))
		for _, f := range h.feeds {
			targets = append(targets, f)
		}
	}
	h.mu.Unlock()

	for _, f := range targets {
		f.Trigger(reason)
	}

	if len(targets) > 0 {
		h.logger.Debug().
			Str("kind", string(ev.Kind)).
			Int("feeds", len(targets)).
			Msg("change routed to feeds")
	}
	return len(targets)
}

// Prune closes feeds with no subscribers that have not been accessed for
// idle. It returns the number of feeds removed.
func (h *Hub) Prune(idle time.Duration) int {
	cutoff := time.Now().Add(-idle)

	var stale []*Feed
	h.mu.Lock()
	for id, f := range h.feeds {
		if f.Listeners() == 0 && f.LastAccess().Before(cutoff) {
			stale = append(stale, f)
			delete(h.feeds, id)
		}
	}
	metrics.SetActiveFeeds(len(h.feeds))
	h.mu.Unlock()

	for _, f := range stale {
		f.Close()
	}
	if len(stale) > 0 {
		h.logger.Debug().Int("pruned", len(stale)).Msg("pruned idle feeds")
	}
	return len(stale)
}

// Len returns the number of live feeds.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.feeds)
}

// Close closes every feed. Feed returns nil afterwards.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	feeds := h.feeds
	h.feeds = make(map[string]*Feed)
	metrics.SetActiveFeeds(0)
	h.mu.Unlock()

	for _, f := range feeds {
		f.Close()
	}
}
