// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package api

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tomtom215/platewise/internal/config"
	"github.com/tomtom215/platewise/internal/database"
	"github.com/tomtom215/platewise/internal/middleware"
	"github.com/tomtom215/platewise/internal/models"
	"github.com/tomtom215/platewise/internal/preferences"
	"github.com/tomtom215/platewise/internal/recommend"
	ws "github.com/tomtom215/platewise/internal/websocket"
)

// PreferencesStore persists user preferences. *preferences.Store satisfies it.
type PreferencesStore interface {
	GetPreferences(ctx context.Context, userID string) (*models.Preferences, error)
	Save(ctx context.Context, prefs *models.Preferences) (*models.Preferences, error)
	Delete(ctx context.Context, userID string) error
	Ping(ctx context.Context) error
}

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

// Dependencies are the collaborators of a Handler. WSHub is optional; the
// WebSocket route answers 503 without it.
type Dependencies struct {
	Config      *config.Config
	Catalog     database.Catalog
	Preferences PreferencesStore
	Engine      *recommend.Engine
	Feeds       *recommend.Hub
	WSHub       *ws.Hub
	Logger      zerolog.Logger
}

// Handler serves the HTTP API.
type Handler struct {
	config    *config.Config
	catalog   database.Catalog
	prefs     PreferencesStore
	engine    *recommend.Engine
	feeds     *recommend.Hub
	wsHub     *ws.Hub
	perfMon   *middleware.PerformanceMonitor
	logger    zerolog.Logger
	startTime time.Time

	checksMu sync.RWMutex
	checks   map[string]ReadinessCheck
}

// NewHandler validates deps and builds a Handler. The catalog and the
// preferences store are registered as readiness checks.
//
//nolint:gocritic // deps passed by value, copied once at startup
func NewHandler(deps Dependencies) (*Handler, error) {
	switch {
	case deps.Catalog == nil:
		return nil, errors.New("api: catalog is required")
	case deps.Preferences == nil:
		return nil, errors.New("api: preferences store is required")
	case deps.Engine == nil:
		return nil, errors.New("api: recommendation engine is required")
	case deps.Feeds == nil:
		return nil, errors.New("api: feed hub is required")
	}

	logger := deps.Logger.With().Str("component", "api").Logger()
	h := &Handler{
		config:    deps.Config,
		catalog:   deps.Catalog,
		prefs:     deps.Preferences,
		engine:    deps.Engine,
		feeds:     deps.Feeds,
		wsHub:     deps.WSHub,
		perfMon:   middleware.NewPerformanceMonitor(1000, time.Second, logger),
		logger:    logger,
		startTime: time.Now(),
		checks:    make(map[string]ReadinessCheck),
	}
	h.AddReadinessCheck("catalog", deps.Catalog.Ping)
	h.AddReadinessCheck("preferences", deps.Preferences.Ping)
	return h, nil
}

// AddReadinessCheck registers check under name, replacing any previous one.
func (h *Handler) AddReadinessCheck(name string, check ReadinessCheck) {
	h.checksMu.Lock()
	defer h.checksMu.Unlock()
	h.checks[name] = check
}

func (h *Handler) readinessChecks() ([]string, map[string]ReadinessCheck) {
	h.checksMu.RLock()
	defer h.checksMu.RUnlock()
	names := make([]string, 0, len(h.checks))
	checks := make(map[string]ReadinessCheck, len(h.checks))
	for name, check := range h.checks {
		names = append(names, name)
		checks[name] = check
	}
	sort.Strings(names)
	return names, checks
}

// PerformanceMonitor exposes the request statistics collector.
func (h *Handler) PerformanceMonitor() *middleware.PerformanceMonitor {
	return h.perfMon
}

// getUpgrader creates a WebSocket upgrader with origin checking and a
// handshake timeout.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  4096,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin accepts only origins allowed by the CORS settings.
// Browsers always send Origin, so a missing header is rejected.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		h.logger.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}
	if h.config == nil {
		return true
	}
	for _, allowed := range h.config.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	h.logger.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected: origin not allowed")
	return false
}

// respondStoreError maps store errors onto HTTP statuses.
func respondStoreError(w http.ResponseWriter, err error, notFoundMessage string) {
	switch {
	case errors.Is(err, database.ErrNotFound), errors.Is(err, preferences.ErrNotFound):
		respondError(w, http.StatusNotFound, ErrCodeNotFound, notFoundMessage, nil)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		respondError(w, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Request timed out", err)
	default:
		respondError(w, http.StatusInternalServerError, ErrCodeDatabaseError, "Storage operation failed", err)
	}
}
