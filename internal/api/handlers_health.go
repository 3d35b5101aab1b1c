// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/platewise/internal/middleware"
	"github.com/tomtom215/platewise/internal/models"
	"github.com/tomtom215/platewise/internal/recommend"
)

const readinessTimeout = 3 * time.Second

// HealthLive handles GET /health/live. It answers 200 while the process
// runs, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"alive":  true,
			"uptime": time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthReady handles GET /health/ready. It answers 503 when any readiness
// check fails.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	names, checks := h.readinessChecks()
	results := make(map[string]string, len(names))
	ready := true
	for _, name := range names {
		if err := checks[name](ctx); err != nil {
			ready = false
			results[name] = err.Error()
			h.logger.Warn().Err(err).Str("check", name).Msg("readiness check failed")
			continue
		}
		results[name] = "ok"
	}

	statusCode := http.StatusOK
	status := "ready"
	if !ready {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	respondJSON(w, statusCode, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"status": status,
			"checks": results,
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// ServiceStats is the body of GET /api/v1/stats.
type ServiceStats struct {
	Engine      recommend.Stats            `json:"engine"`
	ActiveFeeds int                        `json:"active_feeds"`
	WebSocket   *WebSocketStats            `json:"websocket,omitempty"`
	Catalog     interface{}                `json:"catalog,omitempty"`
	Endpoints   []middleware.EndpointStats `json:"endpoints"`
	Uptime      float64                    `json:"uptime_seconds"`
}

// WebSocketStats counts live connections.
type WebSocketStats struct {
	Clients int `json:"clients"`
	Users   int `json:"users"`
}

// Stats handles GET /api/v1/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	stats := ServiceStats{
		Engine:      h.engine.Stats(),
		ActiveFeeds: h.feeds.Len(),
		Endpoints:   h.perfMon.GetStats(),
		Uptime:      time.Since(h.startTime).Seconds(),
	}
	if h.wsHub != nil {
		stats.WebSocket = &WebSocketStats{Clients: h.wsHub.ClientCount(), Users: h.wsHub.UserCount()}
	}
	if counts, err := h.catalog.GetRecordCounts(r.Context()); err == nil {
		stats.Catalog = counts
	} else {
		h.logger.Warn().Err(err).Msg("failed to count catalog records")
	}
	respondSuccess(w, http.StatusOK, stats, start)
}
