// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/platewise/internal/middleware"
	"github.com/tomtom215/platewise/internal/models"
)

// defaultRequestTimeout applies when the server config sets none.
const defaultRequestTimeout = 30 * time.Second

// Router wires handlers and middleware into a chi router.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	timeout       time.Duration
}

// NewRouter builds a Router using the handler's security and server config.
func NewRouter(handler *Handler) *Router {
	timeout := defaultRequestTimeout
	var mwCfg *ChiMiddlewareConfig
	if handler.config != nil {
		mwCfg = ChiMiddlewareConfigFromSecurity(&handler.config.Security)
		if handler.config.Server.Timeout > 0 {
			timeout = handler.config.Server.Timeout
		}
	}
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(mwCfg),
		timeout:       timeout,
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	h := router.handler
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog(h.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())
	r.Use(middleware.PrometheusMetrics)
	r.Use(h.perfMon.Middleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondAPIError(w, http.StatusMethodNotAllowed, &models.APIError{
			Code:    "METHOD_NOT_ALLOWED",
			Message: "Method not allowed",
		})
	})

	r.Route("/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitCustom(RateLimitHealth))
		r.Use(APISecurityHeaders())
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})
	r.Handle("/metrics", promhttp.Handler())

	// The WebSocket route stays outside the timeout and compression groups:
	// the connection outlives the handler.
	r.With(router.chiMiddleware.RateLimitCustom(RateLimitWebSocket)).
		Get("/api/v1/users/{userID}/recommendations/ws", h.RecommendationsWebSocket)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(chimiddleware.Timeout(router.timeout))
		r.Use(middleware.Compression)

		r.Get("/stats", h.Stats)

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/recommendations", h.GetRecommendations)
			r.With(router.chiMiddleware.RateLimitCustom(RateLimitRefresh)).
				Post("/recommendations/refresh", h.RefreshRecommendations)
			r.Post("/recommendations/preview", h.PreviewRecommendations)

			r.Get("/preferences", h.GetPreferences)
			r.Group(func(r chi.Router) {
				r.Use(router.chiMiddleware.RateLimitCustom(RateLimitWrite))
				r.Put("/preferences", h.PutPreferences)
				r.Delete("/preferences", h.DeletePreferences)
			})
		})

		r.Route("/restaurants", func(r chi.Router) {
			r.Get("/", h.SearchRestaurants)
			r.Get("/{restaurantID}", h.GetRestaurant)
			r.Get("/{restaurantID}/rating", h.GetRatingSnapshot)
			r.Get("/{restaurantID}/ratings", h.ListReviews)
			r.Group(func(r chi.Router) {
				r.Use(router.chiMiddleware.RateLimitCustom(RateLimitWrite))
				r.Put("/{restaurantID}", h.PutRestaurant)
				r.Delete("/{restaurantID}", h.DeleteRestaurant)
				r.Post("/{restaurantID}/ratings", h.AddRating)
			})
		})

		r.Route("/menus", func(r chi.Router) {
			r.Get("/{menuID}", h.GetMenu)
			r.Group(func(r chi.Router) {
				r.Use(router.chiMiddleware.RateLimitCustom(RateLimitWrite))
				r.Put("/{menuID}", h.PutMenu)
				r.Delete("/{menuID}", h.DeleteMenu)
			})
		})
	})

	return r
}
