// Conexus - Resilient Remote Storage Connection Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conexus

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/conexus/internal/resilience"
)

// Router wires handlers and middleware into the HTTP surface.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router for the manager's ops API. A nil middleware
// config uses the secure defaults.
func NewRouter(manager *resilience.Manager, version string, mwConfig *ChiMiddlewareConfig) *Router {
	return &Router{
		handler:       NewHandler(manager, version),
		chiMiddleware: NewChiMiddleware(mwConfig),
	}
}

// Setup configures all HTTP routes using Chi.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight is handled

	// Health endpoints: permissive rate limiting for monitoring tools.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// Source endpoints.
	r.Route("/api/v1/sources", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(PrometheusMetrics())

		r.Get("/", router.handler.ListSources)
		r.Get("/{id}", router.handler.GetSource)

		// Mutations carry a tighter budget; each one fans out connection work.
		r.With(router.chiMiddleware.RateLimitWrite()).Post("/", router.handler.CreateSource)
		r.With(router.chiMiddleware.RateLimitWrite()).Put("/{id}", router.handler.UpdateSource)
		r.With(router.chiMiddleware.RateLimitWrite()).Delete("/{id}", router.handler.DeleteSource)
		r.With(router.chiMiddleware.RateLimitWrite()).Post("/{id}/reconnect", router.handler.ReconnectSource)

		r.Post("/{id}/changes", router.handler.NotifyChange)
	})

	// Prometheus metrics endpoint.
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}
