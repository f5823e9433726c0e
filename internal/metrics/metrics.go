// Conexus - Resilient Remote Storage Connection Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conexus

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the connection manager:
// - Per-source connection health (normalized gauge)
// - Connection attempt outcomes and retry scheduling
// - Event bus throughput and drop-oldest backpressure
// - Offline cache occupancy and eviction
// - Health probe latency
// - Circuit breaker state for the downstream connector
// - Operations API latency and throughput

var (
	// Source Connection Metrics

	// SourceHealth reports connection state on a normalized scale:
	// 1.0 connected, 0.5 reconnecting, 0.0 disconnected/offline.
	SourceHealth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "source_connection_health",
			Help: "Normalized source connection health (1.0 connected, 0.5 reconnecting, 0.0 down)",
		},
		[]string{"source_id", "name"},
	)

	ConnectionAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_connection_attempts_total",
			Help: "Total connection attempts by outcome",
		},
		[]string{"source_id", "outcome"}, // "success", "failure"
	)

	RetriesScheduled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_retries_scheduled_total",
			Help: "Total reconnection retries scheduled after failed attempts",
		},
		[]string{"source_id"},
	)

	SourcesRegistered = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sources_registered",
			Help: "Current number of registered sources",
		},
	)

	// Event Bus Metrics

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_bus_published_total",
			Help: "Total events accepted onto the event bus",
		},
		[]string{"type"},
	)

	EventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_bus_dropped_total",
			Help: "Total events dropped under backpressure",
		},
		[]string{"reason"}, // "oldest_evicted", "publish_failed"
	)

	// Offline Cache Metrics

	OfflineCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "offline_cache_entries",
			Help: "Current number of offline cache entries",
		},
	)

	OfflineCacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "offline_cache_evictions_total",
			Help: "Total offline cache entries evicted at capacity",
		},
	)

	OfflineCacheReplayed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "offline_cache_replayed_total",
			Help: "Total cached changes replayed after reconnection",
		},
	)

	// Health Probe Metrics

	HealthCheckDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "health_check_duration_seconds",
			Help:    "Duration of source health probes in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"}, // "success", "failure"
	)

	// Circuit Breaker Metrics

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total requests through the circuit breaker by result",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	// API Endpoint Metrics

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)
)

// RecordAPIRequest records an API request with its status code and duration.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordConnectionAttempt records the outcome of a connection attempt.
func RecordConnectionAttempt(sourceID string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	ConnectionAttempts.WithLabelValues(sourceID, outcome).Inc()
}

// RecordHealthCheck records a health probe outcome and its duration.
func RecordHealthCheck(duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	HealthCheckDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}
