// Conexus - Resilient Remote Storage Connection Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conexus

/*
Package metrics provides Prometheus metrics collection and export for observability.

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:3858/metrics

# Available Metrics

Source Connection:
  - source_connection_health: Normalized connection health (gauge)
    Labels: source_id, name
    Values: 1.0=connected, 0.5=reconnecting, 0.0=disconnected/offline
  - source_connection_attempts_total: Connection attempts (counter)
    Labels: source_id, outcome
  - source_retries_scheduled_total: Scheduled reconnection retries (counter)
    Labels: source_id
  - sources_registered: Registered source count (gauge)

Event Bus:
  - event_bus_published_total: Events accepted onto the bus (counter)
    Labels: type
  - event_bus_dropped_total: Events dropped under backpressure (counter)
    Labels: reason (oldest_evicted, publish_failed)

Offline Cache:
  - offline_cache_entries: Current cache occupancy (gauge)
  - offline_cache_evictions_total: Entries evicted at capacity (counter)
  - offline_cache_replayed_total: Cached changes replayed on reconnect (counter)

Health Probes:
  - health_check_duration_seconds: Probe latency (histogram)
    Labels: outcome

Circuit Breaker:
  - circuit_breaker_state: Current state (gauge, 0=closed 1=half-open 2=open)
  - circuit_breaker_transitions_total: State transitions (counter)
  - circuit_breaker_requests_total: Requests by result (counter)

API:
  - api_requests_total: API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: API latency (histogram)
    Labels: method, endpoint

# Thread Safety

All metric recording is safe for concurrent use; the Prometheus client
library handles synchronization internally.

# Cardinality

Source IDs are bounded by the number of configured sources, endpoint labels
are route patterns (never raw paths), and outcome/result labels come from
fixed constant sets.
*/
package metrics
