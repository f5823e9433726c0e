// Conexus - Resilient Remote Storage Connection Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conexus

package resilience

import (
	"sync"
	"time"

	"github.com/tomtom215/conexus/internal/logging"
)

// HealthChecker periodically re-verifies every enabled source on one shared
// interval fixed at construction. Each tick snapshots the enabled sources
// under the registry read lock and dispatches one probe per source
// concurrently, each bounded by its own timeout.
//
// The per-source HealthCheckInterval field is deliberately not consulted
// here; see ManagerConfig.HealthCheckInterval.
type HealthChecker struct {
	manager  *Manager
	interval time.Duration

	mu      sync.Mutex
	ticker  *time.Ticker
	done    chan struct{}
	running bool
}

// NewHealthChecker creates a health checker for the manager's sources. Probe
// timeouts come from the manager's HealthCheckTimeout.
func NewHealthChecker(manager *Manager, interval time.Duration) *HealthChecker {
	return &HealthChecker{
		manager:  manager,
		interval: interval,
	}
}

// Start begins periodic probing. Idempotent.
func (h *HealthChecker) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running {
		return
	}
	h.running = true
	h.ticker = time.NewTicker(h.interval)
	h.done = make(chan struct{})

	h.manager.goTracked(h.run)
	logging.Info().Dur("interval", h.interval).Msg("Health checker started")
}

// Stop halts periodic probing. Idempotent, and safe without a prior Start:
// with no ticker there is nothing to stop.
func (h *HealthChecker) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.running {
		return
	}
	h.running = false
	h.ticker.Stop()
	close(h.done)
	logging.Info().Msg("Health checker stopped")
}

func (h *HealthChecker) run() {
	for {
		select {
		case <-h.ticker.C:
			h.probeAll()
		case <-h.done:
			return
		case <-h.manager.stopCh:
			return
		}
	}
}

// probeAll snapshots enabled sources and probes each on its own task.
func (h *HealthChecker) probeAll() {
	h.manager.mu.RLock()
	sources := make([]*Source, 0, len(h.manager.sources))
	for _, source := range h.manager.sources {
		if source.Enabled() {
			sources = append(sources, source)
		}
	}
	h.manager.mu.RUnlock()

	for _, source := range sources {
		src := source
		h.manager.goTracked(func() {
			if src.State() == StateConnected {
				h.manager.checkSourceHealth(src)
			}
		})
	}
}
