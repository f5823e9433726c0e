// Conexus - Resilient Remote Storage Connection Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conexus

package resilience

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/conexus/internal/logging"
	"github.com/tomtom215/conexus/internal/metrics"
)

// ManagerConfig tunes the connection manager. Zero values fall back to the
// documented defaults.
type ManagerConfig struct {
	// CacheSize bounds the offline change cache. Default: 1000
	CacheSize int

	// BusCapacity bounds the event channel. Default: 1000
	BusCapacity int

	// HealthCheckInterval is the shared probe interval for all sources.
	// The per-source HealthCheckInterval field is configuration surface
	// reported in status; the shared checker intentionally runs on this one
	// fixed interval, matching the original design. Default: 60s
	HealthCheckInterval time.Duration

	// HealthCheckTimeout bounds each individual probe. Default: 10s
	HealthCheckTimeout time.Duration

	// MonitorInterval is how often each source's monitor task re-verifies a
	// connected source between shared health ticks. Default: 10s
	MonitorInterval time.Duration
}

// Manager owns the source registry, the event bus, the offline cache, and
// the health checker. It exposes the public lifecycle and CRUD API and
// coordinates shutdown: stop the health ticker, broadcast shutdown, then
// join every tracked task.
//
// Locking discipline: the registry map is guarded by mu, held only for
// membership changes and snapshots, never across I/O. Each source's mutable
// fields are guarded by the source's own lock. The cache has its own lock.
type Manager struct {
	connector Connector
	cfg       ManagerConfig

	sources map[string]*Source
	mu      sync.RWMutex

	bus     *Bus
	cache   *OfflineCache
	checker *HealthChecker

	stopCh    chan struct{}
	wg        sync.WaitGroup
	lifecycle sync.Mutex
	started   bool
	stopped   bool
	startTime time.Time
}

// NewManager creates a connection manager using the given downstream
// connector. The manager is inert until Start; AddSource still triggers
// first connection attempts immediately.
func NewManager(connector Connector, cfg ManagerConfig) *Manager {
	if cfg.HealthCheckInterval <= 0 {
		cfg.HealthCheckInterval = DefaultHealthCheckInterval
	}
	if cfg.HealthCheckTimeout <= 0 {
		cfg.HealthCheckTimeout = 10 * time.Second
	}
	if cfg.MonitorInterval <= 0 {
		cfg.MonitorInterval = 10 * time.Second
	}

	m := &Manager{
		connector: connector,
		cfg:       cfg,
		sources:   make(map[string]*Source),
		bus:       NewBus(cfg.BusCapacity),
		cache:     NewOfflineCache(cfg.CacheSize),
		stopCh:    make(chan struct{}),
	}
	m.checker = NewHealthChecker(m, cfg.HealthCheckInterval)
	return m
}

// Bus exposes the manager's event bus for external publishers such as file
// system watchers.
func (m *Manager) Bus() *Bus {
	return m.bus
}

// Cache exposes the offline change cache.
func (m *Manager) Cache() *OfflineCache {
	return m.cache
}

// StartTime returns when the manager was started, or the zero time before
// Start.
func (m *Manager) StartTime() time.Time {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()
	return m.startTime
}

// AddSource registers a source, assigns an ID if absent, applies defaults,
// and asynchronously triggers a first connection attempt. Non-blocking.
func (m *Manager) AddSource(source *Source) error {
	if source.ID == "" {
		source.ID = uuid.NewString()
	}
	source.applyDefaults()

	source.mu.Lock()
	source.state = StateDisconnected
	source.enabled = true
	source.mu.Unlock()

	m.mu.Lock()
	m.sources[source.ID] = source
	metrics.SourcesRegistered.Set(float64(len(m.sources)))
	m.mu.Unlock()

	m.goTracked(func() {
		//nolint:errcheck // failures drive the retry state machine, not the caller
		m.connectSource(source)
	})

	logging.Info().
		Str("source_id", source.ID).
		Str("name", source.Name).
		Str("path", source.Path).
		Msg("Source added")
	return nil
}

// RemoveSource disables a source and deletes it from the registry. Removal
// is cooperative: running tasks for the source observe the disabled flag and
// stop scheduling retries.
func (m *Manager) RemoveSource(sourceID string) error {
	m.mu.Lock()
	source, exists := m.sources[sourceID]
	if !exists {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrSourceNotFound, sourceID)
	}
	delete(m.sources, sourceID)
	metrics.SourcesRegistered.Set(float64(len(m.sources)))
	m.mu.Unlock()

	source.disable()
	metrics.SourceHealth.DeleteLabelValues(source.ID, source.Name)

	logging.Info().Str("source_id", sourceID).Msg("Source removed")
	return nil
}

// UpdateSource applies a partial update to an existing source. Only
// existence is validated in the current scope.
func (m *Manager) UpdateSource(sourceID string, updates SourceUpdate) error {
	m.mu.RLock()
	source, exists := m.sources[sourceID]
	m.mu.RUnlock()

	if !exists {
		return fmt.Errorf("%w: %s", ErrSourceNotFound, sourceID)
	}

	source.apply(updates)
	logging.Info().Str("source_id", sourceID).Msg("Source updated")
	return nil
}

// ForceReconnect resets the retry counter and triggers an async connection
// attempt. This is the operator escape hatch from the Offline terminal
// state.
func (m *Manager) ForceReconnect(sourceID string) error {
	m.mu.RLock()
	source, exists := m.sources[sourceID]
	m.mu.RUnlock()

	if !exists {
		return fmt.Errorf("%w: %s", ErrSourceNotFound, sourceID)
	}
	if !source.Enabled() {
		return fmt.Errorf("%w: %s", ErrSourceDisabled, sourceID)
	}

	source.mu.Lock()
	source.retryAttempts = 0
	source.mu.Unlock()

	m.goTracked(func() {
		//nolint:errcheck // failures drive the retry state machine, not the caller
		m.connectSource(source)
	})

	logging.Info().Str("source_id", sourceID).Msg("Force reconnect initiated")
	return nil
}

// GetSourceStatus returns a consistent snapshot of every registered source.
// The registry read lock is held for the iteration; each source's own lock
// is held briefly per entry to avoid torn reads.
func (m *Manager) GetSourceStatus() map[string]SourceStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status := make(map[string]SourceStatus, len(m.sources))
	for id, source := range m.sources {
		status[id] = source.Status()
	}
	return status
}

// GetSource returns the status snapshot of a single source.
func (m *Manager) GetSource(sourceID string) (SourceStatus, error) {
	m.mu.RLock()
	source, exists := m.sources[sourceID]
	m.mu.RUnlock()

	if !exists {
		return SourceStatus{}, fmt.Errorf("%w: %s", ErrSourceNotFound, sourceID)
	}
	return source.Status(), nil
}

// NotifyFileChange publishes a file-change event for a source. Connected
// sources have the change processed immediately by the dispatcher;
// disconnected sources have it parked in the offline cache.
func (m *Manager) NotifyFileChange(sourceID, path string) {
	m.bus.Publish(Event{
		Type:      EventFileChange,
		SourceID:  sourceID,
		Path:      path,
		Timestamp: time.Now(),
	})
}

// Start launches the health checker, the bus dispatcher, and one monitor
// task per currently-enabled source. Idempotent.
func (m *Manager) Start() error {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()
	if m.started {
		return nil
	}
	m.started = true
	m.startTime = time.Now()

	logging.Info().Msg("Starting connection manager")

	m.checker.Start()
	m.goTracked(m.dispatchEvents)

	m.mu.RLock()
	sources := make([]*Source, 0, len(m.sources))
	for _, source := range m.sources {
		if source.Enabled() {
			sources = append(sources, source)
		}
	}
	m.mu.RUnlock()

	for _, source := range sources {
		src := source
		m.goTracked(func() { m.monitorSource(src) })
	}

	return nil
}

// Stop stops the health checker, broadcasts shutdown, and blocks until every
// tracked task exits. Idempotent and safe without a prior Start.
func (m *Manager) Stop() error {
	m.lifecycle.Lock()
	if m.stopped {
		m.lifecycle.Unlock()
		return nil
	}
	m.stopped = true
	m.lifecycle.Unlock()

	logging.Info().Msg("Stopping connection manager")

	m.checker.Stop()
	close(m.stopCh)
	m.wg.Wait()

	logging.Info().Msg("Connection manager stopped")
	return nil
}

// goTracked runs fn on a goroutine registered with the manager's completion
// tracker so Stop can join it.
func (m *Manager) goTracked(fn func()) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		fn()
	}()
}

// dispatchEvents is the single dispatcher task: it pulls events sequentially
// and routes them by type until shutdown.
func (m *Manager) dispatchEvents() {
	for {
		select {
		case event := <-m.bus.Events():
			m.handleEvent(event)
		case <-m.stopCh:
			return
		}
	}
}

// handleEvent routes one event by type.
func (m *Manager) handleEvent(event Event) {
	logging.Debug().
		Str("type", event.Type.String()).
		Str("source_id", event.SourceID).
		Msg("Dispatching event")

	switch event.Type {
	case EventConnected:
		// Source (re)connected: replay any changes parked while it was away.
		m.cache.ProcessCachedChanges(event.SourceID)
	case EventDisconnected:
		m.cache.EnableOfflineMode(event.SourceID)
	case EventOffline:
		logging.Warn().Str("source_id", event.SourceID).Msg("Source is now offline")
	case EventFileChange:
		m.onFileChange(event.SourceID, event.Path)
	case EventError:
		logging.Error().
			Str("source_id", event.SourceID).
			Err(event.Error).
			Msg("Source error")
	case EventHealthCheck:
		// Extension point for probe-outcome consumers.
	}
}

// onFileChange processes a change immediately when the source is connected,
// otherwise parks it in the offline cache.
func (m *Manager) onFileChange(sourceID, path string) {
	if m.isSourceConnected(sourceID) {
		m.processFileChange(sourceID, path)
		return
	}
	m.cache.CacheChange(sourceID, path)
}

// processFileChange hands a live change to downstream processing. The
// catalog pipeline consuming these is out of scope here.
func (m *Manager) processFileChange(sourceID, path string) {
	logging.Info().
		Str("source_id", sourceID).
		Str("path", path).
		Msg("Processing file change")
}

func (m *Manager) isSourceConnected(sourceID string) bool {
	m.mu.RLock()
	source, exists := m.sources[sourceID]
	m.mu.RUnlock()

	return exists && source.State() == StateConnected
}
