// Conexus - Resilient Remote Storage Connection Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conexus

/*
supervisor.go - Per-Source Connection Supervision

State machine driven by connectSource:

	Disconnected --attempt--> Reconnecting
	Reconnecting --success--> Connected
	Reconnecting --failure, attempts remain--> Disconnected (retry scheduled)
	Reconnecting --failure, attempts exhausted--> Offline   (terminal)
	Connected --probe failure--> Disconnected               (immediate reconnect)
	Offline --ForceReconnect--> Reconnecting                (counter reset)

Backoff is linear (retryDelay x attemptNumber) with a 5-minute ceiling, and
every backoff wait races the manager's shutdown broadcast so shutdown stays
prompt mid-wait. Invariant maintained here: retryAttempts < maxRetryAttempts
whenever state != Offline.
*/
package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/conexus/internal/logging"
	"github.com/tomtom215/conexus/internal/metrics"
)

// connectSource performs one connection attempt for a source, holding the
// source's lock for the whole transition so attempts on one source are
// strictly sequential. Failures schedule the next step of the state machine;
// the returned error is informational for callers that want it.
func (m *Manager) connectSource(source *Source) error {
	source.mu.Lock()
	defer source.mu.Unlock()

	if !source.enabled {
		return fmt.Errorf("%w: %s", ErrSourceDisabled, source.ID)
	}

	source.state = StateReconnecting
	m.observeHealthLocked(source)
	m.bus.Publish(Event{
		Type:      EventReconnecting,
		SourceID:  source.ID,
		Timestamp: time.Now(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), source.ConnectionTimeout)
	defer cancel()

	err := m.connector.Connect(ctx, source.endpointLocked())
	metrics.RecordConnectionAttempt(source.ID, err)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %s", ErrConnectionTimeout, source.Path)
		}

		source.state = StateDisconnected
		source.lastError = err.Error()
		source.retryAttempts++
		m.observeHealthLocked(source)

		logging.Error().
			Str("source_id", source.ID).
			Str("path", source.Path).
			Err(err).
			Int("retry_attempts", source.retryAttempts).
			Msg("Failed to connect to source")

		m.bus.Publish(Event{
			Type:      EventDisconnected,
			SourceID:  source.ID,
			Error:     err,
			Timestamp: time.Now(),
		})

		if source.retryAttempts < source.MaxRetryAttempts {
			metrics.RetriesScheduled.WithLabelValues(source.ID).Inc()
			m.goTracked(func() { m.scheduleRetry(source) })
		} else {
			// Attempts exhausted: terminal until ForceReconnect.
			source.state = StateOffline
			m.observeHealthLocked(source)
			m.bus.Publish(Event{
				Type:      EventOffline,
				SourceID:  source.ID,
				Timestamp: time.Now(),
			})
		}

		return err
	}

	source.state = StateConnected
	source.lastConnected = time.Now()
	source.lastError = ""
	source.retryAttempts = 0
	m.observeHealthLocked(source)

	logging.Info().
		Str("source_id", source.ID).
		Str("path", source.Path).
		Msg("Connected to source")

	m.bus.Publish(Event{
		Type:      EventConnected,
		SourceID:  source.ID,
		Timestamp: time.Now(),
	})

	return nil
}

// backoffDelay computes the linear backoff (base x attempts) with the
// 5-minute ceiling. Linear rather than exponential is deliberate; the ceiling
// keeps worst-case reconnect latency bounded.
func backoffDelay(base time.Duration, attempts int) time.Duration {
	delay := base * time.Duration(attempts)
	if delay > MaxRetryDelay {
		delay = MaxRetryDelay
	}
	return delay
}

// scheduleRetry waits out the linear backoff for the source's next attempt,
// racing the shutdown broadcast.
func (m *Manager) scheduleRetry(source *Source) {
	source.mu.RLock()
	attempts := source.retryAttempts
	delay := backoffDelay(source.RetryDelay, attempts)
	source.mu.RUnlock()

	logging.Info().
		Str("source_id", source.ID).
		Dur("delay", delay).
		Int("attempt", attempts+1).
		Msg("Scheduling reconnection retry")

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		//nolint:errcheck // failures re-enter the state machine
		m.connectSource(source)
	case <-m.stopCh:
	}
}

// monitorSource is the long-lived monitor task for one source: it
// periodically re-verifies connected sources between shared health checker
// ticks and exits on shutdown.
func (m *Manager) monitorSource(source *Source) {
	ticker := time.NewTicker(m.cfg.MonitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if source.Enabled() && source.State() == StateConnected {
				m.checkSourceHealth(source)
			}
		case <-m.stopCh:
			return
		}
	}
}

// checkSourceHealth probes a source under the health check timeout. A failed
// probe on a connected source re-enters the reconnect state machine with an
// immediate, non-backoff attempt.
func (m *Manager) checkSourceHealth(source *Source) {
	source.mu.RLock()
	ep := source.endpointLocked()
	source.mu.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.HealthCheckTimeout)
	defer cancel()

	start := time.Now()
	err := m.connector.Probe(ctx, ep)
	metrics.RecordHealthCheck(time.Since(start), err)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %s", ErrHealthCheckTimeout, source.Path)
		} else {
			err = fmt.Errorf("%w: %s: %v", ErrHealthCheckFailure, source.Path, err)
		}
	}

	m.bus.Publish(Event{
		Type:      EventHealthCheck,
		SourceID:  source.ID,
		Error:     err,
		Timestamp: time.Now(),
	})

	if err == nil {
		return
	}

	logging.Warn().
		Str("source_id", source.ID).
		Err(err).
		Msg("Source health check failed")

	source.mu.Lock()
	if source.state != StateConnected {
		// A supervisor transition already took over; leave it alone.
		source.mu.Unlock()
		return
	}
	source.state = StateDisconnected
	source.lastError = err.Error()
	m.observeHealthLocked(source)
	source.mu.Unlock()

	m.goTracked(func() {
		//nolint:errcheck // failures re-enter the state machine
		m.connectSource(source)
	})
}

// observeHealthLocked exports the source's normalized health value.
// Caller must hold the source's lock.
func (m *Manager) observeHealthLocked(source *Source) {
	metrics.SourceHealth.WithLabelValues(source.ID, source.Name).Set(source.state.HealthValue())
}
