// Conexus - Resilient Remote Storage Connection Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conexus

package resilience

import (
	"github.com/tomtom215/conexus/internal/logging"
	"github.com/tomtom215/conexus/internal/metrics"
)

// DefaultBusCapacity bounds the event channel when no capacity is configured.
const DefaultBusCapacity = 1000

// Bus is a bounded event channel with drop-oldest backpressure. It is owned
// by one Manager instance and passed by reference, never a package-level
// singleton, so independent managers can coexist in tests.
//
// Publish never blocks the caller. Once the queue saturates, strict FIFO
// delivery is traded away: the oldest queued event (or, if a concurrent
// producer wins the race, the new event) is dropped and counted.
type Bus struct {
	ch chan Event
}

// NewBus creates a bus with the given capacity. Non-positive capacities fall
// back to DefaultBusCapacity.
func NewBus(capacity int) *Bus {
	if capacity <= 0 {
		capacity = DefaultBusCapacity
	}
	return &Bus{ch: make(chan Event, capacity)}
}

// Publish enqueues an event without ever blocking the caller. If the channel
// is full, the oldest queued event is drained to make room and the send is
// retried once; if a concurrent producer refills the channel in between, the
// new event is dropped and logged.
func (b *Bus) Publish(event Event) {
	select {
	case b.ch <- event:
		metrics.EventsPublished.WithLabelValues(event.Type.String()).Inc()
		return
	default:
	}

	// Channel full: drain the oldest event to make room.
	select {
	case dropped := <-b.ch:
		metrics.EventsDropped.WithLabelValues("oldest_evicted").Inc()
		logging.Warn().
			Str("dropped_type", dropped.Type.String()).
			Str("dropped_source", dropped.SourceID).
			Str("new_type", event.Type.String()).
			Str("new_source", event.SourceID).
			Msg("Event bus full, dropped oldest event to make room")
	default:
	}

	select {
	case b.ch <- event:
		metrics.EventsPublished.WithLabelValues(event.Type.String()).Inc()
	default:
		metrics.EventsDropped.WithLabelValues("publish_failed").Inc()
		logging.Warn().
			Str("type", event.Type.String()).
			Str("source_id", event.SourceID).
			Msg("Event bus still full after drain attempt, dropping new event")
	}
}

// Events returns the receive side of the bus for the dispatcher.
func (b *Bus) Events() <-chan Event {
	return b.ch
}

// Len returns the number of queued events.
func (b *Bus) Len() int {
	return len(b.ch)
}

// Cap returns the bus capacity.
func (b *Bus) Cap() int {
	return cap(b.ch)
}
