// Conexus - Resilient Remote Storage Connection Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conexus

package resilience

import (
	"testing"
	"time"
)

func TestPublishNeverBlocksWhenFull(t *testing.T) {
	bus := NewBus(3)

	done := make(chan struct{})
	go func() {
		defer close(done)
		// No consumer: push well past capacity.
		for i := 0; i < 100; i++ {
			bus.Publish(Event{Type: EventError, SourceID: "s1", Timestamp: time.Now()})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full bus")
	}

	if bus.Len() > bus.Cap() {
		t.Errorf("queue length %d exceeds capacity %d", bus.Len(), bus.Cap())
	}
}

func TestPublishDropsOldestUnderBackpressure(t *testing.T) {
	bus := NewBus(3)

	for i, typ := range []EventType{EventConnected, EventDisconnected, EventReconnecting} {
		bus.Publish(Event{Type: typ, SourceID: "s1", Data: i})
	}
	// Queue full: this publish should evict the oldest (EventConnected).
	bus.Publish(Event{Type: EventOffline, SourceID: "s1", Data: 3})

	checkIntEqual(t, "queue length", bus.Len(), 3)

	got := make([]EventType, 0, 3)
	for i := 0; i < 3; i++ {
		got = append(got, (<-bus.Events()).Type)
	}

	want := []EventType{EventDisconnected, EventReconnecting, EventOffline}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestPublishPreservesOrderBelowCapacity(t *testing.T) {
	bus := NewBus(10)

	for i := 0; i < 5; i++ {
		bus.Publish(Event{Type: EventFileChange, SourceID: "s1", Data: i})
	}

	for i := 0; i < 5; i++ {
		ev := <-bus.Events()
		if ev.Data.(int) != i {
			t.Errorf("expected event %d in order, got %v", i, ev.Data)
		}
	}
}

func TestNewBusDefaultCapacity(t *testing.T) {
	bus := NewBus(0)
	if bus.Cap() != DefaultBusCapacity {
		t.Errorf("expected default capacity %d, got %d", DefaultBusCapacity, bus.Cap())
	}
}
