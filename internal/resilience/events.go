// Conexus - Resilient Remote Storage Connection Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conexus

package resilience

import "time"

// EventType classifies lifecycle, health, and change events on the bus.
type EventType int

const (
	EventConnected EventType = iota
	EventDisconnected
	EventReconnecting
	EventOffline
	EventFileChange
	EventError
	EventHealthCheck
)

func (e EventType) String() string {
	switch e {
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	case EventReconnecting:
		return "reconnecting"
	case EventOffline:
		return "offline"
	case EventFileChange:
		return "file_change"
	case EventError:
		return "error"
	case EventHealthCheck:
		return "health_check"
	default:
		return "unknown"
	}
}

// Event is an ephemeral message describing a source lifecycle transition,
// a health probe outcome, or a file change. Events are produced by the
// connection supervisors and health probes, consumed exactly once by the
// bus dispatcher, and never persisted.
type Event struct {
	Type      EventType   `json:"type"`
	SourceID  string      `json:"source_id"`
	Path      string      `json:"path,omitempty"`
	Error     error       `json:"-"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}
