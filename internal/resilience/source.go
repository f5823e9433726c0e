// Conexus - Resilient Remote Storage Connection Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conexus

package resilience

import (
	"sync"
	"time"
)

// ConnectionState represents the lifecycle state of a source's connection.
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateReconnecting
	StateConnected
	StateOffline
)

func (s ConnectionState) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	case StateReconnecting:
		return "reconnecting"
	case StateOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// HealthValue maps a connection state to the normalized health scale
// exported via metrics: 1.0 connected, 0.5 reconnecting, 0.0 down.
func (s ConnectionState) HealthValue() float64 {
	switch s {
	case StateConnected:
		return 1.0
	case StateReconnecting:
		return 0.5
	default:
		return 0.0
	}
}

// Default tunables applied by AddSource when a field is left zero.
const (
	DefaultMaxRetryAttempts    = 5
	DefaultRetryDelay          = 30 * time.Second
	DefaultConnectionTimeout   = 30 * time.Second
	DefaultHealthCheckInterval = 60 * time.Second

	// MaxRetryDelay caps the linear backoff (retryDelay x attempts).
	MaxRetryDelay = 5 * time.Minute
)

// Source is a configured remote storage endpoint plus its live connection
// state. Identity and tunables are set at registration and treated as
// immutable except through Manager.UpdateSource. Live state (state, lastError,
// retryAttempts, enabled) is mutated only by the source's own supervisor and
// health probe outcomes, serialized behind mu. Unrelated sources never block
// each other.
type Source struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Path     string `json:"path"`
	Username string `json:"username"`
	Password string `json:"password"`
	Domain   string `json:"domain"`

	MaxRetryAttempts    int           `json:"max_retry_attempts"`
	RetryDelay          time.Duration `json:"retry_delay"`
	ConnectionTimeout   time.Duration `json:"connection_timeout"`
	HealthCheckInterval time.Duration `json:"health_check_interval"`

	state         ConnectionState
	lastConnected time.Time
	lastError     string
	retryAttempts int
	enabled       bool

	mu sync.RWMutex
}

// applyDefaults fills zero-valued tunables with the documented defaults.
func (s *Source) applyDefaults() {
	if s.MaxRetryAttempts == 0 {
		s.MaxRetryAttempts = DefaultMaxRetryAttempts
	}
	if s.RetryDelay == 0 {
		s.RetryDelay = DefaultRetryDelay
	}
	if s.ConnectionTimeout == 0 {
		s.ConnectionTimeout = DefaultConnectionTimeout
	}
	if s.HealthCheckInterval == 0 {
		s.HealthCheckInterval = DefaultHealthCheckInterval
	}
}

// State returns the current connection state.
func (s *Source) State() ConnectionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Enabled reports whether the source is enabled. Supervisor tasks check this
// before scheduling further work so removal stays cooperative.
func (s *Source) Enabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled
}

// RetryAttempts returns the current retry attempt counter.
func (s *Source) RetryAttempts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.retryAttempts
}

// disable marks the source disabled. In-flight tasks observe the flag rather
// than being force-killed.
func (s *Source) disable() {
	s.mu.Lock()
	s.enabled = false
	s.mu.Unlock()
}

// endpointLocked returns the connection coordinates for the downstream
// connector as a value, so the connector never touches the source lock.
// Caller must hold mu.
func (s *Source) endpointLocked() Endpoint {
	return Endpoint{
		SourceID: s.ID,
		Path:     s.Path,
		Username: s.Username,
		Password: s.Password,
		Domain:   s.Domain,
	}
}

// SourceStatus is a consistent point-in-time snapshot of one source,
// suitable for the status API and dashboards.
type SourceStatus struct {
	ID                  string        `json:"id"`
	Name                string        `json:"name"`
	Path                string        `json:"path"`
	State               string        `json:"state"`
	LastConnected       time.Time     `json:"last_connected"`
	LastError           string        `json:"last_error,omitempty"`
	RetryAttempts       int           `json:"retry_attempts"`
	Enabled             bool          `json:"enabled"`
	Health              float64       `json:"health"`
	HealthCheckInterval time.Duration `json:"health_check_interval"`
}

// Status returns a snapshot taken under the source's own lock, so a reader
// never observes a torn state/retryAttempts pair.
func (s *Source) Status() SourceStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SourceStatus{
		ID:                  s.ID,
		Name:                s.Name,
		Path:                s.Path,
		State:               s.state.String(),
		LastConnected:       s.lastConnected,
		LastError:           s.lastError,
		RetryAttempts:       s.retryAttempts,
		Enabled:             s.enabled,
		Health:              s.state.HealthValue(),
		HealthCheckInterval: s.HealthCheckInterval,
	}
}

// SourceUpdate carries partial updates for Manager.UpdateSource. Nil fields
// are left unchanged.
type SourceUpdate struct {
	Name                *string        `json:"name,omitempty"`
	Path                *string        `json:"path,omitempty"`
	Username            *string        `json:"username,omitempty"`
	Password            *string        `json:"password,omitempty"`
	Domain              *string        `json:"domain,omitempty"`
	MaxRetryAttempts    *int           `json:"max_retry_attempts,omitempty"`
	RetryDelay          *time.Duration `json:"retry_delay,omitempty"`
	ConnectionTimeout   *time.Duration `json:"connection_timeout,omitempty"`
	HealthCheckInterval *time.Duration `json:"health_check_interval,omitempty"`
}

// apply copies non-nil update fields onto the source under its lock.
func (s *Source) apply(u SourceUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.Name != nil {
		s.Name = *u.Name
	}
	if u.Path != nil {
		s.Path = *u.Path
	}
	if u.Username != nil {
		s.Username = *u.Username
	}
	if u.Password != nil {
		s.Password = *u.Password
	}
	if u.Domain != nil {
		s.Domain = *u.Domain
	}
	if u.MaxRetryAttempts != nil {
		s.MaxRetryAttempts = *u.MaxRetryAttempts
	}
	if u.RetryDelay != nil {
		s.RetryDelay = *u.RetryDelay
	}
	if u.ConnectionTimeout != nil {
		s.ConnectionTimeout = *u.ConnectionTimeout
	}
	if u.HealthCheckInterval != nil {
		s.HealthCheckInterval = *u.HealthCheckInterval
	}
}
