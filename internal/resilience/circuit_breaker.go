// Conexus - Resilient Remote Storage Connection Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conexus

package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/conexus/internal/logging"
	"github.com/tomtom215/conexus/internal/metrics"
)

// BreakerConnector wraps a Connector with the circuit breaker pattern so a
// permanently dead endpoint is not hammered by every supervisor retry and
// health probe. A rejected call surfaces as an ordinary connection/probe
// failure; the supervisor's retry state machine is unaffected.
//
// The breaker uses real time (via sony/gobreaker) for its interval and
// timeout calculations. Tests should exercise the wrapped connector directly
// rather than waiting out breaker windows.
type BreakerConnector struct {
	inner Connector
	cb    *gobreaker.CircuitBreaker[any]
	name  string
}

// BreakerConfig tunes the circuit breaker around the downstream connector.
type BreakerConfig struct {
	// Name identifies the breaker in logs and metrics.
	Name string

	// MaxRequests allowed through while half-open. Default: 3
	MaxRequests uint32

	// Interval resets the closed-state counters. Default: 1m
	Interval time.Duration

	// Timeout before an open breaker transitions to half-open. Default: 2m
	Timeout time.Duration

	// MinRequests is the minimum sample before the failure rate can trip
	// the breaker. Default: 10
	MinRequests uint32

	// FailureRate at or above which the breaker opens. Default: 0.6
	FailureRate float64
}

// NewBreakerConnector wraps inner with a circuit breaker.
func NewBreakerConnector(cfg BreakerConfig, inner Connector) *BreakerConnector {
	if cfg.Name == "" {
		cfg.Name = "connector"
	}
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = 3
	}
	if cfg.Interval == 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if cfg.MinRequests == 0 {
		cfg.MinRequests = 10
	}
	if cfg.FailureRate == 0 {
		cfg.FailureRate = 0.6
	}

	metrics.CircuitBreakerState.WithLabelValues(cfg.Name).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= cfg.FailureRate
			if shouldTrip {
				logging.Warn().
					Str("breaker", cfg.Name).
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("Opening circuit to downstream connector")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := breakerStateString(from)
			toStr := breakerStateString(to)
			logging.Info().
				Str("breaker", name).
				Str("from", fromStr).
				Str("to", toStr).
				Msg("Circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &BreakerConnector{inner: inner, cb: cb, name: cfg.Name}
}

// Connect runs the wrapped connector's Connect under breaker protection.
func (b *BreakerConnector) Connect(ctx context.Context, ep Endpoint) error {
	return b.execute(func() error { return b.inner.Connect(ctx, ep) })
}

// Probe runs the wrapped connector's Probe under breaker protection.
func (b *BreakerConnector) Probe(ctx context.Context, ep Endpoint) error {
	return b.execute(func() error { return b.inner.Probe(ctx, ep) })
}

func (b *BreakerConnector) execute(fn func() error) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, fn()
	})
	if err == nil {
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
		return nil
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
		return fmt.Errorf("%w: circuit open: %v", ErrConnectionFailure, err)
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
	return err
}

func breakerStateString(s gobreaker.State) string {
	switch s {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
