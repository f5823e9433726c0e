// Conexus - Resilient Remote Storage Connection Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conexus

package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
)

func TestBreakerConnectorPassThrough(t *testing.T) {
	inner := &flakyConnector{}
	b := NewBreakerConnector(BreakerConfig{Name: "test-pass"}, inner)

	ctx := context.Background()
	checkNoError(t, "Connect", b.Connect(ctx, Endpoint{SourceID: "s1"}))
	checkNoError(t, "Probe", b.Probe(ctx, Endpoint{SourceID: "s1"}))
	checkIntEqual(t, "inner connects", inner.connectCount(), 1)
}

func TestBreakerConnectorPropagatesFailures(t *testing.T) {
	sentinel := errors.New("share unreachable")
	inner := ConnectorFunc{
		ConnectFunc: func(_ context.Context, _ Endpoint) error { return sentinel },
	}
	b := NewBreakerConnector(BreakerConfig{Name: "test-propagate", MinRequests: 100}, inner)

	err := b.Connect(context.Background(), Endpoint{SourceID: "s1"})
	checkErrorIs(t, "Connect", err, sentinel)
}

func TestBreakerOpensAtFailureRate(t *testing.T) {
	inner := ConnectorFunc{
		ConnectFunc: func(_ context.Context, _ Endpoint) error {
			return errors.New("connection refused")
		},
	}
	b := NewBreakerConnector(BreakerConfig{
		Name:        "test-trip",
		MinRequests: 2,
		FailureRate: 0.5,
		Timeout:     time.Hour,
	}, inner)

	ctx := context.Background()
	ep := Endpoint{SourceID: "s1"}

	// Enough failed samples to trip.
	for i := 0; i < 3; i++ {
		if err := b.Connect(ctx, ep); err == nil {
			t.Fatal("expected failure from inner connector")
		}
	}

	// Breaker is now open: calls are rejected without reaching the inner
	// connector, surfaced as an ordinary connection failure.
	err := b.Connect(ctx, ep)
	checkErrorIs(t, "rejected Connect", err, ErrConnectionFailure)
}

func TestBreakerRejectionDrivesRetryMachine(t *testing.T) {
	inner := ConnectorFunc{
		ConnectFunc: func(_ context.Context, _ Endpoint) error {
			return errors.New("connection refused")
		},
	}
	b := NewBreakerConnector(BreakerConfig{
		Name:        "test-machine",
		MinRequests: 2,
		FailureRate: 0.5,
		Timeout:     time.Hour,
	}, inner)

	m := NewManager(b, ManagerConfig{})
	defer m.Stop()

	src := fastSource("dead-share")
	checkNoError(t, "AddSource", m.AddSource(src))

	// Whether attempts hit the endpoint or bounce off the open breaker, the
	// ladder still terminates at offline after max attempts.
	waitFor(t, "source offline", 3*time.Second, func() bool {
		return src.State() == StateOffline
	})
	checkIntEqual(t, "retry attempts", src.RetryAttempts(), DefaultMaxRetryAttempts)
}

func TestBreakerConfigDefaults(t *testing.T) {
	b := NewBreakerConnector(BreakerConfig{}, ConnectorFunc{})
	if b.name != "connector" {
		t.Errorf("expected default breaker name, got %q", b.name)
	}
	checkNoError(t, "Connect", b.Connect(context.Background(), Endpoint{}))
}

func TestBreakerStateMapping(t *testing.T) {
	tests := []struct {
		state gobreaker.State
		name  string
		value float64
	}{
		{gobreaker.StateClosed, "closed", 0},
		{gobreaker.StateHalfOpen, "half-open", 1},
		{gobreaker.StateOpen, "open", 2},
	}
	for _, tt := range tests {
		if got := breakerStateString(tt.state); got != tt.name {
			t.Errorf("state %v name = %q, want %q", tt.state, got, tt.name)
		}
		if got := breakerStateValue(tt.state); got != tt.value {
			t.Errorf("state %v value = %v, want %v", tt.state, got, tt.value)
		}
	}
}
