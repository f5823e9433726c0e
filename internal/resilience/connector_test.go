// Conexus - Resilient Remote Storage Connection Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conexus

package resilience

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"
)

func TestDialConnectorReachableEndpoint(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	checkNoError(t, "listen", err)
	defer ln.Close()

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	d := NewDialConnector()
	ep := Endpoint{SourceID: "s1", Path: ln.Addr().String()}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	checkNoError(t, "Connect", d.Connect(ctx, ep))
	checkNoError(t, "Probe", d.Probe(ctx, ep))
}

func TestDialConnectorUnreachableEndpoint(t *testing.T) {
	// Grab a port and close the listener so nothing accepts on it.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	checkNoError(t, "listen", err)
	addr := ln.Addr().String()
	ln.Close()

	d := NewDialConnector()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err = d.Connect(ctx, Endpoint{SourceID: "s1", Path: addr})
	checkErrorIs(t, "Connect", err, ErrConnectionFailure)
}

func TestDialConnectorNilDialer(t *testing.T) {
	d := &DialConnector{}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	// Must not panic; a closed port yields a connection failure.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	checkNoError(t, "listen", err)
	addr := ln.Addr().String()
	ln.Close()

	err = d.Probe(ctx, Endpoint{Path: addr})
	checkErrorIs(t, "Probe", err, ErrConnectionFailure)
}

func TestConnectorFuncNilFunctionsSucceed(t *testing.T) {
	var f ConnectorFunc
	ctx := context.Background()

	checkNoError(t, "Connect", f.Connect(ctx, Endpoint{}))
	checkNoError(t, "Probe", f.Probe(ctx, Endpoint{}))
}

func TestConnectorFuncDelegates(t *testing.T) {
	sentinel := errors.New("boom")
	f := ConnectorFunc{
		ConnectFunc: func(_ context.Context, _ Endpoint) error { return sentinel },
		ProbeFunc:   func(_ context.Context, _ Endpoint) error { return nil },
	}

	ctx := context.Background()
	checkErrorIs(t, "Connect", f.Connect(ctx, Endpoint{}), sentinel)
	checkNoError(t, "Probe", f.Probe(ctx, Endpoint{}))
}

// waitContext blocks until the deadline-carrying context is done or the
// given duration elapses. Test connectors use it to simulate slow endpoints.
func waitContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func TestWaitContextHonorsDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := waitContext(ctx, time.Minute)
	checkErrorIs(t, "waitContext", err, context.DeadlineExceeded)
}

func TestSlowConnectorMapsToTimeout(t *testing.T) {
	slow := ConnectorFunc{
		ConnectFunc: func(ctx context.Context, _ Endpoint) error {
			return waitContext(ctx, time.Minute)
		},
	}

	m := NewManager(slow, ManagerConfig{})
	defer m.Stop()

	src := fastSource("slow-share")
	src.ConnectionTimeout = 5 * time.Millisecond
	src.MaxRetryAttempts = 1
	checkNoError(t, "AddSource", m.AddSource(src))

	waitFor(t, "source offline", 2*time.Second, func() bool {
		return src.State() == StateOffline
	})

	status := src.Status()
	if want := ErrConnectionTimeout.Error(); !strings.HasPrefix(status.LastError, want) {
		t.Errorf("last error %q does not carry the timeout sentinel", status.LastError)
	}
}
