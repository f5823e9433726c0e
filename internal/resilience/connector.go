// Conexus - Resilient Remote Storage Connection Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conexus

package resilience

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Endpoint carries the immutable connection coordinates of one source.
// Connectors receive it by value and never touch source state.
type Endpoint struct {
	SourceID string
	Path     string
	Username string
	Password string
	Domain   string
}

// Connector is the downstream protocol collaborator: it knows how to open a
// connection to a remote storage endpoint and how to verify an established
// one. Implementations must honor context deadlines; the supervisor derives
// them from the source's connection timeout and the checker's probe timeout.
// Protocol negotiation, authentication handshakes, and file transfer are the
// implementation's concern, not this package's.
type Connector interface {
	Connect(ctx context.Context, ep Endpoint) error
	Probe(ctx context.Context, ep Endpoint) error
}

// DialConnector is a TCP reachability connector: Connect and Probe succeed
// when the endpoint's host:port accepts a connection within the deadline.
// It is sufficient for supervising share-style endpoints whose protocol
// client lives elsewhere.
type DialConnector struct {
	// Dialer allows tests to substitute a custom dialer. Nil uses a zero
	// net.Dialer, which honors the context deadline.
	Dialer *net.Dialer
}

// NewDialConnector creates a TCP reachability connector.
func NewDialConnector() *DialConnector {
	return &DialConnector{Dialer: &net.Dialer{}}
}

// Connect dials the endpoint and closes the connection on success.
func (d *DialConnector) Connect(ctx context.Context, ep Endpoint) error {
	return d.dial(ctx, ep)
}

// Probe re-dials the endpoint to verify it is still reachable.
func (d *DialConnector) Probe(ctx context.Context, ep Endpoint) error {
	return d.dial(ctx, ep)
}

func (d *DialConnector) dial(ctx context.Context, ep Endpoint) error {
	dialer := d.Dialer
	if dialer == nil {
		dialer = &net.Dialer{}
	}

	conn, err := dialer.DialContext(ctx, "tcp", ep.Path)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s", ErrConnectionTimeout, ep.Path)
		}
		return fmt.Errorf("%w: %s: %v", ErrConnectionFailure, ep.Path, err)
	}
	return conn.Close()
}

// ConnectorFunc adapts plain functions into a Connector, mirroring
// http.HandlerFunc. Useful in tests and for simple probes.
type ConnectorFunc struct {
	ConnectFunc func(ctx context.Context, ep Endpoint) error
	ProbeFunc   func(ctx context.Context, ep Endpoint) error
}

// Connect calls ConnectFunc, or succeeds if nil.
func (f ConnectorFunc) Connect(ctx context.Context, ep Endpoint) error {
	if f.ConnectFunc == nil {
		return nil
	}
	return f.ConnectFunc(ctx, ep)
}

// Probe calls ProbeFunc, or succeeds if nil.
func (f ConnectorFunc) Probe(ctx context.Context, ep Endpoint) error {
	if f.ProbeFunc == nil {
		return nil
	}
	return f.ProbeFunc(ctx, ep)
}
