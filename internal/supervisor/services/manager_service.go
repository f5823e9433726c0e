// Conexus - Resilient Remote Storage Connection Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conexus

package services

import (
	"context"
	"fmt"
)

// StartStopManager matches the connection manager's lifecycle. Satisfied by
// *resilience.Manager.
type StartStopManager interface {
	Start() error
	Stop() error
}

// ManagerService wraps the connection manager as a supervised service,
// adapting its Start/Stop lifecycle to suture's Serve pattern:
//
//  1. Start() launches the dispatcher, health checker, and monitor tasks
//  2. block until the context is canceled
//  3. Stop() broadcasts shutdown and joins every tracked task
//
// The manager tracks its own goroutines internally, so this wrapper only
// orchestrates the lifecycle transitions.
type ManagerService struct {
	manager StartStopManager
	name    string
}

// NewManagerService creates a supervised wrapper around the connection
// manager.
func NewManagerService(manager StartStopManager) *ManagerService {
	return &ManagerService{
		manager: manager,
		name:    "connection-manager",
	}
}

// Serve implements suture.Service. If Start fails the error is returned
// immediately and suture restarts the service per its backoff policy.
func (s *ManagerService) Serve(ctx context.Context) error {
	if err := s.manager.Start(); err != nil {
		return fmt.Errorf("connection manager start failed: %w", err)
	}

	<-ctx.Done()

	if err := s.manager.Stop(); err != nil {
		return fmt.Errorf("connection manager stop failed: %w", err)
	}

	return ctx.Err()
}

// String implements fmt.Stringer; suture uses it to identify the service in
// log messages.
func (s *ManagerService) String() string {
	return s.name
}
