// Conexus - Resilient Remote Storage Connection Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conexus

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeManager struct {
	startErr error
	stopErr  error
	started  atomic.Bool
	stopped  atomic.Bool
}

func (f *fakeManager) Start() error {
	f.started.Store(true)
	return f.startErr
}

func (f *fakeManager) Stop() error {
	f.stopped.Store(true)
	return f.stopErr
}

func TestManagerServiceLifecycle(t *testing.T) {
	mgr := &fakeManager{}
	svc := NewManagerService(mgr)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	deadline := time.Now().Add(time.Second)
	for !mgr.started.Load() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if !mgr.started.Load() {
		t.Fatal("manager never started")
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	if !mgr.stopped.Load() {
		t.Error("manager never stopped")
	}
}

func TestManagerServiceStartFailure(t *testing.T) {
	sentinel := errors.New("boom")
	svc := NewManagerService(&fakeManager{startErr: sentinel})

	err := svc.Serve(context.Background())
	if !errors.Is(err, sentinel) {
		t.Errorf("expected start error, got %v", err)
	}
}

func TestManagerServiceString(t *testing.T) {
	if got := NewManagerService(&fakeManager{}).String(); got != "connection-manager" {
		t.Errorf("String() = %q", got)
	}
}
