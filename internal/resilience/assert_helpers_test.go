// Conexus - Resilient Remote Storage Connection Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conexus

package resilience

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/conexus/internal/logging"
)

func TestMain(m *testing.M) {
	// Quiet the global logger; these tests exercise failure paths heavily.
	logging.SetLogger(zerolog.Nop())
	os.Exit(m.Run())
}

// Test assertion helpers with "check" prefix. Each encapsulates a common
// comparison pattern; t.Helper() keeps failures pointing at the caller.

func checkNoError(t *testing.T, what string, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", what, err)
	}
}

func checkErrorIs(t *testing.T, what string, err, want error) {
	t.Helper()
	if !errors.Is(err, want) {
		t.Errorf("%s: expected error %v, got %v", what, want, err)
	}
}

func checkIntEqual(t *testing.T, fieldName string, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("%s: expected %d, got %d", fieldName, want, got)
	}
}

func checkStateEqual(t *testing.T, what string, got, want ConnectionState) {
	t.Helper()
	if got != want {
		t.Errorf("%s: expected state %s, got %s", what, want, got)
	}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
