// Conexus - Resilient Remote Storage Connection Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conexus

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordConnectionAttempt(t *testing.T) {
	tests := []struct {
		name     string
		sourceID string
		err      error
		outcome  string
	}{
		{"successful attempt", "metrics-test-a", nil, "success"},
		{"failed attempt", "metrics-test-b", errors.New("connection refused"), "failure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(ConnectionAttempts.WithLabelValues(tt.sourceID, tt.outcome))
			RecordConnectionAttempt(tt.sourceID, tt.err)
			after := testutil.ToFloat64(ConnectionAttempts.WithLabelValues(tt.sourceID, tt.outcome))
			if after != before+1 {
				t.Errorf("expected %s counter to increment, before=%v after=%v", tt.outcome, before, after)
			}
		})
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/sources", "200"))
	RecordAPIRequest("GET", "/api/v1/sources", 200, 15*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/sources", "200"))

	if after != before+1 {
		t.Errorf("expected api_requests_total to increment, before=%v after=%v", before, after)
	}
}

func TestSourceHealthGauge(t *testing.T) {
	SourceHealth.WithLabelValues("metrics-test-c", "share").Set(0.5)
	if got := testutil.ToFloat64(SourceHealth.WithLabelValues("metrics-test-c", "share")); got != 0.5 {
		t.Errorf("expected gauge 0.5, got %v", got)
	}

	SourceHealth.WithLabelValues("metrics-test-c", "share").Set(1.0)
	if got := testutil.ToFloat64(SourceHealth.WithLabelValues("metrics-test-c", "share")); got != 1.0 {
		t.Errorf("expected gauge 1.0, got %v", got)
	}
}

func TestEventBusCounters(t *testing.T) {
	before := testutil.ToFloat64(EventsDropped.WithLabelValues("oldest_evicted"))
	EventsDropped.WithLabelValues("oldest_evicted").Inc()
	after := testutil.ToFloat64(EventsDropped.WithLabelValues("oldest_evicted"))
	if after != before+1 {
		t.Errorf("expected drop counter to increment, before=%v after=%v", before, after)
	}
}
