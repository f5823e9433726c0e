// Conexus - Resilient Remote Storage Connection Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conexus

// Package resilience provides common error definitions.
package resilience

import "errors"

// ErrSourceNotFound is returned when an operation references an unknown source ID.
var ErrSourceNotFound = errors.New("source not found")

// ErrSourceDisabled is returned when an operation targets a disabled source.
var ErrSourceDisabled = errors.New("source is disabled")

// ErrConnectionTimeout is returned when a connection attempt exceeds the
// source's connection timeout.
var ErrConnectionTimeout = errors.New("connection timeout")

// ErrConnectionFailure is returned when a connection attempt fails for a
// reason other than a timeout.
var ErrConnectionFailure = errors.New("connection failure")

// ErrHealthCheckTimeout is returned when a health probe exceeds its timeout.
var ErrHealthCheckTimeout = errors.New("health check timeout")

// ErrHealthCheckFailure is returned when a health probe fails for a reason
// other than a timeout.
var ErrHealthCheckFailure = errors.New("health check failure")
