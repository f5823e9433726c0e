// Conexus - Resilient Remote Storage Connection Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conexus

// Package api exposes the operations HTTP API for the connection manager.
//
// Routes:
//
//	GET    /api/v1/sources                source status snapshot
//	POST   /api/v1/sources                register a source
//	GET    /api/v1/sources/{id}           single source status
//	PUT    /api/v1/sources/{id}           partial update
//	DELETE /api/v1/sources/{id}           remove a source
//	POST   /api/v1/sources/{id}/reconnect force a reconnect attempt
//	POST   /api/v1/sources/{id}/changes   report a file change
//	GET    /api/v1/health/live            liveness
//	GET    /api/v1/health/ready           readiness with source counts
//	GET    /metrics                       Prometheus metrics
//
// Every response uses the APIResponse envelope. Domain errors map to HTTP
// status codes in errors.go; request payloads are validated with
// go-playground/validator before touching the manager.
package api
