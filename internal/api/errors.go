// Conexus - Resilient Remote Storage Connection Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conexus

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/conexus/internal/resilience"
)

// errorStatus maps domain errors to HTTP status codes and API error codes.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, resilience.ErrSourceNotFound):
		return http.StatusNotFound, "SOURCE_NOT_FOUND"
	case errors.Is(err, resilience.ErrSourceDisabled):
		return http.StatusConflict, "SOURCE_DISABLED"
	case errors.Is(err, resilience.ErrConnectionTimeout),
		errors.Is(err, resilience.ErrConnectionFailure):
		return http.StatusBadGateway, "CONNECTION_ERROR"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

// respondDomainError writes a domain error using the standard mapping.
func respondDomainError(w http.ResponseWriter, err error) {
	status, code := errorStatus(err)
	respondError(w, status, code, err.Error(), err)
}
