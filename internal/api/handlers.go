// Conexus - Resilient Remote Storage Connection Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conexus

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/conexus/internal/resilience"
)

// Handler holds the dependencies for all API handlers.
type Handler struct {
	manager *resilience.Manager
	version string
}

// NewHandler creates an API handler backed by the connection manager.
func NewHandler(manager *resilience.Manager, version string) *Handler {
	return &Handler{manager: manager, version: version}
}

// ListSources handles GET /api/v1/sources.
// Returns a snapshot of every registered source keyed by ID.
func (h *Handler) ListSources(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, h.manager.GetSourceStatus())
}

// GetSource handles GET /api/v1/sources/{id}.
func (h *Handler) GetSource(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	status, err := h.manager.GetSource(id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, status)
}

// CreateSource handles POST /api/v1/sources.
// Registration is non-blocking: the first connection attempt runs in the
// background and the response reflects the initial disconnected state.
func (h *Handler) CreateSource(w http.ResponseWriter, r *http.Request) {
	var req CreateSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "request body is not valid JSON", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	source := &resilience.Source{
		ID:                  req.ID,
		Name:                req.Name,
		Path:                req.Path,
		Username:            req.Username,
		Password:            req.Password,
		Domain:              req.Domain,
		MaxRetryAttempts:    req.MaxRetryAttempts,
		RetryDelay:          req.RetryDelay,
		ConnectionTimeout:   req.ConnectionTimeout,
		HealthCheckInterval: req.HealthCheckInterval,
	}
	if err := h.manager.AddSource(source); err != nil {
		respondDomainError(w, err)
		return
	}

	status, err := h.manager.GetSource(source.ID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusCreated, status)
}

// UpdateSource handles PUT /api/v1/sources/{id}.
func (h *Handler) UpdateSource(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "request body is not valid JSON", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	updates := resilience.SourceUpdate{
		Name:                req.Name,
		Path:                req.Path,
		Username:            req.Username,
		Password:            req.Password,
		Domain:              req.Domain,
		MaxRetryAttempts:    req.MaxRetryAttempts,
		RetryDelay:          req.RetryDelay,
		ConnectionTimeout:   req.ConnectionTimeout,
		HealthCheckInterval: req.HealthCheckInterval,
	}
	if err := h.manager.UpdateSource(id, updates); err != nil {
		respondDomainError(w, err)
		return
	}

	status, err := h.manager.GetSource(id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, status)
}

// DeleteSource handles DELETE /api/v1/sources/{id}.
func (h *Handler) DeleteSource(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.manager.RemoveSource(id); err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"id": id, "result": "removed"})
}

// ReconnectSource handles POST /api/v1/sources/{id}/reconnect.
// The attempt runs asynchronously; 202 signals it was accepted, not that it
// succeeded.
func (h *Handler) ReconnectSource(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.manager.ForceReconnect(id); err != nil {
		respondDomainError(w, err)
		return
	}
	respondData(w, http.StatusAccepted, map[string]string{"id": id, "result": "reconnect_started"})
}

// NotifyChange handles POST /api/v1/sources/{id}/changes.
// External watchers report file changes here; changes on disconnected sources
// are parked in the offline cache and replayed on reconnect.
func (h *Handler) NotifyChange(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req NotifyChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "request body is not valid JSON", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	if _, err := h.manager.GetSource(id); err != nil {
		respondDomainError(w, err)
		return
	}

	h.manager.NotifyFileChange(id, req.Path)
	respondData(w, http.StatusAccepted, map[string]string{"id": id, "path": req.Path, "result": "accepted"})
}

// HealthLive handles GET /api/v1/health/live.
// Liveness: the process is up and serving.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, map[string]string{"status": "alive"})
}

// healthReadyResponse is the readiness payload.
type healthReadyResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Sources       int     `json:"sources"`
	Connected     int     `json:"connected"`
	Offline       int     `json:"offline"`
	CachedChanges int     `json:"cached_changes"`
}

// HealthReady handles GET /api/v1/health/ready.
// Readiness: the manager has been started. Source-level connectivity is
// reported but does not fail readiness; a manager with all sources offline is
// still correctly doing its job.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	started := !h.manager.StartTime().IsZero()
	if !started {
		respondError(w, http.StatusServiceUnavailable, "NOT_READY", "connection manager not started", nil)
		return
	}

	statuses := h.manager.GetSourceStatus()
	resp := healthReadyResponse{
		Status:        "ready",
		Version:       h.version,
		UptimeSeconds: time.Since(h.manager.StartTime()).Seconds(),
		Sources:       len(statuses),
		CachedChanges: h.manager.Cache().Len(),
	}
	for _, s := range statuses {
		switch s.State {
		case "connected":
			resp.Connected++
		case "offline":
			resp.Offline++
		}
	}

	respondData(w, http.StatusOK, resp)
}
