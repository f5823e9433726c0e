// Conexus - Resilient Remote Storage Connection Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conexus

// Package main is the entry point for the Conexus server.
//
// Conexus supervises connections to remote, unreliable network storage
// endpoints (NAS shares and similar). Each registered source gets its own
// connection state machine with linear-backoff retries, periodic health
// probing, and an offline change cache that replays file changes once the
// source reconnects. An ops HTTP API exposes source CRUD, reconnect, change
// notification, health, and Prometheus metrics.
//
// # Startup Order
//
//  1. Configuration: Koanf v2 layered loading (defaults, YAML, env vars)
//  2. Logging: zerolog initialized from config
//  3. Connector: TCP reachability dialer, optionally behind a circuit breaker
//  4. Manager: source registry, event bus, offline cache, health checker
//  5. Sources: startup-registered sources from config
//  6. Supervisor tree: manager and HTTP server as supervised services
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the root context; the supervisor tree drains the
// HTTP server and joins the manager's tasks before exit.
//
// # Example Usage
//
//	export HTTP_PORT=8787
//	export LOG_LEVEL=debug
//	./conexus
//
// With a config file:
//
//	export CONFIG_PATH=/etc/conexus/config.yaml
//	./conexus
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/conexus/internal/api"
	"github.com/tomtom215/conexus/internal/config"
	"github.com/tomtom215/conexus/internal/logging"
	"github.com/tomtom215/conexus/internal/resilience"
	"github.com/tomtom215/conexus/internal/supervisor"
	"github.com/tomtom215/conexus/internal/supervisor/services"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Config errors use the default logger; config is not available yet.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Int("sources", len(cfg.Sources)).
		Bool("breaker", cfg.Breaker.Enabled).
		Msg("Starting Conexus")

	manager := buildManager(cfg)
	server := buildHTTPServer(cfg, manager)

	slogLogger := logging.NewSlogLogger()
	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddCoreService(services.NewManagerService(manager))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.Timeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", server.Addr).Msg("Supervisor tree starting")

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree exited with error")
		reportUnstopped(tree)
		os.Exit(1)
	}

	reportUnstopped(tree)
	logging.Info().Msg("Shutdown complete")
}

// buildManager assembles the connector stack and the connection manager, then
// registers startup sources. First connection attempts begin immediately;
// supervision tasks start when the tree starts the manager.
func buildManager(cfg *config.Config) *resilience.Manager {
	var connector resilience.Connector = resilience.NewDialConnector()
	if cfg.Breaker.Enabled {
		connector = resilience.NewBreakerConnector(resilience.BreakerConfig{
			Name:        "storage-connector",
			MaxRequests: cfg.Breaker.MaxRequests,
			Interval:    cfg.Breaker.Interval,
			Timeout:     cfg.Breaker.Timeout,
			MinRequests: cfg.Breaker.MinRequests,
			FailureRate: cfg.Breaker.FailureRate,
		}, connector)
		logging.Info().Msg("Circuit breaker enabled for storage connector")
	}

	manager := resilience.NewManager(connector, resilience.ManagerConfig{
		CacheSize:           cfg.Manager.CacheSize,
		BusCapacity:         cfg.Manager.BusCapacity,
		HealthCheckInterval: cfg.Manager.HealthCheckInterval,
		HealthCheckTimeout:  cfg.Manager.HealthCheckTimeout,
		MonitorInterval:     cfg.Manager.MonitorInterval,
	})

	for _, src := range cfg.Sources {
		source := &resilience.Source{
			ID:                  src.ID,
			Name:                src.Name,
			Path:                src.Path,
			Username:            src.Username,
			Password:            src.Password,
			Domain:              src.Domain,
			MaxRetryAttempts:    src.MaxRetryAttempts,
			RetryDelay:          src.RetryDelay,
			ConnectionTimeout:   src.ConnectionTimeout,
			HealthCheckInterval: src.HealthCheckInterval,
		}
		if err := manager.AddSource(source); err != nil {
			logging.Error().
				Err(err).
				Str("name", src.Name).
				Str("path", src.Path).
				Msg("Failed to register configured source")
		}
	}

	return manager
}

// buildHTTPServer wires the ops API router into an http.Server.
func buildHTTPServer(cfg *config.Config, manager *resilience.Manager) *http.Server {
	router := api.NewRouter(manager, version, &api.ChiMiddlewareConfig{
		CORSAllowedOrigins:   cfg.Security.CORSOrigins,
		CORSAllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		CORSAllowedHeaders:   []string{"Content-Type", "Authorization"},
		CORSAllowCredentials: false,
		CORSMaxAge:           86400,
		RateLimitRequests:    cfg.Security.RateLimitReqs,
		RateLimitWindow:      cfg.Security.RateLimitWindow,
		RateLimitDisabled:    cfg.Security.RateLimitDisabled,
	})

	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}
}

// reportUnstopped logs services that failed to stop within the shutdown
// timeout.
func reportUnstopped(tree *supervisor.SupervisorTree) {
	report, err := tree.UnstoppedServiceReport()
	if err != nil || len(report) == 0 {
		return
	}
	for _, svc := range report {
		logging.Warn().
			Str("service", fmt.Sprintf("%v", svc.Service)).
			Msg("Service did not stop within shutdown timeout")
	}
}
