// Conexus - Resilient Remote Storage Connection Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conexus

package config

import (
	"fmt"
	"net"
	"strings"
)

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateManager(); err != nil {
		return err
	}

	if err := c.validateBreaker(); err != nil {
		return err
	}

	if err := c.validateSources(); err != nil {
		return err
	}

	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %v", c.Server.Timeout)
	}
	return nil
}

func (c *Config) validateManager() error {
	if c.Manager.CacheSize < 0 {
		return fmt.Errorf("CACHE_SIZE must not be negative, got %d", c.Manager.CacheSize)
	}
	if c.Manager.BusCapacity < 0 {
		return fmt.Errorf("BUS_CAPACITY must not be negative, got %d", c.Manager.BusCapacity)
	}
	if c.Manager.HealthCheckInterval < 0 {
		return fmt.Errorf("HEALTH_CHECK_INTERVAL must not be negative, got %v", c.Manager.HealthCheckInterval)
	}
	if c.Manager.HealthCheckTimeout < 0 {
		return fmt.Errorf("HEALTH_CHECK_TIMEOUT must not be negative, got %v", c.Manager.HealthCheckTimeout)
	}
	if c.Manager.MonitorInterval < 0 {
		return fmt.Errorf("MONITOR_INTERVAL must not be negative, got %v", c.Manager.MonitorInterval)
	}
	return nil
}

func (c *Config) validateBreaker() error {
	if !c.Breaker.Enabled {
		return nil
	}
	if c.Breaker.FailureRate < 0 || c.Breaker.FailureRate > 1 {
		return fmt.Errorf("BREAKER_FAILURE_RATE must be between 0 and 1, got %v", c.Breaker.FailureRate)
	}
	return nil
}

// validateSources checks startup-registered sources: each needs a reachable
// looking host:port path and a unique ID when one is given.
func (c *Config) validateSources() error {
	seen := make(map[string]bool)
	for i, src := range c.Sources {
		if src.Path == "" {
			return fmt.Errorf("sources[%d]: path is required", i)
		}
		if err := validateHostPort(src.Path); err != nil {
			return fmt.Errorf("sources[%d]: path is invalid: %w", i, err)
		}
		if src.ID != "" {
			if seen[src.ID] {
				return fmt.Errorf("sources[%d]: duplicate source ID %q", i, src.ID)
			}
			seen[src.ID] = true
		}
		if src.MaxRetryAttempts < 0 {
			return fmt.Errorf("sources[%d]: max_retry_attempts must not be negative", i)
		}
		if src.RetryDelay < 0 || src.ConnectionTimeout < 0 || src.HealthCheckInterval < 0 {
			return fmt.Errorf("sources[%d]: durations must not be negative", i)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error", "":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error; got %q", c.Logging.Level)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "console", "":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// validateHostPort checks that an address splits into a host and a port.
func validateHostPort(addr string) error {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("expected host:port, got %q", addr)
	}
	if host == "" {
		return fmt.Errorf("missing host in %q", addr)
	}
	if port == "" {
		return fmt.Errorf("missing port in %q", addr)
	}
	return nil
}
