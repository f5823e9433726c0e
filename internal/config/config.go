// Conexus - Resilient Remote Storage Connection Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conexus

package config

import (
	"time"
)

// Config holds all application configuration loaded from environment variables
// and config files.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access from
// multiple goroutines.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Manager  ManagerConfig  `koanf:"manager"`
	Breaker  BreakerConfig  `koanf:"breaker"`  // Optional: circuit breaker around the downstream connector
	Security SecurityConfig `koanf:"security"` // CORS and rate limiting for the ops API
	Logging  LoggingConfig  `koanf:"logging"`

	// Sources registered at startup. Sources added through the API at runtime
	// are not persisted back to this list.
	Sources []SourceConfig `koanf:"sources"`
}

// ServerConfig holds the ops HTTP server settings.
//
// Environment Variables:
//   - HTTP_HOST: Bind address (default: 0.0.0.0)
//   - HTTP_PORT: Listen port (default: 8787)
//   - HTTP_TIMEOUT: Read/write timeout (default: 30s)
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`
}

// ManagerConfig holds connection manager tunables. Zero values fall back to
// the resilience package defaults.
type ManagerConfig struct {
	CacheSize           int           `koanf:"cache_size"`
	BusCapacity         int           `koanf:"bus_capacity"`
	HealthCheckInterval time.Duration `koanf:"health_check_interval"`
	HealthCheckTimeout  time.Duration `koanf:"health_check_timeout"`
	MonitorInterval     time.Duration `koanf:"monitor_interval"`
}

// BreakerConfig holds circuit breaker settings for the downstream connector.
// Disabled by default; connection supervision alone already bounds retry load.
type BreakerConfig struct {
	Enabled     bool          `koanf:"enabled"`
	MaxRequests uint32        `koanf:"max_requests"`
	Interval    time.Duration `koanf:"interval"`
	Timeout     time.Duration `koanf:"timeout"`
	MinRequests uint32        `koanf:"min_requests"`
	FailureRate float64       `koanf:"failure_rate"`
}

// SecurityConfig holds ops API protection settings.
//
// Environment Variables:
//   - RATE_LIMIT_REQS: Requests allowed per window (default: 100)
//   - RATE_LIMIT_WINDOW: Rate limit window (default: 1m)
//   - RATE_LIMIT_DISABLED: Disable rate limiting entirely
//   - CORS_ORIGINS: Comma-separated allowed origins (default: *)
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds log output settings.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json or console (default: json)
//   - LOG_CALLER: Include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// SourceConfig describes one remote storage source registered at startup.
// Duration and retry fields left zero inherit the manager defaults.
type SourceConfig struct {
	ID                  string        `koanf:"id"`
	Name                string        `koanf:"name"`
	Path                string        `koanf:"path"`
	Username            string        `koanf:"username"`
	Password            string        `koanf:"password"`
	Domain              string        `koanf:"domain"`
	MaxRetryAttempts    int           `koanf:"max_retry_attempts"`
	RetryDelay          time.Duration `koanf:"retry_delay"`
	ConnectionTimeout   time.Duration `koanf:"connection_timeout"`
	HealthCheckInterval time.Duration `koanf:"health_check_interval"`
}
