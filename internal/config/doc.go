// Conexus - Resilient Remote Storage Connection Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conexus

// Package config loads and validates application configuration with Koanf v2.
//
// Sources are layered with clear precedence, highest last:
//
//	defaults -> YAML config file -> environment variables
//
// The config file is searched at config.yaml, config.yml, and under
// /etc/conexus/, or set explicitly with CONFIG_PATH. Environment variables
// use flat names (HTTP_PORT, LOG_LEVEL, BREAKER_ENABLED) mapped onto the
// nested structure; see the field docs on each config struct.
//
// The returned Config is immutable after Load and safe to share across
// goroutines.
package config
