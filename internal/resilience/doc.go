// Conexus - Resilient Remote Storage Connection Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conexus

/*
Package resilience keeps a catalog of remote storage sources usable despite
transient and permanent outages.

# Components

  - Manager: owns the source registry, the event bus, the offline cache, and
    the health checker; exposes the lifecycle and CRUD API.
  - Connection supervision (supervisor.go): per-source retry/backoff state
    machine driving connect attempts and reconnection.
  - Bus: bounded event channel with drop-oldest backpressure and a single
    dispatcher task.
  - OfflineCache: bounded store of file changes accumulated while a source
    is unreachable, replayed on reconnect.
  - HealthChecker: ticker-driven prober re-verifying connected sources.
  - Connector: the downstream protocol contract (Connect/Probe under a
    deadline); DialConnector and BreakerConnector are the shipped
    implementations.

# Failure policy

Transient connection and probe failures never surface as hard errors to API
callers. They drive internal state transitions and scheduled retries, and are
exposed asynchronously via events and via lastError/state in status
snapshots. Only structural errors (ErrSourceNotFound, ErrSourceDisabled) are
returned synchronously. Exhausting the retry budget parks a source in the
Offline terminal state; recovery requires an explicit ForceReconnect, which
prevents automatic retry storms against a permanently dead endpoint.

# Concurrency

Every connect attempt, backoff wait, and probe runs on its own task. The
registry map, each source's mutable fields, and the cache each have their own
lock; shutdown is one broadcast channel observed by every long-lived loop,
and a WaitGroup joins all spawned tasks before Stop returns.
*/
package resilience
