// Conexus - Resilient Remote Storage Connection Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conexus

package resilience

import (
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/conexus/internal/logging"
	"github.com/tomtom215/conexus/internal/metrics"
)

// DefaultCacheSize bounds the offline cache when no size is configured.
const DefaultCacheSize = 1000

// CacheEntry records one file change observed while its source was
// unreachable. Available flips to true once the change is replayed after
// reconnection.
type CacheEntry struct {
	Path      string                 `json:"path"`
	Metadata  map[string]interface{} `json:"metadata"`
	LastSeen  time.Time              `json:"last_seen"`
	Available bool                   `json:"available"`
	SourceID  string                 `json:"source_id"`
}

// OfflineCache is a bounded store of file-change events accumulated while
// sources are unreachable, keyed by "sourceId:path". At capacity, the entry
// with the oldest LastSeen is evicted; the linear scan is acceptable at the
// bounded sizes the cache is configured with. All operations are serialized
// behind one cache-specific lock, independent of source and registry locks.
type OfflineCache struct {
	entries map[string]*CacheEntry
	maxSize int
	mu      sync.Mutex
}

// NewOfflineCache creates an offline cache holding at most maxSize entries.
// Non-positive sizes fall back to DefaultCacheSize.
func NewOfflineCache(maxSize int) *OfflineCache {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}
	return &OfflineCache{
		entries: make(map[string]*CacheEntry),
		maxSize: maxSize,
	}
}

func cacheKey(sourceID, path string) string {
	return fmt.Sprintf("%s:%s", sourceID, path)
}

// CacheChange records a file change for a disconnected source. Inserting a
// new key at capacity first evicts the entry with the smallest LastSeen;
// overwriting an existing key never evicts. The entry is stored with
// LastSeen=now and Available=false until replayed.
func (c *OfflineCache) CacheChange(sourceID, path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(sourceID, path)
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	c.entries[key] = &CacheEntry{
		Path:     path,
		Metadata: make(map[string]interface{}),
		LastSeen: time.Now(),
		SourceID: sourceID,
	}
	metrics.OfflineCacheEntries.Set(float64(len(c.entries)))

	logging.Debug().
		Str("source_id", sourceID).
		Str("path", path).
		Msg("Cached file change")
}

// ProcessCachedChanges marks every unavailable entry for the source as
// available and returns how many were processed. Idempotent: a second
// consecutive call processes zero additional entries.
func (c *OfflineCache) ProcessCachedChanges(sourceID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	processed := 0
	for _, entry := range c.entries {
		if entry.SourceID == sourceID && !entry.Available {
			entry.Available = true
			processed++
		}
	}

	if processed > 0 {
		metrics.OfflineCacheReplayed.Add(float64(processed))
	}
	logging.Info().
		Str("source_id", sourceID).
		Int("count", processed).
		Msg("Processed cached changes")
	return processed
}

// EnableOfflineMode is an observability hook invoked when a source
// disconnects. Offline-mode marking is metadata-only; no cache mutation.
func (c *OfflineCache) EnableOfflineMode(sourceID string) {
	logging.Info().Str("source_id", sourceID).Msg("Source entering offline mode")
}

// Get returns a copy of the entry for sourceID:path, if present.
func (c *OfflineCache) Get(sourceID, path string) (CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[cacheKey(sourceID, path)]
	if !ok {
		return CacheEntry{}, false
	}
	return *entry, true
}

// Len returns the current number of cached entries.
func (c *OfflineCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictOldest removes the entry with the smallest LastSeen.
// Caller must hold mu.
func (c *OfflineCache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range c.entries {
		if oldestKey == "" || entry.LastSeen.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.LastSeen
		}
	}

	if oldestKey != "" {
		delete(c.entries, oldestKey)
		metrics.OfflineCacheEvictions.Inc()
		logging.Debug().Str("key", oldestKey).Msg("Evicted offline cache entry")
	}
}
