// Conexus - Resilient Remote Storage Connection Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conexus

package resilience

import (
	"fmt"
	"testing"
	"time"
)

func TestCacheChangeAndReplay(t *testing.T) {
	cache := NewOfflineCache(10)

	cache.CacheChange("s1", "/a")
	cache.CacheChange("s1", "/b")

	entry, ok := cache.Get("s1", "/a")
	if !ok {
		t.Fatal("expected entry for s1:/a")
	}
	if entry.Available {
		t.Error("fresh entry should not be available")
	}

	processed := cache.ProcessCachedChanges("s1")
	checkIntEqual(t, "processed count", processed, 2)

	entry, _ = cache.Get("s1", "/a")
	if !entry.Available {
		t.Error("replayed entry should be available")
	}
}

func TestProcessCachedChangesIdempotent(t *testing.T) {
	cache := NewOfflineCache(10)
	cache.CacheChange("s1", "/a")
	cache.CacheChange("s1", "/b")

	first := cache.ProcessCachedChanges("s1")
	second := cache.ProcessCachedChanges("s1")

	checkIntEqual(t, "first pass", first, 2)
	checkIntEqual(t, "second pass", second, 0)
}

func TestProcessCachedChangesScopedToSource(t *testing.T) {
	cache := NewOfflineCache(10)
	cache.CacheChange("s1", "/a")
	cache.CacheChange("s2", "/b")

	processed := cache.ProcessCachedChanges("s1")
	checkIntEqual(t, "s1 processed", processed, 1)

	entry, _ := cache.Get("s2", "/b")
	if entry.Available {
		t.Error("s2 entry should remain unavailable")
	}
}

func TestCacheEvictsOldestAtCapacity(t *testing.T) {
	cache := NewOfflineCache(3)

	// Strictly increasing timestamps: LastSeen is set at insert time.
	for i := 0; i < 4; i++ {
		cache.CacheChange("s1", fmt.Sprintf("/file-%d", i))
		time.Sleep(2 * time.Millisecond)
	}

	checkIntEqual(t, "cache length", cache.Len(), 3)

	if _, ok := cache.Get("s1", "/file-0"); ok {
		t.Error("first-inserted entry should have been evicted")
	}
	for i := 1; i < 4; i++ {
		if _, ok := cache.Get("s1", fmt.Sprintf("/file-%d", i)); !ok {
			t.Errorf("entry /file-%d missing after eviction", i)
		}
	}
}

func TestCacheOverwriteDoesNotEvict(t *testing.T) {
	cache := NewOfflineCache(2)
	cache.CacheChange("s1", "/a")
	cache.CacheChange("s1", "/b")

	// Overwriting an existing key at capacity must not evict anything.
	cache.CacheChange("s1", "/a")

	checkIntEqual(t, "cache length", cache.Len(), 2)
	if _, ok := cache.Get("s1", "/b"); !ok {
		t.Error("sibling entry lost on overwrite")
	}
}

func TestCacheNeverExceedsMaxSize(t *testing.T) {
	cache := NewOfflineCache(5)
	for i := 0; i < 50; i++ {
		cache.CacheChange("s1", fmt.Sprintf("/f-%d", i))
		if cache.Len() > 5 {
			t.Fatalf("cache exceeded capacity: %d entries", cache.Len())
		}
	}
	checkIntEqual(t, "final length", cache.Len(), 5)
}

func TestEnableOfflineModeDoesNotMutate(t *testing.T) {
	cache := NewOfflineCache(5)
	cache.CacheChange("s1", "/a")

	cache.EnableOfflineMode("s1")

	checkIntEqual(t, "cache length", cache.Len(), 1)
	entry, _ := cache.Get("s1", "/a")
	if entry.Available {
		t.Error("offline mode marking must not touch entries")
	}
}
