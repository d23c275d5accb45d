// Copyright 2026 The LSM Core Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package cache

import "sync/atomic"

// Metrics holds cumulative counters for a Cache, summed across its shards.
// This is not part of the original LevelDB cache interface, but mirrors
// pebble's internal/cache.Metrics: giving callers (notably the table
// cache) basic hit/miss/size observability costs nothing functionally and
// is how the rest of the pack instruments its caches.
type Metrics struct {
	size   atomic.Int64
	count  atomic.Int64
	hits   atomic.Int64
	misses atomic.Int64
}

func (m *Metrics) addSize(delta int64)   { m.size.Add(delta) }
func (m *Metrics) addCount(delta int64)  { m.count.Add(delta) }
func (m *Metrics) addHits(delta int64)   { m.hits.Add(delta) }
func (m *Metrics) addMisses(delta int64) { m.misses.Add(delta) }

// Size returns the total charge of all live entries.
func (m *Metrics) Size() int64 { return m.size.Load() }

// Count returns the number of live entries.
func (m *Metrics) Count() int64 { return m.count.Load() }

// Hits returns the cumulative number of Lookup hits.
func (m *Metrics) Hits() int64 { return m.hits.Load() }

// Misses returns the cumulative number of Lookup misses.
func (m *Metrics) Misses() int64 { return m.misses.Load() }

// Snapshot is a point-in-time copy of a Cache's cumulative counters.
type Snapshot struct {
	Size, Count, Hits, Misses int64
}

func (m *Metrics) snapshot() Snapshot {
	return Snapshot{
		Size:   m.Size(),
		Count:  m.Count(),
		Hits:   m.Hits(),
		Misses: m.Misses(),
	}
}
