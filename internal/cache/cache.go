// Copyright 2026 The LSM Core Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Package cache implements a sharded, reference-counted, capacity-bounded
// LRU cache of opaque entries, in the shape of the classic LevelDB
// ShardedLRUCache (db/table_cache.cc's collaborator). It underlies both the
// table cache (holding open tables) and, outside this module's scope, a
// block cache.
package cache

import (
	"sync"

	"github.com/riftbase/lsmcore/internal/base"
)

// numShardBits controls how many independent LRU shards the keyspace is
// split into: the top numShardBits bits of the 32-bit key hash select the
// shard. Using the high bits for sharding and leaving the low bits to the
// shard-local hash table keeps the two hash consumers independent.
const numShardBits = 4
const numShards = 1 << numShardBits

// shardHashSeed is the seed used when hashing keys for shard selection.
// It is fixed, not configurable: shard selection must be a pure function
// of the key so that a key always lands in the same shard across calls.
const shardHashSeed = 0

// Cache is a sharded LRU cache of opaque (key, value) entries, safe for
// concurrent use. Every returned Handle pins its entry until Release.
type Cache struct {
	shards  [numShards]shard
	metrics Metrics

	idMu  sync.Mutex
	idSeq uint64
}

// Handle is a pinned reference to a cache entry. The zero Handle is not
// valid; Handles are only produced by Insert and Lookup, and must be
// released exactly once via Release.
type Handle struct {
	shard *shard
	e     *entry
}

// Valid reports whether h refers to a live entry (false for the zero
// Handle, e.g. a Lookup miss).
func (h Handle) Valid() bool { return h.e != nil }

// Value returns the value stored in the entry h pins.
func (h Handle) Value() interface{} {
	if h.e == nil {
		return nil
	}
	return h.e.value
}

// New creates a cache whose total capacity is capacity, divided as evenly
// as possible (rounding up) across 2^numShardBits independent shards.
func New(capacity int64) *Cache {
	c := &Cache{}
	perShard := (capacity + numShards - 1) / numShards
	for i := range c.shards {
		c.shards[i].init(perShard, &c.metrics)
	}
	return c
}

func shardFor(c *Cache, hash uint32) *shard {
	return &c.shards[hash>>(32-numShardBits)]
}

func hashKey(key []byte) uint32 {
	return base.Hash(key, shardHashSeed)
}

// Insert inserts value under key with the given charge and deleter, and
// returns a Handle pinning it. The Handle must be released by the caller.
// A prior entry under the same key, if any, is evicted (its own
// outstanding Handles, if any, remain valid until released).
func (c *Cache) Insert(key []byte, value interface{}, charge int64, deleter Deleter) Handle {
	hash := hashKey(key)
	s := shardFor(c, hash)
	e := s.Insert(key, hash, value, charge, deleter)
	return Handle{shard: s, e: e}
}

// Lookup returns a pinned Handle for key, or the zero Handle on a miss.
func (c *Cache) Lookup(key []byte) Handle {
	hash := hashKey(key)
	s := shardFor(c, hash)
	e := s.Lookup(key, hash)
	if e == nil {
		return Handle{}
	}
	return Handle{shard: s, e: e}
}

// Release releases a Handle returned by Insert or Lookup. Releasing the
// zero Handle is a no-op.
func (c *Cache) Release(h Handle) {
	if h.e == nil {
		return
	}
	h.shard.Release(h.e)
}

// Erase removes key from the cache. Handles already outstanding for it
// continue to pin the entry until their own Release.
func (c *Cache) Erase(key []byte) {
	hash := hashKey(key)
	shardFor(c, hash).Erase(key, hash)
}

// Prune drops the cache's own reference to every entry that has no
// outstanding Handles, across all shards.
func (c *Cache) Prune() {
	for i := range c.shards {
		c.shards[i].Prune()
	}
}

// TotalCharge returns the sum of charges of all live entries across every
// shard.
func (c *Cache) TotalCharge() int64 {
	var total int64
	for i := range c.shards {
		total += c.shards[i].TotalCharge()
	}
	return total
}

// Metrics returns a snapshot of the cache's cumulative hit/miss/size
// counters.
func (c *Cache) Metrics() Snapshot {
	return c.metrics.snapshot()
}

// NewID returns a process-unique, monotonically increasing identifier.
// It is used by callers (e.g. a block cache layered on top of a shared
// Cache) to namespace keys per logical cache instance; this module does
// not otherwise consume it. The id generator has its own mutex,
// independent of every shard's mutex, so allocating an id never
// contends with ordinary cache traffic.
func (c *Cache) NewID() uint64 {
	c.idMu.Lock()
	defer c.idMu.Unlock()
	c.idSeq++
	return c.idSeq
}
