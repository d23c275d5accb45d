// Copyright 2026 The LSM Core Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package cache

import "sync"

// shard is a bounded-capacity, thread-safe, reference-counted LRU cache of
// opaque entries. It is the unit the sharded Cache fans out across; nothing
// in shard's implementation depends on sharding, so it is independently
// testable as a complete LevelDB-style ShardedLRUCache slice.
//
// The LRU list is circular with a sentinel head: head.prev is most-recent,
// head.next is least-recent. An entry stays on the list for as long as the
// shard holds a reference to it, even while pinned by outstanding Handles;
// eviction walks from head.next and skips (rather than unlinks) any entry
// with refs > 1, advancing past pinned entries to preserve their recency
// once they are unpinned.
type shard struct {
	mu sync.Mutex

	capacity int64
	usage    int64

	table handleTable
	head  entry // sentinel; inLRU is unused on the sentinel itself

	metrics *Metrics
}

func (s *shard) init(capacity int64, metrics *Metrics) {
	s.capacity = capacity
	s.metrics = metrics
	s.table.init()
	s.head.next = &s.head
	s.head.prev = &s.head
}

// lruRemove unlinks e from the LRU list. e must currently be on the list.
func (s *shard) lruRemove(e *entry) {
	e.next.prev = e.prev
	e.prev.next = e.next
	e.next, e.prev = nil, nil
	e.inLRU = false
}

// lruPushFront links e at the most-recent end of the list.
func (s *shard) lruPushFront(e *entry) {
	e.prev = s.head.prev
	e.next = &s.head
	e.prev.next = e
	e.next.prev = e
	e.inLRU = true
}

// ref increments e's reference count.
func (s *shard) ref(e *entry) {
	e.refs++
}

// unref decrements e's reference count, running its deleter and releasing
// bookkeeping if the count reaches zero. Must be called with s.mu held.
func (s *shard) unref(e *entry) {
	e.refs--
	if e.refs > 0 {
		return
	}
	if e.refs < 0 {
		panic("lsmcore/cache: negative reference count")
	}
	s.usage -= e.charge
	if s.metrics != nil {
		s.metrics.addSize(-e.charge)
		s.metrics.addCount(-1)
	}
	if e.deleter != nil {
		e.deleter(e.key, e.value)
	}
}

// evict walks the LRU list from the least-recent end, unlinking and
// unref-ing every entry whose sole remaining reference is the shard's own
// (refs == 1), until usage falls at or below capacity or every remaining
// entry on the list is pinned.
func (s *shard) evict() {
	e := s.head.next
	for s.usage > s.capacity && e != &s.head {
		next := e.next
		if e.refs == 1 {
			s.lruRemove(e)
			s.table.remove(e.hash, e.key)
			s.unref(e)
		}
		e = next
	}
}

// Insert creates a new entry with the given key/hash/value/charge/deleter,
// installs it in the hash table and at the most-recent end of the LRU
// list, and returns a Handle pinning it. If an entry with the same key
// already exists, it is unlinked from the LRU list and the shard's own
// reference to it is dropped (any outstanding Handles on it remain valid
// until their own Release). Eviction then runs until usage is within
// capacity or every resident entry is pinned.
func (s *shard) Insert(key []byte, hash uint32, value interface{}, charge int64, deleter Deleter) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := &entry{
		key:     append([]byte(nil), key...),
		hash:    hash,
		value:   value,
		charge:  charge,
		deleter: deleter,
		refs:    2, // one for the LRU list, one for the returned handle
	}
	s.lruPushFront(e)
	s.usage += charge
	if s.metrics != nil {
		s.metrics.addSize(charge)
		s.metrics.addCount(1)
	}

	if old := s.table.insert(e); old != nil {
		if old.inLRU {
			s.lruRemove(old)
		}
		s.unref(old)
	}

	s.evict()
	return e
}

// Lookup returns the entry for (key, hash) with its reference count
// incremented, or nil on a miss. On a hit the entry is moved to the
// most-recent end of the LRU list.
func (s *shard) Lookup(key []byte, hash uint32) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.table.lookup(hash, key)
	if e == nil {
		if s.metrics != nil {
			s.metrics.addMisses(1)
		}
		return nil
	}
	s.ref(e)
	if e.inLRU {
		s.lruRemove(e)
		s.lruPushFront(e)
	}
	if s.metrics != nil {
		s.metrics.addHits(1)
	}
	return e
}

// Release drops the reference a Lookup or Insert handed out.
func (s *shard) Release(e *entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unref(e)
}

// Erase removes (key, hash) from the hash table and LRU list and drops the
// shard's own reference to it. Any outstanding Handles continue to pin the
// entry until their own Release.
func (s *shard) Erase(key []byte, hash uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.table.remove(hash, key)
	if e == nil {
		return
	}
	if e.inLRU {
		s.lruRemove(e)
	}
	s.unref(e)
}

// Prune drops the shard's own reference to every entry whose sole
// remaining reference is the shard's (refs == 1 at the time Prune
// inspects it).
func (s *shard) Prune() {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.head.next
	for e != &s.head {
		next := e.next
		if e.refs == 1 {
			s.lruRemove(e)
			s.table.remove(e.hash, e.key)
			s.unref(e)
		}
		e = next
	}
}

// TotalCharge returns the sum of charges of entries currently live in the
// shard (i.e. with refs > 0).
func (s *shard) TotalCharge() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usage
}
