// Copyright 2026 The LSM Core Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package cache

import "bytes"

// handleTable is a resizable hash table of *entry, chained on collision.
// It mirrors the classic LevelDB cache.cc HandleTable: the bucket count is
// always a power of two, and every lookup/insert/remove goes through
// findPointer, which returns the address of whichever *entry field
// currently points at the target slot (a bucket head or a chain link).
// Routing every mutation through that single pointer makes insert/remove
// pure pointer surgery with no special case for "head of chain" versus
// "middle of chain".
type handleTable struct {
	buckets []*entry
	length  int // number of entries stored
}

const initialHandleTableBuckets = 16

func (t *handleTable) init() {
	t.buckets = make([]*entry, initialHandleTableBuckets)
}

// findPointer returns the address of the *entry field that, if followed,
// leads to the entry matching (hash, key), or to nil if absent.
func (t *handleTable) findPointer(hash uint32, key []byte) **entry {
	slot := &t.buckets[hash&uint32(len(t.buckets)-1)]
	for *slot != nil && !((*slot).hash == hash && bytes.Equal((*slot).key, key)) {
		slot = &(*slot).hnext
	}
	return slot
}

// lookup returns the entry for (hash, key), or nil.
func (t *handleTable) lookup(hash uint32, key []byte) *entry {
	return *t.findPointer(hash, key)
}

// insert installs e, replacing and returning any prior entry with the same
// (hash, key). The caller owns the returned old entry, if any.
func (t *handleTable) insert(e *entry) *entry {
	slot := t.findPointer(e.hash, e.key)
	old := *slot
	if old != nil {
		e.hnext = old.hnext
	} else {
		e.hnext = nil
	}
	*slot = e
	if old == nil {
		t.length++
		if t.length > len(t.buckets) {
			t.resize()
		}
	}
	return old
}

// remove deletes and returns the entry for (hash, key), or nil if absent.
func (t *handleTable) remove(hash uint32, key []byte) *entry {
	slot := t.findPointer(hash, key)
	e := *slot
	if e != nil {
		*slot = e.hnext
		e.hnext = nil
		t.length--
	}
	return e
}

// resize doubles the bucket count and rehashes every chain into it. Bucket
// count is always a power of two, so the mask in findPointer stays valid.
func (t *handleTable) resize() {
	newBuckets := make([]*entry, len(t.buckets)*2)
	mask := uint32(len(newBuckets) - 1)
	for _, head := range t.buckets {
		e := head
		for e != nil {
			next := e.hnext
			idx := e.hash & mask
			e.hnext = newBuckets[idx]
			newBuckets[idx] = e
			e = next
		}
	}
	t.buckets = newBuckets
}
