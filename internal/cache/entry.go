// Copyright 2026 The LSM Core Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package cache

// Deleter is invoked exactly once, when an entry's reference count drops to
// zero. It runs under the owning shard's mutex; it must not call back into
// the cache that owns it.
type Deleter func(key []byte, value interface{})

// entry is a single cache record. It is simultaneously a member of the
// shard's hash table (via hnext) and, for as long as the shard itself holds
// a reference, a member of the shard's LRU list (via next/prev). The key
// bytes are owned by the entry; Insert copies the key so callers may reuse
// or discard the slice they passed in.
type entry struct {
	key     []byte
	hash    uint32
	value   interface{}
	deleter Deleter
	charge  int64

	// refs is the reference count. An entry is reachable either from the
	// LRU list (one reference, "the cache's own") or from outstanding
	// Handles (one reference per Handle), or both. refs hits zero exactly
	// once, at which point the deleter runs and the entry is discarded.
	refs int32

	// inLRU reports whether this entry currently occupies a slot on the
	// shard's LRU list. It is true from Insert/Lookup-hit until Erase or
	// eviction unlinks it; it does not depend on refs, since a pinned
	// entry stays on the list and is merely skipped during eviction.
	inLRU bool

	// next/prev link the entry into the shard's circular LRU list.
	// Meaningless unless inLRU is true.
	next, prev *entry

	// hnext links the entry into its hash table bucket's chain.
	hnext *entry
}
