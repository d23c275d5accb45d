// Copyright 2026 The LSM Core Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package base

// Iterator iterates over a DB's key/value pairs in key order. An Iterator
// must be closed after use, but it is not necessary to read an iterator to
// exhaustion before closing it.
//
// An Iterator is not safe for concurrent use, but it is safe to use multiple
// iterators concurrently, with each used by a single goroutine.
type Iterator interface {
	// Valid returns true if the iterator is positioned at a valid key/value
	// pair.
	Valid() bool
	// SeekToFirst moves the iterator to the first key/value pair.
	SeekToFirst()
	// SeekToLast moves the iterator to the last key/value pair.
	SeekToLast()
	// Seek moves the iterator to the first key/value pair whose key is >=
	// target.
	Seek(target []byte)
	// Next moves the iterator to the next key/value pair. It returns false
	// if the iterator is exhausted.
	Next() bool
	// Prev moves the iterator to the previous key/value pair. It returns
	// false if the iterator is exhausted.
	Prev() bool
	// Key returns the key of the current key/value pair, or nil if invalid.
	// The caller should not modify the contents of the returned slice, and
	// its contents may change on the next call to any iterator method.
	Key() []byte
	// Value returns the value of the current key/value pair, or nil if
	// invalid. The same lifetime caveats as Key apply.
	Value() []byte
	// Error returns any accumulated error. It does not terminate the
	// iteration; it is up to the caller to decide when to give up.
	Error() error
	// RegisterCleanup registers a function to run when the iterator is
	// closed. Cleanups run in LIFO order, mirroring defer semantics: the
	// most recently registered cleanup runs first.
	RegisterCleanup(cleanup func())
	// Close closes the iterator, running every registered cleanup in LIFO
	// order, and returns the first error encountered (if any was set via
	// Error before Close, or is unrelated to cleanups, callers should check
	// Error as well).
	Close() error
}

// CleanupIterator is embeddable by Iterator implementations that need
// RegisterCleanup/Close bookkeeping without hand-rolling the LIFO stack
// every time. It does not implement the rest of the Iterator interface.
type CleanupIterator struct {
	cleanups []func()
	closed   bool
}

// RegisterCleanup appends fn to the cleanup stack.
func (c *CleanupIterator) RegisterCleanup(fn func()) {
	c.cleanups = append(c.cleanups, fn)
}

// Close runs every registered cleanup in LIFO order. It is idempotent.
func (c *CleanupIterator) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	for i := len(c.cleanups) - 1; i >= 0; i-- {
		c.cleanups[i]()
	}
	c.cleanups = nil
	return nil
}
