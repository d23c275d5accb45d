// Copyright 2026 The LSM Core Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Package merge implements a k-way sort-merge iterator over N child
// iterators sharing a comparator, ported from the classic LevelDB
// table/merger.cc MergingIterator. It runs O(N) per step rather than
// using a heap: the expected fan-in (SSTable levels times files per
// level touched by a point scan) is small enough that a heap's extra
// bookkeeping isn't worth it.
package merge

import "github.com/riftbase/lsmcore/internal/base"

type direction int

const (
	dirForward direction = iota
	dirReverse
)

// mergingIter composes children into a single sorted stream. Its
// correctness rests on a direction invariant: in Forward mode every
// non-current child's key is strictly greater than key(); in Reverse mode
// every non-current child's key is strictly less than key(). Next/Prev
// only pay to re-establish the invariant when the direction flips;
// otherwise they do O(N) work solely to locate the new extremum.
type mergingIter struct {
	base.CleanupIterator
	cmp      base.Compare
	children []base.Iterator
	current  int // index into children, or -1 if invalid
	dir      direction
}

// NewMergingIterator returns an Iterator over the sorted union of iters'
// entries. Two fast paths avoid the general machinery entirely: zero
// children yields an iterator that is always invalid, and one child is
// returned unwrapped (its own cleanup hooks already do everything a
// one-element merge would need).
func NewMergingIterator(cmp base.Compare, iters ...base.Iterator) base.Iterator {
	switch len(iters) {
	case 0:
		return &emptyIterator{}
	case 1:
		return iters[0]
	default:
		return &mergingIter{cmp: cmp, children: iters, current: -1}
	}
}

func (m *mergingIter) Valid() bool { return m.current >= 0 }

func (m *mergingIter) Key() []byte {
	if !m.Valid() {
		return nil
	}
	return m.children[m.current].Key()
}

func (m *mergingIter) Value() []byte {
	if !m.Valid() {
		return nil
	}
	return m.children[m.current].Value()
}

// Error reports the first non-ok status across every child, so a failure
// in any source is never silently dropped.
func (m *mergingIter) Error() error {
	for _, c := range m.children {
		if err := c.Error(); err != nil {
			return err
		}
	}
	return nil
}

func (m *mergingIter) SeekToFirst() {
	for _, c := range m.children {
		c.SeekToFirst()
	}
	m.dir = dirForward
	m.findSmallest()
}

func (m *mergingIter) SeekToLast() {
	for _, c := range m.children {
		c.SeekToLast()
	}
	m.dir = dirReverse
	m.findLargest()
}

func (m *mergingIter) Seek(target []byte) {
	for _, c := range m.children {
		c.Seek(target)
	}
	m.dir = dirForward
	m.findSmallest()
}

// Next advances to the next key in ascending order. If the iterator was
// moving backward, every non-current child is first re-aligned to sit
// strictly past key(), restoring the forward invariant, before the
// current child itself advances.
func (m *mergingIter) Next() bool {
	if !m.Valid() {
		return false
	}
	if m.dir != dirForward {
		key := m.Key()
		for i, c := range m.children {
			if i == m.current {
				continue
			}
			c.Seek(key)
			if c.Valid() && m.cmp(c.Key(), key) == 0 {
				c.Next()
			}
		}
		m.dir = dirForward
	}
	m.children[m.current].Next()
	m.findSmallest()
	return m.Valid()
}

// Prev retreats to the previous key in descending order, mirroring Next.
func (m *mergingIter) Prev() bool {
	if !m.Valid() {
		return false
	}
	if m.dir != dirReverse {
		key := m.Key()
		for i, c := range m.children {
			if i == m.current {
				continue
			}
			c.Seek(key)
			if c.Valid() {
				c.Prev()
			} else {
				c.SeekToLast()
			}
		}
		m.dir = dirReverse
	}
	m.children[m.current].Prev()
	m.findLargest()
	return m.Valid()
}

// findSmallest scans every child for the smallest valid key. Only a
// strictly smaller key replaces the current candidate, so among equal
// keys the first child in index order wins: a stable tie-break.
func (m *mergingIter) findSmallest() {
	m.current = -1
	for i, c := range m.children {
		if !c.Valid() {
			continue
		}
		if m.current == -1 || m.cmp(c.Key(), m.children[m.current].Key()) < 0 {
			m.current = i
		}
	}
}

// findLargest mirrors findSmallest, but a key equal to (not just greater
// than) the current candidate also replaces it, so among equal keys the
// last child in index order wins — the mirror image of findSmallest's
// tie-break, matching what a reverse SeekToLast scan would surface.
func (m *mergingIter) findLargest() {
	m.current = -1
	for i, c := range m.children {
		if !c.Valid() {
			continue
		}
		if m.current == -1 || m.cmp(c.Key(), m.children[m.current].Key()) >= 0 {
			m.current = i
		}
	}
}

// Close closes every child, in index order, before running any cleanups
// registered directly on the merging iterator itself. This is what lets a
// table cache's per-table cleanup (releasing its cache handle) actually
// fire when a range scan composed from N tables is dropped.
func (m *mergingIter) Close() error {
	var err error
	for _, c := range m.children {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	if cerr := m.CleanupIterator.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// emptyIterator is the zero-children fast path: permanently invalid.
type emptyIterator struct {
	base.CleanupIterator
}

func (*emptyIterator) Valid() bool     { return false }
func (*emptyIterator) SeekToFirst()    {}
func (*emptyIterator) SeekToLast()     {}
func (*emptyIterator) Seek([]byte)     {}
func (*emptyIterator) Next() bool      { return false }
func (*emptyIterator) Prev() bool      { return false }
func (*emptyIterator) Key() []byte     { return nil }
func (*emptyIterator) Value() []byte   { return nil }
func (*emptyIterator) Error() error    { return nil }
