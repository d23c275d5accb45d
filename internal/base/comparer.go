// Copyright 2026 The LSM Core Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package base

import "bytes"

// Compare returns -1, 0, or +1 depending on whether a is less than, equal
// to, or greater than b. Both a and b must be valid keys.
type Compare func(a, b []byte) int

// Equal returns true if a and b are equivalent. For a given Compare,
// Equal(a, b) iff Compare(a, b) == 0; Equal exists as a potentially faster
// specialization.
type Equal func(a, b []byte) bool

// Separator appends to dst the shortest key k such that a <= k < b, given
// Compare(a, b) < 0. A trivial implementation is `return append(dst, a...)`,
// but appending fewer bytes produces smaller index blocks.
type Separator func(dst, a, b []byte) []byte

// Successor appends to dst the shortest key k such that a <= k. A trivial
// implementation is `return append(dst, a...)`.
type Successor func(dst, a []byte) []byte

// Comparer bundles a total ordering over []byte keys together with the
// shortening operations index block construction relies on. Index
// construction itself lives outside this module (it is a producer of
// separators and successors; this module only consumes the contract).
type Comparer struct {
	Compare   Compare
	Equal     Equal
	Separator Separator
	Successor Successor

	// Name identifies the comparer on disk. A table written with one
	// comparer must never be opened with a different one.
	Name string
}

// DefaultComparer is the bytewise comparer: Compare is bytes.Compare,
// Separator and Successor implement the shortening rules of the original
// LevelDB bytewise comparator.
var DefaultComparer = &Comparer{
	Compare: bytes.Compare,
	Equal:   bytes.Equal,

	Separator: func(dst, a, b []byte) []byte {
		n := SharedPrefixLen(a, b)
		start := len(dst)
		dst = append(dst, a...)

		min := len(a)
		if len(b) < min {
			min = len(b)
		}
		if n >= min {
			// One key is a prefix of the other; shortening further would
			// not preserve a <= k < b, so leave a unchanged.
			return dst
		}

		diffByte := a[n]
		if diffByte < 0xff && diffByte+1 < b[n] {
			dst[start+n] = diffByte + 1
			return dst[:start+n+1]
		}
		// diffByte+1 == b[n] (or diffByte == 0xff): truncating further would
		// still be sound, but the original comparator declines to shorten
		// in this case and we preserve that conservative behavior.
		return dst
	},

	Successor: func(dst, a []byte) []byte {
		for i := 0; i < len(a); i++ {
			if a[i] != 0xff {
				dst = append(dst, a[:i+1]...)
				dst[len(dst)-1]++
				return dst
			}
		}
		// a is a run of 0xff bytes; leave it alone.
		return append(dst, a...)
	},

	Name: "lsmcore.BytewiseComparator",
}

// SharedPrefixLen returns the largest n such that a[:n] equals b[:n].
func SharedPrefixLen(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}
