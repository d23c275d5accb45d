// Copyright 2026 The LSM Core Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package filterblock

import "github.com/riftbase/lsmcore/internal/base"

// bloomHashSeed is the seed the classic LevelDB bloom filter uses; it is
// deliberately different from the cache's shard-selection seed (0) so a
// key's shard and its bloom bit positions vary independently.
const bloomHashSeed = 0xbc9f1d34

// bloomPolicy is a direct port of the classic LevelDB bloom filter
// (util/bloom.cc), reworked to the FilterPolicy shape this package
// expects. It exists so the Builder/Reader pair has a concrete, testable
// policy without every caller needing to supply their own; callers remain
// free to plug in a different FilterPolicy entirely.
type bloomPolicy struct {
	bitsPerKey int
	k          uint32
}

// NewBloomPolicy returns a FilterPolicy encoding sets as bloom filters
// with approximately bitsPerKey bits of filter data per key.
func NewBloomPolicy(bitsPerKey int) FilterPolicy {
	if bitsPerKey < 0 {
		bitsPerKey = 0
	}
	// 0.69 =~ ln(2); this is the number-of-probes that minimizes the
	// false positive rate for a given bits-per-key budget.
	k := uint32(float64(bitsPerKey) * 0.69)
	if k < 1 {
		k = 1
	}
	if k > 30 {
		k = 30
	}
	return &bloomPolicy{bitsPerKey: bitsPerKey, k: k}
}

func (p *bloomPolicy) Name() string { return "lsmcore.BuiltinBloomFilter" }

func (p *bloomPolicy) CreateFilter(dst []byte, keys [][]byte) []byte {
	nBits := len(keys) * p.bitsPerKey
	// Very small key sets see a poor false-positive rate; floor the
	// filter length so short-lived tables aren't pathologically lossy.
	if nBits < 64 {
		nBits = 64
	}
	nBytes := (nBits + 7) / 8
	nBits = nBytes * 8

	start := len(dst)
	dst = append(dst, make([]byte, nBytes+1)...)
	filter := dst[start : start+nBytes]

	for _, key := range keys {
		h := base.Hash(key, bloomHashSeed)
		delta := h>>17 | h<<15 // rotate right 17 bits, for double hashing
		for j := uint32(0); j < p.k; j++ {
			bitPos := h % uint32(nBits)
			filter[bitPos/8] |= 1 << (bitPos % 8)
			h += delta
		}
	}
	dst[start+nBytes] = byte(p.k)
	return dst
}

func (p *bloomPolicy) KeyMayMatch(key, filter []byte) bool {
	if len(filter) < 2 {
		return false
	}
	k := filter[len(filter)-1]
	if k > 30 {
		// Reserved for future short-filter encodings; treat as a match.
		return true
	}
	nBits := uint32(8 * (len(filter) - 1))
	h := base.Hash(key, bloomHashSeed)
	delta := h>>17 | h<<15
	for j := uint8(0); j < k; j++ {
		bitPos := h % nBits
		if filter[bitPos/8]&(1<<(bitPos%8)) == 0 {
			return false
		}
		h += delta
	}
	return true
}
