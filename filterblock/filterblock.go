// Copyright 2026 The LSM Core Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Package filterblock implements the filter block format that lets a point
// lookup skip a data block without reading it: a filter block partitions
// the containing data file into fixed byte-range buckets and stores one
// filter (built by a pluggable FilterPolicy) per bucket, ported from the
// classic LevelDB table/filter_block.{h,cc}.
package filterblock

import (
	"encoding/binary"
)

// FilterPolicy is a pluggable point-lookup accelerator. The concrete
// algorithm (e.g. a bloom filter) is decoupled from the block format
// itself; this package only consumes the interface. A bundled reference
// implementation ships in this package's bloom.go.
type FilterPolicy interface {
	// Name identifies the filter policy on disk. A table written with one
	// policy must never be read with a different one.
	Name() string
	// CreateFilter appends a filter matching the given keys to dst and
	// returns the result. keys is not sorted and may contain duplicates.
	CreateFilter(dst []byte, keys [][]byte) []byte
	// KeyMayMatch reports whether key may be present in the set encoded
	// by filter. False positives are allowed; false negatives are not.
	KeyMayMatch(key, filter []byte) bool
}

// DefaultBaseLg is the default base_lg: log2 of the number of data-file
// bytes covered by one filter partition. 11 means one filter per 2 KiB of
// data file.
const DefaultBaseLg = 11

// Builder accumulates keys as StartBlock/AddKey are called during table
// construction and emits one filter block per Finish. A Builder is
// consumed by Finish and must not be reused afterward.
type Builder struct {
	policy FilterPolicy
	baseLg uint8

	// keys is a flat buffer of all keys added to the filter currently
	// being accumulated; starts records each key's offset into keys, so
	// that generateFilter can slice them back out without a [][]byte per
	// key living the whole time.
	keys   []byte
	starts []int

	// filterOffsets[i] is the byte offset into result where filter i
	// begins; result is the concatenation of every filter emitted so far.
	result        []byte
	filterOffsets []uint32

	// tmpKeys is scratch space reused by generateFilter across calls.
	tmpKeys [][]byte
}

// NewBuilder returns a Builder that partitions data blocks using policy
// and the default base_lg.
func NewBuilder(policy FilterPolicy) *Builder {
	return NewBuilderWithBaseLg(policy, DefaultBaseLg)
}

// NewBuilderWithBaseLg returns a Builder using an explicit base_lg.
func NewBuilderWithBaseLg(policy FilterPolicy, baseLg uint8) *Builder {
	return &Builder{policy: policy, baseLg: baseLg}
}

// StartBlock is called by the table builder with the byte offset (into the
// data file being built) of the data block about to be written. It emits
// one filter for every base_lg-sized byte range before the range
// containing offset (that range's filter is emitted later, by a subsequent
// StartBlock or by Finish), so that filter i always covers
// [i*2^base_lg, (i+1)*2^base_lg). Ranges with no keys added yet get an
// empty filter, keeping the offsets table dense.
func (b *Builder) StartBlock(offset uint64) {
	targetIndex := offset >> b.baseLg
	for uint64(len(b.filterOffsets)) < targetIndex {
		b.generateFilter()
	}
}

// AddKey appends key to the set accumulated for the current filter.
func (b *Builder) AddKey(key []byte) {
	b.starts = append(b.starts, len(b.keys))
	b.keys = append(b.keys, key...)
}

// Finish flushes any remaining accumulated keys as a final filter, appends
// the filter offsets table, the array offset, and the base_lg trailer
// byte, and returns the fully encoded filter block. The Builder must not
// be used again afterward.
func (b *Builder) Finish() []byte {
	if len(b.starts) > 0 {
		b.generateFilter()
	}

	arrayOffset := uint32(len(b.result))
	for _, off := range b.filterOffsets {
		b.result = appendUint32(b.result, off)
	}
	b.result = appendUint32(b.result, arrayOffset)
	b.result = append(b.result, b.baseLg)
	return b.result
}

// generateFilter materializes the keys accumulated since the last call
// (via AddKey) into one filter, appends it to result, and clears the
// per-filter scratch state. Called with no keys accumulated, it still
// records an (empty) filter's start offset, so that StartBlock's "emit a
// keyless filter to fill a gap" case shares this same path.
func (b *Builder) generateFilter() {
	numKeys := len(b.starts)
	if numKeys == 0 {
		b.filterOffsets = append(b.filterOffsets, uint32(len(b.result)))
		return
	}

	b.starts = append(b.starts, len(b.keys)) // sentinel for the last key's length
	if cap(b.tmpKeys) < numKeys {
		b.tmpKeys = make([][]byte, numKeys)
	}
	b.tmpKeys = b.tmpKeys[:numKeys]
	for i := 0; i < numKeys; i++ {
		b.tmpKeys[i] = b.keys[b.starts[i]:b.starts[i+1]]
	}

	b.filterOffsets = append(b.filterOffsets, uint32(len(b.result)))
	b.result = b.policy.CreateFilter(b.result, b.tmpKeys)

	b.keys = b.keys[:0]
	b.starts = b.starts[:0]
}

func appendUint32(dst []byte, v uint32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return append(dst, buf[:]...)
}

// Reader answers "may key match at data block byte offset blockOffset?"
// against a filter block previously produced by Builder.Finish. A Reader
// constructed from malformed input degrades to always answering true
// (conservative "maybe") rather than erroring, since a false positive here
// only costs an extra block read while a false negative would corrupt
// reads.
type Reader struct {
	policy FilterPolicy
	data   []byte // the full encoded block, offsets included
	// offsetsBase is the byte offset within data where the filter offsets
	// table begins (i.e. array_offset).
	offsetsBase uint32
	num         uint32
	baseLg      uint8
	inert       bool
}

// NewReader constructs a Reader over the encoded bytes produced by
// Builder.Finish. It never errors: malformed input yields an inert reader.
func NewReader(policy FilterPolicy, contents []byte) *Reader {
	r := &Reader{policy: policy, data: contents}
	n := len(contents)
	if n < 5 {
		r.inert = true
		return r
	}
	r.baseLg = contents[n-1]
	arrayOffset := binary.LittleEndian.Uint32(contents[n-5 : n-1])
	if arrayOffset > uint32(n-5) {
		r.inert = true
		return r
	}
	r.offsetsBase = arrayOffset
	r.num = (uint32(n-5) - arrayOffset) / 4
	return r
}

// KeyMayMatch reports whether key may be present in the filter covering
// blockOffset. It never returns false for a key the builder actually saw
// while accumulating the filter covering blockOffset; on any structural
// anomaly it conservatively returns true.
func (r *Reader) KeyMayMatch(blockOffset uint64, key []byte) bool {
	if r.inert {
		return true
	}
	i := blockOffset >> r.baseLg
	if i >= uint64(r.num) {
		return true
	}

	start := r.offsetAt(uint32(i))
	var limit uint32
	if uint64(i) == uint64(r.num)-1 {
		// The final filter's limit is the array offset itself, derived
		// positionally rather than via a trailing offsets[num] slot: the
		// offsets table has exactly num entries, one per filter, with no
		// guard slot.
		limit = r.offsetsBase
	} else {
		limit = r.offsetAt(uint32(i) + 1)
	}

	if start > limit || limit > r.offsetsBase {
		return true
	}
	if start == limit {
		return false
	}
	return r.policy.KeyMayMatch(key, r.data[start:limit])
}

func (r *Reader) offsetAt(i uint32) uint32 {
	base := int(r.offsetsBase) + int(i)*4
	return binary.LittleEndian.Uint32(r.data[base : base+4])
}
