// Copyright 2026 The LSM Core Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Package block implements the fixed-layout binary pointers (block
// handles, the footer) that locate the index and metaindex blocks within
// a table file, plus the shape of reading a block off disk (trailer
// verification and decompression). It mirrors the classic LevelDB
// table/format.{h,cc}.
package block

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
)

// Handle is the file offset and length of a block, as recorded in an
// index or metaindex entry.
type Handle struct {
	Offset uint64
	Length uint64
}

// MaxEncodedHandleLen is the maximum number of bytes EncodeTo can write:
// two varint-encoded uint64s, 10 bytes each.
const MaxEncodedHandleLen = 2 * binary.MaxVarintLen64

// EncodeTo appends h's offset and length to dst as two little-endian
// variable-length integers and returns the result.
func (h Handle) EncodeTo(dst []byte) []byte {
	var buf [MaxEncodedHandleLen]byte
	n := binary.PutUvarint(buf[:], h.Offset)
	n += binary.PutUvarint(buf[n:], h.Length)
	return append(dst, buf[:n]...)
}

// DecodeHandle reads a varint-encoded (offset, length) pair from the
// start of src and returns the decoded Handle along with the number of
// bytes consumed. It returns a corruption error if either varint is
// malformed.
func DecodeHandle(src []byte) (Handle, int, error) {
	offset, n := binary.Uvarint(src)
	if n <= 0 {
		return Handle{}, 0, errors.New("block: corrupt handle (bad offset varint)")
	}
	length, m := binary.Uvarint(src[n:])
	if m <= 0 {
		return Handle{}, 0, errors.New("block: corrupt handle (bad length varint)")
	}
	return Handle{Offset: offset, Length: length}, n + m, nil
}
