// Copyright 2026 The LSM Core Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package block

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
)

// FooterLength is the fixed size of the footer at the end of every table
// file: two zero-padded 20-byte handle slots plus an 8-byte magic number.
const FooterLength = 2*20 + 8

// magic identifies a valid table footer. It is the same magic number the
// original LevelDB format uses, taken (per the upstream comment) from the
// leading 64 bits of the SHA-1 of "http://code.google.com/p/leveldb/"; we
// don't need the etymology, only the exact value.
const magic uint64 = 0xdb4775248b80fb57

// Footer is the fixed-length trailer at the end of a table file, pointing
// at the file's metaindex and index blocks.
type Footer struct {
	MetaindexHandle Handle
	IndexHandle     Handle
}

// EncodeTo writes f's two handles into a 48-byte buffer, zero-padding
// each handle's slot to 20 bytes, followed by the 8-byte magic number,
// and appends the result to dst.
func (f Footer) EncodeTo(dst []byte) []byte {
	start := len(dst)
	dst = append(dst, make([]byte, FooterLength)...)
	buf := dst[start:]

	copy(buf[0:20], f.MetaindexHandle.EncodeTo(nil))
	copy(buf[20:40], f.IndexHandle.EncodeTo(nil))
	binary.LittleEndian.PutUint64(buf[40:48], magic)
	return dst
}

// DecodeFrom parses a Footer from exactly FooterLength bytes. It returns
// an invalid-argument error if buf is not exactly that length, and a
// corruption error if the magic number doesn't match or either handle is
// malformed.
func DecodeFrom(buf []byte) (Footer, error) {
	if len(buf) != FooterLength {
		return Footer{}, errors.Newf("block: footer must be exactly %d bytes, got %d", FooterLength, len(buf))
	}
	got := binary.LittleEndian.Uint64(buf[40:48])
	if got != magic {
		return Footer{}, errors.Newf("block: corrupt table (bad magic number 0x%016x)", got)
	}

	metaHandle, _, err := DecodeHandle(buf[0:20])
	if err != nil {
		return Footer{}, errors.Wrap(err, "block: corrupt table (metaindex handle)")
	}
	indexHandle, _, err := DecodeHandle(buf[20:40])
	if err != nil {
		return Footer{}, errors.Wrap(err, "block: corrupt table (index handle)")
	}
	return Footer{MetaindexHandle: metaHandle, IndexHandle: indexHandle}, nil
}
