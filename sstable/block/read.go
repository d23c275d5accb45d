// Copyright 2026 The LSM Core Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package block

import (
	"hash/crc32"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/golang/snappy"
)

// TrailerLen is the length of the trailer written after every block body:
// one compression-type byte plus a 4-byte little-endian CRC32C checksum.
const TrailerLen = 5

// CompressionType identifies how a block's body is compressed on disk. Its
// values are part of the durable format and must not change.
type CompressionType byte

const (
	NoCompression     CompressionType = 0
	SnappyCompression CompressionType = 1
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// Checksum returns the CRC32C checksum of body followed by the single
// compression-type byte typ, matching the trailer layout every block on
// disk carries.
func Checksum(body []byte, typ CompressionType) uint32 {
	c := crc32.New(castagnoli)
	c.Write(body)
	c.Write([]byte{byte(typ)})
	return c.Sum32()
}

// ReadOptions controls how ReadBlock validates and caches the block it
// reads. ReadBlock checks the trailer's checksum only when VerifyChecksums
// is set, and copies FillCache into the returned Contents.Cachable; whether
// to insert the decoded block into a block cache is decided by callers
// above this package.
type ReadOptions struct {
	VerifyChecksums bool
	FillCache       bool
}

// Contents is a decoded block body plus the metadata a caller needs to
// decide how to manage its lifetime.
type Contents struct {
	Data []byte
	// Cachable reports whether the caller may insert Data into a block
	// cache (false for e.g. blocks read for a one-shot iterator that
	// asked not to fill the cache).
	Cachable bool
	// HeapAllocated reports whether Data is a caller-owned heap
	// allocation (safe to retain past the call) versus a view into a
	// buffer the reader may reuse on the next call.
	HeapAllocated bool
}

// ReadBlock reads the size+TrailerLen bytes at h.Offset from r, verifies
// the trailer's checksum when opts.VerifyChecksums is set, and
// decompresses the body according to the trailer's compression-type byte.
// It returns a corruption error on a short read, a checksum mismatch, or
// an unrecognized compression type.
func ReadBlock(r io.ReaderAt, h Handle, opts ReadOptions) (Contents, error) {
	buf := make([]byte, h.Length+TrailerLen)
	n, err := r.ReadAt(buf, int64(h.Offset))
	if err != nil && err != io.EOF {
		return Contents{}, errors.Wrap(err, "block: read failed")
	}
	if uint64(n) != h.Length+TrailerLen {
		return Contents{}, errors.Newf("block: truncated block (read %d of %d bytes)", n, h.Length+TrailerLen)
	}

	body := buf[:h.Length]
	typ := CompressionType(buf[h.Length])
	trailer := buf[h.Length+1 : h.Length+TrailerLen]

	if opts.VerifyChecksums {
		want := Checksum(body, typ)
		got := uint32(trailer[0]) | uint32(trailer[1])<<8 | uint32(trailer[2])<<16 | uint32(trailer[3])<<24
		if got != want {
			return Contents{}, errors.Newf("block: checksum mismatch (got 0x%08x, want 0x%08x)", got, want)
		}
	}

	switch typ {
	case NoCompression:
		return Contents{Data: body, Cachable: opts.FillCache, HeapAllocated: true}, nil
	case SnappyCompression:
		decodedLen, err := snappy.DecodedLen(body)
		if err != nil {
			return Contents{}, errors.Wrap(err, "block: corrupt snappy block")
		}
		decoded := make([]byte, decodedLen)
		decoded, err = snappy.Decode(decoded, body)
		if err != nil {
			return Contents{}, errors.Wrap(err, "block: corrupt snappy block")
		}
		return Contents{Data: decoded, Cachable: opts.FillCache, HeapAllocated: true}, nil
	default:
		return Contents{}, errors.Newf("block: unknown compression type %d", typ)
	}
}
