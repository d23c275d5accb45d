// Copyright 2026 The LSM Core Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Package sstable provides the table cache: a mapping from file number to
// a pinned, lazily-opened table, backed by the sharded LRU cache in
// internal/cache. It mirrors the classic LevelDB db/table_cache.{h,cc},
// generalized so the concrete table format (block decoding, index
// parsing) is a caller-supplied seam rather than baked in.
package sstable

import (
	"encoding/binary"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/riftbase/lsmcore/internal/base"
	"github.com/riftbase/lsmcore/internal/cache"
)

// File is the random-access, closable handle a Table is opened from. The
// concrete environment (real files, an in-memory filesystem, ...) is out
// of this module's scope; TableCache only needs this much of it.
type File interface {
	io.ReaderAt
	io.Closer
}

// FS opens table files by name. The concrete filesystem is out of this
// module's scope; TableCache depends on this narrow seam instead.
type FS interface {
	Open(name string) (File, error)
}

// Table is an opened table: the table format itself is out of this
// module's scope. TableCache only needs enough of a table to iterate it
// and to perform a filter-accelerated point lookup; parsing the
// footer/index/metaindex and decoding blocks is entirely the concrete
// Table implementation's business.
type Table interface {
	// NewIterator returns an Iterator over the table's (key, value) pairs
	// in key order.
	NewIterator() (base.Iterator, error)
	// InternalGet performs the table's point lookup, consulting its
	// filter block to skip a data block read when possible. saver is
	// invoked with the found (key, value) pair if any; it is not invoked
	// on a miss.
	InternalGet(key []byte, saver func(key, value []byte)) error
	// Close releases the table's own resources. The File it was opened
	// from is owned by the table cache, not the table, and is closed
	// separately.
	Close() error
}

// OpenTableFunc opens a Table given its underlying file and size. It is
// the seam FindTable uses to delegate footer/index parsing to a concrete
// table format implementation.
type OpenTableFunc func(f File, fileSize int64) (Table, error)

// Options configures a TableCache.
type Options struct {
	// Dirname is the database directory tables are resolved within.
	Dirname string
	// FS resolves table filenames to open files.
	FS FS
	// OpenTable opens a Table from a file and its size.
	OpenTable OpenTableFunc
	// Size is the cache's entry budget, charge 1 per table (entry-count
	// based, not byte based, so operators can cap open-file count
	// directly). The budget is split across the cache's 16 shards with
	// each shard's share rounded up, so the cache's own LRU references can
	// hold up to Size+15 open tables when keys spread across shards.
	Size int64
}

// TableCache maps a file number to a pinned (file, opened table) pair,
// using a sharded cache as storage. Failures to open a table are never
// cached, so a transient error (e.g. a momentarily unavailable disk)
// self-heals on the next access.
type TableCache struct {
	dirname   string
	fs        FS
	openTable OpenTableFunc
	cache     *cache.Cache
}

// NewTableCache constructs a TableCache per opts.
func NewTableCache(opts Options) *TableCache {
	return &TableCache{
		dirname:   opts.Dirname,
		fs:        opts.FS,
		openTable: opts.OpenTable,
		cache:     cache.New(opts.Size),
	}
}

func encodeFileNum(fileNum uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], fileNum)
	return buf[:]
}

type tableAndFile struct {
	table Table
	file  File
}

// FindTable returns a pinned Handle whose Value is the opened Table for
// fileNum. On a cache miss it opens the file at the primary filename,
// falling back to the legacy filename for compatibility with older
// databases, then delegates to OpenTable. A successful open is inserted
// into the cache with charge 1; a failed open is not cached.
func (c *TableCache) FindTable(fileNum uint64, fileSize int64) (cache.Handle, error) {
	key := encodeFileNum(fileNum)
	if h := c.cache.Lookup(key); h.Valid() {
		return h, nil
	}

	f, err := c.fs.Open(Filename(c.dirname, fileNum))
	if err != nil {
		f, err = c.fs.Open(LegacyFilename(c.dirname, fileNum))
	}
	if err != nil {
		return cache.Handle{}, errors.Wrapf(err, "sstable: could not open table %d", fileNum)
	}

	table, err := c.openTable(f, fileSize)
	if err != nil {
		_ = f.Close()
		return cache.Handle{}, errors.Wrapf(err, "sstable: could not open table %d", fileNum)
	}

	tf := &tableAndFile{table: table, file: f}
	h := c.cache.Insert(key, tf, 1, func(key []byte, value interface{}) {
		tf := value.(*tableAndFile)
		_ = tf.table.Close()
		_ = tf.file.Close()
	})
	return h, nil
}

// NewIterator returns an Iterator over the table identified by fileNum.
// The handle FindTable acquires is released by the returned iterator's
// Close, via a registered cleanup, so a long-lived scan keeps its table
// pinned even if the cache churns underneath it. On error, the returned
// Iterator is permanently invalid and its Error() carries the failure.
func (c *TableCache) NewIterator(fileNum uint64, fileSize int64) base.Iterator {
	h, err := c.FindTable(fileNum, fileSize)
	if err != nil {
		return newErrorIter(err)
	}
	tf := h.Value().(*tableAndFile)

	it, err := tf.table.NewIterator()
	if err != nil {
		c.cache.Release(h)
		return newErrorIter(err)
	}
	it.RegisterCleanup(func() { c.cache.Release(h) })
	return it
}

// Get performs a point lookup of key in the table identified by fileNum,
// invoking saver with the (key, value) pair if found. The cache handle is
// released before Get returns, unlike NewIterator, since a point lookup
// has no lifetime that outlives the call.
func (c *TableCache) Get(fileNum uint64, fileSize int64, key []byte, saver func(key, value []byte)) error {
	h, err := c.FindTable(fileNum, fileSize)
	if err != nil {
		return err
	}
	defer c.cache.Release(h)

	tf := h.Value().(*tableAndFile)
	return tf.table.InternalGet(key, saver)
}

// Evict removes fileNum's entry from the cache, so the next access
// reopens the file from scratch. Any iterator currently pinning the
// table via a prior NewIterator continues to see it until its own Close.
func (c *TableCache) Evict(fileNum uint64) {
	c.cache.Erase(encodeFileNum(fileNum))
}
