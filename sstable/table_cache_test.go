// Copyright 2026 The LSM Core Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package sstable

import (
	"sort"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/riftbase/lsmcore/internal/base"
	"github.com/stretchr/testify/require"
)

// sliceIterator is a minimal base.Iterator over sorted key/value slices, enough
// to exercise TableCache.NewIterator without a real table format.
type sliceIterator struct {
	base.CleanupIterator
	keys, values []string
	pos          int
}

func newSliceIterator(kv map[string]string) *sliceIterator {
	keys := make([]string, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	values := make([]string, len(keys))
	for i, k := range keys {
		values[i] = kv[k]
	}
	return &sliceIterator{keys: keys, values: values, pos: -1}
}

func (s *sliceIterator) Valid() bool { return s.pos >= 0 && s.pos < len(s.keys) }
func (s *sliceIterator) SeekToFirst() { s.pos = 0 }
func (s *sliceIterator) SeekToLast()  { s.pos = len(s.keys) - 1 }
func (s *sliceIterator) Seek(target []byte) {
	s.pos = sort.SearchStrings(s.keys, string(target))
}
func (s *sliceIterator) Next() bool {
	if s.pos < len(s.keys) {
		s.pos++
	}
	return s.Valid()
}
func (s *sliceIterator) Prev() bool {
	if s.pos >= 0 {
		s.pos--
	}
	return s.Valid()
}
func (s *sliceIterator) Key() []byte {
	if !s.Valid() {
		return nil
	}
	return []byte(s.keys[s.pos])
}
func (s *sliceIterator) Value() []byte {
	if !s.Valid() {
		return nil
	}
	return []byte(s.values[s.pos])
}
func (s *sliceIterator) Error() error { return nil }

type memFile struct {
	name   string
	closed bool
}

func (f *memFile) ReadAt(p []byte, off int64) (int, error) { return 0, nil }
func (f *memFile) Close() error                            { f.closed = true; return nil }

type memFS struct {
	files map[string]*memFile
	opens []string
}

func newMemFS() *memFS { return &memFS{files: map[string]*memFile{}} }

func (fs *memFS) Open(name string) (File, error) {
	fs.opens = append(fs.opens, name)
	f, ok := fs.files[name]
	if !ok {
		return nil, errors.Newf("memfs: no such file %q", name)
	}
	return f, nil
}

type fakeTable struct {
	name   string
	kv     map[string]string
	closed bool
}

func (t *fakeTable) NewIterator() (base.Iterator, error) {
	return newSliceIterator(t.kv), nil
}

func (t *fakeTable) InternalGet(key []byte, saver func(key, value []byte)) error {
	if v, ok := t.kv[string(key)]; ok {
		saver(key, []byte(v))
	}
	return nil
}

func (t *fakeTable) Close() error { t.closed = true; return nil }

func openFakeTable(kv map[string]string) OpenTableFunc {
	return func(f File, size int64) (Table, error) {
		return &fakeTable{name: f.(*memFile).name, kv: kv}, nil
	}
}

func newTestCache(t *testing.T, fs *memFS, kv map[string]string, size int64) *TableCache {
	t.Helper()
	return NewTableCache(Options{
		Dirname:   "db",
		FS:        fs,
		OpenTable: openFakeTable(kv),
		Size:      size,
	})
}

func TestTableCacheFindTableOpensPrimaryFilename(t *testing.T) {
	fs := newMemFS()
	fs.files[Filename("db", 1)] = &memFile{name: "primary"}
	tc := newTestCache(t, fs, nil, 10)

	h, err := tc.FindTable(1, 0)
	require.NoError(t, err)
	require.True(t, h.Valid())
	tc.cache.Release(h)
}

func TestTableCacheFindTableFallsBackToLegacyFilename(t *testing.T) {
	fs := newMemFS()
	fs.files[LegacyFilename("db", 1)] = &memFile{name: "legacy"}
	tc := newTestCache(t, fs, nil, 10)

	h, err := tc.FindTable(1, 0)
	require.NoError(t, err)
	require.True(t, h.Valid())
	tc.cache.Release(h)
	require.Contains(t, fs.opens, Filename("db", 1))
	require.Contains(t, fs.opens, LegacyFilename("db", 1))
}

func TestTableCacheFindTableCachesSuccessNotFailure(t *testing.T) {
	fs := newMemFS()
	tc := newTestCache(t, fs, nil, 10)

	_, err := tc.FindTable(1, 0)
	require.Error(t, err)
	opensAfterFailure := len(fs.opens)

	_, err = tc.FindTable(1, 0)
	require.Error(t, err)
	require.Greater(t, len(fs.opens), opensAfterFailure, "a failed open must retry, not be cached")

	fs.files[Filename("db", 1)] = &memFile{name: "primary"}
	h, err := tc.FindTable(1, 0)
	require.NoError(t, err, "a transient failure must self-heal once the file appears")
	tc.cache.Release(h)
}

func TestTableCacheGet(t *testing.T) {
	fs := newMemFS()
	fs.files[Filename("db", 1)] = &memFile{}
	tc := newTestCache(t, fs, map[string]string{"a": "1"}, 10)

	var gotKey, gotValue []byte
	err := tc.Get(1, 0, []byte("a"), func(key, value []byte) {
		gotKey, gotValue = key, value
	})
	require.NoError(t, err)
	require.Equal(t, []byte("a"), gotKey)
	require.Equal(t, []byte("1"), gotValue)

	called := false
	err = tc.Get(1, 0, []byte("missing"), func(key, value []byte) { called = true })
	require.NoError(t, err)
	require.False(t, called, "saver must not be invoked on a miss")
}

func TestTableCacheNewIteratorKeepsHandlePinnedUntilClose(t *testing.T) {
	fs := newMemFS()
	fs.files[Filename("db", 1)] = &memFile{}
	tc := newTestCache(t, fs, map[string]string{"a": "1", "b": "2"}, 10)

	it := tc.NewIterator(1, 0)
	require.NoError(t, it.Error())

	// Evict while the iterator is still open; the table stays alive
	// because the iterator's cleanup, not the cache slot, pins it.
	tc.Evict(1)

	it.SeekToFirst()
	require.True(t, it.Valid())
	require.Equal(t, []byte("a"), it.Key())

	require.NoError(t, it.Close())
}

func TestTableCacheNewIteratorSurfacesOpenError(t *testing.T) {
	fs := newMemFS()
	tc := newTestCache(t, fs, nil, 10)

	it := tc.NewIterator(1, 0)
	require.False(t, it.Valid())
	require.Error(t, it.Error())
}

func TestTableCacheEvictReopensFromScratch(t *testing.T) {
	fs := newMemFS()
	fs.files[Filename("db", 1)] = &memFile{}
	tc := newTestCache(t, fs, nil, 10)

	h1, err := tc.FindTable(1, 0)
	require.NoError(t, err)
	tc.cache.Release(h1)

	tc.Evict(1)
	opensBefore := len(fs.opens)

	h2, err := tc.FindTable(1, 0)
	require.NoError(t, err)
	tc.cache.Release(h2)
	require.Greater(t, len(fs.opens), opensBefore)
}
