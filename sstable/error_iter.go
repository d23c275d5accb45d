// Copyright 2026 The LSM Core Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package sstable

import "github.com/riftbase/lsmcore/internal/base"

// errorIter is a permanently-invalid Iterator that carries a status. The
// table cache returns one instead of an error from NewIterator, so a
// failure to open a table surfaces the same way as any other iterator
// error: via Error(), not a separate return value.
type errorIter struct {
	base.CleanupIterator
	err error
}

func newErrorIter(err error) *errorIter { return &errorIter{err: err} }

func (e *errorIter) Valid() bool     { return false }
func (e *errorIter) SeekToFirst()    {}
func (e *errorIter) SeekToLast()     {}
func (e *errorIter) Seek([]byte)     {}
func (e *errorIter) Next() bool      { return false }
func (e *errorIter) Prev() bool      { return false }
func (e *errorIter) Key() []byte     { return nil }
func (e *errorIter) Value() []byte   { return nil }
func (e *errorIter) Error() error    { return e.err }
