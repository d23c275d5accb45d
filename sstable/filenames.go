// Copyright 2026 The LSM Core Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package sstable

import "fmt"

// Filename returns the primary on-disk name of the table with the given
// file number within dbname.
func Filename(dbname string, fileNum uint64) string {
	return fmt.Sprintf("%s/%06d.ldb", dbname, fileNum)
}

// LegacyFilename returns the pre-".ldb" on-disk name of the table with
// the given file number, tried as a fallback when Filename doesn't exist
// so databases written by older code remain readable.
func LegacyFilename(dbname string, fileNum uint64) string {
	return fmt.Sprintf("%s/%06d.sst", dbname, fileNum)
}
