// Copyright 2026 The LSM Core Authors. All rights reserved. Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package block

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHandleRoundTrip(t *testing.T) {
	h := Handle{Offset: 12345, Length: 6789}
	enc := h.EncodeTo(nil)
	require.LessOrEqual(t, len(enc), MaxEncodedHandleLen)

	got, n, err := DecodeHandle(enc)
	require.NoError(t, err)
	require.Equal(t, len(enc), n)
	require.Equal(t, h, got)
}

func TestHandleDecodeMalformed(t *testing.T) {
	_, _, err := DecodeHandle(nil)
	require.Error(t, err)
}

// TestFooterRoundTrip round-trips a footer and checks that flipping a
// byte in the encoded magic number is detected as corruption.
func TestFooterRoundTrip(t *testing.T) {
	f := Footer{
		MetaindexHandle: Handle{Offset: 42, Length: 100},
		IndexHandle:     Handle{Offset: 142, Length: 200},
	}
	enc := f.EncodeTo(nil)
	require.Len(t, enc, FooterLength)

	got, err := DecodeFrom(enc)
	require.NoError(t, err)
	require.Equal(t, f, got)

	corrupt := append([]byte(nil), enc...)
	corrupt[len(corrupt)-1] ^= 0xff
	_, err = DecodeFrom(corrupt)
	require.Error(t, err)
}

func TestFooterDecodeWrongLength(t *testing.T) {
	_, err := DecodeFrom(make([]byte, FooterLength-1))
	require.Error(t, err)
}
