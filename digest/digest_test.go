// Copyright (c) 2026 kelvindb
// SPDX-License-Identifier: Apache-2.0

package digest_test

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kelvindb/merkletree/digest"
)

func TestSHA256HashData(t *testing.T) {
	d := digest.SHA256{}
	want := sha256.Sum256([]byte("hello"))
	require.Equal(t, want, d.HashData([]byte("hello")))
}

func TestSHA256HashConcatMatchesHashDataOfConcatenation(t *testing.T) {
	d := digest.SHA256{}
	left := d.HashData([]byte("left"))
	right := d.HashData([]byte("right"))

	want := sha256.Sum256(append(append([]byte{}, left[:]...), right[:]...))
	require.Equal(t, want, d.HashConcat(left, right))
}

func TestWidth(t *testing.T) {
	require.Equal(t, 32, digest.Width([32]byte{}))
	require.Equal(t, 20, digest.Width([20]byte{}))
}
