// Copyright (c) 2026 kelvindb
// SPDX-License-Identifier: Apache-2.0
// This file is part of the merkletree library.

// Package padder lazily extends an input leaf stream up to the next
// power of two by repeating the last leaf, per spec.md §4.4.
package padder

import (
	"iter"
	"math/bits"

	"github.com/kelvindb/merkletree/digest"
	"github.com/kelvindb/merkletree/node"
)

// NextPowerOfTwo returns the smallest power of two greater than or equal
// to n. n must be positive.
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// IsPowerOfTwo reports whether n is a power of two. n must be positive.
func IsPowerOfTwo(n int) bool {
	return n&(n-1) == 0
}

// Pad returns the padded leaf count and a lazy sequence of leaf Nodes:
// the original input, hashed, followed by copies of the last input
// marked FromDuplicate as needed to reach the next power of two
// (spec.md §4.4). sizeHint must equal len(input) and must be positive.
func Pad[D comparable](d digest.Digest[D], input [][]byte, sizeHint int) (paddedLen int, seq iter.Seq2[int, node.Node[D]]) {
	paddedLen = NextPowerOfTwo(sizeHint)
	fillCount := paddedLen - sizeHint

	seq = func(yield func(int, node.Node[D]) bool) {
		i := 0
		for _, leaf := range input {
			if !yield(i, node.New(d.HashData(leaf))) {
				return
			}
			i++
		}
		if fillCount == 0 {
			return
		}
		lastDigest := d.HashData(input[len(input)-1])
		for j := 0; j < fillCount; j++ {
			if !yield(i, node.NewDuplicate(lastDigest)) {
				return
			}
			i++
		}
	}
	return paddedLen, seq
}
