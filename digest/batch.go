// Copyright (c) 2026 kelvindb
// SPDX-License-Identifier: Apache-2.0
//
// This file adapts the vectorized hashing path from
// github.com/pk910/dynamic-ssz's hasher.go (itself derived from
// ferranbt/fastssz's hasher.go) to merkletree's pairwise-concatenation
// builder instead of SSZ's flat chunk buffer.

package digest

import "github.com/prysmaticlabs/gohashtree"

// Batch wraps a 32-byte Digest and adds a vectorized form of HashConcat
// for hashing many sibling pairs at once. The Builder's sequential and
// parallel reductions (spec.md §4.5) both process a level's nodes two at
// a time; batching lets the underlying SIMD-accelerated implementation
// amortize call overhead across an entire level instead of one pair per
// call.
//
// Batch is only defined for [32]byte because gohashtree operates on
// 32-byte chunks; other digest widths fall back to the wrapped Digest's
// HashConcat called in a loop, which HashConcatBatch always does when
// gohashtree reports an error (e.g. on a platform without the optimized
// code path).
type Batch struct {
	Digest[[32]byte]
}

// HashConcatBatch hashes every (left, right) pair in one call when
// possible, and falls back to HashConcat in a loop otherwise. The
// fallback keeps the Builder correct on every platform; gohashtree is
// purely a throughput optimization.
func (b Batch) HashConcatBatch(pairs [][2][32]byte) [][32]byte {
	out := make([][32]byte, len(pairs))
	if len(pairs) == 0 {
		return out
	}

	chunks := make([]byte, 0, len(pairs)*64)
	for _, p := range pairs {
		chunks = append(chunks, p[0][:]...)
		chunks = append(chunks, p[1][:]...)
	}

	digests := make([]byte, len(pairs)*32)
	if err := gohashtree.HashByteSlice(digests, chunks); err == nil {
		for i := range out {
			copy(out[i][:], digests[i*32:(i+1)*32])
		}
		return out
	}

	for i, p := range pairs {
		out[i] = b.Digest.HashConcat(p[0], p[1])
	}
	return out
}

// WithFastBatchHashing wraps d in Batch when enabled and D is [32]byte,
// the only width gohashtree operates on; otherwise it returns d
// unchanged. Callers go through this instead of constructing a Batch
// directly, since D is only known to be [32]byte at the call site's
// type-assertion, not at compile time.
func WithFastBatchHashing[D comparable](d Digest[D], enabled bool) Digest[D] {
	if !enabled {
		return d
	}
	sha256Digest, ok := any(d).(Digest[[32]byte])
	if !ok {
		return d
	}
	batched, ok := any(Batch{Digest: sha256Digest}).(Digest[D])
	if !ok {
		return d
	}
	return batched
}
