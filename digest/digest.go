// Copyright (c) 2026 kelvindb
// SPDX-License-Identifier: Apache-2.0
// This file is part of the merkletree library.

// Package digest abstracts the fixed-width cryptographic hash used to hash
// leaves and inner nodes of a merkletree.Tree. The width is encoded in the
// Go type parameter D (e.g. [32]byte for SHA-256), so implementations
// cannot silently return a mis-sized digest the way a []byte contract
// could.
package digest

import "reflect"

// Digest is a stateless, copyable hash function capability. hash_data and
// hash_concat (spec.md §4.1) map directly to HashData and HashConcat.
//
// No length prefixing and no domain separation are added between the two
// operations: HashConcat(a, b) must equal HashData(a[:] ++ b[:]) exactly,
// byte for byte. This is required to reproduce the normative SHA-256 test
// vectors in spec.md §6.
type Digest[D comparable] interface {
	// HashData hashes a single buffer.
	HashData(data []byte) D

	// HashConcat hashes the left-then-right concatenation of two
	// digests.
	HashConcat(left, right D) D
}

// Width reports the byte width of a digest type given a zero value of it.
// Most callers never need this because D's size is already known at
// compile time; it exists for the rare store implementation that must
// size a key buffer generically across digest types.
func Width[D comparable](zero D) int {
	return reflect.TypeOf(zero).Len()
}
