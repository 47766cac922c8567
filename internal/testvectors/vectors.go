// Copyright (c) 2026 kelvindb
// SPDX-License-Identifier: Apache-2.0

// Package testvectors holds the normative SHA-256 root hashes of
// spec.md §6, used to validate a digest.SHA256-instantiated Tree against
// known-good values instead of merely checking internal consistency.
package testvectors

// ExampleData returns [[0],[1],...,[n-1]], the reference input generator
// spec.md §8's end-to-end scenarios are defined against.
func ExampleData(n int) [][]byte {
	out := make([][]byte, n)
	for i := range out {
		out[i] = []byte{byte(i)}
	}
	return out
}

// Root3, Root4, Root7 and Root8 are the normative roots for
// ExampleData(3), ExampleData(4), ExampleData(7) and ExampleData(8)
// under a raw-concatenation SHA-256 instantiation.
const (
	Root3 = "f2dcdd96791b6bac5d554f2d320e594b834f5da1981812c3707e7772234cb0ad"
	Root4 = "9675e04b4ba9dc81b06e81731e2d21caa2c95557a85dcfa3fff70c9ff0f30b2e"
	Root7 = "e263b77a6d80c1c56f3f67d1e0d803ad8eb2ac9d66c82f78735207c886a1592c"
	Root8 = "0727b310f87099c1ba2ec0ba408def82c308237c8577f0bdfd2643e9cc6b7578"
)
