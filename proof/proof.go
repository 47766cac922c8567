// Copyright (c) 2026 kelvindb
// SPDX-License-Identifier: Apache-2.0
//
// The leaf-upward accumulation loop in Verify is grounded on
// github.com/pk910/dynamic-ssz's treeproof.VerifyProof, rewritten against
// coordinate.Path/store.Store instead of generalized indices over an
// in-memory *Node tree.

// Package proof generates and verifies inclusion proofs over the
// coordinate addressing scheme of spec.md §4.6.4/§4.6.5.
package proof

import (
	"fmt"

	"github.com/kelvindb/merkletree/coordinate"
	"github.com/kelvindb/merkletree/digest"
	"github.com/kelvindb/merkletree/store"
)

// Step is one element of a Proof: the sibling digest encountered at
// Level, tagged with the side of the concatenation it belongs on when
// recomputing the parent hash.
type Step[D comparable] struct {
	Level  int64
	Dir    coordinate.Direction
	Digest D
}

// Proof is an ordered sequence of Steps from leaf level upward,
// excluding the root (spec.md §3, "Proof").
type Proof[D comparable] []Step[D]

// Generate walks the route from leaf toward the root, emitting the
// sibling at every step and stopping before the root, per spec.md
// §4.6.4. It fails only if a node the walk expects to find is absent
// from s, which signals a corrupted or concurrently-mutated store.
func Generate[D comparable](s store.Store[D], leaf coordinate.Path, lowestLevel int64) (Proof[D], error) {
	var p Proof[D]
	cur := leaf
	for cur.Level >= lowestLevel+1 {
		sibling := cur.Sibling()
		siblingNode, ok := s.Get(sibling)
		if !ok {
			return nil, fmt.Errorf("proof: missing sibling node at %s", sibling)
		}
		p = append(p, Step[D]{Level: cur.Level, Dir: sibling.Dir, Digest: siblingNode.Digest})

		parent, ok := cur.Parent(lowestLevel)
		if !ok {
			break
		}
		cur = parent
	}
	return p, nil
}

// Verify recomputes the root digest from data and p and reports whether
// it matches rootDigest, per spec.md §4.6.5.
func Verify[D comparable](d digest.Digest[D], data []byte, p Proof[D], rootDigest D) bool {
	acc := d.HashData(data)
	for _, step := range p {
		if step.Dir == coordinate.Left {
			acc = d.HashConcat(step.Digest, acc)
		} else {
			acc = d.HashConcat(acc, step.Digest)
		}
	}
	return acc == rootDigest
}
