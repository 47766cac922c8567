// Copyright (c) 2026 kelvindb
// SPDX-License-Identifier: Apache-2.0
//
// Package tree is the engine that ties digest, coordinate, node, store,
// padder and builder together into construct/append/update/prove/verify,
// grounded on github.com/pk910/dynamic-ssz's treeproof package (tree
// construction and proof) generalised from an in-memory *Node graph onto
// store.Store-backed coordinates.
package tree

import (
	"context"
	"fmt"
	"math/bits"

	"github.com/kelvindb/merkletree/builder"
	"github.com/kelvindb/merkletree/config"
	"github.com/kelvindb/merkletree/coordinate"
	"github.com/kelvindb/merkletree/digest"
	"github.com/kelvindb/merkletree/node"
	"github.com/kelvindb/merkletree/padder"
	"github.com/kelvindb/merkletree/proof"
	"github.com/kelvindb/merkletree/store"
)

// Tree is a handle over a Store materialising one authenticated binary
// tree. It is mutated only by Append and Update, by a single owner; the
// zero value is not usable, use Construct.
type Tree[D comparable] struct {
	digest digest.Digest[D]
	store  store.Store[D]
	opts   config.Options

	// Root is the digest at (LowestLevel, Center, 0).
	Root D

	// LeafCount is the padded leaf count: always a power of two.
	LeafCount int

	// LevelCount is the leaf level, fixed at construction time.
	LevelCount int64

	// LowestLevel is the root's level. It starts at zero and decrements
	// by one on every height-increasing append.
	LowestLevel int64

	// UniqueLeafCount is the number of distinct leaves appended so far.
	UniqueLeafCount int

	// PaddingStart tracks the trailing duplicate region. After Construct
	// and after a doubling append it is UniqueLeafCount-1, the index of
	// the last unique leaf; an in-place append into a padded tree moves
	// it forward by two, capped at UniqueLeafCount.
	PaddingStart int

	// IsPadded is true iff UniqueLeafCount is not a power of two.
	IsPadded bool
}

// Construct builds a new Tree over input, writing every node through s.
// It fails with ErrPrecondition if fewer than two leaves are supplied.
func Construct[D comparable](ctx context.Context, d digest.Digest[D], s store.Store[D], input [][]byte, opts ...config.Option) (*Tree[D], error) {
	o := config.Apply(opts...)
	d = digest.WithFastBatchHashing(d, o.FastBatchHashing)

	sizeHint := len(input)
	if sizeHint < 2 {
		return nil, fmt.Errorf("%w: construct needs at least two leaves, got %d", ErrPrecondition, sizeHint)
	}

	paddedLen, seq := padder.Pad(d, input, sizeHint)
	leaves := make([]node.Node[D], 0, paddedLen)
	for _, n := range seq {
		leaves = append(leaves, n)
	}

	levelCount := levelCountFor(paddedLen)

	_, rootNode, unique, err := builder.Build(ctx, s, builder.Params[D]{
		Digest:            d,
		Leaves:            leaves,
		LevelCount:        levelCount,
		LowestLevel:       0,
		ParallelThreshold: o.ParallelThreshold,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}

	if err := s.Sort(); err != nil {
		return nil, fmt.Errorf("%w: could not sort store after construct: %v", ErrStoreFailure, err)
	}

	t := &Tree[D]{
		digest:          d,
		store:           s,
		opts:            o,
		Root:            rootNode.Digest,
		LeafCount:       paddedLen,
		LevelCount:      levelCount,
		LowestLevel:     0,
		UniqueLeafCount: unique,
		PaddingStart:    unique - 1,
		IsPadded:        !padder.IsPowerOfTwo(sizeHint),
	}
	return t, nil
}

// levelCountFor returns ceil(log2(paddedLen)) for a power-of-two
// paddedLen.
func levelCountFor(paddedLen int) int64 {
	if paddedLen <= 1 {
		return 0
	}
	return int64(bits.Len(uint(paddedLen - 1)))
}

// Update re-hashes the leaf whose current digest is oldDigest to
// newDigest and cascades the change to the root. It is a no-op if
// oldDigest is not indexed (spec.md §4.6.2, §7 NotFound).
func (t *Tree[D]) Update(oldDigest, newDigest D) error {
	coord, ok := t.store.GetKeyByHash(oldDigest)
	if !ok {
		return nil
	}
	oldNode, ok := t.store.Get(coord)
	if !ok {
		return fmt.Errorf("%w: secondary index points to missing node at %s", ErrInvariantViolation, coord)
	}

	if err := t.store.RemoveNode(coord); err != nil {
		return fmt.Errorf("%w: could not remove stale node at %s: %v", ErrStoreFailure, coord, err)
	}
	updated := node.Node[D]{Digest: newDigest, IsLeaf: oldNode.IsLeaf, FromDuplicate: oldNode.FromDuplicate}
	if err := t.store.Set(coord, updated); err != nil {
		return fmt.Errorf("%w: could not write updated node at %s: %v", ErrStoreFailure, coord, err)
	}

	root, err := t.cascade(coord, newDigest)
	if err != nil {
		return err
	}
	t.Root = root
	return nil
}

// cascade recomputes every ancestor digest on the route from cur (whose
// digest is already curDigest) to the root, writing each ancestor with
// UpdateValue, and returns the resulting root digest.
func (t *Tree[D]) cascade(cur coordinate.Path, curDigest D) (D, error) {
	for cur.Level > t.LowestLevel {
		sibling := cur.Sibling()
		siblingNode, ok := t.store.Get(sibling)
		if !ok {
			var zero D
			return zero, fmt.Errorf("%w: missing sibling at %s during cascade", ErrInvariantViolation, sibling)
		}
		parent, ok := cur.Parent(t.LowestLevel)
		if !ok {
			var zero D
			return zero, fmt.Errorf("%w: %s has no parent above lowestLevel %d", ErrInvariantViolation, cur, t.LowestLevel)
		}

		var parentDigest D
		if cur.Dir == coordinate.Left {
			parentDigest = t.digest.HashConcat(curDigest, siblingNode.Digest)
		} else {
			parentDigest = t.digest.HashConcat(siblingNode.Digest, curDigest)
		}

		parentNode, ok := t.store.Get(parent)
		if !ok {
			var zero D
			return zero, fmt.Errorf("%w: missing node at %s during cascade", ErrInvariantViolation, parent)
		}
		parentNode.Digest = parentDigest
		if err := t.store.UpdateValue(parent, parentNode); err != nil {
			var zero D
			return zero, fmt.Errorf("%w: could not write cascaded node at %s: %v", ErrStoreFailure, parent, err)
		}

		cur, curDigest = parent, parentDigest
	}
	return curDigest, nil
}

// Prove resolves data to its leaf coordinate and returns its inclusion
// proof, or ok=false if data's digest is not indexed (spec.md §4.6.4).
func (t *Tree[D]) Prove(data []byte) (p proof.Proof[D], ok bool, err error) {
	h := t.digest.HashData(data)
	coord, ok := t.store.GetKeyByHash(h)
	if !ok {
		return nil, false, nil
	}
	p, err = proof.Generate(t.store, coord, t.LowestLevel)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrInvariantViolation, err)
	}
	return p, true, nil
}

// VerifyProof reports whether p proves data's inclusion under t's
// current root (spec.md §4.6.5).
func (t *Tree[D]) VerifyProof(data []byte, p proof.Proof[D]) bool {
	return proof.Verify(t.digest, data, p, t.Root)
}

// Verify builds a fresh tree from input into s and reports whether its
// root equals rootDigest (spec.md §4.6.6).
func Verify[D comparable](ctx context.Context, d digest.Digest[D], input [][]byte, rootDigest D, s store.Store[D], opts ...config.Option) (bool, error) {
	t, err := Construct(ctx, d, s, input, opts...)
	if err != nil {
		return false, err
	}
	return t.Root == rootDigest, nil
}
