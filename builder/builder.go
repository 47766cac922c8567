// Copyright (c) 2026 kelvindb
// SPDX-License-Identifier: Apache-2.0
//
// The layer-by-layer bottom-up reduction in this package is grounded on
// github.com/pk910/dynamic-ssz's treeproof.TreeFromNodes, rewritten to
// write through a store.Store keyed by coordinate.Path instead of
// building an in-memory *Node pointer tree.

// Package builder implements the bottom-up reduction of spec.md §4.5:
// a padded leaf stream is reduced to a single root, writing every node
// it visits through a store.Store. Two strategies are provided —
// sequential pairwise reduction and parallel divide-and-conquer — which
// must (and do) produce identical roots for identical inputs.
package builder

import (
	"context"
	"fmt"

	"github.com/kelvindb/merkletree/coordinate"
	"github.com/kelvindb/merkletree/digest"
	"github.com/kelvindb/merkletree/node"
	"github.com/kelvindb/merkletree/store"
)

// DefaultParallelThreshold is the levelCount above which Build switches
// from sequential to parallel divide-and-conquer (spec.md §4.5: "more
// than ~16,384 leaves").
const DefaultParallelThreshold = 14

// SequentialCutoff bounds how deep the parallel builder recurses before
// handing a leaf range to the sequential reducer. Without a cutoff,
// divide-and-conquer would spawn one goroutine per leaf pair; stopping
// once a subtree is small enough to reduce in a single goroutine keeps
// goroutine count proportional to leafCount/2^SequentialCutoff rather
// than to leafCount.
const SequentialCutoff = 10

// Write is one (coordinate, node) pair produced while reducing a leaf
// range to a root. Both strategies return their writes as a plain slice
// instead of writing through the Store themselves, so they can be
// exercised and compared in tests without a Store fixture.
type Write[D comparable] struct {
	Path coordinate.Path
	Node node.Node[D]
}

// Params bundles everything a Build call needs. StartIndex lets append's
// expand_tree build a subtree of new leaves whose coordinates continue
// on from the existing tree's leafCount (spec.md §4.6.3's "last_index").
type Params[D comparable] struct {
	Digest            digest.Digest[D]
	Leaves            []node.Node[D]
	LevelCount        int64
	LowestLevel       int64
	IsRebuild         bool
	StartIndex        uint64
	ParallelThreshold int // 0 => DefaultParallelThreshold
}

// Build reduces Params.Leaves to a single root, writes every visited
// node through s, and returns the root's coordinate, the root Node, and
// the number of unique leaves (by adjacent-digest comparison, spec.md
// §4.5). It fails fast on fewer than two leaves (spec.md §4.6.8).
func Build[D comparable](ctx context.Context, s store.Store[D], p Params[D]) (coordinate.Path, node.Node[D], int, error) {
	if len(p.Leaves) < 2 {
		return coordinate.Path{}, node.Node[D]{}, 0, fmt.Errorf("builder: need at least two leaves, got %d", len(p.Leaves))
	}

	threshold := p.ParallelThreshold
	if threshold == 0 {
		threshold = DefaultParallelThreshold
	}

	var (
		root   coordinate.Path
		rn     node.Node[D]
		writes []Write[D]
		err    error
	)
	if int(p.LevelCount) > threshold {
		root, rn, writes, err = reduceParallel(ctx, p)
	} else {
		root, rn, writes = reduceSequential(p)
	}
	if err != nil {
		return coordinate.Path{}, node.Node[D]{}, 0, err
	}

	s.Reserve(len(writes))
	for _, w := range writes {
		if err := s.Set(w.Path, w.Node); err != nil {
			return coordinate.Path{}, node.Node[D]{}, 0, fmt.Errorf("builder: could not write node at %s: %w", w.Path, err)
		}
	}
	if err := s.TriggerBatchActions(); err != nil {
		return coordinate.Path{}, node.Node[D]{}, 0, fmt.Errorf("builder: could not flush batched writes: %w", err)
	}

	return root, rn, uniqueAdjacentCount(p.Leaves), nil
}

// uniqueAdjacentCount counts unique leaves by comparing each leaf's
// digest only to its immediate predecessor, per spec.md §4.5. This is
// exact under the padding discipline of §4.4 (duplicates only ever form
// a trailing run of the same digest) but is not a general distinct-value
// count; store.Store.UniqueLeafCount provides the latter when needed.
func uniqueAdjacentCount[D comparable](leaves []node.Node[D]) int {
	if len(leaves) == 0 {
		return 0
	}
	count := 1
	for i := 1; i < len(leaves); i++ {
		if leaves[i].Digest != leaves[i-1].Digest {
			count++
		}
	}
	return count
}

// resolveParentCoordinate implements the direction corner cases of
// spec.md §4.5.1 step 4, shared by both strategies: the parent of the
// level just below lowestLevel is the root (Center, index 0); during a
// rebuild (append's expand_tree), a parent one level below the *new*
// lowestLevel is about to become the new root's right child.
func resolveParentCoordinate(left coordinate.Path, lowestLevel int64, isRebuild bool) coordinate.Path {
	parentLevel := left.Level - 1
	parentIndex := left.Index / 2
	dir := coordinate.FromIndex(parentIndex)
	switch {
	case parentLevel == lowestLevel:
		dir = coordinate.Center
		parentIndex = 0
	case isRebuild && parentLevel == lowestLevel+1:
		dir = coordinate.Right
	}
	return coordinate.Path{Level: parentLevel, Dir: dir, Index: parentIndex}
}
