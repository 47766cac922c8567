// Copyright (c) 2026 kelvindb
// SPDX-License-Identifier: Apache-2.0

package tree

import (
	"context"
	"fmt"

	"github.com/kelvindb/merkletree/builder"
	"github.com/kelvindb/merkletree/coordinate"
	"github.com/kelvindb/merkletree/node"
	"github.com/kelvindb/merkletree/padder"
)

// Append grows the tree by one logical leaf without a full rebuild,
// dispatching on the tree's state at entry (spec.md §4.6.3): a perfect
// tree doubles via expandTree, a padded tree replaces its trailing
// duplicate run in place via expandPadded.
func (t *Tree[D]) Append(ctx context.Context, data []byte) error {
	if t.IsPadded {
		return t.expandPadded(data)
	}
	return t.expandTree(ctx, data)
}

// expandTree doubles the tree's leaf count when it is currently perfect
// (no padding), per spec.md §4.6.3's "Perfect tree" branch.
func (t *Tree[D]) expandTree(ctx context.Context, data []byte) error {
	oldRootCoord := coordinate.Root(t.LowestLevel)
	oldRootNode, ok := t.store.Get(oldRootCoord)
	if !ok {
		return fmt.Errorf("%w: missing root at %s", ErrInvariantViolation, oldRootCoord)
	}

	if err := t.store.ShiftRootToLeft(t.LowestLevel); err != nil {
		return fmt.Errorf("%w: could not shift root to left: %v", ErrStoreFailure, err)
	}

	newLeafCount := padder.NextPowerOfTwo(t.LeafCount + 1)
	fill := newLeafCount - t.LeafCount
	t.store.Reserve(2*fill - 1)

	hashedData := t.digest.HashData(data)
	fillLeaves := make([]node.Node[D], fill)
	fillLeaves[0] = node.New(hashedData)
	for i := 1; i < fill; i++ {
		fillLeaves[i] = node.NewDuplicate(hashedData)
	}

	newLowestLevel := t.LowestLevel - 1

	_, subRootNode, _, err := builder.Build(ctx, t.store, builder.Params[D]{
		Digest:            t.digest,
		Leaves:            fillLeaves,
		LevelCount:        t.LevelCount,
		LowestLevel:       newLowestLevel,
		IsRebuild:         true,
		StartIndex:        uint64(t.LeafCount),
		ParallelThreshold: t.opts.ParallelThreshold,
	})
	if err != nil {
		return fmt.Errorf("%w: could not build fill sub-tree: %v", ErrStoreFailure, err)
	}

	newRootDigest := t.digest.HashConcat(oldRootNode.Digest, subRootNode.Digest)
	newRootNode := node.NewInner(newRootDigest, oldRootNode.FromDuplicate, subRootNode.FromDuplicate)
	if err := t.store.Set(coordinate.Root(newLowestLevel), newRootNode); err != nil {
		return fmt.Errorf("%w: could not write new root: %v", ErrStoreFailure, err)
	}

	t.LowestLevel = newLowestLevel
	t.LeafCount = newLeafCount
	t.UniqueLeafCount++
	t.PaddingStart = t.UniqueLeafCount - 1
	t.IsPadded = !padder.IsPowerOfTwo(t.UniqueLeafCount)
	t.Root = newRootDigest

	if err := t.store.Sort(); err != nil {
		return fmt.Errorf("%w: could not sort store after expand_tree: %v", ErrStoreFailure, err)
	}
	return nil
}

// expandPadded replaces the tree's trailing duplicate run in place when
// it is currently padded, per spec.md §4.6.3's "Padded tree" branch. The
// new leaf is written to the first padding slot, index UniqueLeafCount,
// which is firstPadded's sibling. When firstPadded lies inside the
// duplicate run it is rewritten as a duplicate of the new leaf, and so is
// every pair after the (firstPadded, sibling) pair.
func (t *Tree[D]) expandPadded(data []byte) error {
	hashedData := t.digest.HashData(data)

	firstPadded := coordinate.Leaf(t.LevelCount, uint64(t.UniqueLeafCount)^1)
	firstPaddedNode, ok := t.store.Get(firstPadded)
	if !ok {
		return fmt.Errorf("%w: missing leaf at %s", ErrInvariantViolation, firstPadded)
	}

	sibling := firstPadded.Sibling()
	siblingNode, ok := t.store.Get(sibling)
	if !ok {
		return fmt.Errorf("%w: missing leaf at %s", ErrInvariantViolation, sibling)
	}

	firstPaddedDigest := firstPaddedNode.Digest
	if firstPadded.Index >= 2 && firstPaddedNode.Digest == siblingNode.Digest {
		prior := coordinate.Path{
			Level: t.LevelCount,
			Dir:   coordinate.FromIndex(firstPadded.Index - 2),
			Index: firstPadded.Index - 2,
		}
		if priorNode, ok := t.store.Get(prior); ok && priorNode.Digest == firstPaddedNode.Digest {
			firstPaddedDigest = hashedData
			firstPaddedNode.Digest = hashedData
			firstPaddedNode.FromDuplicate = true
			if err := t.store.RemoveNode(firstPadded); err != nil {
				return fmt.Errorf("%w: could not remove stale node at %s: %v", ErrStoreFailure, firstPadded, err)
			}
			if err := t.store.Set(firstPadded, firstPaddedNode); err != nil {
				return fmt.Errorf("%w: could not overwrite %s: %v", ErrStoreFailure, firstPadded, err)
			}
		}
	}

	siblingNode.Digest = hashedData
	siblingNode.FromDuplicate = false
	if err := t.store.RemoveNode(sibling); err != nil {
		return fmt.Errorf("%w: could not remove stale node at %s: %v", ErrStoreFailure, sibling, err)
	}
	if err := t.store.Set(sibling, siblingNode); err != nil {
		return fmt.Errorf("%w: could not overwrite %s: %v", ErrStoreFailure, sibling, err)
	}

	root, err := t.cascade(firstPadded, firstPaddedDigest)
	if err != nil {
		return err
	}
	t.Root = root

	for idx := (sibling.Index | 1) + 1; idx+1 < uint64(t.LeafCount); idx += 2 {
		left := coordinate.Path{Level: t.LevelCount, Dir: coordinate.FromIndex(idx), Index: idx}
		right := coordinate.Path{Level: t.LevelCount, Dir: coordinate.FromIndex(idx + 1), Index: idx + 1}

		leftNode := node.NewDuplicate(hashedData)
		rightNode := node.NewDuplicate(hashedData)
		if err := t.store.UpdateValue(left, leftNode); err != nil {
			return fmt.Errorf("%w: could not overwrite %s: %v", ErrStoreFailure, left, err)
		}
		if err := t.store.UpdateValue(right, rightNode); err != nil {
			return fmt.Errorf("%w: could not overwrite %s: %v", ErrStoreFailure, right, err)
		}

		root, err := t.cascade(right, hashedData)
		if err != nil {
			return err
		}
		t.Root = root
	}

	t.UniqueLeafCount++
	if padder.IsPowerOfTwo(t.UniqueLeafCount) {
		t.IsPadded = false
		t.PaddingStart = t.UniqueLeafCount - 1
	} else {
		t.IsPadded = true
		t.PaddingStart = min(t.PaddingStart+2, t.UniqueLeafCount)
	}

	if err := t.store.Sort(); err != nil {
		return fmt.Errorf("%w: could not sort store after expand_padded: %v", ErrStoreFailure, err)
	}
	return nil
}
