// Copyright (c) 2026 kelvindb
// SPDX-License-Identifier: Apache-2.0

package builder

import (
	"github.com/kelvindb/merkletree/coordinate"
	"github.com/kelvindb/merkletree/node"
)

// batchConcat is implemented by digest.Batch; reduceSequential uses it
// when available to hash an entire level's sibling pairs in one call
// instead of one HashConcat call per pair.
type batchConcat[D comparable] interface {
	HashConcatBatch(pairs [][2]D) []D
}

// reduceSequential implements spec.md §4.5.1: assign leaf coordinates
// left to right, then repeatedly pair adjacent nodes and hash their
// concatenation until a single root remains. An odd node out at any
// level pairs with itself; the tree's own callers always pass a
// power-of-two leaf count, so every level below the root has even width.
func reduceSequential[D comparable](p Params[D]) (coordinate.Path, node.Node[D], []Write[D]) {
	n := len(p.Leaves)
	writes := make([]Write[D], 0, 2*n)

	current := make([]coordinate.Path, n)
	currentNodes := make([]node.Node[D], n)
	for i, leaf := range p.Leaves {
		path := coordinate.Leaf(p.LevelCount, p.StartIndex+uint64(i))
		current[i] = path
		currentNodes[i] = leaf
		writes = append(writes, Write[D]{Path: path, Node: leaf})
	}

	bc, batched := any(p.Digest).(batchConcat[D])

	for len(current) > 1 {
		pairCount := (len(current) + 1) / 2
		lefts := make([]node.Node[D], pairCount)
		rights := make([]node.Node[D], pairCount)
		parentPaths := make([]coordinate.Path, pairCount)

		for i := 0; i < pairCount; i++ {
			li, ri := i*2, i*2+1
			if ri >= len(current) {
				ri = li
			}
			lefts[i] = currentNodes[li]
			rights[i] = currentNodes[ri]
			parentPaths[i] = resolveParentCoordinate(current[li], p.LowestLevel, p.IsRebuild)
		}

		var digests []D
		if batched {
			pairs := make([][2]D, pairCount)
			for i := range pairs {
				pairs[i] = [2]D{lefts[i].Digest, rights[i].Digest}
			}
			digests = bc.HashConcatBatch(pairs)
		} else {
			digests = make([]D, pairCount)
			for i := range digests {
				digests[i] = p.Digest.HashConcat(lefts[i].Digest, rights[i].Digest)
			}
		}

		nextNodes := make([]node.Node[D], pairCount)
		for i := range nextNodes {
			nextNodes[i] = node.NewInner(digests[i], lefts[i].FromDuplicate, rights[i].FromDuplicate)
			writes = append(writes, Write[D]{Path: parentPaths[i], Node: nextNodes[i]})
		}

		current = parentPaths
		currentNodes = nextNodes
	}

	return current[0], currentNodes[0], writes
}
