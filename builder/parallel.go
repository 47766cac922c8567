// Copyright (c) 2026 kelvindb
// SPDX-License-Identifier: Apache-2.0
//
// The bounded divide-and-conquer recursion here is grounded on
// golang.org/x/sync/errgroup's documented fan-out/fan-in pattern, used
// the same way by several repos in the retrieval pack for concurrent
// tree and batch processing.

package builder

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kelvindb/merkletree/coordinate"
	"github.com/kelvindb/merkletree/node"
)

// reduceParallel implements spec.md §4.5.2: recursively split the leaf
// range in half, reduce each half concurrently, and combine the two
// roots. Once a range shrinks to SequentialCutoff levels or fewer it is
// handed to reduceSequential directly, bounding the number of goroutines
// spawned to roughly leafCount/2^SequentialCutoff rather than one per
// leaf pair.
func reduceParallel[D comparable](ctx context.Context, p Params[D]) (coordinate.Path, node.Node[D], []Write[D], error) {
	var (
		mu     sync.Mutex
		writes []Write[D]
	)
	collect := func(ws []Write[D]) {
		mu.Lock()
		writes = append(writes, ws...)
		mu.Unlock()
	}

	root, rootNode, err := divide(ctx, p, p.Leaves, p.StartIndex, collect)
	if err != nil {
		return coordinate.Path{}, node.Node[D]{}, nil, err
	}
	return root, rootNode, writes, nil
}

func divide[D comparable](ctx context.Context, p Params[D], leaves []node.Node[D], startIndex uint64, collect func([]Write[D])) (coordinate.Path, node.Node[D], error) {
	if err := ctx.Err(); err != nil {
		return coordinate.Path{}, node.Node[D]{}, err
	}

	if len(leaves) <= 1<<SequentialCutoff {
		sub := Params[D]{
			Digest:      p.Digest,
			Leaves:      leaves,
			LevelCount:  p.LevelCount,
			LowestLevel: p.LowestLevel,
			IsRebuild:   p.IsRebuild,
			StartIndex:  startIndex,
		}
		root, rootNode, ws := reduceSequential(sub)
		collect(ws)
		return root, rootNode, nil
	}

	mid := len(leaves) / 2
	var leftRoot, rightRoot coordinate.Path
	var leftNode, rightNode node.Node[D]

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		r, n, err := divide(egCtx, p, leaves[:mid], startIndex, collect)
		leftRoot, leftNode = r, n
		return err
	})
	eg.Go(func() error {
		r, n, err := divide(egCtx, p, leaves[mid:], startIndex+uint64(mid), collect)
		rightRoot, rightNode = r, n
		return err
	})
	if err := eg.Wait(); err != nil {
		return coordinate.Path{}, node.Node[D]{}, err
	}
	_ = rightRoot // the parent's coordinate is derived from the left child only

	parentPath := resolveParentCoordinate(leftRoot, p.LowestLevel, p.IsRebuild)

	var digest D
	if bc, ok := any(p.Digest).(batchConcat[D]); ok {
		digest = bc.HashConcatBatch([][2]D{{leftNode.Digest, rightNode.Digest}})[0]
	} else {
		digest = p.Digest.HashConcat(leftNode.Digest, rightNode.Digest)
	}
	parentNode := node.NewInner(digest, leftNode.FromDuplicate, rightNode.FromDuplicate)
	collect([]Write[D]{{Path: parentPath, Node: parentNode}})

	return parentPath, parentNode, nil
}
