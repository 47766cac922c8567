// Copyright (c) 2026 kelvindb
// SPDX-License-Identifier: Apache-2.0

package builder_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/kelvindb/merkletree/builder"
	"github.com/kelvindb/merkletree/coordinate"
	"github.com/kelvindb/merkletree/digest"
	"github.com/kelvindb/merkletree/node"
	"github.com/kelvindb/merkletree/store/memstore"
)

// snapshot dumps a store's entries into a map keyed by coordinate, so two stores
// built by different code paths can be diffed node-for-node.
func snapshot(s *memstore.Store[[32]byte]) map[coordinate.Path]node.Node[[32]byte] {
	out := make(map[coordinate.Path]node.Node[[32]byte])
	for k, v := range s.Entries() {
		out[k] = v
	}
	return out
}

func leavesOf(t *testing.T, d digest.Digest[[32]byte], n int) []node.Node[[32]byte] {
	t.Helper()
	leaves := make([]node.Node[[32]byte], n)
	for i := range leaves {
		leaves[i] = node.New(d.HashData([]byte{byte(i)}))
	}
	return leaves
}

func TestBuildSequentialAndParallelAgree(t *testing.T) {
	d := digest.SHA256{}
	leaves := leavesOf(t, d, 64)

	seqStore := memstore.New[[32]byte]()
	seqRoot, seqNode, seqUnique, err := builder.Build(context.Background(), seqStore, builder.Params[[32]byte]{
		Digest:      d,
		Leaves:      leaves,
		LevelCount:  6,
		LowestLevel: 0,
	})
	require.NoError(t, err)

	parStore := memstore.New[[32]byte]()
	parRoot, parNode, parUnique, err := builder.Build(context.Background(), parStore, builder.Params[[32]byte]{
		Digest:            d,
		Leaves:            leaves,
		LevelCount:        6,
		LowestLevel:       0,
		ParallelThreshold: 1,
	})
	require.NoError(t, err)

	require.Equal(t, seqRoot, parRoot)
	require.Equal(t, seqNode.Digest, parNode.Digest)
	require.Equal(t, seqUnique, parUnique)
	require.Equal(t, 64, seqUnique)

	gotRoot, ok := seqStore.Get(seqRoot)
	require.True(t, ok)
	require.Equal(t, seqNode.Digest, gotRoot.Digest)
	require.True(t, seqRoot.IsRoot())

	if diff := cmp.Diff(snapshot(seqStore), snapshot(parStore)); diff != "" {
		t.Fatalf("sequential and parallel builds wrote different stores (-sequential +parallel):\n%s", diff)
	}
}

func TestBuildRejectsFewerThanTwoLeaves(t *testing.T) {
	d := digest.SHA256{}
	s := memstore.New[[32]byte]()
	_, _, _, err := builder.Build(context.Background(), s, builder.Params[[32]byte]{
		Digest:     d,
		Leaves:     leavesOf(t, d, 1),
		LevelCount: 0,
	})
	require.Error(t, err)
}

func TestBuildWritesEveryLevel(t *testing.T) {
	d := digest.SHA256{}
	leaves := leavesOf(t, d, 8)
	s := memstore.New[[32]byte]()

	root, _, unique, err := builder.Build(context.Background(), s, builder.Params[[32]byte]{
		Digest:      d,
		Leaves:      leaves,
		LevelCount:  3,
		LowestLevel: 0,
	})
	require.NoError(t, err)
	require.Equal(t, 8, unique)

	count := 0
	for range s.Entries() {
		count++
	}
	// 8 leaves + 4 + 2 + 1 root = 15 nodes.
	require.Equal(t, 15, count)
	require.Equal(t, int64(0), root.Level)
}

func TestBuildRealAndDuplicateLeafDoNotPropagateFromDuplicate(t *testing.T) {
	d := digest.SHA256{}
	real := node.New(d.HashData([]byte("leaf")))
	dup := node.NewDuplicate(real.Digest)
	s := memstore.New[[32]byte]()

	_, rootNode, unique, err := builder.Build(context.Background(), s, builder.Params[[32]byte]{
		Digest:      d,
		Leaves:      []node.Node[[32]byte]{real, dup},
		LevelCount:  1,
		LowestLevel: 0,
	})
	require.NoError(t, err)
	require.False(t, rootNode.FromDuplicate)
	require.Equal(t, 1, unique)
}
