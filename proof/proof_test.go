// Copyright (c) 2026 kelvindb
// SPDX-License-Identifier: Apache-2.0

package proof_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kelvindb/merkletree/coordinate"
	"github.com/kelvindb/merkletree/digest"
	"github.com/kelvindb/merkletree/node"
	"github.com/kelvindb/merkletree/proof"
	"github.com/kelvindb/merkletree/store/memstore"
)

// buildTinyTree materialises a 4-leaf tree by hand so Generate/Verify
// can be exercised without pulling in the builder/tree packages.
func buildTinyTree(t *testing.T, d digest.Digest[[32]byte], leaves [4][]byte) (s *memstore.Store[[32]byte], root [32]byte) {
	t.Helper()
	s = memstore.New[[32]byte]()

	digests := make([][32]byte, 4)
	for i, l := range leaves {
		digests[i] = d.HashData(l)
		require.NoError(t, s.Set(coordinate.Leaf(2, uint64(i)), node.New(digests[i])))
	}

	left1 := d.HashConcat(digests[0], digests[1])
	right1 := d.HashConcat(digests[2], digests[3])
	require.NoError(t, s.Set(coordinate.Path{Level: 1, Dir: coordinate.Left, Index: 0}, node.NewInner(left1, false, false)))
	require.NoError(t, s.Set(coordinate.Path{Level: 1, Dir: coordinate.Right, Index: 1}, node.NewInner(right1, false, false)))

	root = d.HashConcat(left1, right1)
	require.NoError(t, s.Set(coordinate.Root(0), node.NewInner(root, false, false)))
	return s, root
}

func TestGenerateAndVerify(t *testing.T) {
	d := digest.SHA256{}
	leaves := [4][]byte{{0}, {1}, {2}, {3}}
	s, root := buildTinyTree(t, d, leaves)

	leafCoord := coordinate.Leaf(2, 2)
	p, err := proof.Generate[[32]byte](s, leafCoord, 0)
	require.NoError(t, err)
	require.Len(t, p, 2)
	require.Equal(t, coordinate.Right, p[0].Dir)

	require.True(t, proof.Verify(d, leaves[2], p, root))
	require.False(t, proof.Verify(d, []byte{99}, p, root))
}

func TestGenerateMissingSiblingFails(t *testing.T) {
	d := digest.SHA256{}
	s := memstore.New[[32]byte]()
	leafCoord := coordinate.Leaf(2, 0)
	require.NoError(t, s.Set(leafCoord, node.New(d.HashData([]byte{0}))))

	_, err := proof.Generate[[32]byte](s, leafCoord, 0)
	require.Error(t, err)
}
