// Copyright (c) 2026 kelvindb
// SPDX-License-Identifier: Apache-2.0

package coordinate_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kelvindb/merkletree/coordinate"
)

func TestFromIndex(t *testing.T) {
	require.Equal(t, coordinate.Left, coordinate.FromIndex(0))
	require.Equal(t, coordinate.Right, coordinate.FromIndex(1))
	require.Equal(t, coordinate.Left, coordinate.FromIndex(42))
	require.Equal(t, coordinate.Right, coordinate.FromIndex(43))
}

func TestDirectionReverse(t *testing.T) {
	require.Equal(t, coordinate.Right, coordinate.Left.Reverse())
	require.Equal(t, coordinate.Left, coordinate.Right.Reverse())
	require.Equal(t, coordinate.Center, coordinate.Center.Reverse())
}

func TestNextNodeIndex(t *testing.T) {
	require.Equal(t, uint64(3), coordinate.NextNodeIndex(coordinate.Left, 2))
	require.Equal(t, uint64(2), coordinate.NextNodeIndex(coordinate.Right, 3))
	require.Equal(t, uint64(0), coordinate.NextNodeIndex(coordinate.Center, 0))
}

func TestParentOfLeafBelowRootIsCenter(t *testing.T) {
	leaf := coordinate.Path{Level: 1, Dir: coordinate.Left, Index: 0}
	parent, ok := leaf.Parent(0)
	require.True(t, ok)
	require.Equal(t, coordinate.Root(0), parent)
}

func TestParentOfRootHasNoParent(t *testing.T) {
	root := coordinate.Root(0)
	_, ok := root.Parent(0)
	require.False(t, ok)
}

func TestSiblingIsInvolutive(t *testing.T) {
	p := coordinate.Leaf(4, 5)
	require.Equal(t, p, p.Sibling().Sibling())
}

func TestRouteLength(t *testing.T) {
	p := coordinate.Leaf(3, 5)
	route := p.Route(0)
	require.Len(t, route, int(p.Level-0+1))
	require.Equal(t, p, route[0])
	require.Equal(t, coordinate.Root(0), route[len(route)-1])
}

func TestLessOrdersByLevelThenIndex(t *testing.T) {
	a := coordinate.Path{Level: 2, Index: 5}
	b := coordinate.Path{Level: 3, Index: 0}
	require.True(t, a.Less(b))
	require.False(t, b.Less(a))

	c := coordinate.Path{Level: 2, Index: 1}
	d := coordinate.Path{Level: 2, Index: 3}
	require.True(t, c.Less(d))
}
