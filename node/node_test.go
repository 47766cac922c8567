// Copyright (c) 2026 kelvindb
// SPDX-License-Identifier: Apache-2.0

package node_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kelvindb/merkletree/node"
)

func TestNewInnerPropagatesFromDuplicateOnlyWhenBothChildrenAre(t *testing.T) {
	require.True(t, node.NewInner(0, true, true).FromDuplicate)
	require.False(t, node.NewInner(0, true, false).FromDuplicate)
	require.False(t, node.NewInner(0, false, true).FromDuplicate)
	require.False(t, node.NewInner(0, false, false).FromDuplicate)
}

func TestNewAndNewDuplicate(t *testing.T) {
	n := node.New(7)
	require.True(t, n.IsLeaf)
	require.False(t, n.FromDuplicate)

	d := node.NewDuplicate(7)
	require.True(t, d.IsLeaf)
	require.True(t, d.FromDuplicate)
}
