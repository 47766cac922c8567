// Copyright (c) 2026 kelvindb
// SPDX-License-Identifier: Apache-2.0

package badgerstore_test

import (
	"encoding/binary"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/kelvindb/merkletree/coordinate"
	"github.com/kelvindb/merkletree/node"
	"github.com/kelvindb/merkletree/store/badgerstore"
)

func uint64Codec() badgerstore.Codec[uint64] {
	return badgerstore.Codec[uint64]{
		Encode: func(v uint64) []byte {
			buf := make([]byte, 8)
			binary.BigEndian.PutUint64(buf, v)
			return buf
		},
		Decode: func(raw []byte) uint64 {
			return binary.BigEndian.Uint64(raw)
		},
	}
}

func openTestStore(t *testing.T) *badgerstore.Store[uint64] {
	t.Helper()
	s, err := badgerstore.Open(t.TempDir(), uint64Codec(), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

func TestBadgerStoreSetGet(t *testing.T) {
	s := openTestStore(t)
	k := coordinate.Leaf(3, 0)
	v := node.New(uint64(42))

	require.NoError(t, s.Set(k, v))
	require.NoError(t, s.TriggerBatchActions())

	got, ok := s.Get(k)
	require.True(t, ok)
	require.Equal(t, v, got)
	require.True(t, s.Exists(k))
}

func TestBadgerStoreSecondaryIndexSkipsDuplicates(t *testing.T) {
	s := openTestStore(t)
	canonical := coordinate.Leaf(3, 0)
	dup := coordinate.Leaf(3, 2)

	require.NoError(t, s.Set(canonical, node.New(uint64(7))))
	require.NoError(t, s.Set(dup, node.NewDuplicate(uint64(7))))
	require.NoError(t, s.TriggerBatchActions())

	got, ok := s.GetKeyByHash(7)
	require.True(t, ok)
	require.Equal(t, canonical, got)
}

func TestBadgerStoreShiftRootToLeft(t *testing.T) {
	s := openTestStore(t)
	root := coordinate.Root(0)
	v := node.NewInner(uint64(9), false, false)

	require.NoError(t, s.Set(root, v))
	require.NoError(t, s.TriggerBatchActions())
	require.NoError(t, s.ShiftRootToLeft(0))
	require.NoError(t, s.TriggerBatchActions())

	require.False(t, s.Exists(root))
	left := coordinate.Path{Level: 0, Dir: coordinate.Left, Index: 0}
	got, ok := s.Get(left)
	require.True(t, ok)
	require.Equal(t, v, got)
}

func TestBadgerStoreShiftRootToLeftPreservesSecondaryIndex(t *testing.T) {
	s := openTestStore(t)
	root := coordinate.Root(0)
	v := node.NewInner(uint64(9), false, false)

	require.NoError(t, s.Set(root, v))
	require.NoError(t, s.TriggerBatchActions())
	require.NoError(t, s.ShiftRootToLeft(0))
	require.NoError(t, s.TriggerBatchActions())

	left := coordinate.Path{Level: 0, Dir: coordinate.Left, Index: 0}
	got, ok := s.GetKeyByHash(uint64(9))
	require.True(t, ok)
	require.Equal(t, left, got)
}

func TestBadgerStoreUniqueLeafCount(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Set(coordinate.Leaf(2, 0), node.New(uint64(1))))
	require.NoError(t, s.Set(coordinate.Leaf(2, 1), node.New(uint64(2))))
	require.NoError(t, s.Set(coordinate.Leaf(2, 2), node.NewDuplicate(uint64(2))))
	require.NoError(t, s.TriggerBatchActions())

	require.Equal(t, 2, s.UniqueLeafCount())
}

func TestBadgerStoreEntriesAfterFlush(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Set(coordinate.Leaf(1, 0), node.New(uint64(1))))
	require.NoError(t, s.Set(coordinate.Leaf(1, 1), node.New(uint64(2))))

	count := 0
	for range s.Entries() {
		count++
	}
	require.Equal(t, 2, count)
}
