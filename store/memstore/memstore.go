// Copyright (c) 2026 kelvindb
// SPDX-License-Identifier: Apache-2.0
//
// The locking discipline here (a single sync.RWMutex guarding a plain Go
// map, with a generic type parameter for the cached value) is adapted
// from github.com/pk910/dynamic-ssz's ssztypes.TypeCache.

// Package memstore is an in-memory store.Store backed by an
// insertion-ordered map, suitable for trees that fit comfortably in
// memory or for tests.
package memstore

import (
	"iter"
	"sort"
	"sync"

	"github.com/kelvindb/merkletree/coordinate"
	"github.com/kelvindb/merkletree/node"
	"github.com/kelvindb/merkletree/store"
)

// Store is an in-memory, insertion-ordered store.Store implementation.
// The secondary digest index is an explicit map kept consistent with the
// duplicate-suppression rule on every Set; Sort additionally rebuilds an
// ordered key slice so that Entries walks (level, index) in ascending
// order, matching spec.md §4.3's note that a sorted in-memory store can
// resolve GetKeyByHash via binary search (here: a direct map lookup,
// which is the same O(1) contract with less code).
type Store[D comparable] struct {
	mu        sync.RWMutex
	primary   map[coordinate.Path]node.Node[D]
	order     []coordinate.Path
	secondary map[D]coordinate.Path
}

var _ store.Store[[32]byte] = (*Store[[32]byte])(nil)

// New creates an empty Store.
func New[D comparable]() *Store[D] {
	return &Store[D]{
		primary:   make(map[coordinate.Path]node.Node[D]),
		secondary: make(map[D]coordinate.Path),
	}
}

// Set implements store.Store.
func (s *Store[D]) Set(k coordinate.Path, v node.Node[D]) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.primary[k]; !exists {
		s.order = append(s.order, k)
	}
	s.primary[k] = v

	if !v.FromDuplicate {
		if _, exists := s.secondary[v.Digest]; !exists {
			s.secondary[v.Digest] = k
		}
	}
	return nil
}

// Get implements store.Store.
func (s *Store[D]) Get(k coordinate.Path) (node.Node[D], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.primary[k]
	return v, ok
}

// GetKeyByHash implements store.Store.
func (s *Store[D]) GetKeyByHash(h D) (coordinate.Path, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	k, ok := s.secondary[h]
	return k, ok
}

// Exists implements store.Store.
func (s *Store[D]) Exists(k coordinate.Path) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.primary[k]
	return ok
}

// UpdateValue implements store.Store.
func (s *Store[D]) UpdateValue(k coordinate.Path, v node.Node[D]) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.primary[k]; !exists {
		s.order = append(s.order, k)
	}
	s.primary[k] = v
	return nil
}

// RemoveNode implements store.Store.
func (s *Store[D]) RemoveNode(k coordinate.Path) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.primary[k]
	if !ok {
		return nil
	}
	delete(s.primary, k)
	if canonical, ok := s.secondary[old.Digest]; ok && canonical == k {
		delete(s.secondary, old.Digest)
	}
	for i, p := range s.order {
		if p == k {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Entries implements store.Store.
func (s *Store[D]) Entries() iter.Seq2[coordinate.Path, node.Node[D]] {
	s.mu.RLock()
	keys := make([]coordinate.Path, len(s.order))
	copy(keys, s.order)
	s.mu.RUnlock()

	return func(yield func(coordinate.Path, node.Node[D]) bool) {
		for _, k := range keys {
			s.mu.RLock()
			v, ok := s.primary[k]
			s.mu.RUnlock()
			if !ok {
				continue
			}
			if !yield(k, v) {
				return
			}
		}
	}
}

// Reserve implements store.Store by pre-growing the insertion-order
// slice; the underlying map cannot be pre-sized generically before Go
// 1.23's iterator-free map hints, so this is a partial hint.
func (s *Store[D]) Reserve(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cap(s.order)-len(s.order) < n {
		grown := make([]coordinate.Path, len(s.order), len(s.order)+n)
		copy(grown, s.order)
		s.order = grown
	}
}

// Sort implements store.Store by reordering the insertion-order slice
// into the (level, index) total order of spec.md §3, so Entries walks
// the tree bottom-up, left-to-right.
func (s *Store[D]) Sort() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sort.Slice(s.order, func(i, j int) bool {
		return s.order[i].Less(s.order[j])
	})
	return nil
}

// TriggerBatchActions implements store.Store as a no-op: writes are
// never buffered in memory.
func (s *Store[D]) TriggerBatchActions() error {
	return nil
}

// ShiftRootToLeft implements store.Store.
func (s *Store[D]) ShiftRootToLeft(lowestLevel int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	oldRoot := coordinate.Path{Level: lowestLevel, Dir: coordinate.Center, Index: 0}
	v, ok := s.primary[oldRoot]
	if !ok {
		return nil
	}
	newKey := coordinate.Path{Level: lowestLevel, Dir: coordinate.Left, Index: 0}
	delete(s.primary, oldRoot)
	s.primary[newKey] = v
	for i, p := range s.order {
		if p == oldRoot {
			s.order[i] = newKey
			break
		}
	}
	if canonical, ok := s.secondary[v.Digest]; ok && canonical == oldRoot {
		s.secondary[v.Digest] = newKey
	}
	return nil
}

// UniqueLeafCount implements store.Store.
func (s *Store[D]) UniqueLeafCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[D]struct{})
	for _, v := range s.primary {
		if v.IsLeaf {
			seen[v.Digest] = struct{}{}
		}
	}
	return len(seen)
}
