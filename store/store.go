// Copyright (c) 2026 kelvindb
// SPDX-License-Identifier: Apache-2.0
// This file is part of the merkletree library.

// Package store defines the Store contract that abstracts persistence of
// the coordinate.Path -> node.Node mapping plus a secondary digest ->
// coordinate index (spec.md §4.3). Two concrete axes are provided:
// memstore (an in-memory ordered map) and badgerstore (an embedded,
// disk-backed ordered key-value store).
package store

import (
	"iter"

	"github.com/kelvindb/merkletree/coordinate"
	"github.com/kelvindb/merkletree/node"
)

// Store is the persistence contract a Tree mutates through. Every method
// operates on a single logical tree; a Store must be exclusively owned by
// one Tree for the duration of any mutating call (spec.md §5).
type Store[D comparable] interface {
	// Set inserts or overwrites the primary entry at k. It also inserts
	// into the secondary digest index iff v.FromDuplicate is false AND
	// no prior entry for v.Digest exists, so that the secondary index
	// always resolves to the canonical (first) occurrence of a digest
	// (spec.md §4.3).
	Set(k coordinate.Path, v node.Node[D]) error

	// Get returns the node at k, or ok=false if absent. Total: never an
	// error for a missing key.
	Get(k coordinate.Path) (v node.Node[D], ok bool)

	// GetKeyByHash returns the canonical coordinate whose node has
	// digest h, or ok=false if no such entry exists.
	GetKeyByHash(h D) (k coordinate.Path, ok bool)

	// Exists is a primary membership test.
	Exists(k coordinate.Path) bool

	// UpdateValue replaces the node at k in place. Unlike Set, it never
	// touches the secondary index: callers use UpdateValue for cascade
	// rehashing (spec.md §4.6.2) where the digest at a coordinate
	// changes but the coordinate's canonical-leaf status does not.
	UpdateValue(k coordinate.Path, v node.Node[D]) error

	// RemoveNode removes the primary entry at k and the secondary entry
	// for its digest, if k currently holds the canonical occurrence.
	RemoveNode(k coordinate.Path) error

	// Entries yields every (coordinate, node) pair. Order is
	// unspecified except where a concrete Store documents otherwise.
	Entries() iter.Seq2[coordinate.Path, node.Node[D]]

	// Reserve is a pre-allocation hint; implementations may treat it as
	// a no-op.
	Reserve(n int)

	// Sort is a hint that the store may reorder its entries (e.g. by
	// digest) to speed up subsequent GetKeyByHash calls. Implementations
	// may treat it as a no-op.
	Sort() error

	// TriggerBatchActions flushes any buffered writes. Implementations
	// may treat it as a no-op.
	TriggerBatchActions() error

	// ShiftRootToLeft renames the current root from
	// (lowestLevel, Center, 0) to (lowestLevel, Left, 0), used by
	// expand_tree (spec.md §4.6.3) just before a new root is written.
	ShiftRootToLeft(lowestLevel int64) error

	// UniqueLeafCount counts the distinct digests among nodes with
	// IsLeaf set.
	UniqueLeafCount() int
}
