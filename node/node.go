// Copyright (c) 2026 kelvindb
// SPDX-License-Identifier: Apache-2.0
// This file is part of the merkletree library.

// Package node defines the value materialised at every coordinate of a
// merkletree.Tree.
package node

// Node is the value stored at a single coordinate.Path in a Tree's Store.
// It never holds a reference to its parent, children or sibling: all
// navigation is performed through coordinate arithmetic, so a Node is
// only ever a digest plus the two bits of metadata that the tree engine
// needs to classify it.
type Node[D any] struct {
	// Digest is the leaf hash or the hash of the concatenation of this
	// node's two children.
	Digest D

	// IsLeaf marks a node materialised directly from input data rather
	// than computed from children.
	IsLeaf bool

	// FromDuplicate marks a leaf synthesised by the Padder to round the
	// input up to a power of two, or an inner node both of whose
	// children are themselves FromDuplicate.
	FromDuplicate bool
}

// New builds a leaf Node for original input data.
func New[D any](digest D) Node[D] {
	return Node[D]{Digest: digest, IsLeaf: true}
}

// NewDuplicate builds a padding leaf Node.
func NewDuplicate[D any](digest D) Node[D] {
	return Node[D]{Digest: digest, IsLeaf: true, FromDuplicate: true}
}

// NewInner builds an inner Node from the concatenation of two children,
// propagating FromDuplicate only when both children are duplicates
// (spec.md §4.4: "an inner node is from_duplicate if both children are
// from_duplicate").
func NewInner[D any](digest D, leftDuplicate, rightDuplicate bool) Node[D] {
	return Node[D]{Digest: digest, FromDuplicate: leftDuplicate && rightDuplicate}
}
