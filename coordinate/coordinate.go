// Copyright (c) 2026 kelvindb
// SPDX-License-Identifier: Apache-2.0
// This file is part of the merkletree library.

// Package coordinate implements the PathTrace addressing algebra of
// spec.md §3/§4.2: every node is named by a (level, direction, index)
// triple, and parent/sibling/route are derived arithmetically rather
// than by walking a pointer graph.
package coordinate

import "fmt"

// Path is a PathTrace: the stable coordinate of one node in a Tree.
//
// Level is signed because the root's level (lowestLevel) decrements on
// every height-increasing append (spec.md §3, "Level numbering"), so the
// root and the inner nodes written above the original root sit at
// negative levels while leaves keep their construction-time level.
type Path struct {
	Level int64
	Dir   Direction
	Index uint64
}

// Root builds the coordinate of the tree root at the given lowestLevel.
func Root(lowestLevel int64) Path {
	return Path{Level: lowestLevel, Dir: Center, Index: 0}
}

// Leaf builds the coordinate of the i-th leaf at the tree's (current)
// leaf level.
func Leaf(levelCount int64, i uint64) Path {
	return Path{Level: levelCount, Dir: FromIndex(i), Index: i}
}

// IsRoot reports whether p addresses a tree's root.
func (p Path) IsRoot() bool {
	return p.Dir == Center
}

// Parent returns the coordinate of p's parent and true, or the zero
// Path and false when p is already the root (p.Level == lowestLevel).
//
// The parent of a node one level below the root is the root itself, so
// its direction is forced to Center regardless of index parity
// (spec.md §3, "Parent derivation").
func (p Path) Parent(lowestLevel int64) (Path, bool) {
	if p.Level <= lowestLevel {
		return Path{}, false
	}
	parentIndex := p.Index / 2
	parentLevel := p.Level - 1
	dir := FromIndex(parentIndex)
	if parentLevel == lowestLevel {
		dir = Center
		parentIndex = 0
	}
	return Path{Level: parentLevel, Dir: dir, Index: parentIndex}, true
}

// Sibling returns the coordinate that shares p's parent. It is undefined
// (and must not be called) for a root coordinate, which has no sibling.
func (p Path) Sibling() Path {
	return Path{Level: p.Level, Dir: p.Dir.Reverse(), Index: NextNodeIndex(p.Dir, p.Index)}
}

// Route yields the ordered sequence of coordinates from p to the root,
// inclusive: p, p's parent, p's grandparent, ..., root. It is finite of
// length level-lowestLevel+1 (spec.md §4.2).
func (p Path) Route(lowestLevel int64) []Path {
	route := make([]Path, 0, p.Level-lowestLevel+1)
	cur := p
	route = append(route, cur)
	for {
		parent, ok := cur.Parent(lowestLevel)
		if !ok {
			break
		}
		route = append(route, parent)
		cur = parent
	}
	return route
}

// Less implements the total order of spec.md §3: first by level, then
// by index; direction is excluded since index parity already encodes it
// for every non-root coordinate.
func (p Path) Less(other Path) bool {
	if p.Level != other.Level {
		return p.Level < other.Level
	}
	return p.Index < other.Index
}

// String renders p as "L<level>:<dir>:<index>", used in log fields and
// invariant-violation error messages.
func (p Path) String() string {
	return fmt.Sprintf("L%d:%s:%d", p.Level, p.Dir, p.Index)
}
