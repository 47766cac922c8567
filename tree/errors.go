// Copyright (c) 2026 kelvindb
// SPDX-License-Identifier: Apache-2.0
//
// The sentinel-error-plus-%w-wrapping pattern follows
// github.com/pk910/dynamic-ssz's sszutils/error.go.

package tree

import "errors"

// ErrPrecondition is returned when an operation's documented precondition
// is violated, e.g. constructing a tree from fewer than two leaves.
var ErrPrecondition = errors.New("tree: precondition violated")

// ErrInvariantViolation marks a fatal internal inconsistency: a Store
// returned a node whose digest does not match what the engine computed,
// or coordinate arithmetic produced an illegal state. The caller should
// discard the Tree handle.
var ErrInvariantViolation = errors.New("tree: invariant violation")

// ErrStoreFailure wraps an underlying Store error encountered during a
// mutating call. The Tree handle is considered invalid afterward: it does
// not attempt to repair partial writes.
var ErrStoreFailure = errors.New("tree: store operation failed")
