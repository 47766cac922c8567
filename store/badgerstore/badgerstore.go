// Copyright (c) 2026 kelvindb
// SPDX-License-Identifier: Apache-2.0
//
// The write-batching and LRU-fronted read path here are adapted from
// github.com/onflow/flow-dps's ledger/store.Store (optakt-flow-dps in
// the retrieval pack), which fronts a github.com/dgraph-io/badger/v2
// database with an LRU cache and periodically flushes a batched
// transaction instead of committing on every write.

// Package badgerstore is an embedded, disk-backed store.Store
// implementation on top of Badger, the "any embedded ordered key-value
// store" axis named in spec.md §1.
package badgerstore

import (
	"encoding/binary"
	"errors"
	"fmt"
	"iter"
	"sync"

	"github.com/dgraph-io/badger/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/kelvindb/merkletree/coordinate"
	"github.com/kelvindb/merkletree/node"
	"github.com/kelvindb/merkletree/store"
)

// Badger has no column families, so primary and secondary entries share
// one keyspace distinguished by a one-byte prefix.
const (
	prefixPrimary   byte = 0x01
	prefixSecondary byte = 0x02
)

// Codec converts a digest to and from its on-disk byte representation.
// It is supplied by the caller because the digest width is a type
// parameter, not something badgerstore can derive on its own.
type Codec[D comparable] struct {
	Encode func(D) []byte
	Decode func([]byte) D
}

// Store is a Badger-backed store.Store. Writes accumulate in an open
// badger.WriteBatch and are only durable once TriggerBatchActions is
// called, matching spec.md §4.5's "flush batched writes with
// trigger_batch_actions()" step; an in-memory LRU shortcuts Get and
// Exists for the hot ancestor-chain nodes that Update's cascade
// (spec.md §4.6.2) revisits repeatedly. GetKeyByHash always reads Badger.
type Store[D comparable] struct {
	log   zerolog.Logger
	db    *badger.DB
	codec Codec[D]

	mu    sync.Mutex
	batch *badger.WriteBatch

	cache *lru.Cache[coordinate.Path, node.Node[D]]

	leafMu      sync.Mutex
	leafDigests map[D]struct{}
}

var _ store.Store[[32]byte] = (*Store[[32]byte])(nil)

// Open opens (creating if necessary) a Badger database at path and wraps
// it in a Store.
func Open[D comparable](path string, codec Codec[D], log zerolog.Logger) (*Store[D], error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("could not open badger database: %w", err)
	}
	return New(db, codec, log)
}

// New wraps an already-open Badger database in a Store.
func New[D comparable](db *badger.DB, codec Codec[D], log zerolog.Logger) (*Store[D], error) {
	cache, err := lru.New[coordinate.Path, node.Node[D]](4096)
	if err != nil {
		return nil, fmt.Errorf("could not create node cache: %w", err)
	}
	s := &Store[D]{
		log:         log.With().Str("component", "badgerstore").Logger(),
		db:          db,
		codec:       codec,
		batch:       db.NewWriteBatch(),
		cache:       cache,
		leafDigests: make(map[D]struct{}),
	}
	return s, nil
}

// Close flushes any pending writes and closes the underlying database.
func (s *Store[D]) Close() error {
	if err := s.TriggerBatchActions(); err != nil {
		return err
	}
	return s.db.Close()
}

func encodeKey(k coordinate.Path) []byte {
	buf := make([]byte, 1+8+1+8)
	buf[0] = prefixPrimary
	binary.BigEndian.PutUint64(buf[1:9], uint64(k.Level)^(uint64(1)<<63))
	buf[9] = byte(k.Dir)
	binary.BigEndian.PutUint64(buf[10:18], k.Index)
	return buf
}

func decodeKey(raw []byte) coordinate.Path {
	level := int64(binary.BigEndian.Uint64(raw[1:9]) ^ (uint64(1) << 63))
	dir := coordinate.Direction(raw[9])
	index := binary.BigEndian.Uint64(raw[10:18])
	return coordinate.Path{Level: level, Dir: dir, Index: index}
}

func (s *Store[D]) secondaryKey(h D) []byte {
	encoded := s.codec.Encode(h)
	buf := make([]byte, 1+len(encoded))
	buf[0] = prefixSecondary
	copy(buf[1:], encoded)
	return buf
}

func encodeValue[D comparable](codec Codec[D], v node.Node[D]) []byte {
	encoded := codec.Encode(v.Digest)
	buf := make([]byte, len(encoded)+2)
	copy(buf, encoded)
	if v.IsLeaf {
		buf[len(encoded)] = 1
	}
	if v.FromDuplicate {
		buf[len(encoded)+1] = 1
	}
	return buf
}

func decodeValue[D comparable](codec Codec[D], raw []byte) node.Node[D] {
	digestLen := len(raw) - 2
	return node.Node[D]{
		Digest:        codec.Decode(raw[:digestLen]),
		IsLeaf:        raw[digestLen] == 1,
		FromDuplicate: raw[digestLen+1] == 1,
	}
}

// Set implements store.Store.
func (s *Store[D]) Set(k coordinate.Path, v node.Node[D]) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.batch.Set(encodeKey(k), encodeValue(s.codec, v)); err != nil {
		return fmt.Errorf("could not stage node write: %w", err)
	}
	s.cache.Add(k, v)

	if !v.FromDuplicate {
		if _, ok, err := s.lookupSecondary(v.Digest); err == nil && !ok {
			if err := s.batch.Set(s.secondaryKey(v.Digest), encodeKey(k)); err != nil {
				return fmt.Errorf("could not stage secondary index write: %w", err)
			}
		}
	}
	if v.IsLeaf {
		s.leafMu.Lock()
		s.leafDigests[v.Digest] = struct{}{}
		s.leafMu.Unlock()
	}
	return nil
}

func (s *Store[D]) lookupSecondary(h D) (coordinate.Path, bool, error) {
	var found coordinate.Path
	var ok bool
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.secondaryKey(h))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			found = decodeKey(val)
			ok = true
			return nil
		})
	})
	return found, ok, err
}

// Get implements store.Store.
func (s *Store[D]) Get(k coordinate.Path) (node.Node[D], bool) {
	if v, ok := s.cache.Get(k); ok {
		return v, true
	}

	var v node.Node[D]
	var found bool
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(encodeKey(k))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			v = decodeValue(s.codec, val)
			found = true
			return nil
		})
	})
	if err != nil {
		s.log.Warn().Err(err).Str("coordinate", k.String()).Msg("could not read node from badger")
		return node.Node[D]{}, false
	}
	if found {
		s.cache.Add(k, v)
	}
	return v, found
}

// GetKeyByHash implements store.Store.
func (s *Store[D]) GetKeyByHash(h D) (coordinate.Path, bool) {
	k, ok, err := s.lookupSecondary(h)
	if err != nil {
		s.log.Warn().Err(err).Msg("could not read secondary index from badger")
		return coordinate.Path{}, false
	}
	return k, ok
}

// Exists implements store.Store.
func (s *Store[D]) Exists(k coordinate.Path) bool {
	if _, ok := s.cache.Get(k); ok {
		return true
	}
	var found bool
	_ = s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(encodeKey(k))
		found = err == nil
		return nil
	})
	return found
}

// UpdateValue implements store.Store.
func (s *Store[D]) UpdateValue(k coordinate.Path, v node.Node[D]) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.batch.Set(encodeKey(k), encodeValue(s.codec, v)); err != nil {
		return fmt.Errorf("could not stage node update: %w", err)
	}
	s.cache.Add(k, v)
	return nil
}

// RemoveNode implements store.Store.
func (s *Store[D]) RemoveNode(k coordinate.Path) error {
	old, ok := s.Get(k)
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.batch.Delete(encodeKey(k)); err != nil {
		return fmt.Errorf("could not stage node delete: %w", err)
	}
	if canonical, ok, err := s.lookupSecondary(old.Digest); err == nil && ok && canonical == k {
		if err := s.batch.Delete(s.secondaryKey(old.Digest)); err != nil {
			return fmt.Errorf("could not stage secondary index delete: %w", err)
		}
	}
	s.cache.Remove(k)
	return nil
}

// Entries implements store.Store. It flushes pending writes first so
// that the iteration observes a consistent view.
func (s *Store[D]) Entries() iter.Seq2[coordinate.Path, node.Node[D]] {
	if err := s.TriggerBatchActions(); err != nil {
		s.log.Warn().Err(err).Msg("could not flush pending writes before iterating entries")
	}
	return func(yield func(coordinate.Path, node.Node[D]) bool) {
		_ = s.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = []byte{prefixPrimary}
			it := txn.NewIterator(opts)
			defer it.Close()
			for it.Seek([]byte{prefixPrimary}); it.ValidForPrefix([]byte{prefixPrimary}); it.Next() {
				item := it.Item()
				k := decodeKey(item.KeyCopy(nil))
				var v node.Node[D]
				err := item.Value(func(val []byte) error {
					v = decodeValue(s.codec, val)
					return nil
				})
				if err != nil {
					return err
				}
				if !yield(k, v) {
					return nil
				}
			}
			return nil
		})
	}
}

// Reserve implements store.Store as a no-op: Badger does not expose a
// pre-allocation hint for an arbitrary number of upcoming keys.
func (s *Store[D]) Reserve(int) {}

// Sort implements store.Store as a no-op: Badger already keeps keys in
// sorted byte order, so no reordering step is needed.
func (s *Store[D]) Sort() error {
	return nil
}

// TriggerBatchActions flushes the pending write batch and opens a fresh
// one for subsequent writes.
func (s *Store[D]) TriggerBatchActions() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.batch.Flush(); err != nil {
		return fmt.Errorf("could not commit batched writes: %w", err)
	}
	s.batch = s.db.NewWriteBatch()
	return nil
}

// ShiftRootToLeft implements store.Store. When the old root's digest is
// the canonical secondary-index entry for some leaf, the index is
// rewritten to point at newKey rather than dropped, mirroring
// memstore.Store's handling of the same edge case.
func (s *Store[D]) ShiftRootToLeft(lowestLevel int64) error {
	oldRoot := coordinate.Path{Level: lowestLevel, Dir: coordinate.Center, Index: 0}
	v, ok := s.Get(oldRoot)
	if !ok {
		return nil
	}
	newKey := coordinate.Path{Level: lowestLevel, Dir: coordinate.Left, Index: 0}

	canonical, canonicalOK, err := s.lookupSecondary(v.Digest)
	if err != nil {
		return fmt.Errorf("could not read secondary index during shift: %w", err)
	}

	s.mu.Lock()
	if err := s.batch.Delete(encodeKey(oldRoot)); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("could not stage node delete: %w", err)
	}
	if err := s.batch.Set(encodeKey(newKey), encodeValue(s.codec, v)); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("could not stage node write: %w", err)
	}
	if canonicalOK && canonical == oldRoot {
		if err := s.batch.Set(s.secondaryKey(v.Digest), encodeKey(newKey)); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("could not stage secondary index write: %w", err)
		}
	}
	s.mu.Unlock()

	s.cache.Remove(oldRoot)
	s.cache.Add(newKey, v)
	return nil
}

// UniqueLeafCount implements store.Store using the in-memory running set
// maintained on every Set, avoiding a full table scan.
func (s *Store[D]) UniqueLeafCount() int {
	s.leafMu.Lock()
	defer s.leafMu.Unlock()
	return len(s.leafDigests)
}
