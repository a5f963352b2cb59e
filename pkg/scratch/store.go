// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package scratch is the ephemeral key/value buffer used while filtering the
// live chain snapshot. Nothing stored here survives a session.
package scratch

import (
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
)

// ErrNotFound is returned when reading a key that was never written or was cleared.
var ErrNotFound = errors.New("scratch key not found")

// Store is a badger backed scratch buffer.
type Store struct {
	db *badger.DB
}

// OpenInMemory opens a store that lives only in process memory.
func OpenInMemory() (*Store, error) {
	return open(badger.DefaultOptions("").WithInMemory(true))
}

// Open opens a store under dir. The content is cleared on open, the
// directory is only used to keep large snapshots out of memory.
func Open(dir string) (*Store, error) {
	s, err := open(badger.DefaultOptions(dir))
	if err != nil {
		return nil, err
	}
	if err := s.Clear(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func open(opts badger.Options) (*Store, error) {
	db, err := badger.Open(opts.WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("failed opening scratch store: %w", err)
	}
	return &Store{db: db}, nil
}

// Put overwrites key.
func (s *Store) Put(key string, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

// Get returns a copy of the value stored under key.
func (s *Store) Get(key string) ([]byte, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return value, err
}

func (s *Store) Delete(key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Clear drops every key.
func (s *Store) Clear() error {
	return s.db.DropAll()
}

func (s *Store) Close() error {
	return s.db.Close()
}
