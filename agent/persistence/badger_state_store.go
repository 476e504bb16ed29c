package persistence

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
)

const badgerStatePrefix = "state:"

// BadgerStateStore keeps state documents in an embedded BadgerDB under BaseDir/badger.
type BadgerStateStore struct {
	db *badger.DB
}

// NewBadgerStateStore opens (or creates) the Badger database
func NewBadgerStateStore(config StoreConfig) (*BadgerStateStore, error) {
	dir := filepath.Join(config.BaseDir, "badger")
	db, err := badger.Open(badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR))
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}
	return &BadgerStateStore{db: db}, nil
}

func badgerKey(conversationID string) []byte {
	return []byte(badgerStatePrefix + conversationID)
}

// Close closes the store
func (s *BadgerStateStore) Close() error {
	if s.db.IsClosed() {
		return nil
	}
	return s.db.Close()
}

// Ping checks if the store is healthy
func (s *BadgerStateStore) Ping(ctx context.Context) error {
	if s.db.IsClosed() {
		return ErrStoreClosed
	}
	return nil
}

// SaveState stores data under the conversation key
func (s *BadgerStateStore) SaveState(ctx context.Context, conversationID string, data []byte) error {
	if err := ValidateConversationID(conversationID); err != nil {
		return err
	}
	if len(data) == 0 {
		return ErrInvalidInput
	}
	if s.db.IsClosed() {
		return ErrStoreClosed
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(conversationID), data)
	})
}

// LoadState retrieves the saved document
func (s *BadgerStateStore) LoadState(ctx context.Context, conversationID string) ([]byte, error) {
	if s.db.IsClosed() {
		return nil, ErrStoreClosed
	}

	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(conversationID))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// DeleteState removes the saved document
func (s *BadgerStateStore) DeleteState(ctx context.Context, conversationID string) error {
	if s.db.IsClosed() {
		return ErrStoreClosed
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		key := badgerKey(conversationID)
		if _, err := txn.Get(key); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	return err
}

// ListStates scans the state prefix. Badger iterates keys in lexical order.
func (s *BadgerStateStore) ListStates(ctx context.Context) ([]string, error) {
	if s.db.IsClosed() {
		return nil, ErrStoreClosed
	}

	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		prefix := []byte(badgerStatePrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			ids = append(ids, string(key[len(prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}
