// Copyright © 2024 The ELPS authors

package docdb

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var bucketName = []byte("documentation")

// BoltStore is a Store persisted in a bbolt database.  Entries are stored
// as JSON under their symbol in the "documentation" bucket.
type BoltStore struct {
	db *bbolt.DB
}

var _ Store = (*BoltStore)(nil)

// OpenBolt opens or creates the database at path.
func OpenBolt(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open documentation db %s: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucketName, err)
		}
		return nil
	})
	if err != nil {
		db.Close() //nolint:errcheck
		return nil, err
	}
	log.Infof("using documentation db %s", path)
	return &BoltStore{db: db}, nil
}

// Lookup implements Store.
func (s *BoltStore) Lookup(symbol string) (*Entry, error) {
	var entry *Entry
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(symbol))
		if v == nil {
			return fmt.Errorf("%s: %w", symbol, ErrNotFound)
		}
		entry = new(Entry)
		if err := json.Unmarshal(v, entry); err != nil {
			return fmt.Errorf("decode %s: %w", symbol, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Import writes every entry of m in a single transaction, replacing
// existing entries with the same symbol.  It returns the number of entries
// written.
func (s *BoltStore) Import(m MemoryStore) (int, error) {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		for symbol, entry := range m {
			v, err := json.Marshal(entry)
			if err != nil {
				return fmt.Errorf("encode %s: %w", symbol, err)
			}
			if err := b.Put([]byte(symbol), v); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(m), nil
}

// Symbols returns every stored symbol in key order.
func (s *BoltStore) Symbols() ([]string, error) {
	var symbols []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).ForEach(func(k, _ []byte) error {
			symbols = append(symbols, string(k))
			return nil
		})
	})
	return symbols, err
}

// Close closes the database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
