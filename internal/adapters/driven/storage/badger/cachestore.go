// Package badger provides an alternative durable cache tier backed by
// BadgerDB, for deployments preferring an LSM key-value store over SQLite.
package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/artisnova/aria/internal/core/domain"
	"github.com/artisnova/aria/internal/core/ports/driven"
)

// Key prefix for cache entries; leaves room for future record kinds in
// the same keyspace.
const prefixCacheEntry = byte(0x01)

// CacheStore implements driven.CacheStore on top of BadgerDB.
type CacheStore struct {
	db *badger.DB
}

var _ driven.CacheStore = (*CacheStore)(nil)

// Options configures the badger-backed cache store.
type Options struct {
	// DataDir is the directory for the badger value log and SSTs.
	// Ignored when InMemory is set.
	DataDir string

	// InMemory runs badger without any on-disk state. Used in tests.
	InMemory bool
}

// NewCacheStore opens (or creates) a badger database at opts.DataDir.
func NewCacheStore(opts Options) (*CacheStore, error) {
	badgerOpts := badger.DefaultOptions(opts.DataDir).
		WithLogger(nil).
		WithInMemory(opts.InMemory)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("opening badger database: %w", err)
	}
	return &CacheStore{db: db}, nil
}

// Get retrieves the cache entry for a key, expired or not.
func (s *CacheStore) Get(_ context.Context, key string) (*domain.CacheEntry, error) {
	var entry domain.CacheEntry
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(storeKey(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, domain.ErrCacheMiss
		}
		return nil, fmt.Errorf("%w: reading cache entry: %w", domain.ErrCacheUnavailable, err)
	}
	return &entry, nil
}

// Set writes the entry, replacing any previous entry for the key.
func (s *CacheStore) Set(_ context.Context, entry domain.CacheEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshalling cache entry: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(storeKey(entry.Key), payload)
	})
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Touch updates access metadata for a key. A missing key is not an error:
// the entry may have been purged between the hit and the touch.
func (s *CacheStore) Touch(_ context.Context, key string, accessedAt time.Time) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(storeKey(key))
		if err != nil {
			return err
		}
		var entry domain.CacheEntry
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		}); err != nil {
			return err
		}
		entry.AccessCount++
		entry.LastAccessedAt = accessedAt
		payload, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		return txn.Set(storeKey(key), payload)
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return fmt.Errorf("touching cache entry: %w", err)
	}
	return nil
}

// Invalidate removes the entry for the key.
func (s *CacheStore) Invalidate(_ context.Context, key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(storeKey(key))
	})
	if err != nil {
		return fmt.Errorf("deleting cache entry: %w", err)
	}
	return nil
}

// Purge removes all entries expired at the given instant.
func (s *CacheStore) Purge(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.scan(ctx, func(entry *domain.CacheEntry) bool {
		return entry.Expired(now)
	})
	if err != nil {
		return 0, fmt.Errorf("scanning for expired entries: %w", err)
	}

	removed := 0
	for _, entry := range expired {
		err := s.db.Update(func(txn *badger.Txn) error {
			return txn.Delete(storeKey(entry.Key))
		})
		if err != nil {
			return removed, fmt.Errorf("deleting expired entry %q: %w", entry.Key, err)
		}
		removed++
	}
	return removed, nil
}

// Entries returns all non-expired entries.
func (s *CacheStore) Entries(ctx context.Context, now time.Time) ([]domain.CacheEntry, error) {
	return s.scan(ctx, func(entry *domain.CacheEntry) bool {
		return !entry.Expired(now)
	})
}

// Close closes the underlying badger database.
func (s *CacheStore) Close() error {
	return s.db.Close()
}

// scan iterates all cache entries and returns those matching keep.
func (s *CacheStore) scan(ctx context.Context, keep func(*domain.CacheEntry) bool) ([]domain.CacheEntry, error) {
	var entries []domain.CacheEntry
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte{prefixCacheEntry}
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var entry domain.CacheEntry
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			})
			if err != nil {
				return err
			}
			if keep(&entry) {
				entries = append(entries, entry)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterating cache entries: %w", err)
	}
	return entries, nil
}

func storeKey(key string) []byte {
	return append([]byte{prefixCacheEntry}, key...)
}
