// Package memory provides in-process implementations of the storage
// ports, used as the fast cache tier and in tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/artisnova/aria/internal/core/domain"
	"github.com/artisnova/aria/internal/core/ports/driven"
)

// Ensure CacheStore implements the interface.
var _ driven.CacheStore = (*CacheStore)(nil)

// CacheStore is the in-process cache tier. Entries do not survive a
// restart. Writes replace whole entries under the lock, so readers never
// observe a partial update.
type CacheStore struct {
	mu      sync.RWMutex
	entries map[string]domain.CacheEntry
}

// NewCacheStore creates an empty in-memory cache tier.
func NewCacheStore() *CacheStore {
	return &CacheStore{entries: make(map[string]domain.CacheEntry)}
}

// Get returns the entry for the key, expired or not.
func (s *CacheStore) Get(_ context.Context, key string) (*domain.CacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[key]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return &entry, nil
}

// Set stores the entry, replacing any previous one for the key.
func (s *CacheStore) Set(_ context.Context, entry domain.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.Key] = entry
	return nil
}

// Touch updates access metadata after a hit.
func (s *CacheStore) Touch(_ context.Context, key string, accessedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok {
		return nil
	}
	entry.AccessCount++
	entry.LastAccessedAt = accessedAt
	s.entries[key] = entry
	return nil
}

// Invalidate removes the entry for the key.
func (s *CacheStore) Invalidate(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Purge removes all entries expired at the given instant.
func (s *CacheStore) Purge(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, entry := range s.entries {
		if entry.Expired(now) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}

// Entries returns all non-expired entries.
func (s *CacheStore) Entries(_ context.Context, now time.Time) ([]domain.CacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.CacheEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		if !entry.Expired(now) {
			out = append(out, entry)
		}
	}
	return out, nil
}

// Close releases nothing; the store is plain memory.
func (s *CacheStore) Close() error {
	return nil
}
