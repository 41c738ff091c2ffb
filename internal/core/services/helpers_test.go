package services

import (
	"context"
	"sync"
	"time"

	"github.com/artisnova/aria/internal/core/domain"
	"github.com/artisnova/aria/internal/core/ports/driven"
)

// fakeClock is a manually advanced clock for deterministic expiry tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeCacheStore is an in-memory driven.CacheStore with error injection.
type fakeCacheStore struct {
	mu      sync.Mutex
	entries map[string]domain.CacheEntry
	getErr  error
	setErr  error
}

var _ driven.CacheStore = (*fakeCacheStore)(nil)

func newFakeCacheStore() *fakeCacheStore {
	return &fakeCacheStore{entries: make(map[string]domain.CacheEntry)}
}

func (s *fakeCacheStore) Get(_ context.Context, key string) (*domain.CacheEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	entry, ok := s.entries[key]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return &entry, nil
}

func (s *fakeCacheStore) Set(_ context.Context, entry domain.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.entries[entry.Key] = entry
	return nil
}

func (s *fakeCacheStore) Touch(_ context.Context, key string, accessedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.entries[key]; ok {
		entry.AccessCount++
		entry.LastAccessedAt = accessedAt
		s.entries[key] = entry
	}
	return nil
}

func (s *fakeCacheStore) Invalidate(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *fakeCacheStore) Purge(_ context.Context, now time.Time) (int, error) {
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

func (s *fakeCacheStore) Entries(_ context.Context, now time.Time) ([]domain.CacheEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.CacheEntry
	for _, entry := range s.entries {
		if !entry.Expired(now) {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (s *fakeCacheStore) Close() error { return nil }

func (s *fakeCacheStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[key]
	return ok
}

// fakeConnector is a scriptable driven.Connector.
type fakeConnector struct {
	name    string
	weight  float64
	types   []domain.EntityType
	records []domain.CanonicalRecord
	err     error
	delay   time.Duration

	mu    sync.Mutex
	calls int
}

var _ driven.Connector = (*fakeConnector)(nil)

func (c *fakeConnector) Name() string               { return c.name }
func (c *fakeConnector) ReliabilityWeight() float64 { return c.weight }

func (c *fakeConnector) Capabilities() driven.ConnectorCapabilities {
	types := c.types
	if types == nil {
		types = []domain.EntityType{domain.EntityArtist, domain.EntityAlbum, domain.EntityTrack}
	}
	return driven.ConnectorCapabilities{SupportedTypes: types}
}

func (c *fakeConnector) Search(ctx context.Context, _ domain.Query) ([]domain.CanonicalRecord, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()

	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return c.records, c.err
}

func (c *fakeConnector) FetchDetail(_ context.Context, _ domain.EntityType, _ string) (*domain.CanonicalRecord, error) {
	return nil, domain.ErrNotFound
}

func (c *fakeConnector) Validate(_ context.Context) error { return nil }
func (c *fakeConnector) Close() error                     { return nil }

func (c *fakeConnector) searchCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// fakeCorrectionStore is an in-memory driven.CorrectionStore.
type fakeCorrectionStore struct {
	mu          sync.Mutex
	corrections []domain.Correction
}

var _ driven.CorrectionStore = (*fakeCorrectionStore)(nil)

func (s *fakeCorrectionStore) Append(_ context.Context, correction domain.Correction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.corrections = append(s.corrections, correction)
	return nil
}

func (s *fakeCorrectionStore) ForEntity(_ context.Context, entityID string) ([]domain.Correction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Correction
	for _, c := range s.corrections {
		if c.EntityID == entityID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *fakeCorrectionStore) Latest(_ context.Context, entityID, fieldName string) (*domain.Correction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.corrections) - 1; i >= 0; i-- {
		if s.corrections[i].EntityID == entityID && s.corrections[i].FieldName == fieldName {
			c := s.corrections[i]
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *fakeCorrectionStore) Close() error { return nil }
