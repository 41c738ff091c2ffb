package driven

import (
	"context"
	"time"

	"github.com/artisnova/aria/internal/core/domain"
)

// CacheStore is one physical cache tier. Both tiers (in-process memory,
// durable store) expose the same interface; the tiered cache service
// composes two of them with promotion on read.
//
// Implementations store entries immutably: Set replaces the whole entry
// atomically, and readers never observe a partial write.
type CacheStore interface {
	// Get returns the entry for the key, including expired entries.
	// Expiry policy belongs to the caller (checked lazily against the
	// injected clock); stores only report what they hold.
	// Returns domain.ErrCacheMiss when the key is absent.
	Get(ctx context.Context, key string) (*domain.CacheEntry, error)

	// Set writes the entry, replacing any previous entry for the key.
	Set(ctx context.Context, entry domain.CacheEntry) error

	// Touch updates access metadata for a key after a hit.
	// Missing keys are ignored.
	Touch(ctx context.Context, key string, accessedAt time.Time) error

	// Invalidate removes the entry for the key, if present.
	Invalidate(ctx context.Context, key string) error

	// Purge removes all entries expired at the given instant and returns
	// how many were removed. Called by the periodic sweep.
	Purge(ctx context.Context, now time.Time) (int, error)

	// Entries returns all non-expired entries at the given instant.
	// Used for stats; tiers are small enough that this stays cheap.
	Entries(ctx context.Context, now time.Time) ([]domain.CacheEntry, error)

	// Close releases resources.
	Close() error
}

// Clock abstracts time so cache expiry is deterministic in tests.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }
