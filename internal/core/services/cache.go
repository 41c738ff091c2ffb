package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/artisnova/aria/internal/core/domain"
	"github.com/artisnova/aria/internal/core/ports/driven"
	"github.com/artisnova/aria/internal/logger"
)

// Default TTLs for the two tiers and for cached negatives.
const (
	DefaultMemoryTTL   = 10 * time.Minute
	DefaultDurableTTL  = time.Hour
	DefaultNegativeTTL = 5 * time.Minute
)

// TieredCacheConfig carries the TTL policy for both tiers.
type TieredCacheConfig struct {
	// MemoryTTL bounds entries in the fast in-process tier.
	MemoryTTL time.Duration

	// DurableTTL bounds entries in the durable tier.
	DurableTTL time.Duration

	// NegativeTTL bounds cached not-found results (memory tier only).
	NegativeTTL time.Duration

	// DurableTTLByType overrides DurableTTL per entity-type key namespace.
	DurableTTLByType map[domain.EntityType]time.Duration
}

func (c TieredCacheConfig) withDefaults() TieredCacheConfig {
	if c.MemoryTTL <= 0 {
		c.MemoryTTL = DefaultMemoryTTL
	}
	if c.DurableTTL <= 0 {
		c.DurableTTL = DefaultDurableTTL
	}
	if c.NegativeTTL <= 0 {
		c.NegativeTTL = DefaultNegativeTTL
	}
	return c
}

// TieredCache composes the fast memory tier with the durable tier behind
// one read-through interface. The memory tier is checked first; a durable
// hit is promoted into memory before returning. Expiry is checked lazily
// on read against the injected clock, so tests control time without
// sleeping.
//
// A failing durable tier degrades the cache to memory-only for the
// affected calls: reads report a miss and writes are skipped, which costs
// performance, never correctness.
type TieredCache struct {
	memory  driven.CacheStore
	durable driven.CacheStore // may be nil
	clock   driven.Clock
	config  TieredCacheConfig

	mu     sync.Mutex
	hits   int64
	misses int64
}

// NewTieredCache creates the two-tier cache. durable may be nil for a
// memory-only deployment.
func NewTieredCache(memory, durable driven.CacheStore, clock driven.Clock, config TieredCacheConfig) *TieredCache {
	if clock == nil {
		clock = SystemClock{}
	}
	return &TieredCache{
		memory:  memory,
		durable: durable,
		clock:   clock,
		config:  config.withDefaults(),
	}
}

// Get returns the cached entry for the key, or domain.ErrCacheMiss.
// Expired entries are evicted on the spot and reported as misses.
func (c *TieredCache) Get(ctx context.Context, key string) (*domain.CacheEntry, error) {
	now := c.clock.Now()

	if entry, ok := c.fromTier(ctx, c.memory, key, now); ok {
		c.recordHit()
		return entry, nil
	}

	if c.durable != nil {
		if entry, ok := c.fromTier(ctx, c.durable, key, now); ok {
			c.promote(ctx, *entry, now)
			c.recordHit()
			return entry, nil
		}
	}

	c.recordMiss()
	return nil, domain.ErrCacheMiss
}

// fromTier reads one tier, applying lazy expiry.
func (c *TieredCache) fromTier(ctx context.Context, tier driven.CacheStore, key string, now time.Time) (*domain.CacheEntry, bool) {
	entry, err := tier.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			logger.Warn("cache tier read failed for %q: %v", key, err)
		}
		return nil, false
	}
	if entry.Expired(now) {
		if err := tier.Invalidate(ctx, key); err != nil {
			logger.Warn("evicting expired key %q: %v", key, err)
		}
		return nil, false
	}

	entry.AccessCount++
	entry.LastAccessedAt = now
	if err := tier.Touch(ctx, key, now); err != nil {
		logger.Debug("touch %q: %v", key, err)
	}
	return entry, true
}

// promote copies a durable hit into the memory tier with the memory TTL.
func (c *TieredCache) promote(ctx context.Context, entry domain.CacheEntry, now time.Time) {
	entry.CreatedAt = now
	entry.ExpiresAt = now.Add(c.config.MemoryTTL)
	if err := c.memory.Set(ctx, entry); err != nil {
		logger.Warn("promoting %q to memory tier: %v", entry.Key, err)
	}
}

// Set caches a merged record in both tiers with their respective TTLs.
func (c *TieredCache) Set(ctx context.Context, key string, record *domain.CanonicalRecord) error {
	now := c.clock.Now()
	entry := domain.CacheEntry{
		Key:            key,
		Payload:        record,
		CreatedAt:      now,
		LastAccessedAt: now,
	}

	entry.ExpiresAt = now.Add(c.config.MemoryTTL)
	if err := c.memory.Set(ctx, entry); err != nil {
		return err
	}

	if c.durable != nil {
		entry.ExpiresAt = now.Add(c.durableTTL(key, record))
		if err := c.durable.Set(ctx, entry); err != nil {
			// Memory tier already holds the entry; degrade, don't fail.
			logger.Warn("durable cache write for %q failed: %v", key, err)
		}
	}
	return nil
}

// SetNegative caches a not-found result in the memory tier only, with the
// short negative TTL. The durable tier never stores negatives.
func (c *TieredCache) SetNegative(ctx context.Context, key string) error {
	now := c.clock.Now()
	return c.memory.Set(ctx, domain.CacheEntry{
		Key:            key,
		Payload:        nil,
		CreatedAt:      now,
		ExpiresAt:      now.Add(c.config.NegativeTTL),
		LastAccessedAt: now,
	})
}

// durableTTL resolves the per-type TTL override from the key namespace.
func (c *TieredCache) durableTTL(key string, record *domain.CanonicalRecord) time.Duration {
	if record != nil {
		if ttl, ok := c.config.DurableTTLByType[record.Type]; ok && ttl > 0 {
			return ttl
		}
	}
	return c.config.DurableTTL
}

// Invalidate removes the key from both tiers.
func (c *TieredCache) Invalidate(ctx context.Context, key string) error {
	err := c.memory.Invalidate(ctx, key)
	if c.durable != nil {
		if derr := c.durable.Invalidate(ctx, key); derr != nil && err == nil {
			err = derr
		}
	}
	return err
}

// PurgeExpired reclaims expired entries from both tiers and returns the
// total removed. Called by the sweeper to bound storage growth; lazy
// expiry on read keeps correctness even without it.
func (c *TieredCache) PurgeExpired(ctx context.Context) (int, error) {
	now := c.clock.Now()
	removed, err := c.memory.Purge(ctx, now)
	if c.durable != nil {
		n, derr := c.durable.Purge(ctx, now)
		removed += n
		if derr != nil && err == nil {
			err = derr
		}
	}
	return removed, err
}

// Stats reports hit rate, entry count, and the average quality score of
// cached records across both tiers (durable entries win duplicate keys).
func (c *TieredCache) Stats(ctx context.Context) (domain.CacheStats, error) {
	now := c.clock.Now()

	entries := make(map[string]domain.CacheEntry)
	if c.durable != nil {
		durable, err := c.durable.Entries(ctx, now)
		if err != nil {
			logger.Warn("durable cache stats unavailable: %v", err)
		}
		for _, e := range durable {
			entries[e.Key] = e
		}
	}
	memory, err := c.memory.Entries(ctx, now)
	if err != nil {
		return domain.CacheStats{}, err
	}
	for _, e := range memory {
		if _, ok := entries[e.Key]; !ok {
			entries[e.Key] = e
		}
	}

	var qualitySum float64
	var scored int
	for _, e := range entries {
		if e.Payload != nil {
			qualitySum += e.Payload.QualityScore
			scored++
		}
	}

	c.mu.Lock()
	hits, misses := c.hits, c.misses
	c.mu.Unlock()

	stats := domain.CacheStats{
		Hits:       hits,
		Misses:     misses,
		EntryCount: len(entries),
	}
	if total := hits + misses; total > 0 {
		stats.HitRate = float64(hits) / float64(total)
	}
	if scored > 0 {
		stats.AvgQualityScore = qualitySum / float64(scored)
	}
	return stats, nil
}

// Close closes both tiers.
func (c *TieredCache) Close() error {
	err := c.memory.Close()
	if c.durable != nil {
		if derr := c.durable.Close(); derr != nil && err == nil {
			err = derr
		}
	}
	return err
}

func (c *TieredCache) recordHit() {
	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
}

func (c *TieredCache) recordMiss() {
	c.mu.Lock()
	c.misses++
	c.mu.Unlock()
}
