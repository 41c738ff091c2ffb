package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artisnova/aria/internal/core/domain"
)

func TestSweeper_Sweep(t *testing.T) {
	clock := newFakeClock()
	memory := newFakeCacheStore()
	cache := NewTieredCache(memory, nil, clock, TieredCacheConfig{MemoryTTL: 10 * time.Minute})

	require.NoError(t, cache.Set(context.Background(), "artist:stale",
		&domain.CanonicalRecord{Type: domain.EntityArtist, Name: "Stale"}))
	clock.Advance(11 * time.Minute)
	require.NoError(t, cache.Set(context.Background(), "artist:fresh",
		&domain.CanonicalRecord{Type: domain.EntityArtist, Name: "Fresh"}))

	sweeper := NewSweeper(cache, time.Hour)
	sweeper.Sweep(context.Background())

	assert.False(t, memory.has("artist:stale"))
	assert.True(t, memory.has("artist:fresh"))
}

func TestSweeper_StartStop(t *testing.T) {
	cache := NewTieredCache(newFakeCacheStore(), nil, newFakeClock(), TieredCacheConfig{})
	sweeper := NewSweeper(cache, 10*time.Millisecond)

	sweeper.Start(context.Background())
	sweeper.Start(context.Background()) // second Start is a no-op

	time.Sleep(30 * time.Millisecond)

	sweeper.Stop()
	sweeper.Stop() // second Stop is a no-op
}

func TestSweeper_DefaultInterval(t *testing.T) {
	cache := NewTieredCache(newFakeCacheStore(), nil, newFakeClock(), TieredCacheConfig{})
	sweeper := NewSweeper(cache, 0)
	assert.Equal(t, DefaultSweepInterval, sweeper.interval)
}
