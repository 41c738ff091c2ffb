package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artisnova/aria/internal/core/domain"
)

func testEntry(key string, now time.Time, ttl time.Duration) domain.CacheEntry {
	return domain.CacheEntry{
		Key:       key,
		Payload:   &domain.CanonicalRecord{Type: domain.EntityArtist, Name: "Nirvana"},
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func TestCacheStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("get after set", func(t *testing.T) {
		store := NewCacheStore()
		require.NoError(t, store.Set(ctx, testEntry("artist:nirvana", now, time.Hour)))

		entry, err := store.Get(ctx, "artist:nirvana")
		require.NoError(t, err)
		assert.Equal(t, "Nirvana", entry.Payload.Name)
	})

	t.Run("miss", func(t *testing.T) {
		store := NewCacheStore()
		_, err := store.Get(ctx, "artist:nobody")
		assert.ErrorIs(t, err, domain.ErrCacheMiss)
	})

	t.Run("set replaces", func(t *testing.T) {
		store := NewCacheStore()
		require.NoError(t, store.Set(ctx, testEntry("artist:nirvana", now, time.Hour)))

		updated := testEntry("artist:nirvana", now, time.Hour)
		updated.Payload.Country = "US"
		require.NoError(t, store.Set(ctx, updated))

		entry, err := store.Get(ctx, "artist:nirvana")
		require.NoError(t, err)
		assert.Equal(t, "US", entry.Payload.Country)
	})

	t.Run("touch bumps access metadata", func(t *testing.T) {
		store := NewCacheStore()
		require.NoError(t, store.Set(ctx, testEntry("artist:nirvana", now, time.Hour)))

		accessed := now.Add(time.Minute)
		require.NoError(t, store.Touch(ctx, "artist:nirvana", accessed))
		require.NoError(t, store.Touch(ctx, "artist:nirvana", accessed.Add(time.Minute)))

		entry, err := store.Get(ctx, "artist:nirvana")
		require.NoError(t, err)
		assert.Equal(t, int64(2), entry.AccessCount)
		assert.Equal(t, accessed.Add(time.Minute), entry.LastAccessedAt)
	})

	t.Run("touch on missing key is a no-op", func(t *testing.T) {
		store := NewCacheStore()
		assert.NoError(t, store.Touch(ctx, "artist:nobody", now))
	})

	t.Run("invalidate", func(t *testing.T) {
		store := NewCacheStore()
		require.NoError(t, store.Set(ctx, testEntry("artist:nirvana", now, time.Hour)))
		require.NoError(t, store.Invalidate(ctx, "artist:nirvana"))

		_, err := store.Get(ctx, "artist:nirvana")
		assert.ErrorIs(t, err, domain.ErrCacheMiss)
	})

	t.Run("purge removes only expired", func(t *testing.T) {
		store := NewCacheStore()
		require.NoError(t, store.Set(ctx, testEntry("artist:stale", now, time.Minute)))
		require.NoError(t, store.Set(ctx, testEntry("artist:fresh", now, time.Hour)))

		removed, err := store.Purge(ctx, now.Add(10*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, 1, removed)

		_, err = store.Get(ctx, "artist:stale")
		assert.ErrorIs(t, err, domain.ErrCacheMiss)
		_, err = store.Get(ctx, "artist:fresh")
		assert.NoError(t, err)
	})

	t.Run("entries excludes expired", func(t *testing.T) {
		store := NewCacheStore()
		require.NoError(t, store.Set(ctx, testEntry("artist:stale", now, time.Minute)))
		require.NoError(t, store.Set(ctx, testEntry("artist:fresh", now, time.Hour)))

		entries, err := store.Entries(ctx, now.Add(10*time.Minute))
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "artist:fresh", entries[0].Key)
	})
}

func TestCorrectionStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	correction := func(id, field, value string, at time.Time) domain.Correction {
		return domain.Correction{
			ID:             id,
			EntityType:     domain.EntityArtist,
			EntityID:       "artist:nirvana",
			FieldName:      field,
			CorrectedValue: value,
			CreatedAt:      at,
		}
	}

	t.Run("for entity returns oldest first", func(t *testing.T) {
		store := NewCorrectionStore()
		require.NoError(t, store.Append(ctx, correction("c1", "country", "USA", now)))
		require.NoError(t, store.Append(ctx, correction("c2", "country", "United States", now.Add(time.Minute))))

		corrections, err := store.ForEntity(ctx, "artist:nirvana")
		require.NoError(t, err)
		require.Len(t, corrections, 2)
		assert.Equal(t, "c1", corrections[0].ID)
		assert.Equal(t, "c2", corrections[1].ID)
	})

	t.Run("unknown entity yields empty log", func(t *testing.T) {
		store := NewCorrectionStore()
		corrections, err := store.ForEntity(ctx, "artist:nobody")
		require.NoError(t, err)
		assert.Empty(t, corrections)
	})

	t.Run("latest wins per field", func(t *testing.T) {
		store := NewCorrectionStore()
		require.NoError(t, store.Append(ctx, correction("c1", "country", "USA", now)))
		require.NoError(t, store.Append(ctx, correction("c2", "country", "United States", now.Add(time.Minute))))
		require.NoError(t, store.Append(ctx, correction("c3", "name", "Nirvana", now.Add(2*time.Minute))))

		latest, err := store.Latest(ctx, "artist:nirvana", "country")
		require.NoError(t, err)
		assert.Equal(t, "c2", latest.ID)
	})

	t.Run("latest on unknown field", func(t *testing.T) {
		store := NewCorrectionStore()
		_, err := store.Latest(ctx, "artist:nirvana", "country")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
