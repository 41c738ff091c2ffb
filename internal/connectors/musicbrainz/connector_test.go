package musicbrainz

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artisnova/aria/internal/core/domain"
)

func newTestConnector(t *testing.T, handler http.HandlerFunc) *Connector {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(Config{BaseURL: server.URL, UserAgent: "aria-test/1.0"})
}

func TestConnector_Identity(t *testing.T) {
	c := New(Config{})

	assert.Equal(t, "musicbrainz", c.Name())
	assert.Equal(t, 0.65, c.ReliabilityWeight())

	caps := c.Capabilities()
	assert.False(t, caps.RequiresAuth)
	assert.True(t, caps.SupportsRateLimiting)
	assert.True(t, caps.SupportsType(domain.EntityTrack))
}

func TestConnector_Validate(t *testing.T) {
	c := New(Config{})
	assert.NoError(t, c.Validate(context.Background()))

	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Validate(context.Background()), domain.ErrConnectorClosed)
}

func TestConnector_Search(t *testing.T) {
	t.Run("maps artist results and sends user agent", func(t *testing.T) {
		c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/ws/2/artist", r.URL.Path)
			assert.Equal(t, "aria-test/1.0", r.Header.Get("User-Agent"))
			assert.Equal(t, "json", r.URL.Query().Get("fmt"))
			assert.Contains(t, r.URL.Query().Get("query"), `artist:"Nirvana"`)
			_, _ = w.Write([]byte(`{"artists":[
				{"id":"mbid-1","name":"Nirvana","country":"US",
				 "life-span":{"begin":"1987"},
				 "tags":[{"name":"grunge"},{"name":"rock"}]}
			]}`))
		})

		records, err := c.Search(context.Background(), domain.Query{
			Type: domain.EntityArtist,
			Term: "Nirvana",
		})
		require.NoError(t, err)
		require.Len(t, records, 1)

		assert.Equal(t, "Nirvana", records[0].Name)
		assert.Equal(t, "US", records[0].Country)
		assert.Equal(t, "1987", records[0].Date)
		assert.Equal(t, "mbid-1", records[0].ExternalIDs["musicbrainz"])
		assert.Equal(t, []string{"grunge", "rock"}, records[0].Tags)
	})

	t.Run("maps release group with artist hint in query", func(t *testing.T) {
		c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/ws/2/release-group", r.URL.Path)
			q := r.URL.Query().Get("query")
			assert.Contains(t, q, `releasegroup:"Nevermind"`)
			assert.Contains(t, q, `artist:"Nirvana"`)
			_, _ = w.Write([]byte(`{"release-groups":[
				{"id":"rg-1","title":"Nevermind","first-release-date":"1991-09-24",
				 "artist-credit":[{"name":"Nirvana"}]}
			]}`))
		})

		records, err := c.Search(context.Background(), domain.Query{
			Type:       domain.EntityAlbum,
			Term:       "Nevermind",
			ArtistHint: "Nirvana",
		})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Nirvana", records[0].Artist)
		assert.Equal(t, "1991-09-24", records[0].Date)
	})

	t.Run("503 maps to rate limited", func(t *testing.T) {
		c := newTestConnector(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})

		_, err := c.Search(context.Background(), domain.Query{
			Type: domain.EntityArtist,
			Term: "x",
		})
		assert.ErrorIs(t, err, domain.ErrRateLimited)
		assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	})
}

func TestConnector_FetchDetail(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ws/2/artist/mbid-1", r.URL.Path)
		assert.Contains(t, r.URL.Query().Get("inc"), "tags")
		_, _ = w.Write([]byte(`{"id":"mbid-1","name":"Nirvana","country":"US"}`))
	})

	record, err := c.FetchDetail(context.Background(), domain.EntityArtist, "mbid-1")
	require.NoError(t, err)
	assert.Equal(t, "Nirvana", record.Name)
	assert.Equal(t, "US", record.Country)
}

func TestConnector_RateLimiting(t *testing.T) {
	calls := 0
	c := newTestConnector(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{"artists":[]}`))
	})

	query := domain.Query{Type: domain.EntityArtist, Term: "x"}

	// First call consumes the single burst token.
	start := time.Now()
	_, err := c.Search(context.Background(), query)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	// Second call must wait for the 1 req/s bucket to refill.
	start = time.Now()
	_, err = c.Search(context.Background(), query)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 900*time.Millisecond)

	assert.Equal(t, 2, calls)
}

func TestConnector_RateLimitHonorsContext(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"artists":[]}`))
	})

	query := domain.Query{Type: domain.EntityArtist, Term: "x"}
	_, err := c.Search(context.Background(), query)
	require.NoError(t, err)

	// The bucket is empty now; a short deadline should abort the wait.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.Search(ctx, query)
	assert.Error(t, err)
}
