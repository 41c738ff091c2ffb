package lastfm

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
	return New(Config{APIKey: "test-key", BaseURL: server.URL})
}

func TestConnector_Identity(t *testing.T) {
	c := New(Config{})

	assert.Equal(t, "lastfm", c.Name())
	assert.Equal(t, 0.6, c.ReliabilityWeight())

	caps := c.Capabilities()
	assert.True(t, caps.RequiresAuth)
	assert.False(t, caps.SupportsDetail, "get-info already returns the full record")
}

func TestConnector_Validate(t *testing.T) {
	t.Run("requires api key", func(t *testing.T) {
		c := New(Config{})
		assert.ErrorIs(t, c.Validate(context.Background()), domain.ErrSourceUnavailable)
	})

	t.Run("passes with api key", func(t *testing.T) {
		c := New(Config{APIKey: "k"})
		assert.NoError(t, c.Validate(context.Background()))
	})
}

func TestConnector_Search(t *testing.T) {
	t.Run("maps artist info with bio and tags", func(t *testing.T) {
		c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			assert.Equal(t, "artist.getinfo", q.Get("method"))
			assert.Equal(t, "Nirvana", q.Get("artist"))
			assert.Equal(t, "test-key", q.Get("api_key"))
			assert.Equal(t, "json", q.Get("format"))
			_, _ = w.Write([]byte(`{"artist":{
				"name":"Nirvana","mbid":"mbid-1",
				"bio":{"summary":"Nirvana was an American rock band. <a href=\"https://www.last.fm\">Read more</a>"},
				"tags":{"tag":[{"name":"grunge"},{"name":"90s"}]},
				"image":[{"#text":"https://img/small.jpg","size":"small"},
				         {"#text":"https://img/mega.jpg","size":"mega"}]}}`))
		})

		records, err := c.Search(context.Background(), domain.Query{
			Type: domain.EntityArtist,
			Term: "Nirvana",
		})
		require.NoError(t, err)
		require.Len(t, records, 1)

		assert.Equal(t, "Nirvana", records[0].Name)
		assert.Equal(t, "Nirvana was an American rock band.", records[0].Biography)
		assert.Equal(t, []string{"grunge", "90s"}, records[0].Tags)
		assert.Equal(t, "https://img/mega.jpg", records[0].Images[0], "largest image first")
		assert.Equal(t, "mbid-1", records[0].ExternalIDs["lastfm"])
	})

	t.Run("maps album info with track listing", func(t *testing.T) {
		c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			assert.Equal(t, "album.getinfo", q.Get("method"))
			assert.Equal(t, "Nevermind", q.Get("album"))
			assert.Equal(t, "Nirvana", q.Get("artist"))
			_, _ = w.Write([]byte(`{"album":{
				"name":"Nevermind","artist":"Nirvana",
				"tracks":{"track":[
					{"name":"Smells Like Teen Spirit","duration":301,"@attr":{"rank":1}},
					{"name":"In Bloom","duration":255,"@attr":{"rank":2}}]}}}`))
		})

		records, err := c.Search(context.Background(), domain.Query{
			Type:       domain.EntityAlbum,
			Term:       "Nevermind",
			ArtistHint: "Nirvana",
		})
		require.NoError(t, err)
		require.Len(t, records, 1)

		require.Len(t, records[0].Tracks, 2)
		assert.Equal(t, 1, records[0].Tracks[0].Position)
		assert.Equal(t, 301, records[0].Tracks[0].DurationSec)
	})

	t.Run("album lookup without artist hint yields no candidates", func(t *testing.T) {
		c := New(Config{APIKey: "k"})
		records, err := c.Search(context.Background(), domain.Query{
			Type: domain.EntityAlbum,
			Term: "Nevermind",
		})
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("application not-found error yields no candidates", func(t *testing.T) {
		c := newTestConnector(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"error":6,"message":"The artist you supplied could not be found"}`))
		})

		records, err := c.Search(context.Background(), domain.Query{
			Type: domain.EntityArtist,
			Term: "nonexistent",
		})
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("application rate limit error maps to ErrRateLimited", func(t *testing.T) {
		c := newTestConnector(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"error":29,"message":"Rate limit exceeded"}`))
		})

		_, err := c.Search(context.Background(), domain.Query{
			Type: domain.EntityArtist,
			Term: "x",
		})
		assert.ErrorIs(t, err, domain.ErrRateLimited)
		assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	})

	t.Run("server error maps to source unavailable", func(t *testing.T) {
		c := newTestConnector(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := c.Search(context.Background(), domain.Query{
			Type: domain.EntityArtist,
			Term: "x",
		})
		assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	})
}

func TestWikiSummary(t *testing.T) {
	assert.Equal(t, "Plain text.", wikiSummary(&wikiText{Summary: "Plain text."}))
	assert.Equal(t, "Text before link.",
		wikiSummary(&wikiText{Summary: `Text before link. <a href="https://x">Read more</a>`}))
	assert.Equal(t, "", wikiSummary(nil))
}

func TestConnector_RateLimiting(t *testing.T) {
	calls := 0
	c := newTestConnector(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{"artist":{"name":"Nirvana"}}`))
	})

	query := domain.Query{Type: domain.EntityArtist, Term: "Nirvana"}

	// First call consumes the single burst token.
	start := time.Now()
	_, err := c.Search(context.Background(), query)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 150*time.Millisecond)

	// Second call must wait for the 5 req/s bucket to refill.
	start = time.Now()
	_, err = c.Search(context.Background(), query)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)

	assert.Equal(t, 2, calls)
}
