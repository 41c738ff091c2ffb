package spotify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artisnova/aria/internal/core/domain"
)

// newTestServers returns a fake accounts endpoint and a fake API endpoint.
// The API handler runs behind a bearer-token check so tests verify the
// client-credentials flow end to end.
func newTestServers(t *testing.T, apiHandler http.HandlerFunc) (accounts, api *httptest.Server) {
	t.Helper()

	accounts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/token", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok, "token request should carry basic auth")
		require.Equal(t, "test-client", user)
		require.Equal(t, "test-secret", pass)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"test-token","expires_in":3600}`))
	}))
	t.Cleanup(accounts.Close)

	api = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		apiHandler(w, r)
	}))
	t.Cleanup(api.Close)

	return accounts, api
}

func newTestConnector(t *testing.T, apiHandler http.HandlerFunc) *Connector {
	t.Helper()
	accounts, api := newTestServers(t, apiHandler)
	return New(Config{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		BaseURL:      api.URL,
		AccountsURL:  accounts.URL,
	})
}

func TestConnector_Identity(t *testing.T) {
	c := New(Config{})

	assert.Equal(t, "spotify", c.Name())
	assert.Equal(t, 1.0, c.ReliabilityWeight())

	caps := c.Capabilities()
	assert.True(t, caps.RequiresAuth)
	assert.True(t, caps.SupportsDetail)
	assert.True(t, caps.SupportsType(domain.EntityArtist))
	assert.True(t, caps.SupportsType(domain.EntityAlbum))
	assert.True(t, caps.SupportsType(domain.EntityTrack))
}

func TestConnector_Validate(t *testing.T) {
	t.Run("passes with credentials", func(t *testing.T) {
		c := New(Config{ClientID: "id", ClientSecret: "secret"})
		assert.NoError(t, c.Validate(context.Background()))
	})

	t.Run("fails without credentials", func(t *testing.T) {
		c := New(Config{})
		err := c.Validate(context.Background())
		assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	})

	t.Run("fails when closed", func(t *testing.T) {
		c := New(Config{ClientID: "id", ClientSecret: "secret"})
		require.NoError(t, c.Close())
		assert.ErrorIs(t, c.Validate(context.Background()), domain.ErrConnectorClosed)
	})
}

func TestConnector_Search(t *testing.T) {
	t.Run("maps artist results", func(t *testing.T) {
		c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/search", r.URL.Path)
			assert.Equal(t, "artist", r.URL.Query().Get("type"))
			assert.Equal(t, "Nirvana", r.URL.Query().Get("q"))
			_, _ = w.Write([]byte(`{"artists":{"items":[
				{"id":"abc123","name":"Nirvana","genres":["grunge","rock"],
				 "images":[{"url":"https://img.example/nirvana.jpg"}]}
			]}}`))
		})

		records, err := c.Search(context.Background(), domain.Query{
			Type: domain.EntityArtist,
			Term: "Nirvana (band)",
		})
		require.NoError(t, err)
		require.Len(t, records, 1)

		assert.Equal(t, domain.EntityArtist, records[0].Type)
		assert.Equal(t, "Nirvana", records[0].Name)
		assert.Equal(t, []string{"grunge", "rock"}, records[0].Genres)
		assert.Equal(t, "abc123", records[0].ExternalIDs["spotify"])
		assert.Equal(t, []string{"https://img.example/nirvana.jpg"}, records[0].Images)
	})

	t.Run("maps album results with artist hint", func(t *testing.T) {
		c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Nevermind artist:Nirvana", r.URL.Query().Get("q"))
			_, _ = w.Write([]byte(`{"albums":{"items":[
				{"id":"alb1","name":"Nevermind","release_date":"1991-09-24",
				 "artists":[{"name":"Nirvana"}]}
			]}}`))
		})

		records, err := c.Search(context.Background(), domain.Query{
			Type:       domain.EntityAlbum,
			Term:       "Nevermind",
			ArtistHint: "Nirvana",
		})
		require.NoError(t, err)
		require.Len(t, records, 1)

		assert.Equal(t, "Nevermind", records[0].Name)
		assert.Equal(t, "Nirvana", records[0].Artist)
		assert.Equal(t, "1991-09-24", records[0].Date)
		assert.Equal(t, "1991", records[0].Year())
	})

	t.Run("empty result set is not an error", func(t *testing.T) {
		c := newTestConnector(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"artists":{"items":[]}}`))
		})

		records, err := c.Search(context.Background(), domain.Query{
			Type: domain.EntityArtist,
			Term: "nonexistent",
		})
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("server error maps to source unavailable", func(t *testing.T) {
		c := newTestConnector(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := c.Search(context.Background(), domain.Query{
			Type: domain.EntityArtist,
			Term: "Nirvana",
		})
		assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	})

	t.Run("rate limit surfaces as ErrRateLimited", func(t *testing.T) {
		c := newTestConnector(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})

		_, err := c.Search(context.Background(), domain.Query{
			Type: domain.EntityArtist,
			Term: "Nirvana",
		})
		assert.ErrorIs(t, err, domain.ErrRateLimited)
	})
}

func TestConnector_FetchDetail(t *testing.T) {
	t.Run("fetches album with track listing", func(t *testing.T) {
		c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/albums/alb1", r.URL.Path)
			_, _ = w.Write([]byte(`{"id":"alb1","name":"Nevermind",
				"release_date":"1991-09-24","artists":[{"name":"Nirvana"}],
				"tracks":{"items":[
					{"track_number":1,"name":"Smells Like Teen Spirit","duration_ms":301000},
					{"track_number":2,"name":"In Bloom","duration_ms":255000}
				]}}`))
		})

		record, err := c.FetchDetail(context.Background(), domain.EntityAlbum, "alb1")
		require.NoError(t, err)

		require.Len(t, record.Tracks, 2)
		assert.Equal(t, 1, record.Tracks[0].Position)
		assert.Equal(t, "Smells Like Teen Spirit", record.Tracks[0].Title)
		assert.Equal(t, 301, record.Tracks[0].DurationSec)
	})

	t.Run("missing ID returns ErrNotFound", func(t *testing.T) {
		c := newTestConnector(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		_, err := c.FetchDetail(context.Background(), domain.EntityArtist, "gone")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestConnector_TokenReuse(t *testing.T) {
	tokenRequests := 0
	accounts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		tokenRequests++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"test-token","expires_in":3600}`))
	}))
	t.Cleanup(accounts.Close)

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"artists":{"items":[]}}`))
	}))
	t.Cleanup(api.Close)

	c := New(Config{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		BaseURL:      api.URL,
		AccountsURL:  accounts.URL,
	})

	query := domain.Query{Type: domain.EntityArtist, Term: "x"}
	for i := 0; i < 3; i++ {
		_, err := c.Search(context.Background(), query)
		require.NoError(t, err)
	}

	assert.Equal(t, 1, tokenRequests, "token should be cached across calls")
}

func TestConnector_ClosedSearch(t *testing.T) {
	c := New(Config{ClientID: "id", ClientSecret: "secret"})
	require.NoError(t, c.Close())

	_, err := c.Search(context.Background(), domain.Query{Type: domain.EntityArtist, Term: "x"})
	assert.True(t, errors.Is(err, domain.ErrConnectorClosed))
}
