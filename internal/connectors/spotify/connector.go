// Package spotify implements the driven.Connector port for the Spotify
// Web API. Spotify is the highest-weighted catalog: its editorial data is
// the most reliable the engine sees, so its fields win priority merges.
package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/artisnova/aria/internal/core/domain"
	"github.com/artisnova/aria/internal/core/ports/driven"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// Weight is Spotify's reliability weight in the priority merge.
const Weight = 1.0

const searchLimit = 5

// Connector fetches music metadata from the Spotify Web API.
type Connector struct {
	config Config
	client *http.Client
	tokens oauth2.TokenSource

	mu     sync.Mutex
	closed bool
}

// New creates a new Spotify connector. Bearer tokens come from the
// client-credentials flow; the token source caches them and refreshes
// before expiry.
func New(cfg Config) *Connector {
	cfg = cfg.withDefaults()

	credentials := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.AccountsURL + "/api/token",
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	return &Connector{
		config: cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		tokens: credentials.TokenSource(context.Background()),
	}
}

// Name returns the catalog identifier.
func (c *Connector) Name() string {
	return "spotify"
}

// ReliabilityWeight returns the static trust weight for Spotify data.
func (c *Connector) ReliabilityWeight() float64 {
	return Weight
}

// Capabilities returns the connector's capabilities.
func (c *Connector) Capabilities() driven.ConnectorCapabilities {
	return driven.ConnectorCapabilities{
		SupportedTypes: []domain.EntityType{
			domain.EntityArtist,
			domain.EntityAlbum,
			domain.EntityTrack,
		},
		RequiresAuth:         true,
		SupportsDetail:       true,
		SupportsRateLimiting: false,
	}
}

// Validate checks the connector has credentials configured.
func (c *Connector) Validate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return domain.ErrConnectorClosed
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if c.config.ClientID == "" || c.config.ClientSecret == "" {
		return fmt.Errorf("%w: spotify client credentials not configured", domain.ErrSourceUnavailable)
	}
	return nil
}

// Search looks the query up and returns normalized candidates, best first.
func (c *Connector) Search(ctx context.Context, query domain.Query) ([]domain.CanonicalRecord, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}

	searchType, ok := searchTypes[query.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, query.Type)
	}

	term := query.Normalized()
	if query.ArtistHint != "" {
		term += " artist:" + domain.NormalizeTerm(query.ArtistHint)
	}

	params := url.Values{}
	params.Set("q", term)
	params.Set("type", searchType)
	params.Set("limit", fmt.Sprintf("%d", searchLimit))

	var resp searchResponse
	if err := c.apiGet(ctx, "/v1/search?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("%w: spotify search: %w", domain.ErrSourceUnavailable, err)
	}

	return mapSearchResponse(query.Type, resp), nil
}

// FetchDetail retrieves the full record for a Spotify ID.
func (c *Connector) FetchDetail(ctx context.Context, entityType domain.EntityType, externalID string) (*domain.CanonicalRecord, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}

	var path string
	switch entityType {
	case domain.EntityArtist:
		path = "/v1/artists/" + url.PathEscape(externalID)
	case domain.EntityAlbum:
		path = "/v1/albums/" + url.PathEscape(externalID)
	case domain.EntityTrack:
		path = "/v1/tracks/" + url.PathEscape(externalID)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, entityType)
	}

	switch entityType {
	case domain.EntityArtist:
		var a artistObject
		if err := c.apiGet(ctx, path, &a); err != nil {
			return nil, wrapDetailErr(err)
		}
		record := mapArtist(a)
		return &record, nil
	case domain.EntityAlbum:
		var a albumObject
		if err := c.apiGet(ctx, path, &a); err != nil {
			return nil, wrapDetailErr(err)
		}
		record := mapAlbum(a)
		return &record, nil
	default:
		var t trackObject
		if err := c.apiGet(ctx, path, &t); err != nil {
			return nil, wrapDetailErr(err)
		}
		record := mapTrack(t)
		return &record, nil
	}
}

// Close releases resources.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *Connector) checkOpen() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.ErrConnectorClosed
	}
	return nil
}

// apiGet performs an authenticated GET and decodes the JSON response.
func (c *Connector) apiGet(ctx context.Context, path string, out any) error {
	if c.config.ClientID == "" || c.config.ClientSecret == "" {
		return fmt.Errorf("client credentials not configured")
	}

	token, err := c.tokens.Token()
	if err != nil {
		return fmt.Errorf("fetch token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	token.SetAuthHeader(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return domain.ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func wrapDetailErr(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: spotify detail: %w", domain.ErrSourceUnavailable, err)
}

var searchTypes = map[domain.EntityType]string{
	domain.EntityArtist: "artist",
	domain.EntityAlbum:  "album",
	domain.EntityTrack:  "track",
}
