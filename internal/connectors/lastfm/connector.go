// Package lastfm implements the driven.Connector port for the Last.fm
// API. Last.fm is the social-tagging catalog: community tags, listener
// counts, and crowd-written wiki text. Its lookups are get-info style
// with autocorrection rather than ranked search, so Search yields at most
// one candidate.
package lastfm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/artisnova/aria/internal/core/domain"
	"github.com/artisnova/aria/internal/core/ports/driven"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// Weight is Last.fm's reliability weight in the priority merge.
const Weight = 0.6

// Last.fm application error codes the connector discriminates on.
const (
	errCodeInvalidParams = 6 // also "not found"
	errCodeRateLimited   = 29
)

// requestsPerSecond paces keyed clients under Last.fm's informal
// ~5 requests/second originating-IP guideline.
const requestsPerSecond = 5

// Connector fetches music metadata from the Last.fm API.
type Connector struct {
	config  Config
	client  *http.Client
	limiter *rate.Limiter

	mu     sync.Mutex
	closed bool
}

// New creates a new Last.fm connector.
func New(cfg Config) *Connector {
	return &Connector{
		config:  cfg.withDefaults(),
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// Name returns the catalog identifier.
func (c *Connector) Name() string {
	return "lastfm"
}

// ReliabilityWeight returns the static trust weight for Last.fm data.
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
		SupportsDetail:       false,
		SupportsRateLimiting: true,
	}
}

// Validate checks the connector has an API key configured.
func (c *Connector) Validate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return domain.ErrConnectorClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.config.APIKey == "" {
		return fmt.Errorf("%w: lastfm api key not configured", domain.ErrSourceUnavailable)
	}
	return nil
}

// Search resolves the query via the matching get-info method. Album and
// track lookups need the artist hint; without it Last.fm cannot answer
// and the connector reports no candidates.
func (c *Connector) Search(ctx context.Context, query domain.Query) ([]domain.CanonicalRecord, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("autocorrect", "1")

	switch query.Type {
	case domain.EntityArtist:
		params.Set("method", "artist.getinfo")
		params.Set("artist", query.Normalized())
	case domain.EntityAlbum:
		if query.ArtistHint == "" {
			return nil, nil
		}
		params.Set("method", "album.getinfo")
		params.Set("album", query.Normalized())
		params.Set("artist", domain.NormalizeTerm(query.ArtistHint))
	case domain.EntityTrack:
		if query.ArtistHint == "" {
			return nil, nil
		}
		params.Set("method", "track.getinfo")
		params.Set("track", query.Normalized())
		params.Set("artist", domain.NormalizeTerm(query.ArtistHint))
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, query.Type)
	}

	var resp infoResponse
	if err := c.get(ctx, params, &resp); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: lastfm lookup: %w", domain.ErrSourceUnavailable, err)
	}

	record := mapInfoResponse(query.Type, resp)
	if record.IsEmpty() {
		return nil, nil
	}
	return []domain.CanonicalRecord{record}, nil
}

// FetchDetail is not distinct from Search for Last.fm: get-info already
// returns the full record.
func (c *Connector) FetchDetail(_ context.Context, _ domain.EntityType, _ string) (*domain.CanonicalRecord, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	return nil, domain.ErrNotFound
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

// get performs a keyed GET against the 2.0 endpoint. Last.fm signals
// application errors in the body with HTTP 200, so the body is checked
// for an error code before decoding the payload.
func (c *Connector) get(ctx context.Context, params url.Values, out *infoResponse) error {
	if c.config.APIKey == "" {
		return fmt.Errorf("api key not configured")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	params.Set("api_key", c.config.APIKey)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/2.0/?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return domain.ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	switch out.Error {
	case 0:
		return nil
	case errCodeInvalidParams:
		return domain.ErrNotFound
	case errCodeRateLimited:
		return domain.ErrRateLimited
	default:
		return fmt.Errorf("api error %d: %s", out.Error, out.Message)
	}
}
