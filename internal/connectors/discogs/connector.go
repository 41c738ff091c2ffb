// Package discogs implements the driven.Connector port for the Discogs
// API. Discogs is the marketplace catalog: excellent release-level detail
// (pressings, credits, styles) and the richest tracklists of any source,
// but no track entity of its own.
package discogs

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

// Weight is Discogs' reliability weight in the priority merge.
const Weight = 0.8

const (
	searchLimit = 5

	// requestsPerSecond keeps token-authenticated clients under the
	// 60 requests/minute cap Discogs enforces.
	requestsPerSecond = 1
)

// Connector fetches music metadata from the Discogs API.
type Connector struct {
	config  Config
	client  *http.Client
	limiter *rate.Limiter

	mu     sync.Mutex
	closed bool
}

// New creates a new Discogs connector.
func New(cfg Config) *Connector {
	return &Connector{
		config:  cfg.withDefaults(),
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// Name returns the catalog identifier.
func (c *Connector) Name() string {
	return "discogs"
}

// ReliabilityWeight returns the static trust weight for Discogs data.
func (c *Connector) ReliabilityWeight() float64 {
	return Weight
}

// Capabilities returns the connector's capabilities.
// Discogs catalogs releases and artists; it has no standalone track entity.
func (c *Connector) Capabilities() driven.ConnectorCapabilities {
	return driven.ConnectorCapabilities{
		SupportedTypes: []domain.EntityType{
			domain.EntityArtist,
			domain.EntityAlbum,
		},
		RequiresAuth:         true,
		SupportsDetail:       true,
		SupportsRateLimiting: true,
	}
}

// Validate checks the connector has a token configured.
func (c *Connector) Validate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return domain.ErrConnectorClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.config.Token == "" {
		return fmt.Errorf("%w: discogs token not configured", domain.ErrSourceUnavailable)
	}
	return nil
}

// Search looks the query up and returns normalized candidates, best first.
func (c *Connector) Search(ctx context.Context, query domain.Query) ([]domain.CanonicalRecord, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}

	var searchType string
	switch query.Type {
	case domain.EntityArtist:
		searchType = "artist"
	case domain.EntityAlbum:
		searchType = "release"
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, query.Type)
	}

	params := url.Values{}
	params.Set("q", query.Normalized())
	params.Set("type", searchType)
	params.Set("per_page", fmt.Sprintf("%d", searchLimit))
	if query.Type == domain.EntityAlbum && query.ArtistHint != "" {
		params.Set("artist", domain.NormalizeTerm(query.ArtistHint))
	}

	var resp searchResponse
	if err := c.get(ctx, "/database/search?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("%w: discogs search: %w", domain.ErrSourceUnavailable, err)
	}

	return mapSearchResults(query.Type, resp.Results), nil
}

// FetchDetail retrieves the full record for a Discogs ID.
func (c *Connector) FetchDetail(ctx context.Context, entityType domain.EntityType, externalID string) (*domain.CanonicalRecord, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}

	switch entityType {
	case domain.EntityArtist:
		var a artistDetail
		if err := c.get(ctx, "/artists/"+url.PathEscape(externalID), &a); err != nil {
			return nil, wrapDetailErr(err)
		}
		record := mapArtistDetail(externalID, a)
		return &record, nil
	case domain.EntityAlbum:
		var r releaseDetail
		if err := c.get(ctx, "/releases/"+url.PathEscape(externalID), &r); err != nil {
			return nil, wrapDetailErr(err)
		}
		record := mapReleaseDetail(externalID, r)
		return &record, nil
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, entityType)
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

// get performs an authenticated GET and decodes the JSON response.
// Calls wait on the token bucket first so bursts from the aggregator
// never exceed the upstream cap.
func (c *Connector) get(ctx context.Context, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Discogs token="+c.config.Token)
	}

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
	return fmt.Errorf("%w: discogs detail: %w", domain.ErrSourceUnavailable, err)
}
