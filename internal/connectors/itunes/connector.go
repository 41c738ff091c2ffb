// Package itunes implements the driven.Connector port for the iTunes
// Search API. iTunes is the generic store catalog: anonymous, shallow,
// but always available, which makes it the safety net when the richer
// catalogs have no answer. Apple caps anonymous clients at roughly
// twenty calls per minute.
package itunes

import (
	"context"
	"encoding/json"
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

// Weight is iTunes' reliability weight in the priority merge.
const Weight = 0.5

const (
	// DefaultBaseURL is the public iTunes Search API endpoint.
	DefaultBaseURL = "https://itunes.apple.com"

	// requestsPerSecond keeps the client under Apple's twenty-per-minute
	// guidance with headroom.
	requestsPerSecond = 0.3

	searchLimit = 5
)

// Config holds iTunes endpoint settings.
type Config struct {
	// BaseURL overrides the public endpoint. Used in tests.
	BaseURL string
}

// Connector fetches music metadata from the iTunes Search API.
type Connector struct {
	config  Config
	client  *http.Client
	limiter *rate.Limiter

	mu     sync.Mutex
	closed bool
}

// New creates a new iTunes connector.
func New(cfg Config) *Connector {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &Connector{
		config:  cfg,
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// Name returns the catalog identifier.
func (c *Connector) Name() string {
	return "itunes"
}

// ReliabilityWeight returns the static trust weight for iTunes data.
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
		RequiresAuth:         false,
		SupportsDetail:       true,
		SupportsRateLimiting: true,
	}
}

// Validate checks the connector is usable. iTunes needs no credentials.
func (c *Connector) Validate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return domain.ErrConnectorClosed
	}
	return ctx.Err()
}

// Search looks the query up and returns normalized candidates, best first.
func (c *Connector) Search(ctx context.Context, query domain.Query) ([]domain.CanonicalRecord, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}

	entity, ok := searchEntities[query.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, query.Type)
	}

	term := query.Normalized()
	if query.ArtistHint != "" {
		term = domain.NormalizeTerm(query.ArtistHint) + " " + term
	}

	params := url.Values{}
	params.Set("term", term)
	params.Set("media", "music")
	params.Set("entity", entity)
	params.Set("limit", fmt.Sprintf("%d", searchLimit))

	var resp lookupResponse
	if err := c.get(ctx, "/search?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("%w: itunes search: %w", domain.ErrSourceUnavailable, err)
	}

	return mapResults(query.Type, resp.Results), nil
}

// FetchDetail retrieves the record for an iTunes ID via the lookup
// endpoint.
func (c *Connector) FetchDetail(ctx context.Context, entityType domain.EntityType, externalID string) (*domain.CanonicalRecord, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	if !entityType.Valid() {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, entityType)
	}

	params := url.Values{}
	params.Set("id", externalID)

	var resp lookupResponse
	if err := c.get(ctx, "/lookup?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("%w: itunes lookup: %w", domain.ErrSourceUnavailable, err)
	}

	records := mapResults(entityType, resp.Results)
	if len(records) == 0 {
		return nil, domain.ErrNotFound
	}
	return &records[0], nil
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

// get performs a rate-limited GET and decodes the JSON response.
func (c *Connector) get(ctx context.Context, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden, resp.StatusCode == http.StatusTooManyRequests:
		// Apple blocks over-eager anonymous clients with 403.
		return domain.ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

var searchEntities = map[domain.EntityType]string{
	domain.EntityArtist: "musicArtist",
	domain.EntityAlbum:  "album",
	domain.EntityTrack:  "song",
}
