// Package musicbrainz implements the driven.Connector port for the
// MusicBrainz web service. MusicBrainz is the open encyclopedia: broad
// coverage, community-edited, anonymous access. Its etiquette rules cap
// anonymous clients at one request per second, which the connector
// enforces itself with a token bucket.
package musicbrainz

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

// Weight is MusicBrainz's reliability weight in the priority merge.
const Weight = 0.65

const (
	// DefaultBaseURL is the public MusicBrainz endpoint.
	DefaultBaseURL = "https://musicbrainz.org"

	// DefaultUserAgent identifies this client per MusicBrainz etiquette.
	// Anonymous clients without a meaningful User-Agent get blocked.
	DefaultUserAgent = "aria/1.0 (https://github.com/artisnova/aria)"

	// requestsPerSecond is the anonymous rate limit.
	requestsPerSecond = 1

	searchLimit = 5
)

// Config holds MusicBrainz endpoint settings.
type Config struct {
	// BaseURL overrides the public endpoint. Used in tests.
	BaseURL string

	// UserAgent overrides the default client identification.
	UserAgent string
}

// Connector fetches music metadata from the MusicBrainz web service.
type Connector struct {
	config  Config
	client  *http.Client
	limiter *rate.Limiter

	mu     sync.Mutex
	closed bool
}

// New creates a new MusicBrainz connector.
func New(cfg Config) *Connector {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	return &Connector{
		config:  cfg,
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// Name returns the catalog identifier.
func (c *Connector) Name() string {
	return "musicbrainz"
}

// ReliabilityWeight returns the static trust weight for MusicBrainz data.
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

// Validate checks the connector is usable. MusicBrainz needs no
// credentials, so this only checks the closed flag and context.
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

	var path, luceneQuery string
	switch query.Type {
	case domain.EntityArtist:
		path = "/ws/2/artist"
		luceneQuery = fmt.Sprintf("artist:%q", query.Normalized())
	case domain.EntityAlbum:
		path = "/ws/2/release-group"
		luceneQuery = fmt.Sprintf("releasegroup:%q", query.Normalized())
		if query.ArtistHint != "" {
			luceneQuery += fmt.Sprintf(" AND artist:%q", domain.NormalizeTerm(query.ArtistHint))
		}
	case domain.EntityTrack:
		path = "/ws/2/recording"
		luceneQuery = fmt.Sprintf("recording:%q", query.Normalized())
		if query.ArtistHint != "" {
			luceneQuery += fmt.Sprintf(" AND artist:%q", domain.NormalizeTerm(query.ArtistHint))
		}
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, query.Type)
	}

	params := url.Values{}
	params.Set("query", luceneQuery)
	params.Set("fmt", "json")
	params.Set("limit", fmt.Sprintf("%d", searchLimit))

	var resp searchResponse
	if err := c.get(ctx, path+"?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("%w: musicbrainz search: %w", domain.ErrSourceUnavailable, err)
	}

	return mapSearchResponse(query.Type, resp), nil
}

// FetchDetail retrieves the full record for a MusicBrainz MBID.
func (c *Connector) FetchDetail(ctx context.Context, entityType domain.EntityType, externalID string) (*domain.CanonicalRecord, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("fmt", "json")

	switch entityType {
	case domain.EntityArtist:
		params.Set("inc", "tags")
		var a artistResult
		if err := c.get(ctx, "/ws/2/artist/"+url.PathEscape(externalID)+"?"+params.Encode(), &a); err != nil {
			return nil, wrapDetailErr(err)
		}
		record := mapArtist(a)
		return &record, nil
	case domain.EntityAlbum:
		params.Set("inc", "artist-credits tags")
		var rg releaseGroupResult
		if err := c.get(ctx, "/ws/2/release-group/"+url.PathEscape(externalID)+"?"+params.Encode(), &rg); err != nil {
			return nil, wrapDetailErr(err)
		}
		record := mapReleaseGroup(rg)
		return &record, nil
	case domain.EntityTrack:
		params.Set("inc", "artist-credits")
		var rec recordingResult
		if err := c.get(ctx, "/ws/2/recording/"+url.PathEscape(externalID)+"?"+params.Encode(), &rec); err != nil {
			return nil, wrapDetailErr(err)
		}
		record := mapRecording(rec)
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

// get performs a rate-limited GET and decodes the JSON response.
func (c *Connector) get(ctx context.Context, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrNotFound
	case resp.StatusCode == http.StatusServiceUnavailable:
		// MusicBrainz answers 503 when a client exceeds its rate.
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
	return fmt.Errorf("%w: musicbrainz detail: %w", domain.ErrSourceUnavailable, err)
}
