package driven

import (
	"context"

	"github.com/artisnova/aria/internal/core/domain"
)

// Connector adapts one external music catalog to the canonical record
// shape. Each catalog (spotify, musicbrainz, discogs, ...) implements this
// interface.
//
// Connectors never fail an aggregation pass: network errors, malformed
// payloads, and rate-limit rejections are mapped to an empty result set
// plus domain.ErrSourceUnavailable, which the aggregator logs and recovers
// from locally.
type Connector interface {
	// Name returns the catalog identifier ("spotify", "discogs", ...).
	Name() string

	// ReliabilityWeight is the static trust weight for this catalog's
	// data, in [0,1]. It orders the priority merge and feeds the quality
	// score.
	ReliabilityWeight() float64

	// Capabilities returns what this connector supports.
	Capabilities() ConnectorCapabilities

	// Search looks the query up in the catalog and returns normalized
	// candidate records, best match first. An empty slice means the
	// catalog has no answer; it is not an error.
	Search(ctx context.Context, query domain.Query) ([]domain.CanonicalRecord, error)

	// FetchDetail retrieves the full record for a catalog-specific ID
	// obtained from an earlier Search. Returns domain.ErrNotFound when
	// the ID no longer resolves.
	FetchDetail(ctx context.Context, entityType domain.EntityType, externalID string) (*domain.CanonicalRecord, error)

	// Validate checks the connector is configured and can reach its
	// catalog. For API-key catalogs this verifies the key is present;
	// it does not burn quota on a test call.
	Validate(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ConnectorCapabilities describes what a connector supports.
type ConnectorCapabilities struct {
	// SupportedTypes lists the entity types the catalog can answer for.
	SupportedTypes []domain.EntityType

	// RequiresAuth indicates the catalog needs an API key or token.
	RequiresAuth bool

	// SupportsDetail indicates FetchDetail returns richer data than Search.
	SupportsDetail bool

	// SupportsRateLimiting indicates the connector paces its own calls so
	// a burst of aggregator fan-outs cannot exceed the catalog's
	// acceptable rate.
	SupportsRateLimiting bool
}

// SupportsType reports whether the connector answers queries for the type.
func (c ConnectorCapabilities) SupportsType(t domain.EntityType) bool {
	for _, st := range c.SupportedTypes {
		if st == t {
			return true
		}
	}
	return false
}
