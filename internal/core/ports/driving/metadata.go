package driving

import (
	"context"

	"github.com/artisnova/aria/internal/core/domain"
)

// MetadataService is the engine's exposed surface, consumed by the UI
// layer whenever now-playing metadata changes.
//
// Both lookups return (nil, domain.ErrNotFound) when no catalog knows the
// entity; callers can distinguish "no such entity" from "found but
// sparse". Low-level connector errors never propagate.
type MetadataService interface {
	// GetArtistInfo aggregates metadata for an artist name.
	GetArtistInfo(ctx context.Context, query string) (*domain.CanonicalRecord, error)

	// GetAlbumInfo aggregates metadata for an album title; artistHint
	// disambiguates and may be empty.
	GetAlbumInfo(ctx context.Context, query, artistHint string) (*domain.CanonicalRecord, error)

	// GetEntityInfo is the generic entry point behind the two helpers.
	GetEntityInfo(ctx context.Context, query domain.Query) (*domain.CanonicalRecord, error)

	// InvalidateEntry drops the cached result for a query key from all
	// tiers, forcing re-aggregation on the next lookup.
	InvalidateEntry(ctx context.Context, key string) error

	// CacheStats reports hit rate, entry count, and average quality of
	// cached records.
	CacheStats(ctx context.Context) (domain.CacheStats, error)
}

// CorrectionService records user-submitted field overrides.
type CorrectionService interface {
	// SubmitCorrection appends a correction. The override takes
	// precedence over aggregated data on subsequent reads.
	SubmitCorrection(ctx context.Context, entityType domain.EntityType, entityID, fieldName, value string) error

	// ListCorrections returns the correction log for an entity,
	// oldest first.
	ListCorrections(ctx context.Context, entityID string) ([]domain.Correction, error)
}

// ConnectorRegistry exposes the configured catalog connectors.
type ConnectorRegistry interface {
	// ForType returns the connectors able to answer queries for the type.
	ForType(t domain.EntityType) []RegisteredConnector

	// Names lists all registered catalog names.
	Names() []string
}

// RegisteredConnector pairs a catalog name with its reliability weight for
// display purposes.
type RegisteredConnector struct {
	Name              string
	ReliabilityWeight float64
}
