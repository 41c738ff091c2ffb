package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/artisnova/aria/internal/core/domain"
	"github.com/artisnova/aria/internal/core/ports/driven"
	"github.com/artisnova/aria/internal/core/ports/driving"
	"github.com/artisnova/aria/internal/logger"
)

// Ensure Aggregator implements the interface.
var _ driving.MetadataService = (*Aggregator)(nil)

// Fan-out deadlines. A slow catalog disqualifies itself, never the request.
const (
	DefaultConnectorTimeout = 3 * time.Second
	DefaultOverallTimeout   = 8 * time.Second
)

// AggregatorConfig carries the fan-out timing policy.
type AggregatorConfig struct {
	// ConnectorTimeout bounds each individual catalog call.
	ConnectorTimeout time.Duration

	// OverallTimeout bounds the whole aggregation pass; results arriving
	// after it are discarded.
	OverallTimeout time.Duration
}

func (c AggregatorConfig) withDefaults() AggregatorConfig {
	if c.ConnectorTimeout <= 0 {
		c.ConnectorTimeout = DefaultConnectorTimeout
	}
	if c.OverallTimeout <= 0 {
		c.OverallTimeout = DefaultOverallTimeout
	}
	return c
}

// Aggregator answers metadata queries by checking the two-tier cache and,
// on a miss, fanning out to every registered connector for the entity
// type in parallel, merging the contributions by source priority, scoring
// the result, caching it, and overlaying user corrections.
//
// Connectors are never called directly by the UI; everything goes through
// this cache-checking entry point. Concurrent cold misses for the same
// key may duplicate the fan-out; that is accepted rather than coalesced.
type Aggregator struct {
	registry    *ConnectorRegistry
	cache       *TieredCache
	corrections driven.CorrectionStore // may be nil
	clock       driven.Clock
	config      AggregatorConfig
}

// NewAggregator creates the aggregation service. corrections may be nil
// when no correction log is configured.
func NewAggregator(
	registry *ConnectorRegistry,
	cache *TieredCache,
	corrections driven.CorrectionStore,
	clock driven.Clock,
	config AggregatorConfig,
) *Aggregator {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Aggregator{
		registry:    registry,
		cache:       cache,
		corrections: corrections,
		clock:       clock,
		config:      config.withDefaults(),
	}
}

// GetArtistInfo aggregates metadata for an artist name.
func (a *Aggregator) GetArtistInfo(ctx context.Context, query string) (*domain.CanonicalRecord, error) {
	return a.GetEntityInfo(ctx, domain.Query{Type: domain.EntityArtist, Term: query})
}

// GetAlbumInfo aggregates metadata for an album title.
func (a *Aggregator) GetAlbumInfo(ctx context.Context, query, artistHint string) (*domain.CanonicalRecord, error) {
	return a.GetEntityInfo(ctx, domain.Query{Type: domain.EntityAlbum, Term: query, ArtistHint: artistHint})
}

// GetEntityInfo is the cache-checking entry point behind the helpers.
func (a *Aggregator) GetEntityInfo(ctx context.Context, query domain.Query) (*domain.CanonicalRecord, error) {
	if !query.Type.Valid() {
		return nil, fmt.Errorf("%w: entity type %q", domain.ErrUnsupportedType, query.Type)
	}
	if query.Normalized() == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}

	logger.Section("Aggregation")
	key := query.CacheKey()
	logger.Debug("Query %q -> key %q", query.Term, key)

	if entry, err := a.cache.Get(ctx, key); err == nil {
		if entry.Negative() {
			logger.Debug("Negative cache hit for %q", key)
			return nil, domain.ErrNotFound
		}
		logger.Info("Cache hit for %q", key)
		return a.overlay(ctx, entry.Payload), nil
	}

	logger.Info("Cache miss for %q, fanning out", key)
	contributions := a.fanOut(ctx, query)

	merged := domain.MergeContributions(contributions)
	if merged == nil {
		logger.Info("No catalog returned data for %q", query.Term)
		if err := a.cache.SetNegative(ctx, key); err != nil {
			logger.Warn("caching negative result for %q: %v", key, err)
		}
		return nil, domain.ErrNotFound
	}
	merged.Type = query.Type
	if merged.Artist == "" && query.ArtistHint != "" {
		merged.Artist = query.ArtistHint
	}

	logger.Info("Merged %d contributions, quality %.2f", len(merged.Sources), merged.QualityScore)
	if err := a.cache.Set(ctx, key, merged); err != nil {
		// A dead cache degrades performance, not correctness.
		logger.Warn("caching merged record for %q: %v", key, err)
	}

	return a.overlay(ctx, merged), nil
}

// settledResult is one connector's settled fan-out outcome.
type settledResult struct {
	name    string
	weight  float64
	records []domain.CanonicalRecord
	err     error
}

// fanOut searches every connector for the entity type in parallel under
// an allSettled discipline: each call has its own timeout, failures only
// disqualify their own source, and once the overall deadline fires the
// remaining calls are abandoned (the channel is buffered to the fan-out
// width, so late workers never block or leak).
func (a *Aggregator) fanOut(ctx context.Context, query domain.Query) []domain.SourceContribution {
	connectors := a.registry.ConnectorsFor(query.Type)
	if len(connectors) == 0 {
		logger.Warn("No connectors registered for entity type %q", query.Type)
		return nil
	}

	overallCtx, cancel := context.WithTimeout(ctx, a.config.OverallTimeout)
	defer cancel()

	results := make(chan settledResult, len(connectors))
	for _, connector := range connectors {
		go func(c driven.Connector) {
			callCtx, callCancel := context.WithTimeout(overallCtx, a.config.ConnectorTimeout)
			defer callCancel()

			records, err := c.Search(callCtx, query)
			results <- settledResult{
				name:    c.Name(),
				weight:  c.ReliabilityWeight(),
				records: records,
				err:     err,
			}
		}(connector)
	}

	var contributions []domain.SourceContribution
	settled := 0
collect:
	for settled < len(connectors) {
		select {
		case result := <-results:
			settled++
			if contribution, ok := a.toContribution(query, result); ok {
				contributions = append(contributions, contribution)
			}
		case <-overallCtx.Done():
			logger.Warn("Overall deadline hit with %d/%d connectors settled", settled, len(connectors))
			break collect
		}
	}
	return contributions
}

// toContribution converts one settled result into a contribution,
// dropping failed and empty answers.
func (a *Aggregator) toContribution(query domain.Query, result settledResult) (domain.SourceContribution, bool) {
	if result.err != nil {
		// Connector Unavailable: recovered locally, never surfaced.
		logger.Warn("Source %s unavailable: %v", result.name, result.err)
		return domain.SourceContribution{}, false
	}
	if len(result.records) == 0 {
		logger.Debug("Source %s returned no results", result.name)
		return domain.SourceContribution{}, false
	}

	// Connectors return candidates best first; take the front one.
	record := result.records[0]
	if record.IsEmpty() {
		return domain.SourceContribution{}, false
	}

	confidence := domain.MatchConfidence(query.Term, record.Name)
	logger.Debug("Source %s answered (weight %.2f, confidence %.2f)",
		result.name, result.weight, confidence)

	return domain.SourceContribution{
		SourceName:        result.name,
		Record:            &record,
		ReliabilityWeight: result.weight,
		Confidence:        confidence,
		FetchedAt:         a.clock.Now(),
	}, true
}

// overlay applies pending corrections to a copy of the record. The cached
// merge stays unchanged and inspectable.
func (a *Aggregator) overlay(ctx context.Context, record *domain.CanonicalRecord) *domain.CanonicalRecord {
	if a.corrections == nil || record == nil {
		return record
	}
	corrections, err := a.corrections.ForEntity(ctx, record.EntityID())
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("loading corrections for %q: %v", record.EntityID(), err)
		}
		return record
	}
	return domain.ApplyCorrections(record, corrections)
}

// InvalidateEntry drops a key from both cache tiers.
func (a *Aggregator) InvalidateEntry(ctx context.Context, key string) error {
	return a.cache.Invalidate(ctx, key)
}

// CacheStats reports cache behaviour for the UI.
func (a *Aggregator) CacheStats(ctx context.Context) (domain.CacheStats, error) {
	return a.cache.Stats(ctx)
}
