package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/artisnova/aria/internal/core/domain"
	"github.com/artisnova/aria/internal/core/ports/driven"
	"github.com/artisnova/aria/internal/core/ports/driving"
	"github.com/artisnova/aria/internal/logger"
)

// Ensure CorrectionService implements the interface.
var _ driving.CorrectionService = (*CorrectionService)(nil)

// CorrectionService records user-submitted field overrides in the
// append-only correction log. Corrections take precedence over aggregated
// data on subsequent reads via the aggregator's overlay pass.
type CorrectionService struct {
	store driven.CorrectionStore
	cache *TieredCache // for capturing the displayed value, may be nil
	clock driven.Clock
}

// NewCorrectionService creates the correction service. cache may be nil;
// it is only used to snapshot the currently displayed value.
func NewCorrectionService(store driven.CorrectionStore, cache *TieredCache, clock driven.Clock) *CorrectionService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &CorrectionService{store: store, cache: cache, clock: clock}
}

// SubmitCorrection validates and appends a correction.
func (s *CorrectionService) SubmitCorrection(
	ctx context.Context,
	entityType domain.EntityType,
	entityID, fieldName, value string,
) error {
	if !entityType.Valid() {
		return fmt.Errorf("%w: entity type %q", domain.ErrUnsupportedType, entityType)
	}
	entityID = strings.TrimSpace(entityID)
	if entityID == "" {
		return fmt.Errorf("%w: empty entity id", domain.ErrInvalidInput)
	}
	if !domain.FieldCorrectable(fieldName) {
		return fmt.Errorf("%w: field %q is not correctable", domain.ErrInvalidInput, fieldName)
	}

	correction := domain.Correction{
		ID:             uuid.NewString(),
		EntityType:     entityType,
		EntityID:       entityID,
		FieldName:      fieldName,
		OriginalValue:  s.displayedValue(ctx, entityID, fieldName),
		CorrectedValue: value,
		CreatedAt:      s.clock.Now(),
	}

	if err := s.store.Append(ctx, correction); err != nil {
		return fmt.Errorf("append correction: %w", err)
	}

	logger.Info("Correction recorded for %s.%s", entityID, fieldName)
	return nil
}

// ListCorrections returns the correction log for an entity, oldest first.
func (s *CorrectionService) ListCorrections(ctx context.Context, entityID string) ([]domain.Correction, error) {
	corrections, err := s.store.ForEntity(ctx, entityID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("list corrections: %w", err)
	}
	return corrections, nil
}

// displayedValue snapshots the value the UI currently shows for the
// field, so the correction log records what the user was overriding.
// Entity IDs share the cache key format, which makes the lookup direct.
func (s *CorrectionService) displayedValue(ctx context.Context, entityID, fieldName string) string {
	if s.cache == nil {
		return ""
	}
	entry, err := s.cache.Get(ctx, entityID)
	if err != nil || entry.Negative() {
		return ""
	}
	return domain.FieldValue(entry.Payload, fieldName)
}
