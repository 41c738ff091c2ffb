package driven

import (
	"context"

	"github.com/artisnova/aria/internal/core/domain"
)

// CorrectionStore persists the append-only correction log.
// Corrections are never deleted, only superseded by later entries for the
// same (entityID, fieldName).
type CorrectionStore interface {
	// Append adds a correction to the log.
	Append(ctx context.Context, correction domain.Correction) error

	// ForEntity returns all corrections for an entity, oldest first.
	ForEntity(ctx context.Context, entityID string) ([]domain.Correction, error)

	// Latest returns the winning correction for (entityID, fieldName),
	// or domain.ErrNotFound when none exists.
	Latest(ctx context.Context, entityID, fieldName string) (*domain.Correction, error)

	// Close releases resources.
	Close() error
}
