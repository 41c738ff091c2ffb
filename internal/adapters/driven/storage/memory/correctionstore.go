package memory

import (
	"context"
	"sync"

	"github.com/artisnova/aria/internal/core/domain"
	"github.com/artisnova/aria/internal/core/ports/driven"
)

// Ensure CorrectionStore implements the interface.
var _ driven.CorrectionStore = (*CorrectionStore)(nil)

// CorrectionStore is an in-memory, append-only correction log.
// Used in tests and memory-only deployments.
type CorrectionStore struct {
	mu       sync.RWMutex
	byEntity map[string][]domain.Correction
}

// NewCorrectionStore creates an empty in-memory correction log.
func NewCorrectionStore() *CorrectionStore {
	return &CorrectionStore{byEntity: make(map[string][]domain.Correction)}
}

// Append adds a correction to the log.
func (s *CorrectionStore) Append(_ context.Context, correction domain.Correction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byEntity[correction.EntityID] = append(s.byEntity[correction.EntityID], correction)
	return nil
}

// ForEntity returns all corrections for an entity, oldest first.
func (s *CorrectionStore) ForEntity(_ context.Context, entityID string) ([]domain.Correction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	corrections := s.byEntity[entityID]
	out := make([]domain.Correction, len(corrections))
	copy(out, corrections)
	return out, nil
}

// Latest returns the winning correction for (entityID, fieldName).
func (s *CorrectionStore) Latest(_ context.Context, entityID, fieldName string) (*domain.Correction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *domain.Correction
	for i := range s.byEntity[entityID] {
		c := s.byEntity[entityID][i]
		if c.FieldName != fieldName {
			continue
		}
		if latest == nil || !c.CreatedAt.Before(latest.CreatedAt) {
			latest = &c
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	out := *latest
	return &out, nil
}

// Close releases nothing; the store is plain memory.
func (s *CorrectionStore) Close() error {
	return nil
}
