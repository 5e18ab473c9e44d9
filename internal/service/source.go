package service

import (
	"context"
	"fmt"
	"time"

	"content_syncer/internal/domain"
)

// CreateSource validates a candidate and, when admissible, persists the
// normalized definition under a fresh id. A validation failure blocks the
// write entirely and reports the violated clause.
func (s *SyncService) CreateSource(ctx context.Context, publisherID string, cand *domain.SourceCandidate) (*domain.SourceValidation, error) {
	result, err := s.validator.Validate(ctx, cand)
	if err != nil {
		return nil, fmt.Errorf("validate candidate: %w", err)
	}
	if !result.Valid {
		return result, nil
	}

	def := result.Data
	def.ID = s.newID()
	def.PublisherID = publisherID
	now := time.Now().UTC()
	def.CreatedAt = now
	def.UpdatedAt = now

	if err := s.sources.Create(ctx, def); err != nil {
		return nil, fmt.Errorf("create source: %w", err)
	}

	s.logger.Info("source created",
		"source_id", def.ID,
		"publisher_id", publisherID,
		"type", def.Type,
		"url", def.URL,
	)

	return result, nil
}
