package service

import (
	"context"
	"fmt"
	"time"

	"content_syncer/internal/domain"
)

// reconcile merges sourced items into the content item table for one
// (publisher, source) pair. All reads and writes happen inside a single
// transaction; a failure anywhere rolls back the whole pass. Items that
// vanished upstream are never deleted.
func (s *SyncService) reconcile(ctx context.Context, publisherID, sourceID string, items []domain.SourcedItem) (*domain.ReconcileStats, error) {
	items = dedupeByURL(items)

	urls := make([]string, len(items))
	for i, item := range items {
		urls[i] = item.ContentURL
	}

	stats := &domain.ReconcileStats{}
	var created, updated []domain.ContentItem

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.items.GetByURLs(txCtx, publisherID, urls)
		if err != nil {
			return fmt.Errorf("lookup existing items: %w", err)
		}

		now := time.Now().UTC()
		for _, item := range items {
			current, ok := existing[item.ContentURL]
			if !ok {
				created = append(created, domain.ContentItem{
					ID:               s.newID(),
					PublisherID:      publisherID,
					Name:             item.Name,
					Type:             item.Type,
					ContentURL:       item.ContentURL,
					ShortDescription: item.ShortDescription,
					ThumbnailURL:     item.ThumbnailURL,
					SourceID:         sourceID,
					CreatedAt:        now,
					UpdatedAt:        now,
				})
				continue
			}

			changes := diffSourced(&current, &item)
			if changes.Empty() {
				stats.Unchanged++
				continue
			}
			changes.SourceID = sourceID

			if err := s.items.UpdateSourced(txCtx, current.ID, changes); err != nil {
				return fmt.Errorf("update item %s: %w", current.ID, err)
			}
			stats.Updated++

			applyChanges(&current, changes, now)
			updated = append(updated, current)
		}

		if len(created) > 0 {
			if err := s.items.InsertBatch(txCtx, created); err != nil {
				return fmt.Errorf("insert new items: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	stats.Created = len(created)

	if s.publisher != nil {
		for i := range created {
			if err := s.publisher.Publish(ctx, &created[i], true); err != nil {
				s.logger.Error("publish create event failed", "content_url", created[i].ContentURL, "error", err)
			}
		}
		for i := range updated {
			if err := s.publisher.Publish(ctx, &updated[i], false); err != nil {
				s.logger.Error("publish update event failed", "content_url", updated[i].ContentURL, "error", err)
			}
		}
	}

	return stats, nil
}

// dedupeByURL keeps the first occurrence of each content URL so a run can
// never create two rows for the same URL.
func dedupeByURL(items []domain.SourcedItem) []domain.SourcedItem {
	seen := make(map[string]struct{}, len(items))
	out := items[:0:0]
	for _, item := range items {
		if _, ok := seen[item.ContentURL]; ok {
			continue
		}
		seen[item.ContentURL] = struct{}{}
		out = append(out, item)
	}
	return out
}

// diffSourced compares the sourced fields against the stored row. A field
// changes only when the feed supplied a value that differs; a missing
// incoming value never clears an existing one, which keeps manual edits
// intact.
func diffSourced(current *domain.ContentItem, incoming *domain.SourcedItem) domain.ContentItemChanges {
	var changes domain.ContentItemChanges
	if incoming.Name != nil && (current.Name == nil || *current.Name != *incoming.Name) {
		changes.Name = incoming.Name
	}
	if incoming.ShortDescription != nil && (current.ShortDescription == nil || *current.ShortDescription != *incoming.ShortDescription) {
		changes.ShortDescription = incoming.ShortDescription
	}
	if incoming.ThumbnailURL != nil && (current.ThumbnailURL == nil || *current.ThumbnailURL != *incoming.ThumbnailURL) {
		changes.ThumbnailURL = incoming.ThumbnailURL
	}
	return changes
}

func applyChanges(item *domain.ContentItem, changes domain.ContentItemChanges, now time.Time) {
	if changes.Name != nil {
		item.Name = changes.Name
	}
	if changes.ShortDescription != nil {
		item.ShortDescription = changes.ShortDescription
	}
	if changes.ThumbnailURL != nil {
		item.ThumbnailURL = changes.ThumbnailURL
	}
	item.SourceID = changes.SourceID
	item.UpdatedAt = now
}
