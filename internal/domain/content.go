package domain

import "time"

// SourcedItem is one normalized record extracted from a single fetch of a
// source. It has no identity of its own; it exists only to be reconciled
// against stored content items. ContentURL is the natural key.
type SourcedItem struct {
	ContentURL       string
	Type             string
	Name             *string
	ShortDescription *string
	ThumbnailURL     *string
}

// ContentItem is the persisted, publisher-owned catalog entry that sourced
// items are reconciled into.
type ContentItem struct {
	ID               string    `db:"id"`
	PublisherID      string    `db:"publisher_id"`
	Name             *string   `db:"name"`
	Type             string    `db:"type"`
	ContentURL       string    `db:"content_url"`
	ShortDescription *string   `db:"short_description"`
	ThumbnailURL     *string   `db:"thumbnail_url"`
	SourceID         string    `db:"content_items_source_id"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

// ContentItemChanges lists the sourced fields whose incoming values differ
// from the stored row. Nil fields are left untouched by the update.
type ContentItemChanges struct {
	Name             *string
	ShortDescription *string
	ThumbnailURL     *string
	SourceID         string
}

// Empty reports whether no sourced field changed.
func (c *ContentItemChanges) Empty() bool {
	return c.Name == nil && c.ShortDescription == nil && c.ThumbnailURL == nil
}
