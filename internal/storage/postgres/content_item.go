package postgres

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"content_syncer/internal/domain"
)

type ContentItemStore struct {
	db *sqlx.DB
}

func NewContentItemStore(db *sqlx.DB) *ContentItemStore {
	return &ContentItemStore{db: db}
}

// GetByURLs bulk-fetches the publisher's items whose content URL is in the
// given set, keyed by URL for reconciliation.
func (s *ContentItemStore) GetByURLs(ctx context.Context, publisherID string, urls []string) (map[string]domain.ContentItem, error) {
	result := make(map[string]domain.ContentItem, len(urls))
	if len(urls) == 0 {
		return result, nil
	}

	query := `
		SELECT id, publisher_id, name, type, content_url, short_description,
		       thumbnail_url, content_items_source_id, created_at, updated_at
		FROM content_items
		WHERE publisher_id = $1 AND content_url = ANY($2)`

	var items []domain.ContentItem
	exec := GetExecutor(ctx, s.db)
	if err := sqlx.SelectContext(ctx, exec, &items, query, publisherID, pq.Array(urls)); err != nil {
		return nil, err
	}

	for _, item := range items {
		result[item.ContentURL] = item
	}
	return result, nil
}

// InsertBatch writes all new items in one statement.
func (s *ContentItemStore) InsertBatch(ctx context.Context, items []domain.ContentItem) error {
	if len(items) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO content_items (
		id, publisher_id, name, type, content_url, short_description,
		thumbnail_url, content_items_source_id, created_at, updated_at
	) VALUES `)

	const cols = 10
	args := make([]interface{}, 0, len(items)*cols)
	for i, item := range items {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for j := 0; j < cols; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("$")
			sb.WriteString(strconv.Itoa(i*cols + j + 1))
		}
		sb.WriteString(")")
		args = append(args,
			item.ID,
			item.PublisherID,
			item.Name,
			item.Type,
			item.ContentURL,
			item.ShortDescription,
			item.ThumbnailURL,
			item.SourceID,
			item.CreatedAt,
			item.UpdatedAt,
		)
	}

	exec := GetExecutor(ctx, s.db)
	_, err := exec.ExecContext(ctx, sb.String(), args...)
	return err
}

// UpdateSourced applies only the changed sourced fields; provenance and
// updated_at are always refreshed on a matched update.
func (s *ContentItemStore) UpdateSourced(ctx context.Context, id string, changes domain.ContentItemChanges) error {
	var set []string
	var args []interface{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, column+" = $"+strconv.Itoa(len(args)))
	}

	if changes.Name != nil {
		add("name", *changes.Name)
	}
	if changes.ShortDescription != nil {
		add("short_description", *changes.ShortDescription)
	}
	if changes.ThumbnailURL != nil {
		add("thumbnail_url", *changes.ThumbnailURL)
	}
	add("content_items_source_id", changes.SourceID)
	add("updated_at", time.Now().UTC())

	args = append(args, id)
	query := "UPDATE content_items SET " + strings.Join(set, ", ") +
		" WHERE id = $" + strconv.Itoa(len(args))

	exec := GetExecutor(ctx, s.db)
	_, err := exec.ExecContext(ctx, query, args...)
	return err
}
