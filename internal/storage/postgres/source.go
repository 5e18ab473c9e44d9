package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"content_syncer/internal/domain"
)

const sourceColumns = `
	id, publisher_id, type, name, url, auto_sync, instructions,
	status_code, response, last_sync_started_at, last_sync_finished_at,
	created_at, updated_at`

type SourceStore struct {
	db *sqlx.DB
}

func NewSourceStore(db *sqlx.DB) *SourceStore {
	return &SourceStore{db: db}
}

func (s *SourceStore) GetByID(ctx context.Context, publisherID, id string) (*domain.SourceDefinition, error) {
	var src domain.SourceDefinition
	query := `SELECT` + sourceColumns + `
		FROM content_sources
		WHERE id = $1 AND publisher_id = $2`

	err := s.db.GetContext(ctx, &src, query, id, publisherID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSourceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &src, nil
}

func (s *SourceStore) Create(ctx context.Context, src *domain.SourceDefinition) error {
	query := `
		INSERT INTO content_sources (
			id, publisher_id, type, name, url, auto_sync, instructions,
			status_code, response, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := s.db.ExecContext(ctx, query,
		src.ID,
		src.PublisherID,
		src.Type,
		src.Name,
		src.URL,
		src.AutoSync,
		src.Instructions,
		src.StatusCode,
		src.Response,
		src.CreatedAt,
		src.UpdatedAt,
	)
	return err
}

// AcquireRun is the run lock: a conditional update that only succeeds when no
// run is in flight, so two concurrent triggers cannot both start.
func (s *SourceStore) AcquireRun(ctx context.Context, publisherID, id string, startedAt time.Time) (bool, error) {
	query := `
		UPDATE content_sources
		SET last_sync_started_at = $3, last_sync_finished_at = NULL, updated_at = $3
		WHERE id = $1 AND publisher_id = $2
		  AND (last_sync_finished_at IS NOT NULL OR last_sync_started_at IS NULL)`

	res, err := s.db.ExecContext(ctx, query, id, publisherID, startedAt)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

// FinishRun records the run outcome and returns the source to idle. Called on
// every exit path of a run.
func (s *SourceStore) FinishRun(ctx context.Context, id string, statusCode int, response string, finishedAt time.Time) error {
	query := `
		UPDATE content_sources
		SET status_code = $2, response = $3, last_sync_finished_at = $4, updated_at = $4
		WHERE id = $1`

	_, err := s.db.ExecContext(ctx, query, id, statusCode, response, finishedAt)
	return err
}

// ListAutoSync returns all sources eligible for unattended re-fetch.
func (s *SourceStore) ListAutoSync(ctx context.Context) ([]domain.SourceDefinition, error) {
	query := `SELECT` + sourceColumns + `
		FROM content_sources
		WHERE auto_sync = TRUE
		ORDER BY created_at`

	var sources []domain.SourceDefinition
	err := s.db.SelectContext(ctx, &sources, query)
	return sources, err
}
