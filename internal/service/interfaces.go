package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"content_syncer/internal/domain"
	"content_syncer/internal/fetch"
)

type SourceStore interface {
	GetByID(ctx context.Context, publisherID, id string) (*domain.SourceDefinition, error)
	Create(ctx context.Context, src *domain.SourceDefinition) error
	// AcquireRun marks the source as syncing. It is a conditional update that
	// only succeeds when no run is in flight, so it doubles as the run lock.
	AcquireRun(ctx context.Context, publisherID, id string, startedAt time.Time) (bool, error)
	FinishRun(ctx context.Context, id string, statusCode int, response string, finishedAt time.Time) error
}

type ContentItemStore interface {
	GetByURLs(ctx context.Context, publisherID string, urls []string) (map[string]domain.ContentItem, error)
	InsertBatch(ctx context.Context, items []domain.ContentItem) error
	UpdateSourced(ctx context.Context, id string, changes domain.ContentItemChanges) error
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Fetcher interface {
	Get(ctx context.Context, url string) (*fetch.Response, error)
}

type Extractor interface {
	Type() domain.SourceType
	Extract(ctx context.Context, src *domain.SourceDefinition, body string) (*domain.Extraction, error)
}

type DefinitionValidator interface {
	Validate(ctx context.Context, cand *domain.SourceCandidate) (*domain.SourceValidation, error)
}

type Publisher interface {
	Publish(ctx context.Context, item *domain.ContentItem, isNew bool) error
	Close() error
}
