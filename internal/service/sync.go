package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"content_syncer/internal/domain"
	"content_syncer/internal/validate"
)

// SyncService drives sync runs end-to-end: lock, fetch, extract, reconcile,
// record outcome. One instance serves all sources; per-source runs are
// serialized by the stored run lock.
type SyncService struct {
	sources    SourceStore
	items      ContentItemStore
	txManager  TransactionManager
	fetcher    Fetcher
	extractors map[domain.SourceType]Extractor
	validator  DefinitionValidator
	publisher  Publisher
	logger     *slog.Logger
	newID      func() string

	wg sync.WaitGroup
}

func NewSyncService(
	sources SourceStore,
	items ContentItemStore,
	txManager TransactionManager,
	fetcher Fetcher,
	extractors []Extractor,
	validator DefinitionValidator,
	publisher Publisher,
	logger *slog.Logger,
) *SyncService {
	byType := make(map[domain.SourceType]Extractor, len(extractors))
	for _, e := range extractors {
		byType[e.Type()] = e
	}

	return &SyncService{
		sources:    sources,
		items:      items,
		txManager:  txManager,
		fetcher:    fetcher,
		extractors: byType,
		validator:  validator,
		publisher:  publisher,
		logger:     logger.With("component", "sync"),
		newID:      uuid.NewString,
	}
}

// TriggerSync runs one sync for the given source. It returns 202-style
// accepted semantics: reconciliation completes in the background and the
// result reports what was extracted, not what was written. Unexpected errors
// come back as Go errors; callers map those to 500.
func (s *SyncService) TriggerSync(ctx context.Context, publisherID, sourceID string) (*domain.SyncResult, error) {
	src, err := s.sources.GetByID(ctx, publisherID, sourceID)
	if errors.Is(err, domain.ErrSourceNotFound) {
		return &domain.SyncResult{ID: sourceID, HTTPCode: http.StatusNotFound, Message: "source not found"}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load source: %w", err)
	}

	acquired, err := s.sources.AcquireRun(ctx, publisherID, sourceID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("acquire run: %w", err)
	}
	if !acquired {
		s.logger.Info("sync already in progress", "source_id", sourceID)
		return &domain.SyncResult{ID: sourceID, HTTPCode: http.StatusAccepted, Valid: true, Message: "sync already in progress"}, nil
	}

	logger := s.logger.With("source_id", sourceID, "type", src.Type)
	logger.Info("starting sync", "url", src.URL)

	// The run must return to idle on every exit path, including panics in
	// adapters, so the outcome is persisted in a defer.
	statusCode := 0
	response := ""
	defer func() {
		finishCtx := context.WithoutCancel(ctx)
		if err := s.sources.FinishRun(finishCtx, sourceID, statusCode, response, time.Now().UTC()); err != nil {
			logger.Error("mark run finished failed", "error", err)
		}
	}()

	body := ""
	if src.Type != domain.SourceTypeYouTubeChannel {
		resp, ferr := s.fetcher.Get(ctx, src.URL)
		if ferr != nil {
			response = ferr.Error()
			logger.Warn("fetch failed", "error", ferr)
			return &domain.SyncResult{
				ID:       sourceID,
				HTTPCode: http.StatusUnprocessableEntity,
				Message:  fmt.Sprintf("fetch failed: %v", ferr),
			}, nil
		}

		statusCode = resp.StatusCode
		response = resp.Body
		if !resp.OK() {
			logger.Warn("upstream returned non-2xx", "status", resp.StatusCode)
			return &domain.SyncResult{
				ID:       sourceID,
				HTTPCode: http.StatusUnprocessableEntity,
				Message:  fmt.Sprintf("upstream returned status %d", resp.StatusCode),
			}, nil
		}
		body = resp.Body
	}

	extractor, ok := s.extractors[src.Type]
	if !ok {
		return nil, fmt.Errorf("no extractor registered for source type %q", src.Type)
	}

	extraction, err := extractor.Extract(ctx, src, body)
	if err != nil {
		var verr *validate.Error
		if errors.As(err, &verr) {
			logger.Warn("feed failed re-validation", "code", verr.Code, "message", verr.Message)
			return &domain.SyncResult{
				ID:       sourceID,
				HTTPCode: http.StatusUnprocessableEntity,
				Message:  verr.Message,
			}, nil
		}
		return nil, fmt.Errorf("extract: %w", err)
	}

	if src.Type == domain.SourceTypeYouTubeChannel {
		statusCode = http.StatusOK
		response = fmt.Sprintf(`{"extracted":%d,"skipped":%d}`, len(extraction.Items), extraction.Skipped)
	}

	logger.Info("extraction finished", "items", len(extraction.Items), "skipped", extraction.Skipped)

	if len(extraction.Items) > 0 {
		items := extraction.Items
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			rctx := context.WithoutCancel(ctx)
			stats, rerr := s.reconcile(rctx, publisherID, sourceID, items)
			if rerr != nil {
				// The caller already got 202; a failed reconciliation is
				// logged, not retried.
				logger.Error("reconciliation failed", "error", rerr)
				return
			}
			logger.Info("reconciliation finished",
				"created", stats.Created,
				"updated", stats.Updated,
				"unchanged", stats.Unchanged,
			)
		}()
	}

	return &domain.SyncResult{
		ID:       sourceID,
		HTTPCode: http.StatusAccepted,
		Items:    len(extraction.Items),
		Skipped:  extraction.Skipped,
		Valid:    true,
	}, nil
}

// Wait blocks until all background reconciliations have completed. Called on
// shutdown.
func (s *SyncService) Wait() {
	s.wg.Wait()
}
