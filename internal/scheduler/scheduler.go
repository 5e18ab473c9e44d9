// Package scheduler is the external trigger for unattended syncs: on each
// tick it lists the auto-sync eligible sources and triggers them one by one.
// The sync core itself stays request-triggered.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"content_syncer/internal/domain"
)

// Trigger starts one sync run for a source.
type Trigger interface {
	TriggerSync(ctx context.Context, publisherID, sourceID string) (*domain.SyncResult, error)
}

// SourceLister enumerates sources eligible for unattended re-fetch.
type SourceLister interface {
	ListAutoSync(ctx context.Context) ([]domain.SourceDefinition, error)
}

type Scheduler struct {
	trigger  Trigger
	sources  SourceLister
	interval time.Duration
	logger   *slog.Logger
}

func NewScheduler(trigger Trigger, sources SourceLister, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		trigger:  trigger,
		sources:  sources,
		interval: interval,
		logger:   logger.With("component", "scheduler"),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)

	s.runPass(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runPass(ctx)
		}
	}
}

// runPass triggers every auto-sync source sequentially. Busy sources report
// "already in progress" and are simply skipped this pass.
func (s *Scheduler) runPass(ctx context.Context) {
	passCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	sources, err := s.sources.ListAutoSync(passCtx)
	if err != nil {
		s.logger.Error("list auto-sync sources failed", "error", err)
		return
	}

	for _, src := range sources {
		result, err := s.trigger.TriggerSync(passCtx, src.PublisherID, src.ID)
		if err != nil {
			s.logger.Error("sync failed", "source_id", src.ID, "error", err)
			continue
		}
		s.logger.Info("sync triggered",
			"source_id", src.ID,
			"http_code", result.HTTPCode,
			"items", result.Items,
			"skipped", result.Skipped,
			"valid", result.Valid,
		)
	}
}
