package service

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"content_syncer/internal/domain"
	"content_syncer/internal/service/mocks"
	"content_syncer/testdata/utils"
)

type ReconcileTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	items     *mocks.MockContentItemStore
	txManager *mocks.MockTransactionManager
	publisher *mocks.MockPublisher

	service *SyncService
}

func (s *ReconcileTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())

	s.items = mocks.NewMockContentItemStore(s.ctrl)
	s.txManager = mocks.NewMockTransactionManager(s.ctrl)
	s.publisher = mocks.NewMockPublisher(s.ctrl)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	s.service = NewSyncService(nil, s.items, s.txManager, nil, nil, nil, s.publisher, logger)

	s.txManager.EXPECT().WithTransaction(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		},
	).AnyTimes()
}

func (s *ReconcileTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestReconcileTestSuite(t *testing.T) {
	suite.Run(t, new(ReconcileTestSuite))
}

func (s *ReconcileTestSuite) TestReconcile_UnchangedItem_NoWrite() {
	ctx := context.Background()

	incoming := []domain.SourcedItem{{
		ContentURL:       "https://cdn.example.com/a.mp3",
		Type:             "audio",
		Name:             utils.Ptr("Episode 1"),
		ShortDescription: utils.Ptr("First episode"),
		ThumbnailURL:     utils.Ptr("https://cdn.example.com/a.jpg"),
	}}

	existing := map[string]domain.ContentItem{
		"https://cdn.example.com/a.mp3": {
			ID:               "item-1",
			PublisherID:      "pub-1",
			ContentURL:       "https://cdn.example.com/a.mp3",
			Name:             utils.Ptr("Episode 1"),
			ShortDescription: utils.Ptr("First episode"),
			ThumbnailURL:     utils.Ptr("https://cdn.example.com/a.jpg"),
		},
	}

	s.items.EXPECT().GetByURLs(ctx, "pub-1", []string{"https://cdn.example.com/a.mp3"}).Return(existing, nil)
	// No UpdateSourced, no InsertBatch: nothing changed.

	stats, err := s.service.reconcile(ctx, "pub-1", "src-1", incoming)

	s.NoError(err)
	s.Equal(0, stats.Created)
	s.Equal(0, stats.Updated)
	s.Equal(1, stats.Unchanged)
}

func (s *ReconcileTestSuite) TestReconcile_OneChangedField_PartialUpdate() {
	ctx := context.Background()

	incoming := []domain.SourcedItem{{
		ContentURL:       "https://cdn.example.com/a.mp3",
		Type:             "audio",
		Name:             utils.Ptr("Episode 1"),
		ShortDescription: utils.Ptr("First episode"),
		ThumbnailURL:     utils.Ptr("https://cdn.example.com/new.jpg"),
	}}

	existing := map[string]domain.ContentItem{
		"https://cdn.example.com/a.mp3": {
			ID:               "item-1",
			PublisherID:      "pub-1",
			ContentURL:       "https://cdn.example.com/a.mp3",
			Name:             utils.Ptr("Episode 1"),
			ShortDescription: utils.Ptr("First episode"),
			ThumbnailURL:     utils.Ptr("https://cdn.example.com/old.jpg"),
		},
	}

	s.items.EXPECT().GetByURLs(ctx, "pub-1", gomock.Any()).Return(existing, nil)
	s.items.EXPECT().UpdateSourced(ctx, "item-1", gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, changes domain.ContentItemChanges) error {
			s.Nil(changes.Name)
			s.Nil(changes.ShortDescription)
			s.NotNil(changes.ThumbnailURL)
			s.Equal("https://cdn.example.com/new.jpg", *changes.ThumbnailURL)
			s.Equal("src-1", changes.SourceID)
			return nil
		},
	)
	s.publisher.EXPECT().Publish(ctx, gomock.Any(), false).Return(nil)

	stats, err := s.service.reconcile(ctx, "pub-1", "src-1", incoming)

	s.NoError(err)
	s.Equal(1, stats.Updated)
	s.Equal(0, stats.Created)
}

func (s *ReconcileTestSuite) TestReconcile_MissingIncomingField_DoesNotClear() {
	ctx := context.Background()

	// The feed stopped sending descriptions; the stored one must survive.
	incoming := []domain.SourcedItem{{
		ContentURL: "https://cdn.example.com/a.mp3",
		Type:       "audio",
		Name:       utils.Ptr("Episode 1"),
	}}

	existing := map[string]domain.ContentItem{
		"https://cdn.example.com/a.mp3": {
			ID:               "item-1",
			ContentURL:       "https://cdn.example.com/a.mp3",
			Name:             utils.Ptr("Episode 1"),
			ShortDescription: utils.Ptr("Edited by hand"),
		},
	}

	s.items.EXPECT().GetByURLs(ctx, "pub-1", gomock.Any()).Return(existing, nil)

	stats, err := s.service.reconcile(ctx, "pub-1", "src-1", incoming)

	s.NoError(err)
	s.Equal(1, stats.Unchanged)
}

func (s *ReconcileTestSuite) TestReconcile_NewItems_BulkInserted() {
	ctx := context.Background()

	s.service.newID = func() string { return "fresh-id" }

	incoming := []domain.SourcedItem{
		{ContentURL: "https://cdn.example.com/a.mp3", Type: "audio", Name: utils.Ptr("A")},
		{ContentURL: "https://cdn.example.com/b.mp3", Type: "audio", Name: utils.Ptr("B")},
	}

	s.items.EXPECT().GetByURLs(ctx, "pub-1", gomock.Any()).Return(map[string]domain.ContentItem{}, nil)
	s.items.EXPECT().InsertBatch(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, items []domain.ContentItem) error {
			s.Len(items, 2)
			for _, item := range items {
				s.Equal("fresh-id", item.ID)
				s.Equal("pub-1", item.PublisherID)
				s.Equal("src-1", item.SourceID)
				s.False(item.CreatedAt.IsZero())
			}
			return nil
		},
	)
	s.publisher.EXPECT().Publish(ctx, gomock.Any(), true).Return(nil).Times(2)

	stats, err := s.service.reconcile(ctx, "pub-1", "src-1", incoming)

	s.NoError(err)
	s.Equal(2, stats.Created)
}

func (s *ReconcileTestSuite) TestReconcile_DuplicateURLsWithinRun_SingleInsert() {
	ctx := context.Background()

	incoming := []domain.SourcedItem{
		{ContentURL: "https://cdn.example.com/a.mp3", Type: "audio", Name: utils.Ptr("First")},
		{ContentURL: "https://cdn.example.com/a.mp3", Type: "audio", Name: utils.Ptr("Duplicate")},
	}

	s.items.EXPECT().
		GetByURLs(ctx, "pub-1", []string{"https://cdn.example.com/a.mp3"}).
		Return(map[string]domain.ContentItem{}, nil)
	s.items.EXPECT().InsertBatch(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, items []domain.ContentItem) error {
			s.Len(items, 1)
			s.Equal("First", *items[0].Name)
			return nil
		},
	)
	s.publisher.EXPECT().Publish(ctx, gomock.Any(), true).Return(nil)

	stats, err := s.service.reconcile(ctx, "pub-1", "src-1", incoming)

	s.NoError(err)
	s.Equal(1, stats.Created)
}

func (s *ReconcileTestSuite) TestReconcile_PublisherNil() {
	ctx := context.Background()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	service := NewSyncService(nil, s.items, s.txManager, nil, nil, nil, nil, logger)

	incoming := []domain.SourcedItem{{ContentURL: "https://cdn.example.com/a.mp3", Type: "audio"}}

	s.items.EXPECT().GetByURLs(ctx, "pub-1", gomock.Any()).Return(map[string]domain.ContentItem{}, nil)
	s.items.EXPECT().InsertBatch(ctx, gomock.Any()).Return(nil)

	stats, err := service.reconcile(ctx, "pub-1", "src-1", incoming)

	s.NoError(err)
	s.Equal(1, stats.Created)
}
