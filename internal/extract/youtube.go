package extract

import (
	"context"
	"log/slog"

	"content_syncer/internal/domain"
	"content_syncer/internal/platform/youtube"
	"content_syncer/internal/validate"
)

// ChannelAPI is the slice of the video-platform API the adapter needs.
type ChannelAPI interface {
	UploadsPlaylistID(ctx context.Context, handle string) (string, error)
	PlaylistPage(ctx context.Context, playlistID, pageToken string) (*youtube.PlaylistPage, error)
}

// YouTubeExtractor resolves a channel's uploads playlist and pages through
// it, one page token at a time. Platform API failures abort the call with an
// empty item list; they are not hard failures of the run.
type YouTubeExtractor struct {
	channels ChannelAPI
	logger   *slog.Logger
}

func NewYouTubeExtractor(channels ChannelAPI, logger *slog.Logger) *YouTubeExtractor {
	return &YouTubeExtractor{
		channels: channels,
		logger:   logger.With("adapter", "youtube"),
	}
}

func (e *YouTubeExtractor) Type() domain.SourceType {
	return domain.SourceTypeYouTubeChannel
}

func (e *YouTubeExtractor) Extract(ctx context.Context, src *domain.SourceDefinition, _ string) (*domain.Extraction, error) {
	handle, err := validate.ChannelHandle(src.URL)
	if err != nil {
		return nil, err
	}

	playlistID, err := e.channels.UploadsPlaylistID(ctx, handle)
	if err != nil {
		e.logger.Error("resolve uploads playlist failed", "source_id", src.ID, "handle", handle, "error", err)
		return &domain.Extraction{}, nil
	}
	if playlistID == "" {
		e.logger.Warn("channel has no uploads playlist", "source_id", src.ID, "handle", handle)
		return &domain.Extraction{}, nil
	}

	result := &domain.Extraction{}
	pageToken := ""
	for {
		page, err := e.channels.PlaylistPage(ctx, playlistID, pageToken)
		if err != nil {
			e.logger.Error("list playlist page failed", "source_id", src.ID, "playlist_id", playlistID, "error", err)
			return &domain.Extraction{}, nil
		}

		for _, entry := range page.Entries {
			if entry.VideoID == "" {
				result.Skipped++
				continue
			}
			result.Items = append(result.Items, domain.SourcedItem{
				ContentURL:       "https://www.youtube.com/embed/" + entry.VideoID,
				Type:             "video",
				Name:             optional(entry.Title),
				ShortDescription: optional(entry.Description),
				ThumbnailURL:     optional(entry.ThumbnailURL),
			})
		}

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	return result, nil
}
