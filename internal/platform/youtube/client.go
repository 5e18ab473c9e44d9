// Package youtube wraps the YouTube Data API v3 calls the pipeline needs:
// resolving a channel handle to its uploads playlist and paging that playlist.
package youtube

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"
)

// PageSize is the playlist page size requested from the API.
const PageSize = 50

// PlaylistEntry is one uploads-playlist row. VideoID may be empty for
// deleted or private videos; callers skip those.
type PlaylistEntry struct {
	VideoID      string
	Title        string
	Description  string
	ThumbnailURL string
}

// PlaylistPage is one page of playlist entries. NextPageToken is empty on the
// last page.
type PlaylistPage struct {
	Entries       []PlaylistEntry
	NextPageToken string
}

// Client talks to the YouTube Data API with an API key.
type Client struct {
	svc    *ytapi.Service
	logger *slog.Logger
}

// NewClient builds an API-key authenticated client.
func NewClient(ctx context.Context, apiKey string, logger *slog.Logger) (*Client, error) {
	svc, err := ytapi.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return &Client{svc: svc, logger: logger.With("platform", "youtube")}, nil
}

// UploadsPlaylistID resolves a channel handle (without the leading "@") to the
// id of its uploads playlist. Returns "" when the handle resolves to no
// channel.
func (c *Client) UploadsPlaylistID(ctx context.Context, handle string) (string, error) {
	resp, err := c.svc.Channels.List([]string{"contentDetails"}).
		ForHandle(handle).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("resolve channel handle %q: %w", handle, err)
	}

	if len(resp.Items) == 0 || resp.Items[0].ContentDetails == nil {
		return "", nil
	}
	return resp.Items[0].ContentDetails.RelatedPlaylists.Uploads, nil
}

// PlaylistPage fetches one page of the given playlist. Pass an empty
// pageToken for the first page.
func (c *Client) PlaylistPage(ctx context.Context, playlistID, pageToken string) (*PlaylistPage, error) {
	call := c.svc.PlaylistItems.List([]string{"snippet"}).
		PlaylistId(playlistID).
		MaxResults(PageSize).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("list playlist %s: %w", playlistID, err)
	}

	page := &PlaylistPage{NextPageToken: resp.NextPageToken}
	for _, item := range resp.Items {
		if item.Snippet == nil {
			continue
		}
		entry := PlaylistEntry{
			Title:        item.Snippet.Title,
			Description:  item.Snippet.Description,
			ThumbnailURL: BestThumbnail(item.Snippet.Thumbnails),
		}
		if item.Snippet.ResourceId != nil {
			entry.VideoID = item.Snippet.ResourceId.VideoId
		}
		page.Entries = append(page.Entries, entry)
	}

	c.logger.Debug("fetched playlist page",
		"playlist_id", playlistID,
		"entries", len(page.Entries),
		"has_next", page.NextPageToken != "",
	)

	return page, nil
}

// BestThumbnail picks the highest-resolution thumbnail available, falling
// back to the default resolution.
func BestThumbnail(t *ytapi.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	for _, thumb := range []*ytapi.Thumbnail{t.Maxres, t.Standard, t.High, t.Medium, t.Default} {
		if thumb != nil && thumb.Url != "" {
			return thumb.Url
		}
	}
	return ""
}
