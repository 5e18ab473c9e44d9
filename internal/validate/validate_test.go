package validate

import (
	"context"
	"log/slog"
	"os"

	"content_syncer/internal/fetch"
	"content_syncer/internal/platform/youtube"
)

// stubFetcher returns a canned response and records what was requested.
type stubFetcher struct {
	resp    *fetch.Response
	err     error
	calls   int
	lastURL string
}

func (f *stubFetcher) Get(_ context.Context, url string) (*fetch.Response, error) {
	f.calls++
	f.lastURL = url
	return f.resp, f.err
}

// stubChannelAPI serves canned discovery responses keyed by page token.
type stubChannelAPI struct {
	playlistID string
	resolveErr error
	pages      map[string]*youtube.PlaylistPage
}

func (c *stubChannelAPI) UploadsPlaylistID(context.Context, string) (string, error) {
	return c.playlistID, c.resolveErr
}

func (c *stubChannelAPI) PlaylistPage(_ context.Context, _, pageToken string) (*youtube.PlaylistPage, error) {
	page, ok := c.pages[pageToken]
	if !ok {
		return &youtube.PlaylistPage{}, nil
	}
	return page, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}
