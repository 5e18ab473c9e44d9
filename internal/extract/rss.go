package extract

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mmcdole/gofeed"

	"content_syncer/internal/domain"
	"content_syncer/internal/validate"
)

// RSSExtractor pulls episodes out of an RSS 2.0 feed using the iTunes
// namespace conventions.
type RSSExtractor struct {
	parser *gofeed.Parser
	logger *slog.Logger
}

func NewRSSExtractor(logger *slog.Logger) *RSSExtractor {
	return &RSSExtractor{
		parser: gofeed.NewParser(),
		logger: logger.With("adapter", "rss"),
	}
}

func (e *RSSExtractor) Type() domain.SourceType {
	return domain.SourceTypeRSS
}

func (e *RSSExtractor) Extract(ctx context.Context, src *domain.SourceDefinition, body string) (*domain.Extraction, error) {
	// Version and namespaces are re-checked on every run, not just at
	// admission.
	if err := validate.CheckRSSEnvelope(body); err != nil {
		return nil, err
	}

	feed, err := e.parser.ParseString(body)
	if err != nil {
		return nil, err
	}

	result := &domain.Extraction{}
	for _, item := range feed.Items {
		mediaURL, mediaType := firstEnclosure(item)
		if mediaURL == "" {
			e.logger.Debug("skipping item without media url", "source_id", src.ID, "title", item.Title)
			result.Skipped++
			continue
		}

		result.Items = append(result.Items, domain.SourcedItem{
			ContentURL:       mediaURL,
			Type:             itemTypeFromMIME(mediaType),
			Name:             optional(item.Title),
			ShortDescription: optional(shortDescription(item)),
			ThumbnailURL:     optional(thumbnail(item)),
		})
	}

	return result, nil
}

func firstEnclosure(item *gofeed.Item) (url, mimeType string) {
	for _, enc := range item.Enclosures {
		if enc != nil && enc.URL != "" {
			return enc.URL, enc.Type
		}
	}
	return "", ""
}

func itemTypeFromMIME(mimeType string) string {
	if strings.HasPrefix(mimeType, "video/") {
		return "video"
	}
	return "audio"
}

func shortDescription(item *gofeed.Item) string {
	if item.ITunesExt != nil && item.ITunesExt.Summary != "" {
		return item.ITunesExt.Summary
	}
	return item.Description
}

func thumbnail(item *gofeed.Item) string {
	if item.ITunesExt != nil && item.ITunesExt.Image != "" {
		return item.ITunesExt.Image
	}
	if item.Image != nil {
		return item.Image.URL
	}
	return ""
}
