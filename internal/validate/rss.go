package validate

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"io"
	"strings"

	"content_syncer/internal/domain"
)

const (
	rssContentType = "application/rss+xml"
	rssVersion     = "2.0"

	// Canonical namespace URIs the feed envelope must declare.
	ITunesNamespace  = "http://www.itunes.com/dtds/podcast-1.0.dtd"
	PodcastNamespace = "https://podcastindex.org/namespace/1.0"
)

func (s *Service) validateRSS(ctx context.Context, cand *domain.SourceCandidate) (*domain.SourceDefinition, error) {
	if err := checkEmptyInstructions(cand.Instructions); err != nil {
		return nil, err
	}

	resp, ferr := s.fetcher.Get(ctx, cand.URL)
	if ferr != nil {
		return nil, errf(CodeUnreachable, "fetch %s: %v", cand.URL, ferr)
	}
	if !resp.OK() {
		return nil, errf(CodeUnreachable, "%s returned status %d", cand.URL, resp.StatusCode)
	}
	if !strings.Contains(resp.ContentType, rssContentType) {
		return nil, errf(CodeWrongContentType, "expected content type %q, got %q", rssContentType, resp.ContentType)
	}

	if err := CheckRSSEnvelope(resp.Body); err != nil {
		return nil, err
	}

	return &domain.SourceDefinition{
		Type:         domain.SourceTypeRSS,
		Name:         cand.Name,
		URL:          cand.URL,
		AutoSync:     cand.AutoSync,
		Instructions: json.RawMessage("{}"),
		StatusCode:   &resp.StatusCode,
		Response:     &resp.Body,
	}, nil
}

// CheckRSSEnvelope verifies the feed's root element: version 2.0 and both the
// iTunes and Podcast namespaces declared with their canonical URIs. Each
// mismatch is a distinct failure so callers know which clause broke. Re-run
// on every sync.
func CheckRSSEnvelope(body string) error {
	root, err := rootElement(body)
	if err != nil {
		return errf(CodeInvalidFormat, "parse feed xml: %v", err)
	}
	if root.Name.Local != "rss" {
		return errf(CodeInvalidFormat, "expected <rss> root element, got <%s>", root.Name.Local)
	}

	var version, itunesNS, podcastNS string
	for _, attr := range root.Attr {
		switch {
		case attr.Name.Space == "" && attr.Name.Local == "version":
			version = attr.Value
		case attr.Name.Space == "xmlns" && attr.Name.Local == "itunes":
			itunesNS = attr.Value
		case attr.Name.Space == "xmlns" && attr.Name.Local == "podcast":
			podcastNS = attr.Value
		}
	}

	if version != rssVersion {
		return errf(CodeWrongVersion, "expected rss version %q, got %q", rssVersion, version)
	}
	if itunesNS != ITunesNamespace {
		return errf(CodeMissingNamespace, "xmlns:itunes must be %q, got %q", ITunesNamespace, itunesNS)
	}
	if podcastNS != PodcastNamespace {
		return errf(CodeMissingNamespace, "xmlns:podcast must be %q, got %q", PodcastNamespace, podcastNS)
	}
	return nil
}

func rootElement(body string) (*xml.StartElement, error) {
	dec := xml.NewDecoder(strings.NewReader(body))
	for {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return &start, nil
		}
	}
}

func checkEmptyInstructions(raw json.RawMessage) error {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" || trimmed == "{}" {
		return nil
	}
	return errf(CodeInvalidFormat, "instructions must be empty for this source type, got %s", trimmed)
}
