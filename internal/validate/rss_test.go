package validate

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"content_syncer/internal/domain"
	"content_syncer/internal/fetch"
)

func feedXML(version, itunesNS, podcastNS string) string {
	return fmt.Sprintf(
		`<?xml version="1.0" encoding="UTF-8"?>
<rss version=%q xmlns:itunes=%q xmlns:podcast=%q>
  <channel>
    <title>Weekly Show</title>
    <item>
      <title>Episode 1</title>
      <enclosure url="https://cdn.example.com/a.mp3" type="audio/mpeg" length="1024"/>
    </item>
  </channel>
</rss>`, version, itunesNS, podcastNS)
}

type RSSValidatorTestSuite struct {
	suite.Suite
	fetcher *stubFetcher
	service *Service
}

func (s *RSSValidatorTestSuite) SetupTest() {
	s.fetcher = &stubFetcher{
		resp: &fetch.Response{
			StatusCode:  200,
			ContentType: "application/rss+xml; charset=utf-8",
			Body:        feedXML(rssVersion, ITunesNamespace, PodcastNamespace),
		},
	}
	s.service = NewService(s.fetcher, &stubChannelAPI{}, testLogger())
}

func TestRSSValidatorTestSuite(t *testing.T) {
	suite.Run(t, new(RSSValidatorTestSuite))
}

func (s *RSSValidatorTestSuite) candidate() *domain.SourceCandidate {
	return &domain.SourceCandidate{
		Type: domain.SourceTypeRSS,
		Name: "weekly show",
		URL:  "https://feeds.example.com/show.rss",
	}
}

func (s *RSSValidatorTestSuite) TestValidate_HappyPath() {
	result, err := s.service.Validate(context.Background(), s.candidate())

	s.NoError(err)
	s.True(result.Valid)
	s.Require().NotNil(result.Data)
	s.Equal(domain.SourceTypeRSS, result.Data.Type)
	s.Equal(json.RawMessage("{}"), result.Data.Instructions)
	s.Equal(200, *result.Data.StatusCode)
}

func (s *RSSValidatorTestSuite) TestValidate_NonEmptyInstructionsRejected() {
	cand := s.candidate()
	cand.Instructions = json.RawMessage(`{"headers":{}}`)

	result, err := s.service.Validate(context.Background(), cand)

	s.NoError(err)
	s.False(result.Valid)
	s.Equal(CodeInvalidFormat, result.Code)
	s.Zero(s.fetcher.calls)
}

func (s *RSSValidatorTestSuite) TestValidate_WrongContentType() {
	s.fetcher.resp.ContentType = "text/xml"

	result, err := s.service.Validate(context.Background(), s.candidate())

	s.NoError(err)
	s.False(result.Valid)
	s.Equal(CodeWrongContentType, result.Code)
}

func (s *RSSValidatorTestSuite) TestValidate_WrongVersion() {
	s.fetcher.resp.Body = feedXML("0.92", ITunesNamespace, PodcastNamespace)

	result, err := s.service.Validate(context.Background(), s.candidate())

	s.NoError(err)
	s.False(result.Valid)
	s.Equal(CodeWrongVersion, result.Code)
	s.Contains(result.Message, "0.92")
}

func (s *RSSValidatorTestSuite) TestValidate_MissingPodcastNamespace() {
	s.fetcher.resp.Body = `<?xml version="1.0"?>
<rss version="2.0" xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd">
  <channel><title>Weekly Show</title></channel>
</rss>`

	result, err := s.service.Validate(context.Background(), s.candidate())

	s.NoError(err)
	s.False(result.Valid)
	s.Equal(CodeMissingNamespace, result.Code)
	s.Contains(result.Message, "xmlns:podcast")
}

func (s *RSSValidatorTestSuite) TestValidate_WrongItunesNamespaceURI() {
	s.fetcher.resp.Body = feedXML(rssVersion, "http://example.com/not-itunes", PodcastNamespace)

	result, err := s.service.Validate(context.Background(), s.candidate())

	s.NoError(err)
	s.False(result.Valid)
	s.Equal(CodeMissingNamespace, result.Code)
	s.Contains(result.Message, "xmlns:itunes")
}

func (s *RSSValidatorTestSuite) TestValidate_NotRSSRoot() {
	s.fetcher.resp.Body = `<?xml version="1.0"?><feed xmlns="http://www.w3.org/2005/Atom"></feed>`

	result, err := s.service.Validate(context.Background(), s.candidate())

	s.NoError(err)
	s.False(result.Valid)
	s.Equal(CodeInvalidFormat, result.Code)
	s.Contains(result.Message, "feed")
}

func (s *RSSValidatorTestSuite) TestValidate_Upstream500() {
	s.fetcher.resp = &fetch.Response{StatusCode: 500, ContentType: "text/plain", Body: "boom"}

	result, err := s.service.Validate(context.Background(), s.candidate())

	s.NoError(err)
	s.False(result.Valid)
	s.Equal(CodeUnreachable, result.Code)
}
