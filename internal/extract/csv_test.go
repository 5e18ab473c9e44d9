package extract

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/suite"

	"content_syncer/internal/domain"
	"content_syncer/internal/validate"
)

func extractLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

type CSVExtractorTestSuite struct {
	suite.Suite
	extractor *CSVExtractor
}

func (s *CSVExtractorTestSuite) SetupTest() {
	s.extractor = NewCSVExtractor(extractLogger())
}

func TestCSVExtractorTestSuite(t *testing.T) {
	suite.Run(t, new(CSVExtractorTestSuite))
}

func (s *CSVExtractorTestSuite) source(instructions string) *domain.SourceDefinition {
	return &domain.SourceDefinition{
		ID:           "src-1",
		Type:         domain.SourceTypeCSV,
		URL:          "https://example.com/export.csv",
		Instructions: json.RawMessage(instructions),
	}
}

func (s *CSVExtractorTestSuite) TestExtract_MappedColumns() {
	src := s.source(`{
		"headers": {
			"contentUrl": "audio_url",
			"name": "title",
			"shortDescription": "summary",
			"thumbnailUrl": "cover"
		},
		"defaultContentItemType": "audio"
	}`)
	body := "audio_url,title,summary,cover\n" +
		"https://cdn.example.com/a.mp3,Episode 1,Intro,https://cdn.example.com/a.jpg\n" +
		"https://cdn.example.com/b.mp3,Episode 2,,\n"

	result, err := s.extractor.Extract(context.Background(), src, body)

	s.NoError(err)
	s.Equal(0, result.Skipped)
	s.Require().Len(result.Items, 2)

	first := result.Items[0]
	s.Equal("https://cdn.example.com/a.mp3", first.ContentURL)
	s.Equal("audio", first.Type)
	s.Equal("Episode 1", *first.Name)
	s.Equal("Intro", *first.ShortDescription)
	s.Equal("https://cdn.example.com/a.jpg", *first.ThumbnailURL)

	second := result.Items[1]
	s.Equal("Episode 2", *second.Name)
	s.Nil(second.ShortDescription)
	s.Nil(second.ThumbnailURL)
}

func (s *CSVExtractorTestSuite) TestExtract_TypeColumnOverridesDefault() {
	src := s.source(`{
		"headers": {"contentUrl": "url", "type": "kind"},
		"defaultContentItemType": "audio"
	}`)
	body := "url,kind\n" +
		"https://cdn.example.com/a.mp4,video\n" +
		"https://cdn.example.com/b.mp3,\n"

	result, err := s.extractor.Extract(context.Background(), src, body)

	s.NoError(err)
	s.Require().Len(result.Items, 2)
	s.Equal("video", result.Items[0].Type)
	s.Equal("audio", result.Items[1].Type)
}

func (s *CSVExtractorTestSuite) TestExtract_RowsWithoutURLSkipped() {
	src := s.source(`{"headers": {"contentUrl": "audio_url", "name": "title"}}`)
	body := "audio_url,title\n" +
		"https://cdn.example.com/a.mp3,Kept\n" +
		",No URL\n" +
		"   ,Whitespace URL\n"

	result, err := s.extractor.Extract(context.Background(), src, body)

	s.NoError(err)
	s.Len(result.Items, 1)
	s.Equal(2, result.Skipped)
}

func (s *CSVExtractorTestSuite) TestExtract_ShortRowsTolerated() {
	src := s.source(`{"headers": {"contentUrl": "audio_url", "name": "title"}}`)
	body := "audio_url,title\n" +
		"https://cdn.example.com/a.mp3\n"

	result, err := s.extractor.Extract(context.Background(), src, body)

	s.NoError(err)
	s.Require().Len(result.Items, 1)
	s.Nil(result.Items[0].Name)
}

func (s *CSVExtractorTestSuite) TestExtract_HeaderDriftFailsRun() {
	src := s.source(`{"headers": {"contentUrl": "audio_url"}}`)
	body := "renamed_column,title\nvalue,Episode\n"

	_, err := s.extractor.Extract(context.Background(), src, body)

	s.Require().Error(err)
	var verr *validate.Error
	s.Require().ErrorAs(err, &verr)
	s.Equal(validate.CodeMissingColumn, verr.Code)
}
