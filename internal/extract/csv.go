package extract

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"strings"

	"content_syncer/internal/domain"
	"content_syncer/internal/validate"
)

// CSVExtractor maps delimited rows to sourced items using the column mapping
// declared in the source's instructions.
type CSVExtractor struct {
	logger *slog.Logger
}

func NewCSVExtractor(logger *slog.Logger) *CSVExtractor {
	return &CSVExtractor{logger: logger.With("adapter", "csv")}
}

func (e *CSVExtractor) Type() domain.SourceType {
	return domain.SourceTypeCSV
}

func (e *CSVExtractor) Extract(ctx context.Context, src *domain.SourceDefinition, body string) (*domain.Extraction, error) {
	ins, err := src.CSVInstructions()
	if err != nil {
		return nil, err
	}

	// The feed may have changed shape since admission.
	if err := validate.CheckCSVHeader(body, ins.Headers.ContentURL); err != nil {
		return nil, err
	}

	reader := csv.NewReader(strings.NewReader(body))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.TrimSpace(col)] = i
	}

	cell := func(row []string, column string) string {
		if column == "" {
			return ""
		}
		i, ok := index[column]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	result := &domain.Extraction{}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			e.logger.Warn("skipping malformed csv row", "source_id", src.ID, "error", err)
			result.Skipped++
			continue
		}

		contentURL := cell(row, ins.Headers.ContentURL)
		if contentURL == "" {
			result.Skipped++
			continue
		}

		itemType := cell(row, ins.Headers.Type)
		if itemType == "" {
			itemType = ins.DefaultContentItemType
		}

		result.Items = append(result.Items, domain.SourcedItem{
			ContentURL:       contentURL,
			Type:             itemType,
			Name:             optional(cell(row, ins.Headers.Name)),
			ShortDescription: optional(cell(row, ins.Headers.ShortDescription)),
			ThumbnailURL:     optional(cell(row, ins.Headers.ThumbnailURL)),
		})
	}

	return result, nil
}
