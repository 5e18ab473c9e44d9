package validate

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"

	"content_syncer/internal/domain"
)

const csvContentType = "text/csv"

func (s *Service) validateCSV(ctx context.Context, cand *domain.SourceCandidate) (*domain.SourceDefinition, error) {
	ins, err := decodeCSVInstructions(cand.Instructions)
	if err != nil {
		return nil, err
	}

	resp, ferr := s.fetcher.Get(ctx, cand.URL)
	if ferr != nil {
		return nil, errf(CodeUnreachable, "fetch %s: %v", cand.URL, ferr)
	}
	if !resp.OK() {
		return nil, errf(CodeUnreachable, "%s returned status %d", cand.URL, resp.StatusCode)
	}
	if !strings.Contains(resp.ContentType, csvContentType) {
		return nil, errf(CodeWrongContentType, "expected content type %q, got %q", csvContentType, resp.ContentType)
	}

	if err := CheckCSVHeader(resp.Body, ins.Headers.ContentURL); err != nil {
		return nil, err
	}

	// Re-marshal so stored instructions are canonical.
	normalized, merr := json.Marshal(ins)
	if merr != nil {
		return nil, merr
	}

	return &domain.SourceDefinition{
		Type:         domain.SourceTypeCSV,
		Name:         cand.Name,
		URL:          cand.URL,
		AutoSync:     cand.AutoSync,
		Instructions: normalized,
		StatusCode:   &resp.StatusCode,
		Response:     &resp.Body,
	}, nil
}

func decodeCSVInstructions(raw json.RawMessage) (*domain.CSVInstructions, error) {
	if len(raw) == 0 {
		return nil, errf(CodeInvalidFormat, "csv instructions are required")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var ins domain.CSVInstructions
	if err := dec.Decode(&ins); err != nil {
		return nil, errf(CodeInvalidFormat, "malformed csv instructions: %v", err)
	}
	if ins.Headers.ContentURL == "" {
		return nil, errf(CodeInvalidFormat, "instructions.headers.contentUrl is required")
	}
	return &ins, nil
}

// CheckCSVHeader verifies that the column mapped to the content URL exists in
// the document's header row. Also re-run on every sync, since feeds can
// change shape after admission.
func CheckCSVHeader(body, contentURLColumn string) error {
	reader := csv.NewReader(strings.NewReader(body))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return errf(CodeInvalidFormat, "read csv header: %v", err)
	}
	for _, col := range header {
		if strings.TrimSpace(col) == contentURLColumn {
			return nil
		}
	}
	return errf(CodeMissingColumn, "column %q not found in csv header %v", contentURLColumn, header)
}
