// Package extract turns raw fetched payloads into normalized sourced items,
// one adapter per source type. Adapters are pure with respect to storage and
// best-effort with respect to malformed rows: they skip and count rather than
// abort.
package extract

import (
	"context"

	"content_syncer/internal/domain"
)

// Extractor is implemented by one adapter per source type. A returned
// *validate.Error means the feed no longer satisfies its format contract;
// any other behavior is log-and-skip.
type Extractor interface {
	Type() domain.SourceType
	Extract(ctx context.Context, src *domain.SourceDefinition, body string) (*domain.Extraction, error)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
