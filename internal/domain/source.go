package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrSourceNotFound is returned when a source lookup scoped to a publisher
// matches no row.
var ErrSourceNotFound = errors.New("source not found")

// SourceType discriminates the closed set of supported feed formats. The shape
// of SourceDefinition.Instructions depends on it.
type SourceType string

const (
	SourceTypeCSV            SourceType = "csv"
	SourceTypeRSS            SourceType = "rss2-itunes"
	SourceTypeYouTubeChannel SourceType = "youtube-channel"
)

// Valid reports whether t is one of the supported source types.
func (t SourceType) Valid() bool {
	switch t {
	case SourceTypeCSV, SourceTypeRSS, SourceTypeYouTubeChannel:
		return true
	}
	return false
}

// SourceDefinition is the stored configuration of one external content feed,
// including the outcome of its last sync run.
type SourceDefinition struct {
	ID           string          `db:"id"`
	PublisherID  string          `db:"publisher_id"`
	Type         SourceType      `db:"type"`
	Name         string          `db:"name"`
	URL          string          `db:"url"`
	AutoSync     bool            `db:"auto_sync"`
	Instructions json.RawMessage `db:"instructions"`

	// Last run outcome. StatusCode and Response hold the raw HTTP result of
	// the most recent fetch, overwritten on every run. LastSyncFinishedAt is
	// null strictly while a run is in flight.
	StatusCode         *int       `db:"status_code"`
	Response           *string    `db:"response"`
	LastSyncStartedAt  *time.Time `db:"last_sync_started_at"`
	LastSyncFinishedAt *time.Time `db:"last_sync_finished_at"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Syncing reports whether a run is currently in flight for this source.
func (s *SourceDefinition) Syncing() bool {
	return s.LastSyncStartedAt != nil && s.LastSyncFinishedAt == nil
}

// CSVHeaderMap names the upstream CSV columns that feed each content item
// field. ContentURL is the only mandatory mapping.
type CSVHeaderMap struct {
	ContentURL       string `json:"contentUrl"`
	Name             string `json:"name,omitempty"`
	Type             string `json:"type,omitempty"`
	ShortDescription string `json:"shortDescription,omitempty"`
	ThumbnailURL     string `json:"thumbnailUrl,omitempty"`
}

// CSVInstructions is the type-specific mapping configuration for csv sources.
// DefaultContentItemType fills the item type when no per-row type column is
// mapped.
type CSVInstructions struct {
	Headers                CSVHeaderMap `json:"headers"`
	DefaultContentItemType string       `json:"defaultContentItemType,omitempty"`
}

// CSVInstructions decodes the instructions payload of a csv source.
func (s *SourceDefinition) CSVInstructions() (*CSVInstructions, error) {
	if s.Type != SourceTypeCSV {
		return nil, fmt.Errorf("source type %q has no csv instructions", s.Type)
	}
	var ins CSVInstructions
	if err := json.Unmarshal(s.Instructions, &ins); err != nil {
		return nil, fmt.Errorf("decode csv instructions: %w", err)
	}
	return &ins, nil
}

// SourceCandidate is a proposed source definition, not yet admitted to
// storage. Instructions is kept raw so each validator can apply its own
// schema.
type SourceCandidate struct {
	Type         SourceType      `json:"type"`
	Name         string          `json:"name"`
	URL          string          `json:"url"`
	AutoSync     bool            `json:"autoSync"`
	Instructions json.RawMessage `json:"instructions"`
}

// SourceValidation is the outcome of validating a candidate. Data is nil
// unless Valid; on success it carries the normalized definition with the
// already-fetched response captured, so the first sync run is cached.
type SourceValidation struct {
	Valid   bool
	Code    string
	Message string
	Data    *SourceDefinition
}
