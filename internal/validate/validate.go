// Package validate gates admission of source definitions. Each source type
// has a structural check on the candidate payload and a live reachability
// check against the declared URL. Validators never write to storage.
package validate

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"content_syncer/internal/domain"
	"content_syncer/internal/fetch"
	"content_syncer/internal/platform/youtube"
)

// Validation failure codes. Each names the exact contract clause that failed
// so callers can surface it verbatim.
const (
	CodeInvalidFormat     = "INVALID_FORMAT"
	CodeInvalidURL        = "INVALID_URL"
	CodeUnreachable       = "UNREACHABLE"
	CodeWrongContentType  = "WRONG_CONTENT_TYPE"
	CodeMissingColumn     = "MISSING_COLUMN"
	CodeWrongVersion      = "WRONG_VERSION"
	CodeMissingNamespace  = "MISSING_NAMESPACE"
	CodeInvalidChannelURL = "INVALID_CHANNEL_URL"
	CodeInvalidHandle     = "INVALID_HANDLE"
	CodeNoUploads         = "NO_UPLOADS"
)

// Error is a definition error: caused by the candidate or the feed it points
// at, recoverable by the caller. Message always names the offending value.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

func errf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Fetcher performs the live reachability fetch.
type Fetcher interface {
	Get(ctx context.Context, url string) (*fetch.Response, error)
}

// ChannelAPI is the slice of the video-platform discovery API the youtube
// validator needs.
type ChannelAPI interface {
	UploadsPlaylistID(ctx context.Context, handle string) (string, error)
	PlaylistPage(ctx context.Context, playlistID, pageToken string) (*youtube.PlaylistPage, error)
}

// Service validates source candidates prior to persistence.
type Service struct {
	fetcher  Fetcher
	channels ChannelAPI
	logger   *slog.Logger
}

func NewService(fetcher Fetcher, channels ChannelAPI, logger *slog.Logger) *Service {
	return &Service{
		fetcher:  fetcher,
		channels: channels,
		logger:   logger.With("component", "validate"),
	}
}

// Validate checks a candidate against its type's contract. Definition errors
// come back inside the SourceValidation; only infrastructure failures (none
// today, fetch errors count as UNREACHABLE) return a Go error.
func (s *Service) Validate(ctx context.Context, cand *domain.SourceCandidate) (*domain.SourceValidation, error) {
	def, err := s.validate(ctx, cand)
	if err != nil {
		if verr, ok := err.(*Error); ok {
			s.logger.Info("candidate rejected",
				"type", cand.Type,
				"url", cand.URL,
				"code", verr.Code,
				"message", verr.Message,
			)
			return &domain.SourceValidation{Valid: false, Code: verr.Code, Message: verr.Message}, nil
		}
		return nil, err
	}
	return &domain.SourceValidation{Valid: true, Data: def}, nil
}

func (s *Service) validate(ctx context.Context, cand *domain.SourceCandidate) (*domain.SourceDefinition, error) {
	if cand.Name == "" {
		return nil, errf(CodeInvalidFormat, "name must not be empty")
	}
	if err := checkAbsoluteURL(cand.URL); err != nil {
		return nil, err
	}

	switch cand.Type {
	case domain.SourceTypeCSV:
		return s.validateCSV(ctx, cand)
	case domain.SourceTypeRSS:
		return s.validateRSS(ctx, cand)
	case domain.SourceTypeYouTubeChannel:
		return s.validateYouTube(ctx, cand)
	default:
		return nil, errf(CodeInvalidFormat, "unsupported source type %q", cand.Type)
	}
}

func checkAbsoluteURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return errf(CodeInvalidURL, "%q is not an absolute URL", raw)
	}
	return nil
}
