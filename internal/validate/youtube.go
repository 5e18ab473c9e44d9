package validate

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"content_syncer/internal/domain"
)

const channelURLPrefix = "https://www.youtube.com/@"

var handleChars = regexp.MustCompile(`^[A-Za-z0-9._-]{3,30}$`)

func (s *Service) validateYouTube(ctx context.Context, cand *domain.SourceCandidate) (*domain.SourceDefinition, error) {
	if err := checkEmptyInstructions(cand.Instructions); err != nil {
		return nil, err
	}

	handle, err := ChannelHandle(cand.URL)
	if err != nil {
		return nil, err
	}

	playlistID, aerr := s.channels.UploadsPlaylistID(ctx, handle)
	if aerr != nil {
		return nil, errf(CodeUnreachable, "resolve channel @%s: %v", handle, aerr)
	}
	if playlistID == "" {
		return nil, errf(CodeNoUploads, "channel @%s has no uploads playlist", handle)
	}

	page, aerr := s.channels.PlaylistPage(ctx, playlistID, "")
	if aerr != nil {
		return nil, errf(CodeUnreachable, "list uploads of @%s: %v", handle, aerr)
	}
	if len(page.Entries) == 0 {
		return nil, errf(CodeNoUploads, "channel @%s has no uploads", handle)
	}

	status := 200
	response := fmt.Sprintf(`{"uploadsPlaylistId":%q,"firstPageItems":%d}`, playlistID, len(page.Entries))

	return &domain.SourceDefinition{
		Type:         domain.SourceTypeYouTubeChannel,
		Name:         cand.Name,
		URL:          cand.URL,
		AutoSync:     cand.AutoSync,
		Instructions: json.RawMessage("{}"),
		StatusCode:   &status,
		Response:     &response,
	}, nil
}

// ChannelHandle extracts and validates the handle from a canonical channel
// URL of the form https://www.youtube.com/@<handle>.
func ChannelHandle(rawURL string) (string, error) {
	if !strings.HasPrefix(rawURL, channelURLPrefix) {
		return "", errf(CodeInvalidChannelURL, "%q is not a channel handle URL (want %s<handle>)", rawURL, channelURLPrefix)
	}
	handle := strings.TrimPrefix(rawURL, channelURLPrefix)
	if !ValidHandle(handle) {
		return "", errf(CodeInvalidHandle, "invalid channel handle %q", handle)
	}
	return handle, nil
}

// ValidHandle checks the handle grammar: 3-30 characters of letters, digits,
// '.', '_' or '-', with no doubled separators and no trailing separator.
func ValidHandle(handle string) bool {
	if !handleChars.MatchString(handle) {
		return false
	}
	if isSeparator(handle[len(handle)-1]) {
		return false
	}
	for i := 1; i < len(handle); i++ {
		if isSeparator(handle[i-1]) && isSeparator(handle[i]) {
			return false
		}
	}
	return true
}

func isSeparator(c byte) bool {
	return c == '.' || c == '_' || c == '-'
}
