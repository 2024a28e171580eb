// MusicBrainz web service implementation of [MetadataService]
//
// API reference: https://musicbrainz.org/doc/MusicBrainz_API
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/desertthunder/playtime/internal/shared"
)

const defaultMusicBrainzURL = "https://musicbrainz.org/ws/2"

// MusicBrainzRecording is the part of a recording lookup playtime cares about.
type MusicBrainzRecording struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Length *int64 `json:"length"` // Milliseconds; null when MusicBrainz does not know it
}

// MusicBrainzService implements [MetadataService].
type MusicBrainzService struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewMusicBrainzService creates a metadata client. userAgent should identify the
// application and a contact address.
func NewMusicBrainzService(baseURL, userAgent string, client *http.Client) *MusicBrainzService {
	if baseURL == "" {
		baseURL = defaultMusicBrainzURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &MusicBrainzService{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: client,
	}
}

// LookupRecording performs GET /recording/{mbid}?fmt=json and returns the raw response.
//
// Any status code is returned as-is; only transport failures produce an error.
func (s *MusicBrainzService) LookupRecording(ctx context.Context, mbid string) (*MetadataResponse, error) {
	fullURL := fmt.Sprintf("%s/recording/%s?fmt=json", s.baseURL, url.PathEscape(mbid))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", shared.ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", shared.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", shared.ErrTransport, err)
	}

	return &MetadataResponse{StatusCode: resp.StatusCode, Body: body}, nil
}

// ParseRecording decodes a raw recording lookup body.
func ParseRecording(body []byte) (*MusicBrainzRecording, error) {
	var rec MusicBrainzRecording
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("%w: musicbrainz recording: %v", shared.ErrParse, err)
	}
	return &rec, nil
}

// ParseRecordingLength extracts the recording length in milliseconds from a raw body.
func ParseRecordingLength(body []byte) (int64, error) {
	rec, err := ParseRecording(body)
	if err != nil {
		return 0, err
	}
	if rec.Length == nil {
		return 0, fmt.Errorf("%w: musicbrainz recording %s has no length", shared.ErrParse, rec.ID)
	}
	if *rec.Length < 0 {
		return 0, fmt.Errorf("%w: musicbrainz recording %s has negative length", shared.ErrParse, rec.ID)
	}
	return *rec.Length, nil
}
