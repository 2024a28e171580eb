// ListenBrainz statistics API implementation of [HistoryService]
//
// API reference: https://listenbrainz.readthedocs.io/en/latest/users/api/statistics.html
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/desertthunder/playtime/internal/models"
	"github.com/desertthunder/playtime/internal/shared"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const defaultListenBrainzURL = "https://api.listenbrainz.org/1"

type listenBrainzResponse struct {
	Payload *models.RecordingsPage `json:"payload"`
}

// ListenBrainzService implements [HistoryService] for one user and statistics range.
type ListenBrainzService struct {
	client  *resty.Client
	limiter *rate.Limiter
	user    string
	rng     string
}

// ListenBrainzOpts configures a [ListenBrainzService].
type ListenBrainzOpts struct {
	BaseURL           string
	User              string
	Range             string
	UserAgent         string
	RequestsPerSecond float64      // Page request pacing; <= 0 disables it
	HTTPClient        *http.Client // Defaults to http.DefaultClient
}

// NewListenBrainzService creates a statistics client.
func NewListenBrainzService(opts ListenBrainzOpts) *ListenBrainzService {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultListenBrainzURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	client := resty.NewWithClient(opts.HTTPClient).
		SetBaseURL(opts.BaseURL).
		SetHeader("Accept", "application/json")
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}

	return &ListenBrainzService{
		client:  client,
		limiter: limiter,
		user:    opts.User,
		rng:     opts.Range,
	}
}

// GetTopRecordings fetches one page of the user's top recordings.
func (s *ListenBrainzService) GetTopRecordings(ctx context.Context, offset, count int) (*models.RecordingsPage, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %v", shared.ErrTransport, err)
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("user", s.user).
		SetQueryParams(map[string]string{
			"count":  strconv.Itoa(count),
			"offset": strconv.Itoa(offset),
			"range":  s.rng,
		}).
		Get("/stats/user/{user}/recordings")
	if err != nil {
		return nil, fmt.Errorf("%w: listenbrainz request failed: %v", shared.ErrTransport, err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusNoContent:
		return &models.RecordingsPage{}, nil
	default:
		return nil, fmt.Errorf("%w: listenbrainz returned status %d", shared.ErrTransport, resp.StatusCode())
	}

	var body listenBrainzResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("%w: listenbrainz response: %v", shared.ErrParse, err)
	}
	if body.Payload == nil {
		return nil, fmt.Errorf("%w: listenbrainz response has no payload", shared.ErrParse)
	}

	for _, rec := range body.Payload.Recordings {
		if rec.ListenCount < 0 {
			return nil, fmt.Errorf("%w: negative listen_count for %q", shared.ErrParse, rec.TrackName)
		}
	}

	return body.Payload, nil
}
