// package services defines the HTTP clients for the two external services
//
// ListenBrainz (listening statistics), MusicBrainz (recording metadata)
package services

import (
	"context"

	"github.com/desertthunder/playtime/internal/models"
)

// HistoryService pages through a user's top recordings.
type HistoryService interface {
	// GetTopRecordings returns up to count recordings starting at offset.
	// An empty page means the statistics are exhausted.
	GetTopRecordings(ctx context.Context, offset, count int) (*models.RecordingsPage, error)
}

// MetadataService issues single recording lookups against the metadata service.
//
// It performs exactly one request per call and never retries; pacing and retry
// decisions belong to the caller.
type MetadataService interface {
	LookupRecording(ctx context.Context, mbid string) (*MetadataResponse, error)
}

// MetadataResponse is the raw outcome of one metadata lookup.
type MetadataResponse struct {
	StatusCode int
	Body       []byte
}
