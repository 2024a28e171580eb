// package models defines the data model for the playtime report
package models

import "time"

// Recording is one entry of a user's top recordings.
//
// RecordingMBID is empty when ListenBrainz could not link the listens to MusicBrainz.
type Recording struct {
	ArtistName    string `json:"artist_name"`
	ReleaseName   string `json:"release_name"`
	TrackName     string `json:"track_name"`
	RecordingMBID string `json:"recording_mbid,omitempty"`
	ListenCount   int64  `json:"listen_count"`
}

// HasMBID reports whether the recording carries its own MusicBrainz id.
func (r Recording) HasMBID() bool {
	return r.RecordingMBID != ""
}

// RecordingsPage is the payload of one statistics request.
type RecordingsPage struct {
	Recordings          []Recording `json:"recordings"`
	TotalRecordingCount int         `json:"total_recording_count"`
}

// EnrichedRecording is a recording whose duration was resolved.
//
// MBID is the canonical id used as the cache key; it may differ from
// Recording.RecordingMBID when a remap rule supplied it.
type EnrichedRecording struct {
	Recording
	MBID       string `json:"mbid"`
	DurationMS int64  `json:"duration_ms"`
}

// RankedRecording is an enriched recording placed in the report.
type RankedRecording struct {
	EnrichedRecording
	Rank        int   `json:"rank"`
	ListeningMS int64 `json:"listening_ms"`
}

// Report is the result of one pipeline run.
type Report struct {
	RunID            string            `json:"run_id"`
	User             string            `json:"user"`
	Range            string            `json:"range"`
	RequestedCount   int               `json:"requested_count"`
	GeneratedAt      time.Time         `json:"generated_at"`
	Entries          []RankedRecording `json:"entries"`
	Skipped          []Recording       `json:"skipped,omitempty"`
	Unresolvable     []Recording       `json:"unresolvable,omitempty"`
	TotalListeningMS int64             `json:"total_listening_ms"`
}
