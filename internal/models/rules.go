package models

// MatchRule selects recordings by exact, case-sensitive field equality.
// A nil field matches any value; a rule with no fields matches every recording.
type MatchRule struct {
	ArtistName  *string `json:"artist_name,omitempty"`
	ReleaseName *string `json:"release_name,omitempty"`
	TrackName   *string `json:"track_name,omitempty"`
}

// Matches reports whether every present field equals the recording's field.
func (m MatchRule) Matches(r Recording) bool {
	if m.ArtistName != nil && *m.ArtistName != r.ArtistName {
		return false
	}
	if m.ReleaseName != nil && *m.ReleaseName != r.ReleaseName {
		return false
	}
	if m.TrackName != nil && *m.TrackName != r.TrackName {
		return false
	}
	return true
}

// SkipRule excludes matching recordings from the report.
type SkipRule struct {
	MatchRule
}

// RemapRule supplies a canonical id for recordings without one.
// A nil RecordingMBID marks the recording as known-unresolvable.
type RemapRule struct {
	MatchWith     MatchRule `json:"match_with"`
	RecordingMBID *string   `json:"recording_mbid"`
}

// Rules holds both override tables in file order.
type Rules struct {
	Skip  []SkipRule
	Remap []RemapRule
}

// StringPtr returns a pointer to s. Handy for building rules in code.
func StringPtr(s string) *string {
	return &s
}
