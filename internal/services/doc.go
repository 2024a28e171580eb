// Package services implements the clients for the services playtime reads from.
//
// # ListenBrainz
//
// [ListenBrainzService] implements [HistoryService] on top of resty. Each page request
// waits on a [rate.Limiter] first so large reports do not hammer the statistics API.
// Non-200 responses and transport failures wrap [shared.ErrTransport]; undecodable
// payloads wrap [shared.ErrParse]. A 204 means the user's statistics have not been
// calculated yet and is reported as an empty page.
//
// # MusicBrainz
//
// [MusicBrainzService] implements [MetadataService]. It returns the status code and raw
// body of a single GET /recording/{mbid}?fmt=json so the caller can cache the body
// verbatim and decide whether a 503 should be retried.
// [ParseRecordingLength] extracts the length from a body, wrapping [shared.ErrParse].
//
// Both clients send a descriptive User-Agent, which MusicBrainz requires.
package services
