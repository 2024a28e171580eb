// Package models defines the data carried through the playtime report pipeline.
//
// The package contains three groups of types:
//
// 1. Listening history as returned by ListenBrainz
//   - [Recording] : one track in a user's statistics with its aggregate play count
//   - [RecordingsPage] : one page of the statistics endpoint
//
// 2. User-curated override rules, loaded once per run and never mutated
//   - [MatchRule] : predicate over (artist, release, track); absent fields match anything
//   - [SkipRule] : excludes matching recordings from enrichment
//   - [RemapRule] : supplies a replacement MBID for recordings that lack one
//   - [Rules] : both tables in file order
//
// 3. Pipeline results
//   - [EnrichedRecording] : a recording with its resolved MBID and duration
//   - [RankedRecording] : an enriched recording with its total listening time and rank
//   - [Report] : the ranked list plus the recordings that were skipped or unresolvable
package models
