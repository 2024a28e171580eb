// Package tasks implements the report pipeline: fetch, resolve, enrich, rank.
//
// # Stages
//
//  1. [FetchTopRecordings] : pages through ListenBrainz until enough recordings are collected
//  2. [ResolveIdentity] : picks the MBID for a recording, applying skip and remap rules
//  3. [DurationResolver.Resolve] : looks the MBID's length up, cache first, then MusicBrainz
//  4. [Rank] : orders enriched recordings by listen_count * duration_ms
//
// [ReportEngine.Run] strings the stages together strictly sequentially. MusicBrainz allows
// about one request per second, so there is nothing to gain from concurrent lookups.
//
// # Rate limit floor
//
// Every MusicBrainz request, successful or not, is followed by a pause that pads its
// elapsed time to [RetryPolicy.MinInterval]. A 503 response is discarded and the same
// id is requested again with no cap. Any other failure aborts the run.
//
// # Progress Reporting
//
// Run accepts an optional channel of [ProgressUpdate]. Updates are sent with select and
// default so a slow or absent reader never blocks the pipeline.
package tasks
