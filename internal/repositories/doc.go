// Package repositories implements persistence for playtime.
//
// Key Implementations:
//   - [RecordingCacheRepository] : SQLite store of raw MusicBrainz recording bodies
//   - [FileCache] : directory of {mbid}.json files with the same contract
//   - [ReportRunRepository] : history of completed report runs
//
// Both caches are append-only. Put for an id that is already stored is a no-op, so a
// body, once written, is what every later run reads. Neither cache ever deletes.
package repositories
