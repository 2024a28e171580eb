package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/playtime/internal/shared"
)

// RecordingCacheRepository stores raw MusicBrainz bodies in the recording_cache table.
type RecordingCacheRepository struct {
	db *sql.DB
}

// NewRecordingCacheRepository creates a new RecordingCacheRepository with the given database connection
func NewRecordingCacheRepository(db *sql.DB) *RecordingCacheRepository {
	return &RecordingCacheRepository{db: db}
}

// Get returns the cached body for mbid. ok is false on a miss.
func (r *RecordingCacheRepository) Get(mbid string) ([]byte, bool, error) {
	var body []byte
	err := r.db.QueryRow("SELECT body FROM recording_cache WHERE recording_mbid = ?", mbid).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry %s: %w", mbid, err)
	}
	return body, true, nil
}

// Put stores body under mbid unless an entry already exists.
func (r *RecordingCacheRepository) Put(mbid string, body []byte) error {
	if mbid == "" {
		return fmt.Errorf("%w: empty recording mbid", shared.ErrInvalidArgument)
	}

	_, err := r.db.Exec(
		"INSERT OR IGNORE INTO recording_cache (recording_mbid, body, fetched_at) VALUES (?, ?, ?)",
		mbid, body, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to write cache entry %s: %w", mbid, err)
	}
	return nil
}

// List returns every cached entry ordered by fetch time.
func (r *RecordingCacheRepository) List() ([]CacheEntry, error) {
	rows, err := r.db.Query("SELECT recording_mbid, body, fetched_at FROM recording_cache ORDER BY fetched_at, recording_mbid")
	if err != nil {
		return nil, fmt.Errorf("failed to list cache entries: %w", err)
	}
	defer rows.Close()

	var entries []CacheEntry
	for rows.Next() {
		var e CacheEntry
		if err := rows.Scan(&e.RecordingMBID, &e.Body, &e.FetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cache entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cache entries: %w", err)
	}
	return entries, nil
}

// Count returns the number of cached recordings.
func (r *RecordingCacheRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM recording_cache").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cache entries: %w", err)
	}
	return n, nil
}
