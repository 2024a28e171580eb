// package repositories provides persistence layer implementations for the report pipeline.
package repositories

import (
	"time"
)

// CacheEntry describes one cached recording body.
type CacheEntry struct {
	RecordingMBID string
	Body          []byte
	FetchedAt     time.Time
}

// CacheStore is implemented by every cache backend.
type CacheStore interface {
	Get(mbid string) ([]byte, bool, error)
	Put(mbid string, body []byte) error
	List() ([]CacheEntry, error)
}
