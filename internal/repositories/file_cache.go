package repositories

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/desertthunder/playtime/internal/shared"
)

// FileCache keeps one {mbid}.json file per recording in dir, the layout of the
// legacy musicbrainz_cache directory.
type FileCache struct {
	dir string
}

// NewFileCache creates a FileCache rooted at dir. The directory is created on first write.
func NewFileCache(dir string) *FileCache {
	return &FileCache{dir: dir}
}

func (c *FileCache) path(mbid string) (string, error) {
	if mbid == "" || strings.ContainsAny(mbid, `/\`) || mbid == "." || mbid == ".." {
		return "", fmt.Errorf("%w: unusable cache key %q", shared.ErrInvalidArgument, mbid)
	}
	return filepath.Join(c.dir, mbid+".json"), nil
}

// Get returns the cached body for mbid. ok is false on a miss.
func (c *FileCache) Get(mbid string) ([]byte, bool, error) {
	p, err := c.path(mbid)
	if err != nil {
		return nil, false, err
	}

	body, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache file: %w", err)
	}
	return body, true, nil
}

// Put writes body to {mbid}.json unless the file exists.
//
// The body goes to a temp file that is renamed into place, so readers never see a partial entry.
func (c *FileCache) Put(mbid string, body []byte) error {
	p, err := c.path(mbid)
	if err != nil {
		return err
	}

	if _, err := os.Stat(p); err == nil {
		return nil
	}

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, mbid+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to flush cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close cache file: %w", err)
	}

	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("failed to move cache file into place: %w", err)
	}
	return nil
}

// List returns every cached entry ordered by modification time. A missing directory is an empty cache.
func (c *FileCache) List() ([]CacheEntry, error) {
	files, err := os.ReadDir(c.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	var entries []CacheEntry
	for _, f := range files {
		name := f.Name()
		if f.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}

		info, err := f.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", name, err)
		}
		body, err := os.ReadFile(filepath.Join(c.dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}

		entries = append(entries, CacheEntry{
			RecordingMBID: strings.TrimSuffix(name, ".json"),
			Body:          body,
			FetchedAt:     info.ModTime(),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].FetchedAt.Equal(entries[j].FetchedAt) {
			return entries[i].RecordingMBID < entries[j].RecordingMBID
		}
		return entries[i].FetchedAt.Before(entries[j].FetchedAt)
	})
	return entries, nil
}
