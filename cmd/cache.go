package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/playtime/internal/repositories"
	"github.com/desertthunder/playtime/internal/services"
	"github.com/desertthunder/playtime/internal/shared"
	"github.com/urfave/cli/v3"
)

// cachedRecording is one row of `cache list`.
type cachedRecording struct {
	RecordingMBID string    `json:"recording_mbid"`
	Title         string    `json:"title,omitempty"`
	LengthMS      *int64    `json:"length_ms"`
	FetchedAt     time.Time `json:"fetched_at"`
}

func summarize(entry repositories.CacheEntry) cachedRecording {
	row := cachedRecording{RecordingMBID: entry.RecordingMBID, FetchedAt: entry.FetchedAt}
	if length, err := services.ParseRecordingLength(entry.Body); err == nil {
		row.LengthMS = &length
	}
	if rec, err := services.ParseRecording(entry.Body); err == nil {
		row.Title = rec.Title
	}
	return row
}

// CacheList lists every cached recording with its length.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepare(cmd); err != nil {
		return err
	}

	store, db, err := r.openCache()
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	entries, err := store.List()
	if err != nil {
		return err
	}

	rows := make([]cachedRecording, len(entries))
	for i, e := range entries {
		rows[i] = summarize(e)
	}

	if cmd.Bool("json") {
		return r.writeJSON(rows, true)
	}

	r.writePlain("%d cached recordings (%s)\n\n", len(rows), r.config.Cache.Backend)
	for _, row := range rows {
		length := "unknown"
		if row.LengthMS != nil {
			length = shared.FormatMinutes(*row.LengthMS) + " min"
		}
		r.writePlain("%s  %-12s %s\n", row.RecordingMBID, length, row.Title)
	}
	return nil
}

// CacheShow prints the raw cached body for one recording.
func (r *Runner) CacheShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepare(cmd); err != nil {
		return err
	}

	mbid := cmd.StringArg("id")
	if mbid == "" {
		return fmt.Errorf("%w: recording id is required", shared.ErrMissingArgument)
	}

	store, db, err := r.openCache()
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	body, ok, err := store.Get(mbid)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrCacheMiss, mbid)
	}
	return r.writePlain("%s\n", body)
}

// CacheImport copies a legacy directory cache into the configured backend.
//
// Entries already present are left alone. Files that do not hold a usable length are skipped.
func (r *Runner) CacheImport(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepare(cmd); err != nil {
		return err
	}

	source := repositories.NewFileCache(cmd.String("dir"))
	entries, err := source.List()
	if err != nil {
		return err
	}

	store, db, err := r.openCache()
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	var imported, present, invalid int
	for _, e := range entries {
		if _, err := services.ParseRecordingLength(e.Body); err != nil {
			r.logger.Warn("skipping unusable cache file", "recording_mbid", e.RecordingMBID, "error", err)
			invalid++
			continue
		}

		_, ok, err := store.Get(e.RecordingMBID)
		if err != nil {
			return err
		}
		if ok {
			present++
			continue
		}

		if err := store.Put(e.RecordingMBID, e.Body); err != nil {
			return err
		}
		imported++
	}

	r.logger.Info("cache import complete", "imported", imported, "already_cached", present, "invalid", invalid)
	return r.writePlain("Imported %d, already cached %d, skipped %d\n", imported, present, invalid)
}
