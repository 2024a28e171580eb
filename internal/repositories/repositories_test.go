package repositories

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/desertthunder/playtime/internal/models"
	"github.com/desertthunder/playtime/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	shared.ConfigureDatabase(db, 1, 1)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

// cacheContract runs the behaviour every CacheStore must share.
func cacheContract(t *testing.T, newStore func(t *testing.T) CacheStore) {
	t.Run("Miss", func(t *testing.T) {
		store := newStore(t)

		body, ok, err := store.Get("11111111-1111-1111-1111-111111111111")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok || body != nil {
			t.Errorf("expected miss, got ok=%v body=%s", ok, body)
		}
	})

	t.Run("Put Then Get", func(t *testing.T) {
		store := newStore(t)
		body := []byte(`{"id":"a","length":200000}`)

		if err := store.Put("a", body); err != nil {
			t.Fatalf("failed to put: %v", err)
		}

		got, ok, err := store.Get("a")
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if !ok {
			t.Fatal("expected hit")
		}
		if string(got) != string(body) {
			t.Errorf("expected %s, got %s", body, got)
		}
	})

	t.Run("Entries Are Immutable", func(t *testing.T) {
		store := newStore(t)

		if err := store.Put("a", []byte(`{"length":1}`)); err != nil {
			t.Fatalf("first put failed: %v", err)
		}
		if err := store.Put("a", []byte(`{"length":2}`)); err != nil {
			t.Fatalf("second put failed: %v", err)
		}

		got, _, _ := store.Get("a")
		if string(got) != `{"length":1}` {
			t.Errorf("expected first body to win, got %s", got)
		}
	})

	t.Run("List", func(t *testing.T) {
		store := newStore(t)

		for _, id := range []string{"a", "b", "c"} {
			if err := store.Put(id, []byte(`{}`)); err != nil {
				t.Fatalf("put %s failed: %v", id, err)
			}
		}

		entries, err := store.List()
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(entries) != 3 {
			t.Fatalf("expected 3 entries, got %d", len(entries))
		}

		seen := map[string]bool{}
		for _, e := range entries {
			seen[e.RecordingMBID] = true
		}
		for _, id := range []string{"a", "b", "c"} {
			if !seen[id] {
				t.Errorf("expected %s in listing", id)
			}
		}
	})

	t.Run("Empty Key", func(t *testing.T) {
		store := newStore(t)

		if err := store.Put("", []byte(`{}`)); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestRecordingCacheRepository(t *testing.T) {
	cacheContract(t, func(t *testing.T) CacheStore {
		db := setupTestDB(t)
		t.Cleanup(func() { db.Close() })
		return NewRecordingCacheRepository(db)
	})

	t.Run("Count", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRecordingCacheRepository(db)
		repo.Put("a", []byte(`{}`))
		repo.Put("a", []byte(`{}`))
		repo.Put("b", []byte(`{}`))

		n, err := repo.Count()
		if err != nil {
			t.Fatalf("failed to count: %v", err)
		}
		if n != 2 {
			t.Errorf("expected 2 entries, got %d", n)
		}
	})

	t.Run("Survives Reopen", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cache.db")

		db, err := shared.OpenDatabase(shared.DatabaseConfig{Path: path, MaxOpenConns: 1, MaxIdleConns: 1})
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		if err := NewRecordingCacheRepository(db).Put("a", []byte(`{"length":5}`)); err != nil {
			t.Fatalf("put failed: %v", err)
		}
		db.Close()

		db, err = shared.OpenDatabase(shared.DatabaseConfig{Path: path, MaxOpenConns: 1, MaxIdleConns: 1})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		defer db.Close()

		body, ok, err := NewRecordingCacheRepository(db).Get("a")
		if err != nil || !ok {
			t.Fatalf("expected hit after reopen, ok=%v err=%v", ok, err)
		}
		if string(body) != `{"length":5}` {
			t.Errorf("unexpected body %s", body)
		}
	})
}

func TestFileCache(t *testing.T) {
	cacheContract(t, func(t *testing.T) CacheStore {
		return NewFileCache(filepath.Join(t.TempDir(), "musicbrainz_cache"))
	})

	t.Run("Writes Legacy Layout", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "musicbrainz_cache")
		cache := NewFileCache(dir)

		if err := cache.Put("abc", []byte(`{"length":3}`)); err != nil {
			t.Fatalf("put failed: %v", err)
		}

		data, err := os.ReadFile(filepath.Join(dir, "abc.json"))
		if err != nil {
			t.Fatalf("expected abc.json: %v", err)
		}
		if string(data) != `{"length":3}` {
			t.Errorf("unexpected file content %s", data)
		}

		files, _ := os.ReadDir(dir)
		if len(files) != 1 {
			t.Errorf("expected no leftover temp files, found %d entries", len(files))
		}
	})

	t.Run("Reads Existing Files", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "xyz.json"), []byte(`{"length":9}`), 0644); err != nil {
			t.Fatalf("failed to seed cache: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte(`ignored`), 0644); err != nil {
			t.Fatalf("failed to seed cache: %v", err)
		}

		cache := NewFileCache(dir)
		body, ok, err := cache.Get("xyz")
		if err != nil || !ok {
			t.Fatalf("expected hit, ok=%v err=%v", ok, err)
		}
		if string(body) != `{"length":9}` {
			t.Errorf("unexpected body %s", body)
		}

		entries, err := cache.List()
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(entries) != 1 || entries[0].RecordingMBID != "xyz" {
			t.Errorf("expected only xyz in listing, got %+v", entries)
		}
	})

	t.Run("Missing Directory Lists Empty", func(t *testing.T) {
		entries, err := NewFileCache(filepath.Join(t.TempDir(), "none")).List()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("expected no entries, got %d", len(entries))
		}
	})

	t.Run("Rejects Path Keys", func(t *testing.T) {
		cache := NewFileCache(t.TempDir())

		for _, key := range []string{"../escape", "a/b", `a\b`, ".."} {
			if _, _, err := cache.Get(key); !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("Get(%q) expected ErrInvalidArgument, got %v", key, err)
			}
			if err := cache.Put(key, []byte(`{}`)); !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("Put(%q) expected ErrInvalidArgument, got %v", key, err)
			}
		}
	})
}

func TestReportRunRepository(t *testing.T) {
	t.Run("Create And List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewReportRunRepository(db)
		base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

		for i, id := range []string{"run-1", "run-2", "run-3"} {
			report := &models.Report{
				RunID:            id,
				User:             "liquidev",
				Range:            "this_year",
				RequestedCount:   100,
				GeneratedAt:      base.Add(time.Duration(i) * time.Hour),
				Entries:          make([]models.RankedRecording, i+1),
				Unresolvable:     make([]models.Recording, 1),
				TotalListeningMS: int64(1000 * (i + 1)),
			}
			if err := repo.Create(NewReportRun(report)); err != nil {
				t.Fatalf("failed to create run %s: %v", id, err)
			}
		}

		runs, err := repo.List(2)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 2 {
			t.Fatalf("expected 2 runs, got %d", len(runs))
		}
		if runs[0].ID != "run-3" || runs[1].ID != "run-2" {
			t.Errorf("expected newest first, got %s, %s", runs[0].ID, runs[1].ID)
		}
		if runs[0].RankedCount != 3 || runs[0].UnresolvableCount != 1 || runs[0].TotalListeningMS != 3000 {
			t.Errorf("unexpected summary %+v", runs[0])
		}

		all, err := repo.List(0)
		if err != nil {
			t.Fatalf("failed to list all runs: %v", err)
		}
		if len(all) != 3 {
			t.Errorf("expected 3 runs, got %d", len(all))
		}
	})

	t.Run("Create Requires ID", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		if err := NewReportRunRepository(db).Create(&ReportRun{}); err == nil {
			t.Error("expected validation error")
		}
	})
}
