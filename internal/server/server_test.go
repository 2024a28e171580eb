package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/playtime/internal/models"
	"github.com/desertthunder/playtime/internal/repositories"
	"github.com/desertthunder/playtime/internal/shared"
	th "github.com/desertthunder/playtime/internal/testing"
)

const testMBID = "0f4c6e7a-94a1-4b6b-9a3f-1c2d3e4f5a6b"

type fakeRuns struct {
	runs  []*repositories.ReportRun
	err   error
	limit int
}

func (f *fakeRuns) List(limit int) ([]*repositories.ReportRun, error) {
	f.limit = limit
	return f.runs, f.err
}

func testReport(count int) *models.Report {
	rec := th.Recording("Artist", "Release", "Track", testMBID, 3)
	return &models.Report{
		RunID:          "run-1",
		User:           "liquidev",
		Range:          "this_year",
		RequestedCount: count,
		GeneratedAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Entries: []models.RankedRecording{{
			EnrichedRecording: models.EnrichedRecording{Recording: rec, MBID: testMBID, DurationMS: 200000},
			Rank:              1,
			ListeningMS:       600000,
		}},
		TotalListeningMS: 600000,
	}
}

func newTestRouter(build ReportFunc, runs RunLister, cache CacheReader) *BasicRouter {
	return NewAPIRouter(build, runs, cache, shared.NewLogger(io.Discard))
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestBasicRouter(t *testing.T) {
	t.Run("Middleware Order", func(t *testing.T) {
		var order []string
		tag := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(tag("first"), tag("second"))
		router.HandleFunc(http.MethodGet, "/ping", func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		})

		do(t, router, http.MethodGet, "/ping")

		if strings.Join(order, ",") != "first,second,handler" {
			t.Errorf("unexpected order: %v", order)
		}
	})

	t.Run("Method Not Allowed", func(t *testing.T) {
		router := NewBasicRouter()
		router.HandleFunc(http.MethodGet, "/ping", func(w http.ResponseWriter, r *http.Request) {})

		rec := do(t, router, http.MethodPost, "/ping")
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("Recover", func(t *testing.T) {
		router := NewBasicRouter()
		router.Use(Recover(shared.NewLogger(io.Discard)))
		router.HandleFunc(http.MethodGet, "/boom", func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		})

		rec := do(t, router, http.MethodGet, "/boom")
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
	})
}

func TestReportHandler(t *testing.T) {
	t.Run("JSON By Default", func(t *testing.T) {
		var got int
		router := newTestRouter(func(ctx context.Context, count int) (*models.Report, error) {
			got = count
			return testReport(count), nil
		}, nil, th.NewMemoryCache())

		rec := do(t, router, http.MethodGet, "/api/report?count=5")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got != 5 {
			t.Errorf("expected count 5, got %d", got)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}

		var report models.Report
		if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if report.RunID != "run-1" || len(report.Entries) != 1 {
			t.Errorf("unexpected report: %+v", report)
		}
	})

	t.Run("CSV", func(t *testing.T) {
		router := newTestRouter(func(ctx context.Context, count int) (*models.Report, error) {
			return testReport(count), nil
		}, nil, th.NewMemoryCache())

		rec := do(t, router, http.MethodGet, "/api/report?count=1&format=csv")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.HasPrefix(rec.Body.String(), "Rank,Artist,Track") {
			t.Errorf("unexpected body: %s", rec.Body.String())
		}
	})

	t.Run("Bad Requests", func(t *testing.T) {
		var calls atomic.Int32
		router := newTestRouter(func(ctx context.Context, count int) (*models.Report, error) {
			calls.Add(1)
			return testReport(count), nil
		}, nil, th.NewMemoryCache())

		for _, target := range []string{
			"/api/report",
			"/api/report?count=abc",
			"/api/report?count=-1",
			"/api/report?count=3&format=xml",
		} {
			rec := do(t, router, http.MethodGet, target)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("%s: expected 400, got %d", target, rec.Code)
			}
		}
		if calls.Load() != 0 {
			t.Errorf("expected no builds, got %d", calls.Load())
		}
	})

	t.Run("Error Status", func(t *testing.T) {
		tests := []struct {
			err  error
			want int
		}{
			{fmt.Errorf("%w: lookup", shared.ErrMetadata), http.StatusBadGateway},
			{fmt.Errorf("%w: dial", shared.ErrTransport), http.StatusBadGateway},
			{fmt.Errorf("%w: overflow", shared.ErrComputation), http.StatusInternalServerError},
			{context.Canceled, http.StatusServiceUnavailable},
		}

		for _, tt := range tests {
			router := newTestRouter(func(ctx context.Context, count int) (*models.Report, error) {
				return nil, tt.err
			}, nil, th.NewMemoryCache())

			rec := do(t, router, http.MethodGet, "/api/report?count=1")
			if rec.Code != tt.want {
				t.Errorf("%v: expected %d, got %d", tt.err, tt.want, rec.Code)
			}

			var body errorBody
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Error == "" {
				t.Errorf("expected JSON error body, got %q", rec.Body.String())
			}
		}
	})
}

func TestRunsHandler(t *testing.T) {
	t.Run("Default Limit", func(t *testing.T) {
		runs := &fakeRuns{runs: []*repositories.ReportRun{{ID: "run-1", User: "liquidev", RankedCount: 2}}}
		router := newTestRouter(nil, runs, th.NewMemoryCache())

		rec := do(t, router, http.MethodGet, "/api/runs")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if runs.limit != DefaultRunsLimit {
			t.Errorf("expected limit %d, got %d", DefaultRunsLimit, runs.limit)
		}

		var got []repositories.ReportRun
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(got) != 1 || got[0].ID != "run-1" {
			t.Errorf("unexpected runs: %+v", got)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		router := newTestRouter(nil, &fakeRuns{}, th.NewMemoryCache())

		rec := do(t, router, http.MethodGet, "/api/runs?limit=3")
		if strings.TrimSpace(rec.Body.String()) != "[]" {
			t.Errorf("expected empty array, got %q", rec.Body.String())
		}
	})

	t.Run("Invalid Limit", func(t *testing.T) {
		router := newTestRouter(nil, &fakeRuns{}, th.NewMemoryCache())

		rec := do(t, router, http.MethodGet, "/api/runs?limit=0")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("Not Registered Without Database", func(t *testing.T) {
		router := newTestRouter(nil, nil, th.NewMemoryCache())

		rec := do(t, router, http.MethodGet, "/api/runs")
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("Repository Error", func(t *testing.T) {
		router := newTestRouter(nil, &fakeRuns{err: errors.New("locked")}, th.NewMemoryCache())

		rec := do(t, router, http.MethodGet, "/api/runs")
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
	})
}

func TestCacheHandler(t *testing.T) {
	cache := th.NewMemoryCache()
	body := `{"id":"` + testMBID + `","title":"Track","length":200000}`
	if err := cache.Put(testMBID, []byte(body)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	router := newTestRouter(nil, nil, cache)

	t.Run("Hit", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/cache/"+testMBID)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if rec.Body.String() != body {
			t.Errorf("expected stored body unchanged, got %q", rec.Body.String())
		}
	})

	t.Run("Miss", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/cache/7d2e5b1c-3a4f-4e6d-8c9b-0a1b2c3d4e5f")
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("Invalid ID", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/cache/not-an-id")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})
}

func TestHealth(t *testing.T) {
	router := newTestRouter(nil, nil, th.NewMemoryCache())

	rec := do(t, router, http.MethodGet, "/healthz")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("unexpected health response: %d %s", rec.Code, rec.Body.String())
	}
}

func TestServe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, "127.0.0.1:0", http.NotFoundHandler(), shared.NewLogger(io.Discard))
	}()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(ShutdownTimeout + time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
