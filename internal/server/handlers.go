package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playtime/internal/formatter"
	"github.com/desertthunder/playtime/internal/models"
	"github.com/desertthunder/playtime/internal/repositories"
	"github.com/desertthunder/playtime/internal/shared"
)

// ReportFunc builds a ranked report from at least count fetched recordings, fewer when the history runs out.
type ReportFunc func(ctx context.Context, count int) (*models.Report, error)

// RunLister lists recorded report runs, newest first.
type RunLister interface {
	List(limit int) ([]*repositories.ReportRun, error)
}

// CacheReader reads raw cached recording bodies.
type CacheReader interface {
	Get(mbid string) ([]byte, bool, error)
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := shared.MarshalJSON(v, false)
	if err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// statusFor maps pipeline errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrInvalidArgument), errors.Is(err, shared.ErrMissingArgument):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrCacheMiss):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrTransport), errors.Is(err, shared.ErrMetadata), errors.Is(err, shared.ErrParse):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func contentType(format string) string {
	switch formatter.Extension(format) {
	case "json":
		return "application/json"
	case "csv":
		return "text/csv; charset=utf-8"
	case "md":
		return "text/markdown; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// ReportHandler serves GET /api/report?count=N&format=F.
//
// Builds run one at a time so MusicBrainz pacing holds across concurrent requests.
type ReportHandler struct {
	build  ReportFunc
	logger *log.Logger
	mu     sync.Mutex
}

// NewReportHandler creates a ReportHandler around build.
func NewReportHandler(build ReportFunc, logger *log.Logger) *ReportHandler {
	return &ReportHandler{build: build, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *ReportHandler) Routes() []string {
	return []string{"GET /api/report"}
}

func (h *ReportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	raw := query.Get("count")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "count is required")
		return
	}
	count, err := strconv.Atoi(raw)
	if err != nil || count < 0 {
		writeError(w, http.StatusBadRequest, "count must be a non-negative integer")
		return
	}

	format := strings.ToLower(query.Get("format"))
	if format == "" {
		format = formatter.FormatJSON
	}
	if _, err := formatter.Render(&models.Report{}, format); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.mu.Lock()
	report, err := h.build(r.Context(), count)
	h.mu.Unlock()
	if err != nil {
		h.logger.Error("report failed", "count", count, "error", err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	data, err := formatter.Render(report, format)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", contentType(format))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// RunsHandler serves GET /api/runs?limit=N.
type RunsHandler struct {
	runs RunLister
}

// DefaultRunsLimit applies when the limit query parameter is absent.
const DefaultRunsLimit = 10

// NewRunsHandler creates a RunsHandler reading from runs.
func NewRunsHandler(runs RunLister) *RunsHandler {
	return &RunsHandler{runs: runs}
}

// Routes returns the HTTP routes this handler serves.
func (h *RunsHandler) Routes() []string {
	return []string{"GET /api/runs"}
}

func (h *RunsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	limit := DefaultRunsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := h.runs.List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []*repositories.ReportRun{}
	}
	writeJSON(w, http.StatusOK, runs)
}

// CacheHandler serves GET /api/cache/{mbid}, returning the stored MusicBrainz body unchanged.
type CacheHandler struct {
	cache CacheReader
}

// NewCacheHandler creates a CacheHandler reading from cache.
func NewCacheHandler(cache CacheReader) *CacheHandler {
	return &CacheHandler{cache: cache}
}

// Routes returns the HTTP routes this handler serves.
func (h *CacheHandler) Routes() []string {
	return []string{"GET /api/cache/{mbid}"}
}

func (h *CacheHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mbid := r.PathValue("mbid")
	if !shared.IsMBID(mbid) {
		writeError(w, http.StatusBadRequest, "not a MusicBrainz id: "+mbid)
		return
	}

	body, ok, err := h.cache.Get(mbid)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, shared.ErrCacheMiss.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// NewAPIRouter wires the report, runs and cache endpoints plus a health check.
// runs may be nil when no database is configured; the runs endpoint then is not registered.
func NewAPIRouter(build ReportFunc, runs RunLister, cache CacheReader, logger *log.Logger) *BasicRouter {
	router := NewBasicRouter()
	router.Use(Recover(logger), Logging(logger))

	router.HandleFunc(http.MethodGet, "/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Handler(NewReportHandler(build, logger))
	router.Handler(NewCacheHandler(cache))
	if runs != nil {
		router.Handler(NewRunsHandler(runs))
	}

	return router
}
