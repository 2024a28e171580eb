package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playtime/internal/models"
	"github.com/desertthunder/playtime/internal/services"
	"github.com/desertthunder/playtime/internal/shared"
)

// Resolver looks up the duration of a recording by MBID.
type Resolver interface {
	Resolve(ctx context.Context, mbid string) (int64, error)
}

// ReportEngineOpts contains the dependencies of a [ReportEngine].
type ReportEngineOpts struct {
	History   services.HistoryService
	Durations Resolver
	Rules     *models.Rules
	Logger    *log.Logger
	User      string // Recorded on the report
	Range     string // Recorded on the report
	PageSize  int    // Defaults to [PageSize]
	Now       func() time.Time
}

// ReportEngine runs the report pipeline: fetch, identify, enrich, rank.
type ReportEngine struct {
	history   services.HistoryService
	durations Resolver
	rules     *models.Rules
	logger    *log.Logger
	user      string
	statRange string
	pageSize  int
	now       func() time.Time
}

// NewReportEngine creates a [ReportEngine]. Nil rules behave like empty rule files.
func NewReportEngine(opts ReportEngineOpts) *ReportEngine {
	e := &ReportEngine{
		history:   opts.History,
		durations: opts.Durations,
		rules:     opts.Rules,
		logger:    opts.Logger,
		user:      opts.User,
		statRange: opts.Range,
		pageSize:  opts.PageSize,
		now:       opts.Now,
	}
	if e.rules == nil {
		e.rules = &models.Rules{}
	}
	if e.logger == nil {
		e.logger = shared.NewLogger(nil)
	}
	if e.pageSize <= 0 {
		e.pageSize = PageSize
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// sendProgress sends a progress update to the channel if it's not nil.
// Uses non-blocking send to prevent deadlocks if the receiver isn't reading.
func (e *ReportEngine) sendProgress(ch chan<- ProgressUpdate, update ProgressUpdate) {
	if ch == nil {
		return
	}
	select {
	case ch <- update:
	default:
	}
}

// Classified is the outcome of applying the override rules to fetched recordings.
type Classified struct {
	Linked       []LinkedRecording
	Skipped      []models.Recording
	Unresolvable []models.Recording
}

// LinkedRecording pairs a recording with the MBID its duration is looked up by.
type LinkedRecording struct {
	Recording models.Recording
	MBID      string
}

// Classify applies [ResolveIdentity] to every recording, keeping input order.
func (e *ReportEngine) Classify(recordings []models.Recording) Classified {
	var c Classified
	for _, rec := range recordings {
		id := ResolveIdentity(rec, e.rules.Skip, e.rules.Remap)
		switch id.Kind {
		case IdentitySkip:
			e.logger.Info("skipping recording", "artist", rec.ArtistName, "track", rec.TrackName)
			c.Skipped = append(c.Skipped, rec)
		case IdentityUnresolvable:
			e.logger.Warn("recording has no MBID",
				"artist", rec.ArtistName, "release", rec.ReleaseName, "track", rec.TrackName, "rule", id.RuleIndex)
			for _, miss := range NearMisses(rec, e.rules.Remap) {
				e.logger.Warn("remap rule nearly matches",
					"rule", miss.Index, "score", fmt.Sprintf("%.3f", miss.Score), "track", rec.TrackName)
			}
			c.Unresolvable = append(c.Unresolvable, rec)
		case IdentityID:
			c.Linked = append(c.Linked, LinkedRecording{Recording: rec, MBID: id.MBID})
		}
	}
	return c
}

// Run builds a report over at least minCount recordings.
//
// Recordings are processed one at a time in the order fetched. The first error
// aborts the run and no report is returned.
func (e *ReportEngine) Run(ctx context.Context, minCount int, progress chan<- ProgressUpdate) (*models.Report, error) {
	if minCount < 0 {
		return nil, fmt.Errorf("%w: count must not be negative (got %d)", shared.ErrInvalidArgument, minCount)
	}
	if e.history == nil || e.durations == nil {
		return nil, fmt.Errorf("%w: report engine is missing a service", shared.ErrMissingArgument)
	}

	report := &models.Report{
		RunID:          shared.GenerateID(),
		User:           e.user,
		Range:          e.statRange,
		RequestedCount: minCount,
	}
	logger := shared.WithLogger(e.logger, "run_id", report.RunID)

	e.sendProgress(progress, fetchHistoryUpdate(minCount, e.user))
	recordings, err := FetchTopRecordings(ctx, e.history, minCount, e.pageSize)
	if err != nil {
		return nil, err
	}
	logger.Debug("fetched recordings", "count", len(recordings))
	e.sendProgress(progress, fetchedHistoryUpdate(len(recordings), minCount))

	classified := e.Classify(recordings)
	report.Skipped = classified.Skipped
	report.Unresolvable = classified.Unresolvable
	e.sendProgress(progress, identitiesUpdate(len(classified.Linked), len(classified.Skipped), len(classified.Unresolvable)))

	enriched := make([]models.EnrichedRecording, 0, len(classified.Linked))
	for i, linked := range classified.Linked {
		e.sendProgress(progress, resolveDurationUpdate(i+1, len(classified.Linked), linked.Recording))

		duration, err := e.durations.Resolve(ctx, linked.MBID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve duration of %s - %s: %w",
				linked.Recording.ArtistName, linked.Recording.TrackName, err)
		}
		enriched = append(enriched, models.EnrichedRecording{
			Recording:  linked.Recording,
			MBID:       linked.MBID,
			DurationMS: duration,
		})
	}

	ranked, err := Rank(enriched)
	if err != nil {
		return nil, err
	}
	total, err := TotalListeningTime(ranked)
	if err != nil {
		return nil, err
	}
	e.sendProgress(progress, rankedUpdate(ranked))

	report.Entries = ranked
	report.TotalListeningMS = total
	report.GeneratedAt = e.now().UTC()

	logger.Info("report complete",
		"ranked", len(ranked), "skipped", len(report.Skipped), "unresolvable", len(report.Unresolvable))
	return report, nil
}
