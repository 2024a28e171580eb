package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/desertthunder/playtime/internal/formatter"
	"github.com/desertthunder/playtime/internal/models"
	"github.com/desertthunder/playtime/internal/repositories"
	"github.com/desertthunder/playtime/internal/shared"
	"github.com/desertthunder/playtime/internal/tasks"
	"github.com/desertthunder/playtime/internal/ui"
	"github.com/urfave/cli/v3"
)

// pipeline is a ready-to-run engine plus the resources it holds open.
type pipeline struct {
	engine   *tasks.ReportEngine
	resolver *tasks.DurationResolver
	db       *sql.DB
}

func (p *pipeline) Close() error {
	if p.db == nil {
		return nil
	}
	return p.db.Close()
}

// record stores a run summary when a database is available.
func (p *pipeline) record(report *models.Report) error {
	if p.db == nil {
		return nil
	}
	return repositories.NewReportRunRepository(p.db).Create(repositories.NewReportRun(report))
}

// newPipeline wires services, cache and rules from the loaded config.
func (r *Runner) newPipeline() (*pipeline, error) {
	if err := r.config.Validate(); err != nil {
		return nil, err
	}

	rules, err := shared.LoadRules(r.config.Rules.SkipPath, r.config.Rules.RemapPath)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("loaded rules", "skip", len(rules.Skip), "remap", len(rules.Remap))

	cache, db, err := r.openCache()
	if err != nil {
		return nil, err
	}
	if db == nil && r.config.Database.Path != "" {
		if db, err = r.openDatabase(); err != nil {
			r.logger.Warn("run history disabled", "error", err)
			db = nil
		}
	}

	policy := tasks.NewRetryPolicy(r.config.MusicBrainz.MinInterval(), r.clock)
	resolver := tasks.NewDurationResolver(r.metadataService(), cache, policy, r.logger)

	engine := tasks.NewReportEngine(tasks.ReportEngineOpts{
		History:   r.historyService(),
		Durations: resolver,
		Rules:     rules,
		Logger:    r.logger,
		User:      r.config.ListenBrainz.User,
		Range:     r.config.ListenBrainz.Range,
		Now:       r.clock.Now,
	})

	return &pipeline{engine: engine, resolver: resolver, db: db}, nil
}

// finish logs resolver statistics and records the run.
func (r *Runner) finish(p *pipeline, report *models.Report) {
	stats := p.resolver.Stats()
	r.logger.Info("durations resolved",
		"cached", stats.CacheHits, "fetched", stats.Fetches, "rate_limited", stats.Retries)

	if err := p.record(report); err != nil {
		r.logger.Warn("failed to record run", "error", err)
	}
}

// Report runs the pipeline and writes the ranking in the chosen format.
func (r *Runner) Report(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepare(cmd); err != nil {
		return err
	}

	count := cmd.Int("count")
	format := strings.ToLower(cmd.String("format"))
	outputPath := cmd.String("output")

	if count < 0 {
		return fmt.Errorf("%w: --count must not be negative", shared.ErrInvalidArgument)
	}
	if _, err := formatter.Render(&models.Report{}, format); err != nil {
		return err
	}

	p, err := r.newPipeline()
	if err != nil {
		return err
	}
	defer p.Close()

	r.logger.Info("building report", "user", r.config.ListenBrainz.User, "range", r.config.ListenBrainz.Range, "count", count)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.ResolveDurations:
				r.logger.Debug(update.Message, "phase", update.Phase)
			default:
				r.logger.Info(update.Message, "phase", update.Phase)
			}
		}
	}()

	report, err := p.engine.Run(ctx, count, progressCh)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}
	r.finish(p, report)

	if outputPath != "" {
		path, err := formatter.WriteReport(report, format, outputPath)
		if err != nil {
			return err
		}
		r.logger.Info("report written", "path", path)
		return nil
	}

	if (format == formatter.FormatText || format == "") && !cmd.Bool("plain") {
		return r.writePlain("%s", ui.RenderReport(report))
	}

	data, err := formatter.Render(report, format)
	if err != nil {
		return err
	}
	return r.writePlain("%s", data)
}
