package main

import (
	"context"
	"database/sql"

	"github.com/desertthunder/playtime/internal/models"
	"github.com/desertthunder/playtime/internal/repositories"
	"github.com/desertthunder/playtime/internal/server"
	"github.com/urfave/cli/v3"
)

// buildReport runs one pipeline end to end. Rules are reloaded on every call.
func (r *Runner) buildReport(ctx context.Context, count int) (*models.Report, error) {
	p, err := r.newPipeline()
	if err != nil {
		return nil, err
	}
	defer p.Close()

	report, err := p.engine.Run(ctx, count, nil)
	if err != nil {
		return nil, err
	}
	r.finish(p, report)
	return report, nil
}

// apiHandler wires the JSON API. The returned database, when not nil, backs the
// cache and run endpoints and must be closed by the caller.
func (r *Runner) apiHandler() (*server.BasicRouter, *sql.DB, error) {
	cache, db, err := r.openCache()
	if err != nil {
		return nil, nil, err
	}
	if db == nil && r.config.Database.Path != "" {
		if db, err = r.openDatabase(); err != nil {
			r.logger.Warn("run history disabled", "error", err)
			db = nil
		}
	}

	var runs server.RunLister
	if db != nil {
		runs = repositories.NewReportRunRepository(db)
	}

	return server.NewAPIRouter(r.buildReport, runs, cache, r.logger), db, nil
}

// Serve exposes reports, recorded runs and the duration cache over HTTP.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepare(cmd); err != nil {
		return err
	}
	if err := r.config.Validate(); err != nil {
		return err
	}

	handler, db, err := r.apiHandler()
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	return server.Serve(ctx, cmd.String("addr"), handler, r.logger)
}
