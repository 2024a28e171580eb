package main

import (
	"context"

	"github.com/desertthunder/playtime/internal/repositories"
	"github.com/desertthunder/playtime/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runs lists previously recorded report runs, newest first.
func (r *Runner) Runs(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepare(cmd); err != nil {
		return err
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := repositories.NewReportRunRepository(db).List(cmd.Int("limit"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(runs, true)
	}

	if len(runs) == 0 {
		return r.writePlain("No report runs recorded\n")
	}
	for _, run := range runs {
		r.writePlain("%s  %s  %s/%s  %d ranked, %d skipped, %d without id, %s min\n",
			run.CreatedAt.Local().Format("2006-01-02 15:04"),
			run.ID,
			run.User,
			run.Range,
			run.RankedCount,
			run.SkippedCount,
			run.UnresolvableCount,
			shared.FormatMinutes(run.TotalListeningMS),
		)
	}
	return nil
}
