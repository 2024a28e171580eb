package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/playtime/internal/shared"
	"github.com/desertthunder/playtime/internal/tasks"
	"github.com/urfave/cli/v3"
)

// RulesCheck validates the rule files and, with --count, lists fetched recordings that
// end up without an id along with remap rules that nearly match them.
func (r *Runner) RulesCheck(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepare(cmd); err != nil {
		return err
	}

	rules, err := shared.LoadRules(r.config.Rules.SkipPath, r.config.Rules.RemapPath)
	if err != nil {
		return err
	}

	r.writePlain("Skip rules:  %d (%s)\n", len(rules.Skip), r.config.Rules.SkipPath)
	r.writePlain("Remap rules: %d (%s)\n", len(rules.Remap), r.config.Rules.RemapPath)

	var problems int
	for i, rule := range rules.Skip {
		if rule.ArtistName == nil && rule.ReleaseName == nil && rule.TrackName == nil {
			r.writePlain("  skip[%d]: has no fields and skips every recording\n", i)
			problems++
		}
	}
	for i, rule := range rules.Remap {
		m := rule.MatchWith
		if m.ArtistName == nil && m.ReleaseName == nil && m.TrackName == nil {
			r.writePlain("  remap[%d]: has no fields and matches every recording\n", i)
			problems++
		}
		if rule.RecordingMBID != nil && !shared.IsMBID(*rule.RecordingMBID) {
			r.writePlain("  remap[%d]: %q is not a MusicBrainz id\n", i, *rule.RecordingMBID)
			problems++
		}
	}

	count := cmd.Int("count")
	if count > 0 {
		if err := r.config.Validate(); err != nil {
			return err
		}

		recordings, err := tasks.FetchTopRecordings(ctx, r.historyService(), count, tasks.PageSize)
		if err != nil {
			return err
		}

		r.writePlain("\nChecked %d recordings\n", len(recordings))
		for _, rec := range recordings {
			id := tasks.ResolveIdentity(rec, rules.Skip, rules.Remap)
			if id.Kind != tasks.IdentityUnresolvable {
				continue
			}
			problems++
			r.writePlain("  no id: %s - %s (%s)\n", rec.ArtistName, rec.TrackName, rec.ReleaseName)
			for _, miss := range tasks.NearMisses(rec, rules.Remap) {
				r.writePlain("    remap[%d] nearly matches (%.3f)\n", miss.Index, miss.Score)
			}
		}
	}

	if problems == 0 {
		return r.writePlain("\nNo problems found\n")
	}
	return r.writePlain("\n%s\n", fmt.Sprintf("%d problems found", problems))
}
