package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/playtime/internal/shared"
	"github.com/desertthunder/playtime/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI runs the pipeline inside the interactive report browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepare(cmd); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	p, err := r.newPipeline()
	if err != nil {
		return err
	}
	defer p.Close()

	model := ui.NewModel(ctx, p.engine, cmd.Int("count"))
	defer model.Stop()
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	if err := model.Err(); err != nil {
		return err
	}
	if report := model.Report(); report != nil {
		r.finish(p, report)
	}
	return nil
}
