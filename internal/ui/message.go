package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/playtime/internal/models"
	"github.com/desertthunder/playtime/internal/tasks"
)

var (
	_ tea.Msg = progressUpdateMsg{}
	_ tea.Msg = reportCompleteMsg{}
)

// progressUpdateMsg carries one [tasks.ProgressUpdate] from the running pipeline.
type progressUpdateMsg tasks.ProgressUpdate

// reportCompleteMsg is sent once the pipeline returns.
type reportCompleteMsg struct {
	report *models.Report
	err    error
}
