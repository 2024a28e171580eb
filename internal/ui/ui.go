package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/playtime/internal/models"
	"github.com/desertthunder/playtime/internal/shared"
	"github.com/desertthunder/playtime/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	RunView ViewState = iota
	ReportView
	DetailView
	ExcludedView
)

// ReportRunner builds a report; satisfied by [tasks.ReportEngine].
type ReportRunner interface {
	Run(ctx context.Context, minCount int, progress chan<- tasks.ProgressUpdate) (*models.Report, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	cancel       context.CancelFunc
	finished     chan struct{}
	view         ViewState
	runner       ReportRunner
	count        int
	width        int
	height       int
	bar          progress.Model
	progressChan chan tasks.ProgressUpdate
	done         chan reportCompleteMsg
	progress     tasks.ProgressUpdate
	report       *models.Report
	entryList    list.Model
	excludedList list.Model
	selected     *models.RankedRecording
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a TUI model that runs the pipeline for count recordings on start.
//
// The run is bound to a child of ctx that is cancelled when the user quits.
func NewModel(ctx context.Context, runner ReportRunner, count int) *Model {
	ctx, cancel := context.WithCancel(ctx)
	return &Model{
		ctx:    ctx,
		cancel: cancel,
		view:   RunView,
		runner: runner,
		count:  count,
		bar:    progress.New(progress.WithDefaultGradient()),
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// NewReportModel creates a TUI model browsing an already built report.
func NewReportModel(report *models.Report) *Model {
	m := NewModel(context.Background(), nil, report.RequestedCount)
	m.setReport(report)
	return m
}

// Report returns the report once the run has finished.
func (m *Model) Report() *models.Report { return m.report }

// Err returns the error the run failed with, if any.
func (m *Model) Err() error { return m.err }

// Stop cancels an in-flight run and waits for it to return, so resources the
// runner uses can be released afterwards. Safe to call more than once.
func (m *Model) Stop() {
	m.cancel()
	if m.finished != nil {
		<-m.finished
	}
}

// Init starts the pipeline unless a report is already loaded.
func (m *Model) Init() tea.Cmd {
	if m.report != nil || m.runner == nil {
		return nil
	}
	return m.startRun()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = max(msg.Width-8, 10)
		if m.report != nil {
			m.entryList.SetSize(m.listSize())
			m.excludedList.SetSize(m.listSize())
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case RunView:
			if key.Matches(msg, m.keys.quit) {
				m.cancel()
				return m, tea.Quit
			}
			return m, nil
		case ReportView:
			return m.handleReportKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		case ExcludedView:
			return m.handleExcludedKeys(msg)
		}

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, waitForProgress(m.progressChan, m.done)

	case reportCompleteMsg:
		m.progressChan = nil
		m.done = nil
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.setReport(msg.report)
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Report failed: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case RunView:
		return m.renderRun()
	case ReportView:
		return m.renderReport()
	case DetailView:
		return m.renderDetail()
	case ExcludedView:
		return m.renderExcluded()
	default:
		return ""
	}
}

func (m *Model) setReport(report *models.Report) {
	m.report = report

	w, h := m.listSize()
	m.entryList = list.New(entryItems(report.Entries), list.NewDefaultDelegate(), w, h)
	m.entryList.Title = fmt.Sprintf("Most listened: %s (%s)", report.User, report.Range)

	m.excludedList = list.New(excludedItems(report), list.NewDefaultDelegate(), w, h)
	m.excludedList.Title = "Left out of the ranking"

	m.view = ReportView
}

func (m *Model) listSize() (int, int) {
	return max(m.width-4, 0), max(m.height-6, 0)
}

func (m *Model) handleReportKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.entryList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.entryList, cmd = m.entryList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.entryList.SelectedItem().(entryItem); ok {
			entry := item.entry
			m.selected = &entry
			m.view = DetailView
		}
		return m, nil
	case key.Matches(msg, m.keys.excluded):
		m.view = ExcludedView
		return m, nil
	}

	var cmd tea.Cmd
	m.entryList, cmd = m.entryList.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.enter):
		m.selected = nil
		m.view = ReportView
	}
	return m, nil
}

func (m *Model) handleExcludedKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.excludedList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.excludedList, cmd = m.excludedList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.excluded):
		m.view = ReportView
		return m, nil
	}

	var cmd tea.Cmd
	m.excludedList, cmd = m.excludedList.Update(msg)
	return m, cmd
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case ReportView:
		m.entryList, cmd = m.entryList.Update(msg)
	case ExcludedView:
		m.excludedList, cmd = m.excludedList.Update(msg)
	}
	return m, cmd
}

func (m *Model) startRun() tea.Cmd {
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan reportCompleteMsg, 1)
	finished := make(chan struct{})
	m.progressChan = progressCh
	m.done = done
	m.finished = finished

	go func() {
		defer close(finished)
		report, err := m.runner.Run(m.ctx, m.count, progressCh)
		done <- reportCompleteMsg{report: report, err: err}
		close(progressCh)
	}()

	return waitForProgress(progressCh, done)
}

// waitForProgress relays the next update, or the final result once the channel closes.
func waitForProgress(progressCh <-chan tasks.ProgressUpdate, done <-chan reportCompleteMsg) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-progressCh
		if !ok {
			return <-done
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderRun() string {
	title := styles.title.Render("Building report")

	var phase string
	switch m.progress.Phase {
	case tasks.FetchHistory:
		phase = "Fetching listening history..."
	case tasks.ResolveIdentities:
		phase = "Applying skip and remap rules..."
	case tasks.ResolveDurations:
		phase = fmt.Sprintf("Looking up durations (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.RankRecordings:
		phase = "Ranking..."
	default:
		phase = "Starting..."
	}

	var percent float64
	if m.progress.Total > 0 {
		percent = float64(m.progress.Step) / float64(m.progress.Total)
	}

	return fmt.Sprintf("%s\n%s\n\n%s\n%s\n\n%s",
		title, phase, m.bar.ViewAs(percent), styles.help.Render(m.progress.Message),
		m.help.ShortHelpView([]key.Binding{m.keys.quit}))
}

func (m *Model) renderReport() string {
	total := styles.ok.Render(fmt.Sprintf("Total: %s min", shared.FormatMinutes(m.report.TotalListeningMS)))
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.excluded, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s", m.entryList.View(), total, helpView)
}

func (m *Model) renderDetail() string {
	if m.selected == nil {
		return ""
	}
	e := m.selected

	var b strings.Builder
	b.WriteString(styles.title.Render(fmt.Sprintf("#%d %s - %s", e.Rank, e.ArtistName, e.TrackName)))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Release:        %s\n", e.ReleaseName)
	fmt.Fprintf(&b, "MBID:           %s\n", e.MBID)
	if e.RecordingMBID != e.MBID {
		b.WriteString(styles.warn.Render("                (supplied by a remap rule)"))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Listens:        %d\n", e.ListenCount)
	fmt.Fprintf(&b, "Duration:       %s min\n", shared.FormatMinutes(e.DurationMS))
	fmt.Fprintf(&b, "Minutes played: %s\n", styles.ok.Render(shared.FormatMinutes(e.ListeningMS)))

	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit}))
	return b.String()
}

func (m *Model) renderExcluded() string {
	if len(m.excludedList.Items()) == 0 {
		return fmt.Sprintf("%s\n\n%s",
			styles.ok.Render("Every fetched recording made it into the ranking."),
			m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit}))
	}
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.excludedList.View(), helpView)
}
