package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/playtime/internal/models"
	"github.com/desertthunder/playtime/internal/shared"
)

var (
	_ list.Item = entryItem{}
	_ list.Item = recordingItem{}
)

// entryItem wraps [models.RankedRecording] to implement [list.Item].
type entryItem struct {
	entry models.RankedRecording
}

func (i entryItem) FilterValue() string { return i.entry.ArtistName + " " + i.entry.TrackName }
func (i entryItem) Title() string {
	return fmt.Sprintf("%d. %s - %s", i.entry.Rank, i.entry.ArtistName, i.entry.TrackName)
}
func (i entryItem) Description() string {
	return fmt.Sprintf("%s min • %s", shared.FormatMinutes(i.entry.ListeningMS), i.entry.ReleaseName)
}

// recordingItem wraps an excluded [models.Recording] to implement [list.Item].
type recordingItem struct {
	recording models.Recording
	reason    string
}

func (i recordingItem) FilterValue() string {
	return i.recording.ArtistName + " " + i.recording.TrackName
}

func (i recordingItem) Title() string {
	return fmt.Sprintf("%s - %s", i.recording.ArtistName, i.recording.TrackName)
}
func (i recordingItem) Description() string {
	return fmt.Sprintf("%s • %d listens • %s", i.reason, i.recording.ListenCount, i.recording.ReleaseName)
}

func entryItems(entries []models.RankedRecording) []list.Item {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = entryItem{entry: e}
	}
	return items
}

func excludedItems(report *models.Report) []list.Item {
	items := make([]list.Item, 0, len(report.Skipped)+len(report.Unresolvable))
	for _, r := range report.Unresolvable {
		items = append(items, recordingItem{recording: r, reason: "no id"})
	}
	for _, r := range report.Skipped {
		items = append(items, recordingItem{recording: r, reason: "skipped"})
	}
	return items
}
