package tasks

import (
	"fmt"

	"github.com/desertthunder/playtime/internal/models"
)

// ProgressUpdate represents a progress event during a report run.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Pipeline phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Pipeline phase enumeration
type Phase int

const (
	FetchHistory Phase = iota
	ResolveIdentities
	ResolveDurations
	RankRecordings
)

func (p Phase) String() string {
	switch p {
	case FetchHistory:
		return "fetch_history"
	case ResolveIdentities:
		return "resolve_identities"
	case ResolveDurations:
		return "resolve_durations"
	case RankRecordings:
		return "rank_recordings"
	default:
		return ""
	}
}

func fetchHistoryUpdate(count int, user string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchHistory,
		Step:    0,
		Total:   count,
		Message: fmt.Sprintf("Fetching top %d recordings for %s from ListenBrainz...", count, user),
	}
}

func fetchedHistoryUpdate(fetched, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchHistory,
		Step:    fetched,
		Total:   count,
		Message: fmt.Sprintf("Fetched %d recordings", fetched),
	}
}

func identitiesUpdate(resolved, skipped, unresolvable int) ProgressUpdate {
	total := resolved + skipped + unresolvable
	return ProgressUpdate{
		Phase:   ResolveIdentities,
		Step:    total,
		Total:   total,
		Message: fmt.Sprintf("%d linked, %d skipped, %d without an id", resolved, skipped, unresolvable),
	}
}

func resolveDurationUpdate(step, total int, rec models.Recording) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveDurations,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, total, rec.ArtistName, rec.TrackName),
	}
}

func rankedUpdate(entries []models.RankedRecording) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RankRecordings,
		Step:    len(entries),
		Total:   len(entries),
		Message: fmt.Sprintf("Ranked %d recordings", len(entries)),
		Data:    entries,
	}
}
