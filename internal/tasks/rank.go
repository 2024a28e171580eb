package tasks

import (
	"cmp"
	"fmt"
	"math"
	"math/bits"
	"slices"

	"github.com/desertthunder/playtime/internal/models"
	"github.com/desertthunder/playtime/internal/shared"
)

// ListeningTime returns listenCount * durationMS, failing with [shared.ErrComputation]
// when either factor is negative or the product does not fit in an int64.
func ListeningTime(listenCount, durationMS int64) (int64, error) {
	if listenCount < 0 || durationMS < 0 {
		return 0, fmt.Errorf("%w: negative factor (%d listens, %d ms)", shared.ErrComputation, listenCount, durationMS)
	}

	hi, lo := bits.Mul64(uint64(listenCount), uint64(durationMS))
	if hi != 0 || lo > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %d listens of %d ms overflows", shared.ErrComputation, listenCount, durationMS)
	}
	return int64(lo), nil
}

// Rank computes the listening time of every recording and orders them from most to
// least listened. Ties are broken by MBID, then artist, then track, so the result does
// not depend on input order.
func Rank(enriched []models.EnrichedRecording) ([]models.RankedRecording, error) {
	ranked := make([]models.RankedRecording, 0, len(enriched))
	for _, e := range enriched {
		ms, err := ListeningTime(e.ListenCount, e.DurationMS)
		if err != nil {
			return nil, fmt.Errorf("failed to rank %s - %s: %w", e.ArtistName, e.TrackName, err)
		}
		ranked = append(ranked, models.RankedRecording{EnrichedRecording: e, ListeningMS: ms})
	}

	slices.SortStableFunc(ranked, func(a, b models.RankedRecording) int {
		return cmp.Or(
			cmp.Compare(b.ListeningMS, a.ListeningMS),
			cmp.Compare(a.MBID, b.MBID),
			cmp.Compare(a.ArtistName, b.ArtistName),
			cmp.Compare(a.TrackName, b.TrackName),
			cmp.Compare(a.ReleaseName, b.ReleaseName),
		)
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked, nil
}

// TotalListeningTime sums the listening time of the ranked entries.
func TotalListeningTime(ranked []models.RankedRecording) (int64, error) {
	var total int64
	for _, r := range ranked {
		if r.ListeningMS > math.MaxInt64-total {
			return 0, fmt.Errorf("%w: total listening time overflows", shared.ErrComputation)
		}
		total += r.ListeningMS
	}
	return total, nil
}
