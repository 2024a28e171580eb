package tasks

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/desertthunder/playtime/internal/models"
	"github.com/desertthunder/playtime/internal/shared"
	tu "github.com/desertthunder/playtime/internal/testing"
	"github.com/desertthunder/playtime/internal/testing/fakes"
)

func makeRecordings(n int) []models.Recording {
	recs := make([]models.Recording, n)
	for i := range recs {
		recs[i] = tu.Recording(fmt.Sprintf("Artist %d", i), "Release", fmt.Sprintf("Track %d", i), "", int64(n-i))
	}
	return recs
}

func TestFetchTopRecordings(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name         string
		available    int
		minCount     int
		pageSize     int
		wantCount    int
		wantRequests []int
	}{
		{"single page", 250, 10, 100, 100, []int{0}},
		{"several pages", 250, 150, 100, 200, []int{0, 100}},
		{"exact page boundary", 250, 200, 100, 200, []int{0, 100}},
		{"exhausted source", 120, 500, 100, 120, []int{0, 100, 120}},
		{"empty source", 0, 10, 100, 0, []int{0}},
		{"zero count", 50, 0, 100, 0, nil},
		{"default page size", 250, 150, 0, 200, []int{0, 100}},
		{"short pages advance by received count", 7, 7, 3, 7, []int{0, 3, 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history := fakes.NewPagedHistory(makeRecordings(tt.available)...)

			got, err := FetchTopRecordings(ctx, history, tt.minCount, tt.pageSize)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != tt.wantCount {
				t.Errorf("got %d recordings, want %d", len(got), tt.wantCount)
			}
			if !slices.Equal(history.Requests, tt.wantRequests) {
				t.Errorf("requested offsets %v, want %v", history.Requests, tt.wantRequests)
			}
		})
	}

	t.Run("keeps service order", func(t *testing.T) {
		recs := makeRecordings(5)
		history := fakes.NewPagedHistory(recs...)

		got, err := FetchTopRecordings(ctx, history, 5, 2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(got, recs) {
			t.Errorf("expected recordings in service order")
		}
	})

	t.Run("failure discards partial results", func(t *testing.T) {
		history := fakes.NewPagedHistory(makeRecordings(250)...)
		history.FailAt = 100
		history.Err = errors.New("connection refused")

		got, err := FetchTopRecordings(ctx, history, 200, 100)
		if !errors.Is(err, shared.ErrTransport) {
			t.Errorf("expected ErrTransport, got %v", err)
		}
		if got != nil {
			t.Errorf("expected no recordings, got %d", len(got))
		}
	})

	t.Run("parse errors keep their kind", func(t *testing.T) {
		history := fakes.NewPagedHistory(makeRecordings(10)...)
		history.FailAt = 0
		history.Err = fmt.Errorf("%w: missing payload", shared.ErrParse)

		_, err := FetchTopRecordings(ctx, history, 5, 100)
		if !errors.Is(err, shared.ErrParse) {
			t.Errorf("expected ErrParse, got %v", err)
		}
	})
}
