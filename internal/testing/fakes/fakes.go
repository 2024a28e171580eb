// package fakes contains scripted stand-ins for the external services
package fakes

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/desertthunder/playtime/internal/models"
	"github.com/desertthunder/playtime/internal/services"
	tu "github.com/desertthunder/playtime/internal/testing"
)

// ScriptedResponse is one step of a [ScriptedMetadata] script.
type ScriptedResponse struct {
	Status  int
	Body    string
	Err     error
	Latency time.Duration // Advances the clock, if one is attached
}

// ScriptedMetadata is a [services.MetadataService] that plays back responses per MBID.
type ScriptedMetadata struct {
	mu      sync.Mutex
	Clock   *tu.FakeClock
	scripts map[string][]ScriptedResponse
	calls   map[string]int
	order   []string
}

func NewScriptedMetadata(clock *tu.FakeClock) *ScriptedMetadata {
	return &ScriptedMetadata{
		Clock:   clock,
		scripts: make(map[string][]ScriptedResponse),
		calls:   make(map[string]int),
	}
}

// Script appends responses for mbid. The last response repeats once the script runs out.
func (m *ScriptedMetadata) Script(mbid string, responses ...ScriptedResponse) *ScriptedMetadata {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripts[mbid] = append(m.scripts[mbid], responses...)
	return m
}

// Recording scripts a single successful lookup with the given length.
func (m *ScriptedMetadata) Recording(mbid string, lengthMS int64) *ScriptedMetadata {
	return m.Script(mbid, ScriptedResponse{
		Status: http.StatusOK,
		Body:   fmt.Sprintf(`{"id":%q,"title":"t","length":%d}`, mbid, lengthMS),
	})
}

func (m *ScriptedMetadata) LookupRecording(ctx context.Context, mbid string) (*services.MetadataResponse, error) {
	m.mu.Lock()
	script := m.scripts[mbid]
	n := m.calls[mbid]
	m.calls[mbid] = n + 1
	m.order = append(m.order, mbid)
	m.mu.Unlock()

	if len(script) == 0 {
		return &services.MetadataResponse{StatusCode: http.StatusNotFound, Body: []byte(`{"error":"Not Found"}`)}, nil
	}
	if n >= len(script) {
		n = len(script) - 1
	}
	step := script[n]

	if m.Clock != nil && step.Latency > 0 {
		m.Clock.Advance(step.Latency)
	}
	if step.Err != nil {
		return nil, step.Err
	}
	return &services.MetadataResponse{StatusCode: step.Status, Body: []byte(step.Body)}, nil
}

// Calls returns how many lookups were issued for mbid.
func (m *ScriptedMetadata) Calls(mbid string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[mbid]
}

// TotalCalls returns the number of lookups across all ids.
func (m *ScriptedMetadata) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.order)
}

// PagedHistory is a [services.HistoryService] serving a fixed list of recordings.
type PagedHistory struct {
	Recordings []models.Recording
	FailAt     int // Offset that fails with Err; -1 disables
	Err        error
	Requests   []int // Offsets requested, in order
}

func NewPagedHistory(recordings ...models.Recording) *PagedHistory {
	return &PagedHistory{Recordings: recordings, FailAt: -1}
}

func (h *PagedHistory) GetTopRecordings(ctx context.Context, offset, count int) (*models.RecordingsPage, error) {
	h.Requests = append(h.Requests, offset)
	if h.FailAt >= 0 && offset == h.FailAt {
		return nil, h.Err
	}

	page := &models.RecordingsPage{TotalRecordingCount: len(h.Recordings)}
	if offset >= len(h.Recordings) {
		return page, nil
	}
	end := min(offset+count, len(h.Recordings))
	page.Recordings = append(page.Recordings, h.Recordings[offset:end]...)
	return page, nil
}
