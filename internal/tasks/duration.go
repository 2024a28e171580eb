package tasks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playtime/internal/services"
	"github.com/desertthunder/playtime/internal/shared"
)

// DefaultMinInterval is the MusicBrainz rate-limit floor.
const DefaultMinInterval = 1000 * time.Millisecond

// Clock is the time source used for pacing.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// SystemClock returns a [Clock] backed by the time package.
func SystemClock() Clock { return systemClock{} }

// DurationCache is the durable store of raw metadata bodies keyed by MBID.
type DurationCache interface {
	Get(mbid string) ([]byte, bool, error)
	Put(mbid string, body []byte) error
}

// RetryPolicy paces metadata requests and decides which responses are retried.
type RetryPolicy struct {
	MinInterval time.Duration // Minimum time from the start of one request to the next
	Clock       Clock
}

// NewRetryPolicy returns a policy spacing requests by minInterval. Intervals below
// [DefaultMinInterval] are raised to it; a nil clock means the system clock.
func NewRetryPolicy(minInterval time.Duration, clock Clock) *RetryPolicy {
	if minInterval < DefaultMinInterval {
		minInterval = DefaultMinInterval
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &RetryPolicy{MinInterval: minInterval, Clock: clock}
}

// Retryable reports whether a response with this status is discarded and reissued.
// Only 503 qualifies: MusicBrainz uses it for rate limiting.
func (p *RetryPolicy) Retryable(status int) bool {
	return status == http.StatusServiceUnavailable
}

// Pace sleeps until MinInterval has passed since started.
func (p *RetryPolicy) Pace(ctx context.Context, started time.Time) error {
	elapsed := p.Clock.Now().Sub(started)
	if elapsed >= p.MinInterval {
		return nil
	}
	return p.Clock.Sleep(ctx, p.MinInterval-elapsed)
}

// DurationStats counts what a [DurationResolver] has done.
type DurationStats struct {
	CacheHits int
	Fetches   int // Successful network lookups
	Retries   int // 503 responses discarded
}

// DurationResolver turns MBIDs into recording lengths.
type DurationResolver struct {
	metadata services.MetadataService
	cache    DurationCache
	policy   *RetryPolicy
	logger   *log.Logger
	stats    DurationStats
}

// NewDurationResolver creates a resolver. A nil policy uses [NewRetryPolicy] defaults.
func NewDurationResolver(metadata services.MetadataService, cache DurationCache, policy *RetryPolicy, logger *log.Logger) *DurationResolver {
	if policy == nil {
		policy = NewRetryPolicy(0, nil)
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &DurationResolver{
		metadata: metadata,
		cache:    cache,
		policy:   policy,
		logger:   logger,
	}
}

// Stats returns the counters accumulated so far.
func (r *DurationResolver) Stats() DurationStats {
	return r.stats
}

// Resolve returns the length in milliseconds of the recording mbid.
//
// A cached body is used without touching the network. On a miss the recording is
// requested until MusicBrainz answers with something other than 503; a 200 body is
// validated, written to the cache, and only then returned.
func (r *DurationResolver) Resolve(ctx context.Context, mbid string) (int64, error) {
	if mbid == "" {
		return 0, fmt.Errorf("%w: empty recording mbid", shared.ErrInvalidArgument)
	}

	body, ok, err := r.cache.Get(mbid)
	if err != nil {
		return 0, fmt.Errorf("failed to read cache for %s: %w", mbid, err)
	}
	if ok {
		r.stats.CacheHits++
		r.logger.Debug("duration cached", "recording_mbid", mbid)
		length, err := services.ParseRecordingLength(body)
		if err != nil {
			return 0, fmt.Errorf("cached recording %s: %w", mbid, err)
		}
		return length, nil
	}

	body, err = r.fetch(ctx, mbid)
	if err != nil {
		return 0, err
	}

	length, err := services.ParseRecordingLength(body)
	if err != nil {
		return 0, fmt.Errorf("%w: recording %s: %v", shared.ErrMetadata, mbid, err)
	}

	if err := r.cache.Put(mbid, body); err != nil {
		return 0, fmt.Errorf("failed to cache recording %s: %w", mbid, err)
	}
	r.stats.Fetches++

	return length, nil
}

// fetch requests mbid until a non-503 response arrives and returns the 200 body.
func (r *DurationResolver) fetch(ctx context.Context, mbid string) ([]byte, error) {
	for attempt := 1; ; attempt++ {
		started := r.policy.Clock.Now()
		r.logger.Debug("fetching duration from musicbrainz", "recording_mbid", mbid, "attempt", attempt)

		resp, err := r.metadata.LookupRecording(ctx, mbid)
		if err != nil {
			if !errors.Is(err, shared.ErrTransport) {
				err = fmt.Errorf("%w: %v", shared.ErrTransport, err)
			}
			return nil, fmt.Errorf("failed to look up recording %s: %w", mbid, err)
		}

		if err := r.policy.Pace(ctx, started); err != nil {
			return nil, fmt.Errorf("interrupted while pacing requests: %w", err)
		}

		if r.policy.Retryable(resp.StatusCode) {
			r.stats.Retries++
			r.logger.Warn("rate limited by musicbrainz, retrying", "recording_mbid", mbid, "attempt", attempt)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: recording %s: status %d", shared.ErrMetadata, mbid, resp.StatusCode)
		}

		return resp.Body, nil
	}
}
