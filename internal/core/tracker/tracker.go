package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"airdata/internal/core/types"

	"github.com/dustin/go-humanize"
)

// Tracker records the lifecycle and byte counters of one download.
type Tracker struct {
	name      string
	mu        sync.RWMutex
	status    types.Status
	startedAt time.Time
	endedAt   time.Time
	current   int64
	total     int64
}

func NewTracker(name string) *Tracker {
	return &Tracker{
		name:   name,
		status: types.StatusPending,
	}
}

func (t *Tracker) Name() string {
	return t.name
}

func (t *Tracker) Status() types.Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

func (t *Tracker) Duration() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()
	switch t.status {
	case types.StatusPending:
		return 0
	case types.StatusRunning:
		return time.Since(t.startedAt)
	default:
		return t.endedAt.Sub(t.startedAt)
	}
}

func (t *Tracker) DurationString() string {
	return t.Duration().Round(time.Millisecond).String()
}

func (t *Tracker) Current() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

func (t *Tracker) CurrentBytes() string {
	return humanize.Bytes(uint64(t.Current()))
}

func (t *Tracker) IncCurrent(n int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = max(0, t.current+n)
}

func (t *Tracker) Total() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.total
}

// SetTotal records the expected size. Negative values mean unknown and are
// stored as zero.
func (t *Tracker) SetTotal(total int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total = max(0, total)
}

// Progress returns current/total as a float from 0 to 1.
func (t *Tracker) Progress() float64 {
	total := t.Total()
	if total == 0 {
		return 0
	}
	return float64(t.Current()) / float64(total)
}

// PercentString returns the progress as a string percentage.
func (t *Tracker) PercentString() string {
	return fmt.Sprintf("%.0f%%", t.Progress()*100)
}

// Speed returns the average bytes per second.
func (t *Tracker) Speed() float64 {
	duration := t.Duration().Seconds()
	if duration == 0 {
		return 0
	}
	return float64(t.Current()) / duration
}

func (t *Tracker) SpeedBytes() string {
	return fmt.Sprintf("%s/s", humanize.Bytes(uint64(t.Speed())))
}

func (t *Tracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.startedAt = time.Now()
	t.status = types.StatusRunning
}

// Update finishes the tracker from the download result.
func (t *Tracker) Update(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.endedAt = time.Now()
	switch {
	case err == nil:
		t.status = types.StatusSucceeded
	case errors.Is(err, context.Canceled):
		t.status = types.StatusCanceled
	default:
		t.status = types.StatusFailed
	}
}

func (t *Tracker) IsCanceled() bool {
	return t.Status() == types.StatusCanceled
}
