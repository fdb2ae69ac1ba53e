// Package timers keeps named interval timers and derives durations and
// throughput rates from them.
package timers

import "time"

// Timer records start/end timestamps only.
//
// Until End is called the timer is running and Duration measures to now.
// Durations come from time.Time.Sub, which uses the monotonic reading.
type Timer struct {
	startedAt   time.Time
	completedAt time.Time
	ended       bool
	now         func() time.Time
}

// NewTimer creates a timer with current start time
func NewTimer() *Timer {
	return newTimer(time.Now)
}

func newTimer(now func() time.Time) *Timer {
	t := now()
	return &Timer{
		startedAt:   t,
		completedAt: t,
		now:         now,
	}
}

// End records completion time. The last call wins.
func (t *Timer) End() {
	t.completedAt = t.now()
	t.ended = true
}

// Running reports whether End has not been called yet
func (t *Timer) Running() bool {
	return !t.ended
}

// StartedAt returns the start time
func (t *Timer) StartedAt() time.Time {
	return t.startedAt
}

// CompletedAt returns the completion time and whether the timer has ended
func (t *Timer) CompletedAt() (time.Time, bool) {
	return t.completedAt, t.ended
}

// Duration returns execution duration, never negative
func (t *Timer) Duration() time.Duration {
	d := t.completedAt.Sub(t.startedAt)
	if !t.ended {
		d = t.now().Sub(t.startedAt)
	}
	if d < 0 {
		return 0
	}
	return d
}

// Milliseconds returns Duration truncated to whole milliseconds
func (t *Timer) Milliseconds() int64 {
	return t.Duration().Milliseconds()
}
