// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ObjectiveCharm

package syncer

import (
	"context"
	"time"
)

// Scheduler maps a retry attempt count to a wait duration. The interval
// table bounds the number of attempts: asking for a delay past the end of
// the table reports exhaustion. Two independently configured schedulers
// exist, one for transient sync failures and one for conflict-resolution
// retries.
type Scheduler struct {
	intervals []time.Duration
}

// NewScheduler builds a scheduler over the given interval table. The table
// is a required configuration input; an empty table means no retries.
func NewScheduler(intervals []time.Duration) Scheduler {
	return Scheduler{intervals: intervals}
}

// Delay returns the wait before retry number attempt (1-based) and whether
// a retry is still allowed. attempt == 1 asks for the wait after the first
// failure.
func (s Scheduler) Delay(attempt int) (time.Duration, bool) {
	if attempt < 1 || attempt > len(s.intervals) {
		return 0, false
	}
	return s.intervals[attempt-1], true
}

// MaxAttempts returns how many retries the table allows.
func (s Scheduler) MaxAttempts() int {
	return len(s.intervals)
}

// sleep waits for d or until ctx is cancelled, reporting whether the full
// wait elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
