package job

import "time"

// State is the mutable per-job scheduling state: only the next-due instant.
// Owned exclusively by the registry; nothing outside internal/scheduler
// should hold a reference to it across ticks.
type State struct {
	NextRun time.Time
}

// NewState creates state due immediately at now.
func NewState(now time.Time) State {
	return State{NextRun: now}
}

// Due reports whether the job should dispatch at now.
func (s State) Due(now time.Time) bool {
	return !s.NextRun.After(now)
}

// Advance sets NextRun to now + interval — never now + accumulated missed
// intervals. This is the anti-burst rule: a job that was due many times
// while the scheduler was stalled runs once and resumes cadence from here,
// it does not catch up.
func (s *State) Advance(now time.Time, interval time.Duration) {
	s.NextRun = now.Add(interval)
}
