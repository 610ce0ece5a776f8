package scheduler

import (
	"log/slog"
	"time"
)

// SchedulerOption is a functional option for configuring a Scheduler via NewScheduler.
type SchedulerOption func(*scheduler)

// WithClock sets the time source used to measure frame deltas.
//
// Parameters:
//   - now: returns the current time
//
// Returns:
//   - SchedulerOption: a function that applies the clock to a scheduler
func WithClock(now func() time.Time) SchedulerOption {
	return func(s *scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMaxDelta caps the time step handed to the ticker, so a stalled frame does not
// jump an animation to its end.
//
// Parameters:
//   - d: the largest step per frame
//
// Returns:
//   - SchedulerOption: a function that applies the cap to a scheduler
func WithMaxDelta(d time.Duration) SchedulerOption {
	return func(s *scheduler) {
		s.maxDelta = d
	}
}

// WithLogger sets the logger used for scheduling diagnostics.
func WithLogger(logger *slog.Logger) SchedulerOption {
	return func(s *scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}
