package animator

import (
	"fmt"
	"log/slog"
	"time"
)

// animator is the implementation of the Animator interface.
type animator struct {
	tracker *tracker
	tweens  []*tween

	easing Easing
	logger *slog.Logger
}

// Animator runs blend-weight transitions and reports whether any are still in flight.
// All methods are called from the frame thread.
type Animator interface {
	// StartTransition interpolates weights in place from their current values to target
	// over duration. The transition is tracked from the moment it is created.
	//
	// A transition already running on the same weight vector is cancelled first: its handle
	// is released immediately, its completion callback does not fire, and the new transition
	// starts from the partially blended values.
	//
	// Parameters:
	//   - weights: the live weight vector to animate
	//   - target: the values to reach; must match len(weights)
	//   - duration: time to reach the target; zero or less completes on the next Tick
	//   - onComplete: called once on natural completion (may be nil)
	//
	// Returns:
	//   - *Handle: the tracking handle of the new transition
	//   - error: an error if the lengths differ or cancelling the previous transition fails
	StartTransition(weights, target []float32, duration time.Duration, onComplete func()) (*Handle, error)

	// Tick advances every running transition by dt. Finished transitions snap to their
	// target, release their handle, then fire their completion callback.
	//
	// Parameters:
	//   - dt: elapsed time since the previous Tick
	//
	// Returns:
	//   - bool: IsActive after the update
	Tick(dt time.Duration) bool

	// Cancel stops any transition running on weights, releasing its handle without firing
	// its completion callback. The weights keep their partially blended values.
	//
	// Parameters:
	//   - weights: the weight vector whose transition to stop
	//
	// Returns:
	//   - error: a *LifecycleConsistencyError if a handle was already released
	Cancel(weights []float32) error

	// IsActive reports whether any transition is in flight.
	IsActive() bool

	// Tracker returns the live-count tracker backing the animator.
	Tracker() Tracker
}

var _ Animator = &animator{}

// NewAnimator creates an Animator with linear easing.
//
// Parameters:
//   - options: functional options to configure the animator
//
// Returns:
//   - Animator: the new animator
func NewAnimator(options ...AnimatorOption) Animator {
	a := &animator{
		easing: Linear,
		logger: slog.Default(),
	}
	for _, opt := range options {
		opt(a)
	}
	a.tracker = NewTracker(a.logger).(*tracker)
	return a
}

func (a *animator) StartTransition(weights, target []float32, duration time.Duration, onComplete func()) (*Handle, error) {
	if len(weights) != len(target) {
		return nil, fmt.Errorf("transition target has %d weights, want %d", len(target), len(weights))
	}

	if err := a.cancelOn(weights); err != nil {
		return nil, err
	}

	h := a.tracker.Begin()
	a.tweens = append(a.tweens, newTween(weights, target, duration, a.easing, h, onComplete))
	a.logger.Debug("transition started",
		slog.Uint64("handle", h.ID()),
		slog.Duration("duration", duration),
		slog.Int("live", a.tracker.Count()))
	return h, nil
}

// cancelOn stops any tween writing to the same backing array as weights.
func (a *animator) cancelOn(weights []float32) error {
	if len(weights) == 0 {
		return nil
	}
	kept := a.tweens[:0]
	var cancelErr error
	for _, tw := range a.tweens {
		if len(tw.values) > 0 && &tw.values[0] == &weights[0] {
			if err := tw.handle.Complete(); err != nil && cancelErr == nil {
				cancelErr = err
			}
			a.logger.Debug("transition cancelled", slog.Uint64("handle", tw.handle.ID()))
			continue
		}
		kept = append(kept, tw)
	}
	clear(a.tweens[len(kept):])
	a.tweens = kept
	return cancelErr
}

func (a *animator) Cancel(weights []float32) error {
	return a.cancelOn(weights)
}

func (a *animator) Tick(dt time.Duration) bool {
	if len(a.tweens) == 0 {
		return a.tracker.IsActive()
	}

	running := a.tweens
	a.tweens = nil

	var finished []*tween
	for _, tw := range running {
		if tw.advance(dt) {
			finished = append(finished, tw)
			continue
		}
		a.tweens = append(a.tweens, tw)
	}

	// callbacks may start new transitions, so they run after the tween list is settled
	for _, tw := range finished {
		if err := tw.handle.Complete(); err != nil {
			continue
		}
		if tw.onComplete != nil {
			tw.onComplete()
		}
	}
	return a.tracker.IsActive()
}

func (a *animator) IsActive() bool {
	return a.tracker.IsActive()
}

func (a *animator) Tracker() Tracker {
	return a.tracker
}
