// Package animator drives timed blend-weight transitions and keeps a live count of the
// ones still running, so a render-on-demand scheduler can tell when animation has settled.
package animator

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrLifecycle is matched by every *LifecycleConsistencyError through errors.Is.
var ErrLifecycle = errors.New("animation lifecycle inconsistency")

// LifecycleConsistencyError reports a completion that does not balance a Begin. It always
// indicates a bookkeeping bug, such as a completion callback firing twice.
type LifecycleConsistencyError struct {
	// Handle is the id of the handle being completed.
	Handle uint64

	// Count is the live count at the time of the failed completion.
	Count int

	// Reason describes the inconsistency.
	Reason string
}

func (e *LifecycleConsistencyError) Error() string {
	return fmt.Sprintf("animation handle %d: %s (live count %d)", e.Handle, e.Reason, e.Count)
}

func (e *LifecycleConsistencyError) Is(target error) bool {
	return target == ErrLifecycle
}

// tracker is the implementation of the Tracker interface.
type tracker struct {
	mu     *sync.Mutex
	count  int
	nextID uint64
	logger *slog.Logger
}

// Tracker counts animations in flight.
type Tracker interface {
	// Begin records the start of an animation.
	//
	// Returns:
	//   - *Handle: the handle to complete exactly once when the animation ends
	Begin() *Handle

	// IsActive reports whether any animation is in flight.
	//
	// Returns:
	//   - bool: true if the live count is above zero
	IsActive() bool

	// Count returns the number of animations in flight.
	//
	// Returns:
	//   - int: the live count
	Count() int
}

var _ Tracker = &tracker{}

// NewTracker creates a Tracker with no animations in flight.
//
// Parameters:
//   - logger: receives lifecycle errors; nil uses slog.Default()
//
// Returns:
//   - Tracker: the new tracker
func NewTracker(logger *slog.Logger) Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &tracker{
		mu:     &sync.Mutex{},
		logger: logger,
	}
}

func (t *tracker) Begin() *Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.count++
	t.nextID++
	return &Handle{id: t.nextID, tracker: t}
}

func (t *tracker) IsActive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count > 0
}

func (t *tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

// complete releases h. The count is left untouched on failure.
func (t *tracker) complete(h *Handle) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var err *LifecycleConsistencyError
	switch {
	case h.done:
		err = &LifecycleConsistencyError{Handle: h.id, Count: t.count, Reason: "completed more than once"}
	case t.count <= 0:
		err = &LifecycleConsistencyError{Handle: h.id, Count: t.count, Reason: "completion would drive the live count below zero"}
	}
	if err != nil {
		t.logger.Error("animation lifecycle inconsistency", slog.Uint64("handle", h.id), slog.Int("count", t.count), slog.String("reason", err.Reason))
		return err
	}

	h.done = true
	t.count--
	return nil
}

// Handle represents one tracked animation.
type Handle struct {
	id      uint64
	tracker *tracker
	done    bool
}

// ID returns the handle's identifier, unique within its Tracker.
func (h *Handle) ID() uint64 {
	return h.id
}

// Complete releases the handle, decrementing the live count exactly once.
//
// Returns:
//   - error: a *LifecycleConsistencyError if the handle was already completed or the
//     count would go negative
func (h *Handle) Complete() error {
	return h.tracker.complete(h)
}

// Done reports whether Complete has succeeded.
func (h *Handle) Done() bool {
	h.tracker.mu.Lock()
	defer h.tracker.mu.Unlock()
	return h.done
}
