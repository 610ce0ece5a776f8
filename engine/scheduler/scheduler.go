// Package scheduler decides when a frame must be drawn: once after any structural change,
// and continuously while an animation is in flight. Otherwise no frames are produced.
package scheduler

import (
	"log/slog"
	"sync"
	"time"
)

// State is the scheduler's frame-request state.
type State int

const (
	// StateIdle means no frame is queued.
	StateIdle State = iota

	// StateRequested means exactly one frame is queued with the host.
	StateRequested
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequested:
		return "requested"
	default:
		return "unknown"
	}
}

// FrameHost queues a callback to run on the frame thread at the next opportunity.
// The window implements this; tests use a manual queue.
type FrameHost interface {
	// RequestFrame schedules fn to run once on the frame thread.
	RequestFrame(fn func())
}

// Ticker advances time-based work and reports whether more frames are needed.
type Ticker interface {
	// Tick advances by dt.
	//
	// Returns:
	//   - bool: true while animation is in flight
	Tick(dt time.Duration) bool
}

// TickerFunc adapts a function to the Ticker interface.
type TickerFunc func(dt time.Duration) bool

// Tick calls f(dt).
func (f TickerFunc) Tick(dt time.Duration) bool {
	return f(dt)
}

// scheduler is the implementation of the Scheduler interface.
type scheduler struct {
	mu *sync.Mutex

	host   FrameHost
	ticker Ticker
	render func()

	state     State
	animating bool
	lastFrame time.Time
	now       func() time.Time
	maxDelta  time.Duration

	frames uint64
	logger *slog.Logger
}

// Scheduler reconciles render-on-demand with continuous animation. At most one frame is
// queued with the host at any time.
type Scheduler interface {
	// Request queues a frame unless one is already queued. Safe to call from any goroutine.
	Request()

	// State returns the current request state.
	//
	// Returns:
	//   - State: StateIdle or StateRequested
	State() State

	// Frames returns the number of frames rendered so far.
	//
	// Returns:
	//   - uint64: the frame count
	Frames() uint64
}

var _ Scheduler = &scheduler{}

// NewScheduler creates a Scheduler that queues frames on host. Each frame resets the
// state to idle, ticks ticker (re-requesting while it reports activity), then calls render.
//
// Parameters:
//   - host: the frame host that runs queued callbacks
//   - ticker: the animation ticker (may be nil)
//   - render: the per-frame render hand-off
//   - options: functional options to configure the scheduler
//
// Returns:
//   - Scheduler: the new scheduler in StateIdle
func NewScheduler(host FrameHost, ticker Ticker, render func(), options ...SchedulerOption) Scheduler {
	s := &scheduler{
		mu:       &sync.Mutex{},
		host:     host,
		ticker:   ticker,
		render:   render,
		state:    StateIdle,
		now:      time.Now,
		maxDelta: 100 * time.Millisecond,
		logger:   slog.Default(),
	}
	for _, opt := range options {
		opt(s)
	}
	s.lastFrame = s.now()
	return s
}

func (s *scheduler) Request() {
	s.mu.Lock()
	if s.state == StateRequested {
		s.mu.Unlock()
		return
	}
	s.state = StateRequested
	if !s.animating {
		// the first frame after idling measures time from the request, not from the last frame
		s.lastFrame = s.now()
	}
	s.mu.Unlock()

	s.host.RequestFrame(s.frame)
}

func (s *scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *scheduler) Frames() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// frame is the callback handed to the host.
func (s *scheduler) frame() {
	s.mu.Lock()
	s.state = StateIdle
	now := s.now()
	dt := now.Sub(s.lastFrame)
	s.lastFrame = now
	s.frames++
	s.mu.Unlock()

	active := false
	if s.ticker != nil {
		active = s.ticker.Tick(min(dt, s.maxDelta))
	}
	s.mu.Lock()
	settled := s.animating && !active
	s.animating = active
	s.mu.Unlock()
	if settled {
		s.logger.Debug("animation settled, scheduler idling", slog.Uint64("frames", s.Frames()))
	}
	if active {
		s.Request()
	}

	if s.render != nil {
		s.render()
	}
}
