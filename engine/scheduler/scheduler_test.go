package scheduler

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualHost queues frame callbacks until the test pumps them.
type manualHost struct {
	mu    sync.Mutex
	queue []func()
}

func (h *manualHost) RequestFrame(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.queue = append(h.queue, fn)
}

func (h *manualHost) pending() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.queue)
}

// pump runs the callbacks queued before the call, like one turn of an event loop.
func (h *manualHost) pump() int {
	h.mu.Lock()
	batch := h.queue
	h.queue = nil
	h.mu.Unlock()
	for _, fn := range batch {
		fn()
	}
	return len(batch)
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestRequestIsIdempotent(t *testing.T) {
	host := &manualHost{}
	renders := 0
	s := NewScheduler(host, nil, func() { renders++ })

	s.Request()
	s.Request()
	assert.Equal(t, StateRequested, s.State())
	assert.Equal(t, 1, host.pending())

	host.pump()
	assert.Equal(t, 1, renders)
	assert.Equal(t, StateIdle, s.State())
}

func TestResizeWhileIdleRendersOnce(t *testing.T) {
	host := &manualHost{}
	renders := 0
	ticker := TickerFunc(func(time.Duration) bool { return false })
	s := NewScheduler(host, ticker, func() { renders++ })

	s.Request() // resize notification
	for host.pump() > 0 {
	}
	assert.Equal(t, 1, renders)
	assert.Equal(t, uint64(1), s.Frames())
	assert.Equal(t, StateIdle, s.State())
	assert.Equal(t, 0, host.pending())
}

func TestActiveAnimationKeepsFramesComing(t *testing.T) {
	host := &manualHost{}
	clock := &fakeClock{t: time.Unix(1000, 0)}
	remaining := 3
	var deltas []time.Duration
	ticker := TickerFunc(func(dt time.Duration) bool {
		deltas = append(deltas, dt)
		remaining--
		return remaining > 0
	})
	renders := 0
	s := NewScheduler(host, ticker, func() { renders++ }, WithClock(clock.now))

	clock.advance(time.Hour)
	s.Request()
	for {
		clock.advance(16 * time.Millisecond)
		if host.pump() == 0 {
			break
		}
	}

	assert.Equal(t, 3, renders)
	assert.Equal(t, StateIdle, s.State())
	require.Len(t, deltas, 3)
	for _, d := range deltas {
		assert.Equal(t, 16*time.Millisecond, d, "the first frame measures from the request, not the idle period")
	}
}

func TestStateResetsBeforeRender(t *testing.T) {
	host := &manualHost{}
	var s Scheduler
	first := true
	s = NewScheduler(host, nil, func() {
		assert.Equal(t, StateIdle, s.State())
		if first {
			first = false
			s.Request() // e.g. a camera update inside the frame
		}
	})

	s.Request()
	host.pump()
	assert.Equal(t, 1, host.pending(), "a request made during the frame queues the next one")
	host.pump()
	assert.Equal(t, 0, host.pending())
	assert.Equal(t, uint64(2), s.Frames())
}

func TestAtMostOneQueuedFrameWhileAnimating(t *testing.T) {
	host := &manualHost{}
	ticker := TickerFunc(func(time.Duration) bool { return true })
	s := NewScheduler(host, ticker, func() {})

	s.Request()
	for i := 0; i < 10; i++ {
		s.Request()
		host.pump()
		s.Request()
		assert.Equal(t, 1, host.pending())
	}
}

func TestMaxDeltaCapsStep(t *testing.T) {
	host := &manualHost{}
	clock := &fakeClock{t: time.Unix(0, 0)}
	var got time.Duration
	ticker := TickerFunc(func(dt time.Duration) bool { got = dt; return false })
	s := NewScheduler(host, ticker, nil, WithClock(clock.now), WithMaxDelta(50*time.Millisecond))

	s.Request()
	clock.advance(2 * time.Second)
	host.pump()
	assert.Equal(t, 50*time.Millisecond, got)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "requested", StateRequested.String())
}
