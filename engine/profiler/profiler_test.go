package profiler

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProfilerReportsPerInterval(t *testing.T) {
	now := time.Unix(0, 0)
	p := NewProfiler(
		WithInterval(time.Second),
		WithClock(func() time.Time { return now }),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	for _, d := range []time.Duration{2 * time.Millisecond, 4 * time.Millisecond, 6 * time.Millisecond} {
		now = now.Add(250 * time.Millisecond)
		assert.False(t, p.Tick(d))
	}

	now = now.Add(250 * time.Millisecond)
	assert.True(t, p.Tick(8*time.Millisecond))

	stats := p.Last()
	assert.Equal(t, 4, stats.Frames)
	assert.Equal(t, time.Second, stats.Elapsed)
	assert.Equal(t, 5*time.Millisecond, stats.AvgRender)
	assert.Equal(t, 8*time.Millisecond, stats.MaxRender)
	assert.InDelta(t, 4.0, stats.FPS(), 1e-9)

	now = now.Add(100 * time.Millisecond)
	assert.False(t, p.Tick(time.Millisecond), "window restarts after a report")
}

func TestStatsFPSWithoutElapsed(t *testing.T) {
	assert.Zero(t, Stats{Frames: 3}.FPS())
}
