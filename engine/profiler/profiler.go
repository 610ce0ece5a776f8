package profiler

import (
	"log/slog"
	"runtime"
	"time"
)

// Stats is one reporting window of frame statistics.
type Stats struct {
	// Frames is the number of frames rendered in the window.
	Frames int

	// Elapsed is the wall time the window covered.
	Elapsed time.Duration

	// AvgRender is the mean time spent in the render call per frame.
	AvgRender time.Duration

	// MaxRender is the slowest render call in the window.
	MaxRender time.Duration

	// HeapMB is the live heap at the end of the window.
	HeapMB float64

	// AllocRateMB is the heap allocation rate over the window, in MB per second.
	AllocRateMB float64

	// GCCount is the cumulative number of completed GC cycles.
	GCCount uint32
}

// FPS returns frames per second over the window. Frames are only produced on demand,
// so this is the rate while rendering, not the display refresh rate.
func (s Stats) FPS() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Frames) / s.Elapsed.Seconds()
}

// Profiler tracks frame timing and memory statistics for performance monitoring.
// Reports to the logger at a configurable interval, measured between rendered frames;
// an idle application produces no reports.
type Profiler struct {
	frameCount     int
	renderTotal    time.Duration
	renderMax      time.Duration
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastTotalAlloc uint64
	last           Stats

	now    func() time.Time
	logger *slog.Logger
}

// NewProfiler creates a new Profiler. The update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
		logger:         slog.Default(),
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick should be called once per rendered frame with the time the render took.
// Logs statistics when the update interval has elapsed since the last report.
//
// Parameters:
//   - render: the duration of this frame's render call
//
// Returns:
//   - bool: true if stats were reported this tick, false otherwise
func (p *Profiler) Tick(render time.Duration) bool {
	p.frameCount++
	p.renderTotal += render
	if render > p.renderMax {
		p.renderMax = render
	}

	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc

	stats := Stats{
		Frames:      p.frameCount,
		Elapsed:     elapsed,
		AvgRender:   p.renderTotal / time.Duration(p.frameCount),
		MaxRender:   p.renderMax,
		HeapMB:      float64(p.memStats.Alloc) / 1024 / 1024,
		AllocRateMB: float64(allocDelta) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:     p.memStats.NumGC,
	}

	p.logger.Debug("frame stats",
		"frames", stats.Frames,
		"fps", stats.FPS(),
		"avg_render", stats.AvgRender,
		"max_render", stats.MaxRender,
		"heap_mb", stats.HeapMB,
		"alloc_rate_mb", stats.AllocRateMB,
		"gc", stats.GCCount)

	p.last = stats
	p.frameCount = 0
	p.renderTotal = 0
	p.renderMax = 0
	p.lastTime = currentTime
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Last returns the most recently reported window.
//
// Returns:
//   - Stats: the last report, or the zero value before the first
func (p *Profiler) Last() Stats {
	return p.last
}
