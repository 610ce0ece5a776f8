package engine

import (
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/oxy-morph/engine/animator"
	"github.com/Carmen-Shannon/oxy-morph/engine/camera"
	"github.com/Carmen-Shannon/oxy-morph/engine/loader"
	"github.com/Carmen-Shannon/oxy-morph/engine/mesh"
	"github.com/Carmen-Shannon/oxy-morph/engine/profiler"
	"github.com/Carmen-Shannon/oxy-morph/engine/scheduler"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables per-frame statistics, reported at Debug level.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfiler sets the profiler used when profiling is enabled.
//
// Parameters:
//   - p: the profiler
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithCamera sets the orbit camera. A default camera is created otherwise.
//
// Parameters:
//   - c: the camera
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCamera(c camera.Camera) EngineBuilderOption {
	return func(e *engine) {
		e.camera = c
	}
}

// WithLoader sets the dataset loader.
//
// Parameters:
//   - l: the loader
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLoader(l loader.Loader) EngineBuilderOption {
	return func(e *engine) {
		e.loader = l
	}
}

// WithMeshBuilder sets the surface builder.
//
// Parameters:
//   - b: the mesh builder
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithMeshBuilder(b mesh.Builder) EngineBuilderOption {
	return func(e *engine) {
		e.builder = b
	}
}

// WithAnimator sets the animator that runs blend transitions.
//
// Parameters:
//   - a: the animator
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithAnimator(a animator.Animator) EngineBuilderOption {
	return func(e *engine) {
		e.animator = a
	}
}

// WithSchedulerOptions passes options through to the frame scheduler.
//
// Parameters:
//   - options: the scheduler options
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSchedulerOptions(options ...scheduler.SchedulerOption) EngineBuilderOption {
	return func(e *engine) {
		e.schedulerOptions = append(e.schedulerOptions, options...)
	}
}

// WithTransitionDuration fixes the variant transition duration, overriding the manifest's.
//
// Parameters:
//   - d: the duration; zero switches on the next frame
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTransitionDuration(d time.Duration) EngineBuilderOption {
	return func(e *engine) {
		e.transition = d
		e.transitionSet = true
	}
}

// WithChannels sets the position and colour channel capacities. Renderers that report
// their own layout override the defaults before options apply.
//
// Parameters:
//   - positionChannels: the position channel capacity
//   - colorChannels: the colour channel capacity
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithChannels(positionChannels, colorChannels int) EngineBuilderOption {
	return func(e *engine) {
		e.positionChannels = positionChannels
		e.colorChannels = colorChannels
	}
}

// WithAffordanceCallback sets the function told, for every variant, whether it is the
// selected one each time the selection changes.
//
// Parameters:
//   - callback: receives a variant index and whether it is selected
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithAffordanceCallback(callback func(index int, selected bool)) EngineBuilderOption {
	return func(e *engine) {
		e.onAffordance = callback
	}
}

// WithReadyCallback sets the function called on the frame thread when a Load finishes.
//
// Parameters:
//   - callback: receives nil on success or the load error
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithReadyCallback(callback func(err error)) EngineBuilderOption {
	return func(e *engine) {
		e.onReady = callback
	}
}

// WithProgressCallback sets the function called on the frame thread as each source
// finishes loading.
//
// Parameters:
//   - callback: receives the per-source result
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProgressCallback(callback func(loader.Result)) EngineBuilderOption {
	return func(e *engine) {
		e.onProgress = callback
	}
}

// WithKeyboardSteps sets how far one arrow key press orbits and one -/= press zooms.
//
// Parameters:
//   - rotate: the orbit step in radians
//   - zoom: the zoom step, in scroll units
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithKeyboardSteps(rotate, zoom float32) EngineBuilderOption {
	return func(e *engine) {
		e.rotateStep = rotate
		e.zoomStep = zoom
	}
}

// WithLogger sets the logger shared by the engine and the components it creates.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(logger *slog.Logger) EngineBuilderOption {
	return func(e *engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}
