// Package engine wires loading, mesh building, blending, and on-demand rendering into the
// variant viewer. All Engine methods run on the frame thread; background work (fetching,
// parsing, building) hands its results back through Host.Post.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-morph/common"
	"github.com/Carmen-Shannon/oxy-morph/engine/animator"
	"github.com/Carmen-Shannon/oxy-morph/engine/camera"
	"github.com/Carmen-Shannon/oxy-morph/engine/loader"
	"github.com/Carmen-Shannon/oxy-morph/engine/mesh"
	"github.com/Carmen-Shannon/oxy-morph/engine/morph"
	"github.com/Carmen-Shannon/oxy-morph/engine/profiler"
	"github.com/Carmen-Shannon/oxy-morph/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-morph/engine/scheduler"
)

// ErrNotReady is returned by selection calls before a manifest has finished loading.
var ErrNotReady = errors.New("no variants loaded")

// Host runs callbacks on the frame thread. window.Window satisfies it.
type Host interface {
	scheduler.FrameHost

	// Post runs fn on the frame thread at the next opportunity. Safe to call from any goroutine.
	Post(fn func())
}

// Renderer is the draw stage the engine hands each frame to. renderer.Renderer satisfies it.
type Renderer interface {
	UploadSurfaces(surfaces []*mesh.Surface) error
	Bind(assign morph.Assignment)
	SetWeights(positionWeights, colorWeights []float32)
	Resize(width, height int)
	SetViewProjection(m [16]float32)
	Render() error
}

// inputHost is implemented by hosts that deliver input events.
type inputHost interface {
	SetResizeCallback(callback func(width, height int))
	SetScrollCallback(callback func(delta float32))
	SetKeyDownCallback(callback func(keyCode uint32))
	SetDragCallback(callback func(dx, dy float32))
}

// titledHost is implemented by hosts with a title bar.
type titledHost interface {
	SetTitle(title string)
}

// layoutRenderer is implemented by renderers that fix their channel layout at construction.
type layoutRenderer interface {
	Layout() shader.Layout
}

// engine implements the Engine interface.
type engine struct {
	host     Host
	renderer Renderer
	camera   camera.Camera

	loader   loader.Loader
	builder  mesh.Builder
	animator animator.Animator
	sched    scheduler.Scheduler

	schedulerOptions []scheduler.SchedulerOption

	positionChannels int
	colorChannels    int

	transition    time.Duration
	transitionSet bool

	variants []Variant
	blend    *morph.BlendState
	mux      morph.Multiplexer
	selected int

	// generation invalidates in-flight loads when Load is called again or the engine closes.
	generation uint64
	cancel     context.CancelFunc
	mu         *sync.Mutex

	onAffordance func(index int, selected bool)
	onReady      func(error)
	onProgress   func(loader.Result)

	profiler         *profiler.Profiler
	profilingEnabled bool

	rotateStep float32
	zoomStep   float32

	logger *slog.Logger
}

// Engine orchestrates the variant viewer: it loads a manifest, builds one surface per
// variant, and morphs the displayed globe between variants on request. Frames are only
// produced after a change or while a transition or camera glide is in flight.
type Engine interface {
	// Load starts loading m in the background. Fetches, parsing, derivation, and mesh
	// building run off the frame thread; the result is installed on the frame thread and
	// variant 0 is selected. Calling Load again supersedes a load still in flight.
	//
	// Parameters:
	//   - ctx: cancels the load
	//   - m: the manifest to load
	Load(ctx context.Context, m *loader.Manifest)

	// Install replaces the displayed variants with prepared geometry and selects variant 0
	// without a transition.
	//
	// Parameters:
	//   - p: the prepared variants and surfaces
	//
	// Returns:
	//   - error: an error if the surfaces cannot be multiplexed or uploaded
	Install(p *Prepared) error

	// SelectVariant transitions the display to variant index: the affordance callback fires
	// for every variant, a one-hot target is built, and a transition starts.
	//
	// Parameters:
	//   - index: the variant to show
	//
	// Returns:
	//   - error: ErrNotReady before a load completes, or an error for an out-of-range index
	SelectVariant(index int) error

	// SelectVariantByName is SelectVariant by manifest name.
	//
	// Parameters:
	//   - name: the variant name
	//
	// Returns:
	//   - error: ErrNotReady before a load completes, or an error for an unknown name
	SelectVariantByName(name string) error

	// SetTargetWeights transitions to an arbitrary weight distribution. A variant's
	// affordance is active only if its target weight is 1.
	//
	// Parameters:
	//   - weights: one target weight per variant
	//
	// Returns:
	//   - error: ErrNotReady before a load completes, or an error if the length differs
	SetTargetWeights(weights []float32) error

	// Variants returns the loaded variants in order.
	Variants() []Variant

	// Selected returns the index of the last selected variant, or -1 when the target is
	// not one-hot or nothing is loaded.
	Selected() int

	// Weights returns a copy of the current blend weights.
	Weights() []float32

	// IsAnimating reports whether a transition is in flight.
	IsAnimating() bool

	// Camera returns the orbit camera.
	Camera() camera.Camera

	// Scheduler returns the frame scheduler.
	Scheduler() scheduler.Scheduler

	// RequestRender queues a frame.
	RequestRender()

	// HandleKey applies a key press: digits select variants (1 is the first, 0 the tenth),
	// arrows orbit the camera, and -/= zoom.
	//
	// Parameters:
	//   - keyCode: the virtual key code
	HandleKey(keyCode uint32)

	// HandleDrag orbits the camera by a pointer movement in pixels.
	HandleDrag(dx, dy float32)

	// HandleScroll zooms the camera.
	HandleScroll(delta float32)

	// HandleResize resizes the renderer and the camera viewport, then queues a frame.
	HandleResize(width, height int)

	// Close cancels any load in flight.
	Close()
}

var _ Engine = &engine{}

// NewEngine creates an Engine drawing through r on host. When host delivers input events
// (as window.Window does), they are wired to the Handle* methods.
//
// Parameters:
//   - host: the frame-thread host
//   - r: the renderer
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(host Host, r Renderer, options ...EngineBuilderOption) Engine {
	e := &engine{
		host:             host,
		renderer:         r,
		positionChannels: 4,
		colorChannels:    4,
		transition:       loader.DefaultTransition,
		selected:         -1,
		mu:               &sync.Mutex{},
		rotateStep:       0.15,
		zoomStep:         1,
		logger:           slog.Default(),
	}
	if lr, ok := r.(layoutRenderer); ok {
		e.positionChannels = lr.Layout().PositionChannels
		e.colorChannels = lr.Layout().ColorChannels
	}

	for _, opt := range options {
		opt(e)
	}

	if e.camera == nil {
		e.camera = camera.NewCamera()
	}
	if e.loader == nil {
		e.loader = loader.NewLoader(loader.WithLogger(e.logger))
	}
	if e.builder == nil {
		e.builder = mesh.NewBuilder(mesh.WithLogger(e.logger))
	}
	if e.animator == nil {
		e.animator = animator.NewAnimator(animator.WithLogger(e.logger))
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger))
	}

	ticker := scheduler.TickerFunc(e.tick)
	e.sched = scheduler.NewScheduler(host, ticker, e.frame,
		append([]scheduler.SchedulerOption{scheduler.WithLogger(e.logger)}, e.schedulerOptions...)...)

	if in, ok := host.(inputHost); ok {
		in.SetResizeCallback(e.HandleResize)
		in.SetScrollCallback(e.HandleScroll)
		in.SetKeyDownCallback(e.HandleKey)
		in.SetDragCallback(e.HandleDrag)
	}

	return e
}

func (e *engine) Load(ctx context.Context, m *loader.Manifest) {
	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	if !e.transitionSet {
		e.transition = m.Transition()
	}
	if t, ok := e.host.(titledHost); ok {
		t.SetTitle(m.DisplayTitle() + " (loading)")
	}

	onResult := func(res loader.Result) {
		if res.Err == nil {
			e.logger.Debug("source loaded", slog.String("variant", res.Name), slog.String("source", res.Source))
		}
		if e.onProgress != nil {
			e.host.Post(func() { e.onProgress(res) })
		}
	}

	e.loader.LoadAsync(ctx, m, onResult, func(ds *loader.Dataset, err error) {
		var p *Prepared
		if err == nil {
			p, err = Prepare(ctx, e.builder, ds)
		}
		e.host.Post(func() {
			if !e.current(gen) {
				return
			}
			if err == nil {
				err = e.Install(p)
			}
			if err != nil {
				e.logger.Error("failed to load manifest", slog.Any("error", err))
			} else if t, ok := e.host.(titledHost); ok {
				t.SetTitle(m.DisplayTitle())
			}
			if e.onReady != nil {
				e.onReady(err)
			}
		})
	})
}

func (e *engine) current(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return gen == e.generation
}

func (e *engine) Install(p *Prepared) error {
	if p == nil || len(p.Surfaces) == 0 {
		return ErrNotReady
	}
	mux, err := morph.NewMultiplexer(p.Surfaces,
		morph.WithPositionChannels(e.positionChannels),
		morph.WithColorChannels(e.colorChannels),
		morph.WithLogger(e.logger))
	if err != nil {
		return fmt.Errorf("failed to multiplex surfaces: %w", err)
	}
	if err := e.renderer.UploadSurfaces(p.Surfaces); err != nil {
		return fmt.Errorf("failed to upload surfaces: %w", err)
	}

	blend := morph.NewBlendState(len(p.Surfaces))
	if e.blend != nil {
		if err := e.animator.Cancel(e.blend.Weights()); err != nil {
			e.logger.Warn("failed to stop previous transition", slog.Any("error", err))
		}
	}

	e.variants = p.Variants
	e.mux = mux
	e.blend = blend
	e.setSelected(0, blend.Weights())

	for name, err := range p.Failures {
		e.logger.Warn("variant unavailable", slog.String("variant", name), slog.Any("error", err))
	}
	e.logger.Info("variants ready",
		slog.Int("variants", len(p.Variants)),
		slog.Int("cells", len(p.Surfaces[0].Cells)),
		slog.Int("vertices", p.Surfaces[0].VertexCount()))

	e.sched.Request()
	return nil
}

func (e *engine) SelectVariant(index int) error {
	if e.blend == nil {
		return ErrNotReady
	}
	if index < 0 || index >= len(e.variants) {
		return fmt.Errorf("variant index %d out of range [0, %d)", index, len(e.variants))
	}
	return e.transitionTo(morph.OneHot(len(e.variants), index))
}

func (e *engine) SelectVariantByName(name string) error {
	if e.blend == nil {
		return ErrNotReady
	}
	for _, v := range e.variants {
		if v.Name == name {
			return e.SelectVariant(v.Index)
		}
	}
	return fmt.Errorf("unknown variant %q", name)
}

func (e *engine) SetTargetWeights(weights []float32) error {
	if e.blend == nil {
		return ErrNotReady
	}
	if len(weights) != len(e.variants) {
		return fmt.Errorf("target has %d weights, want %d", len(weights), len(e.variants))
	}
	return e.transitionTo(weights)
}

func (e *engine) transitionTo(target []float32) error {
	if _, err := e.animator.StartTransition(e.blend.Weights(), target, e.transition, nil); err != nil {
		return err
	}
	e.setSelected(oneHotIndex(target), target)
	e.sched.Request()
	return nil
}

// setSelected records the selection and fires the affordance callback for every variant.
func (e *engine) setSelected(index int, target []float32) {
	e.selected = index
	if e.onAffordance == nil {
		return
	}
	for i := range e.variants {
		e.onAffordance(i, target[i] == 1)
	}
}

// oneHotIndex returns the index of the single 1 in w, or -1 if w is not one-hot.
func oneHotIndex(w []float32) int {
	index := -1
	for i, v := range w {
		switch {
		case v == 0:
		case v == 1 && index == -1:
			index = i
		default:
			return -1
		}
	}
	return index
}

func (e *engine) Variants() []Variant {
	return e.variants
}

func (e *engine) Selected() int {
	return e.selected
}

func (e *engine) Weights() []float32 {
	if e.blend == nil {
		return nil
	}
	return e.blend.Snapshot()
}

func (e *engine) IsAnimating() bool {
	return e.animator.IsActive()
}

func (e *engine) Camera() camera.Camera {
	return e.camera
}

func (e *engine) Scheduler() scheduler.Scheduler {
	return e.sched
}

func (e *engine) RequestRender() {
	e.sched.Request()
}

func (e *engine) HandleKey(keyCode uint32) {
	if i, ok := common.DigitIndex(keyCode); ok {
		if err := e.SelectVariant(i); err != nil {
			e.logger.Debug("ignoring variant key", slog.Int("index", i), slog.Any("error", err))
		}
		return
	}

	c := e.camera.Controller()
	switch keyCode {
	case common.KeyLeft:
		c.Rotate(-e.rotateStep, 0)
	case common.KeyRight:
		c.Rotate(e.rotateStep, 0)
	case common.KeyUp:
		c.Rotate(0, e.rotateStep)
	case common.KeyDown:
		c.Rotate(0, -e.rotateStep)
	case common.KeyEqual:
		c.Zoom(e.zoomStep)
	case common.KeyMinus:
		c.Zoom(-e.zoomStep)
	default:
		return
	}
	e.sched.Request()
}

func (e *engine) HandleDrag(dx, dy float32) {
	e.camera.Controller().Drag(dx, dy)
	e.sched.Request()
}

func (e *engine) HandleScroll(delta float32) {
	e.camera.Controller().Zoom(delta)
	e.sched.Request()
}

func (e *engine) HandleResize(width, height int) {
	e.renderer.Resize(width, height)
	e.camera.SetViewport(width, height)
	e.sched.Request()
}

func (e *engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.generation++
}

// tick advances transitions and the camera glide, reporting whether either is still moving.
func (e *engine) tick(dt time.Duration) bool {
	animating := e.animator.Tick(dt)
	moving := e.camera.Update()
	return animating || moving
}

// frame resolves the channel assignment for the current weights and renders.
func (e *engine) frame() {
	start := time.Now()

	e.renderer.SetViewProjection(e.camera.ViewProjectionMatrix())
	if e.mux != nil {
		assign, changed := e.mux.Resolve(e.blend.Weights())
		if changed {
			e.renderer.Bind(assign)
		}
		e.renderer.SetWeights(assign.PositionWeights(), assign.ColorWeights())
	}
	if err := e.renderer.Render(); err != nil {
		e.logger.Warn("frame failed", slog.Any("error", err))
	}

	if e.profilingEnabled {
		e.profiler.Tick(time.Since(start))
	}
}
