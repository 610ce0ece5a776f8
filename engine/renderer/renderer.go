package renderer

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-morph/engine/mesh"
	"github.com/Carmen-Shannon/oxy-morph/engine/morph"
	"github.com/Carmen-Shannon/oxy-morph/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     RendererBackend

	layout   shader.Layout
	viewProj [16]float32

	positionWeights []float32
	colorWeights    []float32

	// slots holds the surface index bound to each vertex buffer slot, positions first.
	slots        []int
	surfaceCount int

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	presentMode          PresentMode
	sampleCount          MSAASampleCount
	clearColor           wgpu.Color

	logger *slog.Logger
}

// Renderer draws a set of variant surfaces that share one topology as a single morphed mesh.
// Up to Layout().PositionChannels surfaces contribute positions and Layout().ColorChannels
// surfaces contribute colours; the vertex stage blends them by the channel weights. Any
// weight the bound channels do not account for (1 minus their sum) goes to channel 0, so
// callers bind surface 0 there whenever the weights leave a share over, as
// morph.Multiplexer does.
//
// All methods must be called from the thread that owns the window surface.
type Renderer interface {
	// UploadSurfaces replaces the uploaded surfaces. Surface 0 is the base mesh; every slot
	// is rebound to it and all weights reset to zero, so the next frame draws the base.
	//
	// Parameters:
	//   - surfaces: the variant surfaces in variant order
	//
	// Returns:
	//   - error: a *mesh.TopologyMismatchError if the surfaces differ, or an upload error
	UploadSurfaces(surfaces []*mesh.Surface) error

	// Bind routes each bound variant's buffers to its channel. Unbound channels fall back to
	// surface 0 and should carry weight 0.
	//
	// Parameters:
	//   - assign: the channel layout from the multiplexer
	Bind(assign morph.Assignment)

	// SetWeights sets the per-channel weights used by the next Render.
	//
	// Parameters:
	//   - positionWeights: one weight per position channel
	//   - colorWeights: one weight per colour channel
	SetWeights(positionWeights, colorWeights []float32)

	// Resize reconfigures the surface. Non-positive sizes (a minimized window) are ignored.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SetViewProjection sets the column-major view-projection matrix.
	//
	// Parameters:
	//   - m: the matrix
	SetViewProjection(m [16]float32)

	// Render writes the uniforms and draws one frame. With no surfaces uploaded it presents
	// a cleared frame.
	//
	// Returns:
	//   - error: an error if the frame could not be acquired
	Render() error

	// Layout returns the channel layout the renderer was built for.
	//
	// Returns:
	//   - shader.Layout: the channel layout
	Layout() shader.Layout

	// Release frees every GPU resource held by the renderer.
	Release()
}

var _ Renderer = &renderer{}

// ErrReleased is returned by operations on a Renderer after Release.
var ErrReleased = errors.New("renderer has been released")

// NewRenderer creates a Renderer drawing to the given window surface.
//
// Parameters:
//   - surfaceDescriptor: the platform surface descriptor of the window
//   - width: initial surface width in pixels
//   - height: initial surface height in pixels
//   - options: functional options to configure the renderer
//
// Returns:
//   - Renderer: the new renderer
//   - error: an error if the GPU device or the morph pipeline cannot be created
func NewRenderer(surfaceDescriptor *wgpu.SurfaceDescriptor, width, height int, options ...RendererBuilderOption) (Renderer, error) {
	if surfaceDescriptor == nil {
		return nil, errors.New("renderer needs a surface descriptor")
	}
	r := newRendererConfig(options...)
	if err := r.layout.Validate(); err != nil {
		return nil, fmt.Errorf("invalid channel layout: %w", err)
	}

	var backend RendererBackend
	switch r.backendType {
	case BackendTypeWGPU:
		b, err := newWGPURendererBackend(surfaceDescriptor, r.forceFallbackAdapter, r.sampleCount)
		if err != nil {
			return nil, err
		}
		backend = b
	default:
		return nil, fmt.Errorf("unsupported renderer backend %d", r.backendType)
	}

	if err := r.init(backend, width, height); err != nil {
		backend.Release()
		return nil, err
	}
	return r, nil
}

func newRendererConfig(options ...RendererBuilderOption) *renderer {
	r := &renderer{
		mu:          &sync.Mutex{},
		backendType: BackendTypeWGPU,
		layout:      shader.Layout{PositionChannels: 4, ColorChannels: 4},
		presentMode: PresentModeVSync,
		sampleCount: MSAA4x,
		clearColor:  wgpu.Color{R: 0.02, G: 0.02, B: 0.03, A: 1.0},
		logger:      slog.Default(),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// init wires a backend: surface configuration, then the morph pipeline expanded for r.layout.
func (r *renderer) init(backend RendererBackend, width, height int) error {
	s, err := shader.NewMorphShader(r.layout)
	if err != nil {
		return err
	}

	backend.SetPresentMode(r.presentMode)
	backend.SetClearColor(r.clearColor)
	if err := backend.ConfigureSurface(width, height); err != nil {
		return fmt.Errorf("failed to configure surface: %w", err)
	}
	if err := backend.RegisterMorphPipeline(s); err != nil {
		return fmt.Errorf("failed to create morph pipeline: %w", err)
	}

	r.backend = backend
	r.positionWeights = make([]float32, r.layout.PositionChannels)
	r.colorWeights = make([]float32, r.layout.ColorChannels)
	r.slots = make([]int, r.layout.VertexBufferCount())
	r.logger.Debug("renderer ready",
		"position_channels", r.layout.PositionChannels,
		"color_channels", r.layout.ColorChannels,
		"msaa", uint32(r.sampleCount))
	return nil
}

func (r *renderer) UploadSurfaces(surfaces []*mesh.Surface) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.backend == nil {
		return ErrReleased
	}
	if len(surfaces) == 0 {
		return errors.New("no surfaces to upload")
	}
	if err := mesh.ValidateTopology(surfaces...); err != nil {
		return err
	}

	r.backend.ReleaseSurfaces()
	r.surfaceCount = 0
	for i, s := range surfaces {
		if err := r.backend.UploadSurface(i, s.MarshalPositions(), s.MarshalColors()); err != nil {
			r.backend.ReleaseSurfaces()
			return fmt.Errorf("failed to upload surface %d: %w", i, err)
		}
	}
	if err := r.backend.UploadIndices(surfaces[0].MarshalIndices(), surfaces[0].IndexCount()); err != nil {
		r.backend.ReleaseSurfaces()
		return fmt.Errorf("failed to upload indices: %w", err)
	}

	r.surfaceCount = len(surfaces)
	clear(r.slots)
	clear(r.positionWeights)
	clear(r.colorWeights)

	r.logger.Info("surfaces uploaded",
		"surfaces", len(surfaces),
		"vertices", surfaces[0].VertexCount(),
		"indices", surfaces[0].IndexCount())
	return nil
}

func (r *renderer) Bind(assign morph.Assignment) {
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.slots)
	r.bindChannels(assign.Positions, 0, r.layout.PositionChannels)
	r.bindChannels(assign.Colors, r.layout.PositionChannels, r.layout.ColorChannels)
}

func (r *renderer) bindChannels(bindings []morph.Binding, base, capacity int) {
	for _, b := range bindings {
		if b.Channel < 0 || b.Channel >= capacity {
			r.logger.Warn("binding outside channel capacity", "channel", b.Channel, "capacity", capacity)
			continue
		}
		if b.Variant < 0 || b.Variant >= r.surfaceCount {
			r.logger.Warn("binding references a surface that is not uploaded", "variant", b.Variant, "surfaces", r.surfaceCount)
			continue
		}
		r.slots[base+b.Channel] = b.Variant
	}
}

func (r *renderer) SetWeights(positionWeights, colorWeights []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.positionWeights)
	copy(r.positionWeights, positionWeights)
	clear(r.colorWeights)
	copy(r.colorWeights, colorWeights)
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.backend == nil {
		return
	}
	if err := r.backend.ConfigureSurface(width, height); err != nil {
		r.logger.Error("failed to reconfigure surface", "width", width, "height", height, "error", err)
	}
}

func (r *renderer) SetViewProjection(m [16]float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.viewProj = m
}

func (r *renderer) Render() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.backend == nil {
		return ErrReleased
	}
	if r.surfaceCount > 0 {
		r.backend.WriteUniforms(packUniforms(r.layout, r.viewProj, r.positionWeights, r.colorWeights))
	}
	if err := r.backend.BeginFrame(); err != nil {
		return fmt.Errorf("failed to begin frame: %w", err)
	}
	if r.surfaceCount > 0 {
		r.backend.DrawMorph(r.slots)
	}
	r.backend.EndFrame()
	r.backend.Present()
	return nil
}

func (r *renderer) Layout() shader.Layout {
	return r.layout
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.backend != nil {
		r.backend.Release()
		r.backend = nil
	}
	r.surfaceCount = 0
}
