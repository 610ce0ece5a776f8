package renderer

import (
	"github.com/Carmen-Shannon/oxy-morph/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing. This is the default.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// Only specific power-of-two values are valid for GPU hardware. WebGPU guarantees support for
// 1 (off) and 4; higher values (8, 16) are adapter-dependent and may not be available.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4× multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4

	// MSAA8x enables 8× multisample anti-aliasing. Adapter-dependent; not all hardware supports this.
	MSAA8x MSAASampleCount = 8

	// MSAA16x enables 16× multisample anti-aliasing. Adapter-dependent; not all hardware supports this.
	MSAA16x MSAASampleCount = 16
)

// RendererBackend is the GPU-facing half of the Renderer. The Renderer decides what is
// drawn (slot bindings, uniform contents); the backend owns the device objects and issues
// the commands.
type RendererBackend interface {
	// ConfigureSurface (re)configures the swapchain and the depth and MSAA attachments.
	//
	// Parameters:
	//   - width: surface width in pixels
	//   - height: surface height in pixels
	//
	// Returns:
	//   - error: an error if an attachment cannot be created
	ConfigureSurface(width, height int) error

	// SetPresentMode selects the present mode used by the next ConfigureSurface.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// SetClearColor sets the colour the frame is cleared to.
	//
	// Parameters:
	//   - color: the clear colour
	SetClearColor(color wgpu.Color)

	// RegisterMorphPipeline creates the render pipeline, the uniform buffer and its bind group
	// for an expanded morph shader.
	//
	// Parameters:
	//   - s: the expanded morph shader
	//
	// Returns:
	//   - error: an error if pipeline creation fails
	RegisterMorphPipeline(s shader.Shader) error

	// UploadSurface creates the position and colour vertex buffers of one surface.
	//
	// Parameters:
	//   - index: the surface index the buffers are stored under
	//   - positions: Float32x3 vertex data
	//   - colors: Unorm8x4 vertex data
	//
	// Returns:
	//   - error: an error if buffer creation fails
	UploadSurface(index int, positions, colors []byte) error

	// UploadIndices creates the index buffer shared by all surfaces.
	//
	// Parameters:
	//   - indices: Uint32 index data
	//   - count: the number of indices
	//
	// Returns:
	//   - error: an error if buffer creation fails
	UploadIndices(indices []byte, count int) error

	// ReleaseSurfaces releases every surface buffer and the index buffer.
	ReleaseSurfaces()

	// WriteUniforms writes the packed uniform struct to the uniform buffer.
	//
	// Parameters:
	//   - data: the packed uniforms
	WriteUniforms(data []byte)

	// BeginFrame acquires the next surface texture and begins the render pass.
	//
	// Returns:
	//   - error: an error if the surface texture cannot be acquired
	BeginFrame() error

	// DrawMorph binds slots[i]'s buffers to vertex buffer slot i and draws the shared indices.
	//
	// Parameters:
	//   - slots: the surface index bound to each vertex buffer slot
	DrawMorph(slots []int)

	// EndFrame ends the render pass and submits the command buffer.
	EndFrame()

	// Present presents the acquired surface texture.
	Present()

	// Release releases every GPU object held by the backend.
	Release()
}
