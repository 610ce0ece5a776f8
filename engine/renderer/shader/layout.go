package shader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-morph/engine/mesh"
	"github.com/cogentcore/webgpu/wgpu"
)

// MaxVertexBuffers is the vertex buffer count guaranteed by wgpu.DefaultLimits.
const MaxVertexBuffers = 8

// Layout is the number of position and color channels a shader is expanded for.
// Position channels occupy vertex buffer slots [0, PositionChannels) and color channels
// the slots after them.
type Layout struct {
	PositionChannels int
	ColorChannels    int
}

// Validate checks that both channel counts are positive and fit within MaxVertexBuffers.
func (l Layout) Validate() error {
	if l.PositionChannels < 1 || l.ColorChannels < 1 {
		return fmt.Errorf("layout needs at least one position and one color channel, got %d/%d", l.PositionChannels, l.ColorChannels)
	}
	if l.VertexBufferCount() > MaxVertexBuffers {
		return fmt.Errorf("layout needs %d vertex buffers, limit is %d", l.VertexBufferCount(), MaxVertexBuffers)
	}
	return nil
}

// VertexBufferCount returns the number of vertex buffer slots the layout binds.
func (l Layout) VertexBufferCount() int {
	return l.PositionChannels + l.ColorChannels
}

// PositionSlot returns the vertex buffer slot of position channel i.
func (l Layout) PositionSlot(i int) uint32 {
	return uint32(i)
}

// ColorSlot returns the vertex buffer slot of color channel i.
func (l Layout) ColorSlot(i int) uint32 {
	return uint32(l.PositionChannels + i)
}

// WeightVectors returns how many vec4 weight entries hold n channel weights.
func WeightVectors(n int) int {
	return (n + 3) / 4
}

// UniformSize returns the byte size of the uniform struct: a view-projection matrix
// followed by the position and color weight arrays.
func (l Layout) UniformSize() uint64 {
	return 64 + uint64(WeightVectors(l.PositionChannels)+WeightVectors(l.ColorChannels))*16
}

// VertexBufferLayouts returns one single-attribute buffer layout per channel, in slot order.
// Shader locations match the slots.
func (l Layout) VertexBufferLayouts() []wgpu.VertexBufferLayout {
	layouts := make([]wgpu.VertexBufferLayout, 0, l.VertexBufferCount())
	for i := range l.PositionChannels {
		layouts = append(layouts, wgpu.VertexBufferLayout{
			ArrayStride: mesh.PositionStride,
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes: []wgpu.VertexAttribute{{
				Format:         wgpu.VertexFormatFloat32x3,
				Offset:         0,
				ShaderLocation: l.PositionSlot(i),
			}},
		})
	}
	for i := range l.ColorChannels {
		layouts = append(layouts, wgpu.VertexBufferLayout{
			ArrayStride: mesh.ColorStride,
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes: []wgpu.VertexAttribute{{
				Format:         wgpu.VertexFormatUnorm8x4,
				Offset:         0,
				ShaderLocation: l.ColorSlot(i),
			}},
		})
	}
	return layouts
}
