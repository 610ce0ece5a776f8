package renderer

import (
	"encoding/binary"
	"math"

	"github.com/Carmen-Shannon/oxy-morph/engine/renderer/shader"
)

// viewProjSize is the byte size of the column-major mat4x4<f32> at the head of the uniforms.
const viewProjSize = 64

// packUniforms lays out the morph uniform struct for layout: the view-projection matrix,
// then the position weights, then the colour weights, each weight array padded to whole
// vec4s. Weights past a layout's channel count are ignored; missing ones are zero.
func packUniforms(layout shader.Layout, viewProj [16]float32, positionWeights, colorWeights []float32) []byte {
	buf := make([]byte, layout.UniformSize())
	for i, v := range viewProj {
		putFloat(buf, i*4, v)
	}

	offset := viewProjSize
	for i := 0; i < layout.PositionChannels && i < len(positionWeights); i++ {
		putFloat(buf, offset+i*4, positionWeights[i])
	}

	offset += shader.WeightVectors(layout.PositionChannels) * 16
	for i := 0; i < layout.ColorChannels && i < len(colorWeights); i++ {
		putFloat(buf, offset+i*4, colorWeights[i])
	}
	return buf
}

func putFloat(buf []byte, offset int, v float32) {
	binary.LittleEndian.PutUint32(buf[offset:], math.Float32bits(v))
}
