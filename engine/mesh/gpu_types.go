package mesh

import (
	"encoding/binary"
	"math"
)

// PositionStride is the byte size of one vertex position (vec3<f32>).
const PositionStride = 12

// ColorStride is the byte size of one vertex colour (unorm8x4).
const ColorStride = 4

// MarshalPositions serializes the positions into a little-endian byte buffer suitable for a
// Float32x3 vertex buffer.
//
// Returns:
//   - []byte: the serialized positions
func (s *Surface) MarshalPositions() []byte {
	buf := make([]byte, len(s.Positions)*4)
	for i, v := range s.Positions {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// MarshalColors returns the colours as a byte buffer suitable for a Unorm8x4 vertex buffer.
//
// Returns:
//   - []byte: a copy of the colour bytes
func (s *Surface) MarshalColors() []byte {
	buf := make([]byte, len(s.Colors))
	copy(buf, s.Colors)
	return buf
}

// MarshalIndices serializes the indices into a little-endian byte buffer suitable for a Uint32 index buffer.
//
// Returns:
//   - []byte: the serialized indices
func (s *Surface) MarshalIndices() []byte {
	buf := make([]byte, len(s.Indices)*4)
	for i, v := range s.Indices {
		binary.LittleEndian.PutUint32(buf[i*4:], v)
	}
	return buf
}
