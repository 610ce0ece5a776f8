package common

import (
	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGBA8 is an 8-bit-per-channel colour laid out the way the GPU reads a unorm8x4 vertex attribute.
type RGBA8 [4]uint8

// HSLToRGBA8 converts a hue/saturation/lightness triple to an opaque 8-bit colour.
// The hue is given in turns and is wrapped into [0, 1) with EuclideanModulo, so hue ranges
// that cross 1.0 (e.g. [0.9, 1.1]) stay continuous. Saturation and lightness are clamped to [0, 1].
// Channels are truncated rather than rounded when scaled to 0..255.
//
// Parameters:
//   - h: hue in turns
//   - s: saturation in [0, 1]
//   - l: lightness in [0, 1]
//
// Returns:
//   - RGBA8: the converted colour with alpha 255
func HSLToRGBA8(h, s, l float64) RGBA8 {
	h = EuclideanModulo(h, 1)
	s = clamp01(s)
	l = clamp01(l)
	c := colorful.Hsl(h*360, s, l).Clamped()
	return RGBA8{toByte(c.R), toByte(c.G), toByte(c.B), 255}
}

func toByte(v float64) uint8 {
	return uint8(clamp01(v) * 255)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
