package common

import (
	"math"

	"github.com/chewxy/math32"
)

// Lerp linearly interpolates between a and b by t.
// t is not clamped, so values outside [0, 1] extrapolate.
//
// Parameters:
//   - a: value at t = 0
//   - b: value at t = 1
//   - t: interpolation factor
//
// Returns:
//   - float32: a + (b-a)*t
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// Lerp64 is the float64 variant of Lerp used by the grid and colour math.
//
// Parameters:
//   - a: value at t = 0
//   - b: value at t = 1
//   - t: interpolation factor
//
// Returns:
//   - float64: a + (b-a)*t
func Lerp64(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Clamp restricts v to the closed interval [lo, hi].
//
// Parameters:
//   - v: the value to clamp
//   - lo: lower bound
//   - hi: upper bound
//
// Returns:
//   - float32: the clamped value
func Clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}

// EuclideanModulo returns n mod m with the sign of m, so the result always lies in [0, m) for m > 0.
// Hue ranges such as [0.9, 1.1] rely on this to wrap back into the unit interval.
//
// Parameters:
//   - n: dividend
//   - m: divisor
//
// Returns:
//   - float64: the non-negative remainder
func EuclideanModulo(n, m float64) float64 {
	r := math.Mod(n, m)
	if r < 0 {
		r += m
	}
	if r >= m {
		r = 0
	}
	return r
}

// DegToRad converts degrees to radians.
//
// Parameters:
//   - deg: angle in degrees
//
// Returns:
//   - float32: angle in radians
func DegToRad(deg float32) float32 {
	return deg * math32.Pi / 180
}
