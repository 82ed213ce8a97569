// SPDX-License-Identifier: EPL-2.0

package utils

const (
	// PositiveScale is applied to non-negative samples so 1.0 lands on 32767.
	PositiveScale = 0x7FFF
	// NegativeScale is applied to negative samples so -1.0 lands on -32768.
	NegativeScale = 0x8000
)

// Float32ToInt16 clamps x to [-1, 1] and quantizes it with an asymmetric
// scale. The fraction is truncated toward zero.
func Float32ToInt16(x float32) int16 {
	// Clamp and scale
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	if x < 0 {
		return int16(x * NegativeScale)
	}
	return int16(x * PositiveScale)
}

// Int16ToFloat32 normalizes a PCM sample to [-1.0, 0.999969].
func Int16ToFloat32(s int16) float32 {
	return float32(s) / NegativeScale
}

// QuantizeInto converts src into dst with Float32ToInt16 and returns the
// number of samples written.
func QuantizeInto(dst []int16, src []float32) int {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = Float32ToInt16(src[i])
	}
	return n
}
