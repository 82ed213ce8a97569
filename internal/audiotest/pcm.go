// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"encoding/base64"
	"encoding/binary"
	"math"
)

// PCMBytes serializes interleaved samples as signed 16-bit little-endian.
func PCMBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// Payload is PCMBytes encoded the way the synthesis service ships it.
func Payload(samples []int16) string {
	return base64.StdEncoding.EncodeToString(PCMBytes(samples))
}

// Constant returns n copies of v.
func Constant(n int, v int16) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// SineSamples returns n interleaved frames of a sine tone at half scale,
// the same tone on every channel.
func SineSamples(frames, channels, sampleRate int, frequency float64) []int16 {
	out := make([]int16, frames*channels)
	for i := range frames {
		v := int16(math.Round(0.5 * math.MaxInt16 * Sine(i, sampleRate, frequency)))
		for c := range channels {
			out[i*channels+c] = v
		}
	}
	return out
}

// Ramp returns n samples walking the whole int16 range with the given step,
// wrapping around.
func Ramp(n int, step int) []int16 {
	out := make([]int16, n)
	v := math.MinInt16
	for i := range out {
		out[i] = int16(v)
		v += step
		if v > math.MaxInt16 {
			v = math.MinInt16 + (v - math.MaxInt16 - 1)
		}
	}
	return out
}
