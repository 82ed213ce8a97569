// SPDX-License-Identifier: EPL-2.0

// Package pcm interprets headerless signed 16-bit little-endian PCM.
//
// This is the layout produced by the upstream voice-synthesis service: no
// header, samples interleaved by channel, rate and channel count declared
// out of band (24000 Hz mono in the observed configuration).
//
// # Interpreting a Payload
//
// Interpret turns a whole decoded byte buffer into an immutable
// audio.Buffer in one step:
//
//	buf, err := pcm.Interpret(raw, 1, 24000)
//	if errors.Is(err, audio.ErrEmptyResult) {
//	    // fewer bytes than one frame
//	}
//
// Frame count is floor(len(raw) / 2 / channels). Sample i of channel c is
// read from interleaved index i*channels + c and normalized as s / 32768,
// so the output range is [-1.0, 0.999969]. Bytes past the last whole frame,
// including an odd trailing byte, are dropped; Leftover reports how many.
//
// # Streaming
//
// Decoder implements audio.Decoder for raw PCM read from a file or socket:
//
//	src, _ := pcm.Decoder{Channels: 1, SampleRate: 24000}.Decode(f)
//	buf, err := audio.ReadAll(src)
package pcm
