// SPDX-License-Identifier: EPL-2.0

// Package mp3 encodes audio.Buffer values to MP3 and reads MP3 back.
//
// # Block Encoding
//
// Encoder walks a Buffer in blocks of 1152 frames per channel, clamps every
// sample to [-1, 1], quantizes it to int16 with an asymmetric scale
// (negative values times 0x8000, the rest times 0x7FFF) and hands the block
// to a Session. Mono buffers go through Session.EncodeMono, stereo buffers
// through Session.EncodeStereo. The final block may be shorter than 1152
// frames and is encoded as is. After the last block the session is flushed
// exactly once. Non-empty chunks are concatenated in call order.
//
//	session, err := mp3.NewShineSession(1, 24000)
//	if err != nil {
//	    // rate or channel layout not supported
//	}
//	enc, _ := mp3.NewEncoder(session, 1, 24000)
//	encoded, err := enc.Encode(ctx, buf)
//
// A session is stateful and bound to one stream: an Encoder refuses a
// second Encode, and a nil session fails with ErrEncoderUnavailable when
// the Encoder is built rather than when it is first used.
//
// Exporter wraps the same steps behind audio.Exporter and opens a fresh
// session per export.
//
// # Sessions
//
// ShineSession uses github.com/braheezy/shine-mp3, a pure Go port of the
// shine fixed-point encoder, at 128 kbps constant bitrate. shine encodes
// SamplesPerPass frames per call (1152 at MPEG-1 rates, 576 below
// 32 kHz), so the session holds samples until a whole pass is available
// and Flush pads the remainder with silence. Any other encoder can be
// plugged in by implementing Session.
//
// # Decoding
//
// Decoder uses github.com/hajimehoshi/go-mp3 and returns an audio.Source
// with float32 samples in [-1.0, 1.0]. Output is always stereo. Inspect
// reports the sample rate and decoded length of an encoded artifact:
//
//	info, err := mp3.Inspect(encoded.Bytes())
//	fmt.Println(info.SampleRate, info.Duration)
package mp3
