// SPDX-License-Identifier: EPL-2.0

// Package wav exports audio buffers as 16-bit PCM WAV files.
//
// It uses github.com/go-audio/wav for the RIFF container and is the
// lossless alternative to the MP3 export:
//
//	encoded, err := wav.Exporter{}.Export(ctx, buf)
//	if err != nil {
//	    // Handle error
//	}
//	encoded.WriteTo(file)
//
// Samples are clamped to [-1, 1] and quantized with the same asymmetric
// scale as the MP3 encoder, so both exports of one buffer carry identical
// integer samples. Channels are interleaved; any sample rate is accepted.
package wav
