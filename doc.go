// SPDX-License-Identifier: EPL-2.0

// Package voxenc turns synthesized speech, delivered as base64 encoded
// 16-bit PCM, into a playable in-memory buffer and an MP3 file.
//
// # Pipeline
//
// A payload goes through four stages:
//
//  1. transport.Decode turns the base64 text into raw bytes.
//  2. pcm.Interpret reads the bytes as little-endian int16 samples,
//     de-interleaves them and scales them to [-1, 1).
//  3. The samples are assembled into an audio.Buffer, handed to playback.
//  4. mp3.Encoder quantizes the Buffer again and feeds it to an MP3
//     session in blocks of 1152 frames.
//
// Steps 1 to 3 run on the caller's goroutine; the encode runs in the
// background so playback can start before the file is ready:
//
//	p, err := voxenc.New()
//	if err != nil {
//	    return err
//	}
//	job, err := p.Start(ctx, payload)
//	if err != nil {
//	    return err
//	}
//	play(job.Buffer())
//	mp3File, err := job.Wait()
//
// Run does both and waits.
//
// # Errors
//
// A corrupted payload fails with ErrDecode, a missing encoder with
// ErrEncoderUnavailable, and a payload or encode that yields nothing with
// ErrEmptyResult. Nothing is retried.
//
// # Observability
//
// Every stage runs in an OpenTelemetry span from the global provider
// (voxenc.decode, voxenc.interpret, voxenc.encode). State transitions are
// logged at debug level through the slog logger given to WithLogger, with
// the trace and span IDs attached.
//
// # Formats
//
// The subpackages carry the pieces: transport, formats/pcm, audio,
// formats/mp3 (shine encoder, go-mp3 decoder for checking output),
// formats/wav (go-audio/wav export), voice (prompt building) and
// synth/gemini (the speech service client).
package voxenc
