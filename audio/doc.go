// SPDX-License-Identifier: EPL-2.0

// Package audio provides the core audio types shared by the format packages.
//
// This package contains:
//   - Buffer, the immutable decoded audio held per channel
//   - Encoded, an immutable encoded artifact tagged with a MIME type
//   - Source interface for streaming interleaved audio
//   - Exporter interface and a format registry
//
// # Buffer
//
// A Buffer holds one float32 slice per channel, all of the same length,
// plus the sample rate:
//
//	buf, err := audio.NewBuffer([][]float32{left, right}, 24000)
//	if errors.Is(err, audio.ErrEmptyResult) {
//	    // zero frames
//	}
//
// Buffers are never modified after NewBuffer. Channel returns a copy and
// CopyFrames copies a window, so a playback sink and an encoder can read the
// same Buffer from different goroutines without locking.
//
// For sinks built on go-audio, Float32Buffer returns an interleaved
// *audio.Float32Buffer from github.com/go-audio/audio.
//
// # Source Interface
//
// Source streams interleaved float32 samples:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// Buffer.Reader turns a Buffer into a Source, and ReadAll collects a Source
// into a Buffer. Decoders in the format packages return Sources.
//
// # Export Registry
//
// The registry maps a format key to an Exporter:
//
//	registry := audio.NewRegistry()
//	registry.Register("mp3", mp3.Exporter{NewSession: mp3.NewShineFactory()})
//	registry.Register("wav", wav.Exporter{})
//	encoded, err := registry.Export(ctx, "wav", buf)
//
// # Sample Format
//
// Audio samples are represented as float32 in the range [-1.0, 1.0]:
//   - 0.0 represents silence
//   - 1.0 represents maximum positive amplitude
//   - -1.0 represents maximum negative amplitude
//
// # Error Handling
//
// ErrEmptyResult marks any stage that would otherwise hand on an empty
// buffer or artifact. Streaming reads return io.EOF at the end of data:
//
//	for {
//	    n, err := source.ReadSamples(buf)
//	    if err == io.EOF {
//	        break // Normal end of stream
//	    }
//	    if err != nil {
//	        return err // Processing error
//	    }
//	    // Process n samples from buf
//	}
package audio
