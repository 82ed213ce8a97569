// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"context"
	"fmt"
	"sync/atomic"

	"github.com/ik5/voxenc/audio"
	"github.com/ik5/voxenc/utils"
)

const (
	// BlockSize is the number of frames per channel handed to the session
	// per call. It is the MPEG-1 layer III frame length.
	BlockSize = 1152
	// Bitrate in kbps.
	Bitrate = 128
	// MIMEType tags every encoded artifact.
	MIMEType = "audio/mp3"
)

// Encoder feeds one Buffer to a Session in BlockSize blocks.
// An Encoder is single use.
type Encoder struct {
	session    Session
	channels   int
	sampleRate int
	used       atomic.Bool
	chunks     int
}

// NewEncoder binds session to a channel layout and sample rate. A nil
// session yields ErrEncoderUnavailable.
func NewEncoder(session Session, channels, sampleRate int) (*Encoder, error) {
	if session == nil {
		return nil, ErrEncoderUnavailable
	}
	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedChannels, channels)
	}

	return &Encoder{
		session:    session,
		channels:   channels,
		sampleRate: sampleRate,
	}, nil
}

// Encode clamps and quantizes every block of buf, feeds it to the session,
// flushes the session once and returns the concatenated output.
//
// The final block may be shorter than BlockSize; it is encoded as is.
// ctx is only checked between blocks.
func (e *Encoder) Encode(ctx context.Context, buf *audio.Buffer) (*audio.Encoded, error) {
	if !e.used.CompareAndSwap(false, true) {
		return nil, ErrSessionConsumed
	}
	if buf == nil {
		return nil, audio.ErrEmptyResult
	}
	if buf.NumChannels() != e.channels || buf.SampleRate() != e.sampleRate {
		return nil, fmt.Errorf("%w: buffer is %d ch @ %d Hz, encoder is %d ch @ %d Hz",
			ErrFormatMismatch, buf.NumChannels(), buf.SampleRate(), e.channels, e.sampleRate)
	}

	floats := make([][]float32, e.channels)
	ints := make([][]int16, e.channels)
	for c := range e.channels {
		floats[c] = make([]float32, BlockSize)
		ints[c] = make([]int16, BlockSize)
	}

	var acc accumulator
	frames := buf.FrameCount()
	for offset := 0; offset < frames; offset += BlockSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n := min(BlockSize, frames-offset)
		for c := range e.channels {
			buf.CopyFrames(floats[c][:n], c, offset)
			utils.QuantizeInto(ints[c][:n], floats[c][:n])
		}

		var (
			chunk []byte
			err   error
		)
		if e.channels == 2 {
			chunk, err = e.session.EncodeStereo(ints[0][:n], ints[1][:n])
		} else {
			chunk, err = e.session.EncodeMono(ints[0][:n])
		}
		if err != nil {
			return nil, fmt.Errorf("encoding block at frame %d: %w", offset, err)
		}
		acc.Append(chunk)
	}

	tail, err := e.session.Flush()
	if err != nil {
		return nil, fmt.Errorf("flushing encoder: %w", err)
	}
	acc.Append(tail)
	e.chunks = acc.Chunks()

	if acc.Len() == 0 {
		return nil, fmt.Errorf("%w: %d frames produced no MP3 data", audio.ErrEmptyResult, frames)
	}

	return audio.NewEncoded(acc.Bytes(), MIMEType)
}

// Chunks reports how many non-empty chunks, flush included, the session
// returned during Encode.
func (e *Encoder) Chunks() int { return e.chunks }

// accumulator collects encoder output in call order.
type accumulator struct {
	buf    bytes.Buffer
	chunks int
}

// Append adds chunk after everything appended before. Empty chunks are
// skipped.
func (a *accumulator) Append(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	a.buf.Write(chunk)
	a.chunks++
}

func (a *accumulator) Len() int      { return a.buf.Len() }
func (a *accumulator) Chunks() int   { return a.chunks }
func (a *accumulator) Bytes() []byte { return a.buf.Bytes() }

// Exporter adapts the block encoder to audio.Exporter, opening a new
// session for every export.
type Exporter struct {
	NewSession SessionFactory
}

func (x Exporter) Export(ctx context.Context, buf *audio.Buffer) (*audio.Encoded, error) {
	if x.NewSession == nil {
		return nil, ErrEncoderUnavailable
	}
	if buf == nil {
		return nil, audio.ErrEmptyResult
	}

	session, err := x.NewSession(buf.NumChannels(), buf.SampleRate())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncoderUnavailable, err)
	}

	enc, err := NewEncoder(session, buf.NumChannels(), buf.SampleRate())
	if err != nil {
		return nil, err
	}
	return enc.Encode(ctx, buf)
}
