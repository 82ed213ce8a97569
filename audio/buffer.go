// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"time"

	goaudio "github.com/go-audio/audio"
)

// Buffer is an immutable, fully decoded block of audio held per channel.
// Samples are float32 normalized to [-1,1]. Every channel holds exactly
// FrameCount samples. A Buffer never hands out its backing slices, so it
// may be shared between concurrent readers.
type Buffer struct {
	data       [][]float32
	sampleRate int
	frames     int
}

// NewBuffer assembles a Buffer from per-channel samples. The Buffer takes
// ownership of channels; callers must not modify the slices afterwards.
func NewBuffer(channels [][]float32, sampleRate int) (*Buffer, error) {
	if sampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}
	if len(channels) == 0 {
		return nil, ErrEmptyResult
	}

	frames := len(channels[0])
	for c := 1; c < len(channels); c++ {
		if len(channels[c]) != frames {
			return nil, fmt.Errorf("%w: channel %d has %d frames, want %d",
				ErrChannelMismatch, c, len(channels[c]), frames)
		}
	}
	if frames == 0 {
		return nil, ErrEmptyResult
	}

	return &Buffer{
		data:       channels,
		sampleRate: sampleRate,
		frames:     frames,
	}, nil
}

func (b *Buffer) NumChannels() int { return len(b.data) }
func (b *Buffer) SampleRate() int  { return b.sampleRate }
func (b *Buffer) FrameCount() int  { return b.frames }

// Duration is the playback length of the buffer.
func (b *Buffer) Duration() time.Duration {
	return time.Duration(b.frames) * time.Second / time.Duration(b.sampleRate)
}

// Channel returns a copy of channel c.
func (b *Buffer) Channel(c int) []float32 {
	out := make([]float32, b.frames)
	copy(out, b.data[c])
	return out
}

// CopyFrames copies samples of channel c starting at frame offset into dst
// and returns how many were copied.
func (b *Buffer) CopyFrames(dst []float32, c, offset int) int {
	if offset >= b.frames {
		return 0
	}
	return copy(dst, b.data[c][offset:])
}

// Float32Buffer returns an interleaved go-audio buffer for playback sinks
// that consume go-audio types. The data is a fresh copy.
func (b *Buffer) Float32Buffer() *goaudio.Float32Buffer {
	channels := len(b.data)
	data := make([]float32, b.frames*channels)
	for c, ch := range b.data {
		for i, s := range ch {
			data[i*channels+c] = s
		}
	}

	return &goaudio.Float32Buffer{
		Format: &goaudio.Format{
			NumChannels: channels,
			SampleRate:  b.sampleRate,
		},
		Data:           data,
		SourceBitDepth: 16,
	}
}

// Reader streams the buffer as an interleaved Source.
func (b *Buffer) Reader() Source {
	return &bufferSource{buf: b}
}

type bufferSource struct {
	buf   *Buffer
	frame int
}

func (s *bufferSource) SampleRate() int { return s.buf.sampleRate }
func (s *bufferSource) Channels() int   { return len(s.buf.data) }
func (s *bufferSource) BufSize() int    { return 4096 }
func (s *bufferSource) Close() error    { return nil }

func (s *bufferSource) ReadSamples(dst []float32) (int, error) {
	channels := len(s.buf.data)
	if len(dst)%channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if s.frame >= s.buf.frames {
		return 0, io.EOF
	}

	frames := min(len(dst)/channels, s.buf.frames-s.frame)
	for f := range frames {
		for c := range channels {
			dst[f*channels+c] = s.buf.data[c][s.frame+f]
		}
	}
	s.frame += frames

	if s.frame >= s.buf.frames {
		return frames * channels, io.EOF
	}
	return frames * channels, nil
}

// ReadAll drains src and de-interleaves it into a Buffer.
func ReadAll(src Source) (*Buffer, error) {
	channels := src.Channels()
	if channels <= 0 {
		return nil, ErrEmptyResult
	}

	size := src.BufSize()
	if size < channels {
		size = 4096
	}
	size -= size % channels
	buf := make([]float32, size)

	data := make([][]float32, channels)
	for {
		n, err := src.ReadSamples(buf)
		frames := n / channels
		for f := range frames {
			for c := range channels {
				data[c] = append(data[c], buf[f*channels+c])
			}
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w", err)
		}
		if n == 0 {
			break
		}
	}

	return NewBuffer(data, src.SampleRate())
}
