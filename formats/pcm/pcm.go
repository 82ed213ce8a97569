// SPDX-License-Identifier: EPL-2.0

package pcm

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ik5/voxenc/audio"
	"github.com/ik5/voxenc/utils"
)

// SampleWidth is the size in bytes of one signed 16-bit sample.
const SampleWidth = 2

// FrameCount returns how many whole frames fit in byteLen bytes of
// interleaved 16-bit samples.
func FrameCount(byteLen, channels int) int {
	if channels <= 0 {
		return 0
	}
	return byteLen / SampleWidth / channels
}

// Leftover returns how many trailing bytes do not form a whole frame and
// are dropped by Interpret.
func Leftover(byteLen, channels int) int {
	return byteLen - FrameCount(byteLen, channels)*channels*SampleWidth
}

// Interpret reinterprets raw as signed 16-bit little-endian samples
// interleaved over channels, and assembles them into a Buffer.
// Bytes past the last whole frame are ignored.
func Interpret(raw []byte, channels, sampleRate int) (*audio.Buffer, error) {
	if channels < 1 || sampleRate < 1 {
		return nil, fmt.Errorf("%w: channels=%d sampleRate=%d", ErrInvalidLayout, channels, sampleRate)
	}

	frames := FrameCount(len(raw), channels)
	if frames == 0 {
		return nil, audio.ErrEmptyResult
	}

	data := make([][]float32, channels)
	for c := range channels {
		data[c] = make([]float32, frames)
	}

	for i := range frames {
		for c := range channels {
			idx := (i*channels + c) * SampleWidth
			s := int16(binary.LittleEndian.Uint16(raw[idx : idx+SampleWidth]))
			data[c][i] = utils.Int16ToFloat32(s)
		}
	}

	return audio.NewBuffer(data, sampleRate)
}

type pcmSource struct {
	r          io.Reader
	sampleRate int
	channels   int
	buf        []byte
	pending    int // bytes carried over from the previous read
}

func (s *pcmSource) SampleRate() int { return s.sampleRate }
func (s *pcmSource) Channels() int   { return s.channels }
func (s *pcmSource) Close() error    { return nil }
func (s *pcmSource) BufSize() int    { return cap(s.buf) / SampleWidth }

func (s *pcmSource) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if len(dst)%s.channels != 0 {
		return 0, audio.ErrInvalidDstSize
	}

	need := len(dst) * SampleWidth
	if cap(s.buf) < need+SampleWidth {
		grown := make([]byte, need+SampleWidth)
		copy(grown, s.buf[:s.pending])
		s.buf = grown
	}
	s.buf = s.buf[:cap(s.buf)]

	n, err := io.ReadFull(s.r, s.buf[s.pending:need])
	avail := s.pending + n
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	} else if err != nil && err != io.EOF {
		return 0, fmt.Errorf("%w", err)
	}

	// Only whole frames are emitted; a partial frame waits for more data
	// or is dropped at EOF.
	frameBytes := s.channels * SampleWidth
	usable := avail - avail%frameBytes
	samples := usable / SampleWidth
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(s.buf[2*i : 2*i+2]))
		dst[i] = utils.Int16ToFloat32(v)
	}

	s.pending = copy(s.buf, s.buf[usable:avail])

	if err == io.EOF {
		return samples, io.EOF
	}
	return samples, nil
}

// Decoder reads headerless 16-bit little-endian PCM with a declared layout.
type Decoder struct {
	Channels   int
	SampleRate int
}

func (d Decoder) Decode(r io.Reader) (audio.Source, error) {
	if d.Channels < 1 || d.SampleRate < 1 {
		return nil, fmt.Errorf("%w: channels=%d sampleRate=%d", ErrInvalidLayout, d.Channels, d.SampleRate)
	}

	return &pcmSource{
		r:          r,
		sampleRate: d.SampleRate,
		channels:   d.Channels,
		buf:        make([]byte, 4096),
	}, nil
}
