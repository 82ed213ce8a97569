// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"fmt"
	"io"
	"time"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ik5/voxenc/audio"
	"github.com/ik5/voxenc/utils"
)

// go-mp3 always decodes to interleaved stereo 16-bit PCM.
const decodedChannels = 2

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

type source struct {
	dec        mp3Reader
	sampleRate int
	channels   int
	buf        []byte
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return cap(s.buf) / 2 } // return sample capacity, not bytes

func (s *source) ReadSamples(dst []float32) (int, error) {
	bytesNeeded := len(dst) * 2
	if cap(s.buf) < bytesNeeded {
		s.buf = make([]byte, bytesNeeded)
	}
	s.buf = s.buf[:bytesNeeded]

	n, err := s.dec.Read(s.buf)
	if n == 0 {
		if err != nil {
			return 0, err
		}
		return 0, nil
	}

	samples := n / 2
	for i := range samples {
		low := uint16(s.buf[2*i])
		high := uint16(s.buf[2*i+1])
		dst[i] = utils.Int16ToFloat32(int16(low | (high << 8)))
	}

	return samples, err
}

// Decoder reads an MP3 stream back as an audio.Source. It is used to check
// that exported artifacts are playable.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		channels:   decodedChannels,
		buf:        make([]byte, 8192),
	}, nil
}

// Info describes a decodable MP3 stream.
type Info struct {
	SampleRate int
	// Frames is the decoded length in frames per channel, including the
	// encoder delay and padding of the final MPEG frame.
	Frames   int
	Duration time.Duration
}

// Inspect decodes the header and length of an encoded MP3 artifact.
func Inspect(data []byte) (Info, error) {
	dec, err := gomp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("%w", err)
	}

	rate := dec.SampleRate()
	frames := int(dec.Length() / (decodedChannels * 2))

	info := Info{
		SampleRate: rate,
		Frames:     frames,
	}
	if rate > 0 {
		info.Duration = time.Duration(frames) * time.Second / time.Duration(rate)
	}
	return info, nil
}
